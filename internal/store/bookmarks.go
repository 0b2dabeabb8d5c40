package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

var bookmarkColumns = []string{
	"id", "user_id", "article_id", "title", "description", "url",
	"published_at", "tags", "cover_image", "author", "created_at",
}

// BookmarkRepository stores per-user saved articles
type BookmarkRepository struct {
	db DBTX
	sb sq.StatementBuilderType
}

// Create inserts b. When b.ID or b.CreatedAt are unset they are filled in.
// A second bookmark for the same (user, article) yields ErrDuplicate.
func (r *BookmarkRepository) Create(ctx context.Context, b *model.Bookmark) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}

	tags, err := json.Marshal(b.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	query, args, err := r.sb.Insert("bookmarks").
		Columns(bookmarkColumns...).
		Values(b.ID, b.UserID, b.ArticleID, b.Title, b.Description, b.URL,
			utc(b.PublishedAt), string(tags), b.CoverImage, b.Author, utc(b.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// ListByUser returns the user's bookmarks, newest first
func (r *BookmarkRepository) ListByUser(ctx context.Context, userID string) ([]model.Bookmark, error) {
	query, args, err := r.sb.Select(bookmarkColumns...).
		From("bookmarks").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	out := make([]model.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Delete removes the user's bookmark for articleID. ErrNotFound when no row
// matched, including rows owned by someone else.
func (r *BookmarkRepository) Delete(ctx context.Context, userID, articleID string) error {
	query, args, err := r.sb.Delete("bookmarks").
		Where(sq.Eq{"user_id": userID, "article_id": articleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBookmark(rows *sql.Rows) (*model.Bookmark, error) {
	var (
		b           model.Bookmark
		description sql.NullString
		cover       sql.NullString
		tags        []byte
	)
	if err := rows.Scan(&b.ID, &b.UserID, &b.ArticleID, &b.Title, &description, &b.URL,
		&b.PublishedAt, &tags, &cover, &b.Author, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan bookmark: %w", err)
	}

	if description.Valid {
		b.Description = &description.String
	}
	if cover.Valid {
		b.CoverImage = &cover.String
	}
	b.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &b.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &b, nil
}
