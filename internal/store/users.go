package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

var userColumns = []string{"id", "email", "name", "image", "email_verified", "created_at", "updated_at"}

// UserRepository reads and writes users
type UserRepository struct {
	db DBTX
	sb sq.StatementBuilderType
}

// Create inserts u, assigning an id when empty. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	var verified any
	if u.EmailVerified != nil {
		verified = utc(*u.EmailVerified)
	}

	query, args, err := r.sb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.Name, u.Image, verified, utc(u.CreatedAt), utc(u.UpdatedAt)).
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

// FindByEmail returns the user with the exact email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

// FindByID returns the user with the given id
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// MarkEmailVerified sets email_verified to at unless it is already set, and
// returns the updated user.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string, at time.Time) (*model.User, error) {
	query, args, err := r.sb.Update("users").
		Set("email_verified", sq.Expr("COALESCE(email_verified, ?)", utc(at))).
		Set("updated_at", utc(at)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq) (*model.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var (
		u        model.User
		name     sql.NullString
		image    sql.NullString
		verified sql.NullTime
	)
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Email, &name, &image, &verified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	if name.Valid {
		u.Name = &name.String
	}
	if image.Valid {
		u.Image = &image.String
	}
	if verified.Valid {
		t := verified.Time
		u.EmailVerified = &t
	}
	return &u, nil
}
