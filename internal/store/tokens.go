package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

// TokenRepository stores pending magic-link tokens
type TokenRepository struct {
	db DBTX
	sb sq.StatementBuilderType
}

// Create persists a verification token. A token string already present yields ErrDuplicate.
func (r *TokenRepository) Create(ctx context.Context, vt *model.VerificationToken) error {
	if vt.CreatedAt.IsZero() {
		vt.CreatedAt = time.Now()
	}

	query, args, err := r.sb.Insert("verification_tokens").
		Columns("identifier", "token", "expires", "created_at").
		Values(vt.Identifier, vt.Token, utc(vt.Expires), utc(vt.CreatedAt)).
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

// Find returns the token row, expired or not
func (r *TokenRepository) Find(ctx context.Context, token string) (*model.VerificationToken, error) {
	query, args, err := r.sb.Select("identifier", "token", "expires", "created_at").
		From("verification_tokens").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var vt model.VerificationToken
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&vt.Identifier, &vt.Token, &vt.Expires, &vt.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &vt, nil
}

// Consume deletes the token if it is still unexpired at now. The delete is the
// single-use gate: of concurrent callers only one sees a deleted row, the others
// get ErrNotFound.
func (r *TokenRepository) Consume(ctx context.Context, token string, now time.Time) error {
	query, args, err := r.sb.Delete("verification_tokens").
		Where(sq.Eq{"token": token}).
		Where(sq.Gt{"expires": utc(now)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByIdentifier removes every outstanding token for an email
func (r *TokenRepository) DeleteByIdentifier(ctx context.Context, identifier string) (int64, error) {
	return r.delete(ctx, sq.Eq{"identifier": identifier})
}

// DeleteExpired removes tokens whose expiry is at or before now
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.delete(ctx, sq.LtOrEq{"expires": utc(now)})
}

func (r *TokenRepository) delete(ctx context.Context, where sq.Sqlizer) (int64, error) {
	query, args, err := r.sb.Delete("verification_tokens").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
