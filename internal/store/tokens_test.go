package store

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

func TestTokenRepository_Consume(t *testing.T) {
	ctx := context.Background()
	tokens := newTestStore(t).Tokens()
	now := time.Now()

	require.NoError(t, tokens.Create(ctx, &model.VerificationToken{
		Identifier: "a@example.com", Token: "live", Expires: now.Add(15 * time.Minute),
	}))
	require.NoError(t, tokens.Create(ctx, &model.VerificationToken{
		Identifier: "a@example.com", Token: "stale", Expires: now.Add(-time.Minute),
	}))

	found, err := tokens.Find(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", found.Identifier)
	assert.True(t, found.Valid(now))

	require.NoError(t, tokens.Consume(ctx, "live", now))
	assert.ErrorIs(t, tokens.Consume(ctx, "live", now), ErrNotFound, "second use")

	assert.ErrorIs(t, tokens.Consume(ctx, "stale", now), ErrNotFound, "expired")
	_, err = tokens.Find(ctx, "stale")
	require.NoError(t, err, "expired token is left for the sweeper")

	assert.ErrorIs(t, tokens.Consume(ctx, "never-issued", now), ErrNotFound)
}

func TestTokenRepository_ConsumeConcurrent(t *testing.T) {
	ctx := context.Background()
	tokens := newTestStore(t).Tokens()
	now := time.Now()

	require.NoError(t, tokens.Create(ctx, &model.VerificationToken{
		Identifier: "race@example.com", Token: "once", Expires: now.Add(time.Minute),
	}))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tokens.Consume(ctx, "once", now) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestTokenRepository_DuplicateToken(t *testing.T) {
	ctx := context.Background()
	tokens := newTestStore(t).Tokens()
	vt := model.VerificationToken{Identifier: "a@example.com", Token: "same", Expires: time.Now().Add(time.Minute)}

	require.NoError(t, tokens.Create(ctx, &vt))
	dup := vt
	dup.Identifier = "b@example.com"
	assert.ErrorIs(t, tokens.Create(ctx, &dup), ErrDuplicate)
}

func TestTokenRepository_Deletes(t *testing.T) {
	ctx := context.Background()
	tokens := newTestStore(t).Tokens()
	now := time.Now()

	for _, vt := range []model.VerificationToken{
		{Identifier: "a@example.com", Token: "a1", Expires: now.Add(time.Minute)},
		{Identifier: "a@example.com", Token: "a2", Expires: now.Add(-time.Minute)},
		{Identifier: "b@example.com", Token: "b1", Expires: now.Add(-time.Hour)},
		{Identifier: "b@example.com", Token: "b2", Expires: now.Add(time.Hour)},
	} {
		vt := vt
		require.NoError(t, tokens.Create(ctx, &vt))
	}

	n, err := tokens.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = tokens.DeleteByIdentifier(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = tokens.Find(ctx, "b2")
	assert.NoError(t, err)
	_, err = tokens.Find(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokenRepository_PostgresConsume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tokens := New(db, Postgres).Tokens()
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM verification_tokens WHERE token = $1 AND expires > $2")).
		WithArgs("tok", now.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM verification_tokens WHERE token = $1 AND expires > $2")).
		WithArgs("tok", now.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, tokens.Consume(context.Background(), "tok", now))
	assert.ErrorIs(t, tokens.Consume(context.Background(), "tok", now), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
