// Package store persists users, verification tokens and bookmarks in PostgreSQL
// (lib/pq) or SQLite (modernc.org/sqlite). Queries are built with squirrel so the
// same repositories serve both dialects.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store/migrations"
)

// Dialect names a supported database
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) builder() sq.StatementBuilderType {
	if d == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// Queries groups the repositories bound to one connection or transaction
type Queries struct {
	db DBTX
	sb sq.StatementBuilderType
}

func (q *Queries) Users() *UserRepository {
	return &UserRepository{db: q.db, sb: q.sb}
}

func (q *Queries) Tokens() *TokenRepository {
	return &TokenRepository{db: q.db, sb: q.sb}
}

func (q *Queries) Bookmarks() *BookmarkRepository {
	return &BookmarkRepository{db: q.db, sb: q.sb}
}

// Store owns the connection pool
type Store struct {
	*Queries
	db      *sql.DB
	dialect Dialect
}

// Options tune the connection pool
type Options struct {
	MaxOpenConns int
}

// Open connects to the database, verifies the connection and runs migrations
func Open(ctx context.Context, dialect Dialect, dsn string, opts Options) (*Store, error) {
	driver := string(dialect)
	switch dialect {
	case Postgres:
	case SQLite:
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// a single writer avoids SQLITE_BUSY and keeps :memory: databases on one connection
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := New(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// New wraps an existing pool without running migrations
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		Queries: &Queries{db: db, sb: dialect.builder()},
		db:      db,
		dialect: dialect,
	}
}

// sqliteDSN enables foreign keys, a busy timeout and a sortable time format.
func sqliteDSN(dsn string) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)", "_time_format=sqlite"}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Migrate applies pending goose migrations for the store's dialect
func (s *Store) Migrate(ctx context.Context) error {
	dir, gooseDialect := "postgres", goose.DialectPostgres
	if s.dialect == SQLite {
		dir, gooseDialect = "sqlite", goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(gooseDialect, s.db, fsys)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		logger.Info("Migration applied",
			logger.F("version", r.Source.Version),
			logger.F("duration", r.Duration.String()))
	}
	return nil
}

// WithTx runs fn with repositories bound to a single transaction
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	return withTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		return fn(&Queries{db: tx, sb: s.Queries.sb})
	})
}

// Ping checks the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Dialect returns the database flavour
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// utc normalises timestamps before they are written so SQLite text values sort correctly.
func utc(t time.Time) time.Time {
	return t.UTC()
}
