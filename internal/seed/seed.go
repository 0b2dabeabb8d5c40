// Package seed loads sample users and bookmarks for local development.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
)

//go:embed data.yaml
var defaultData []byte

// Data is the seed document
type Data struct {
	Users     []User     `yaml:"users"`
	Bookmarks []Bookmark `yaml:"bookmarks"`
}

type User struct {
	Email    string  `yaml:"email"`
	Name     *string `yaml:"name"`
	Image    *string `yaml:"image"`
	Verified bool    `yaml:"verified"`
}

type Bookmark struct {
	Owner       string    `yaml:"owner"`
	ArticleID   string    `yaml:"article_id"`
	Title       string    `yaml:"title"`
	Description *string   `yaml:"description"`
	URL         string    `yaml:"url"`
	PublishedAt time.Time `yaml:"published_at"`
	Tags        []string  `yaml:"tags"`
	CoverImage  *string   `yaml:"cover_image"`
	Author      string    `yaml:"author"`
}

// Result counts what was inserted
type Result struct {
	Users     int
	Bookmarks int
}

// Default returns the bundled sample data
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Parse decodes a YAML seed document
func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &d, nil
}

// Load inserts d into st. Existing users and bookmarks are left untouched, so
// running it twice is harmless. Rows are written one statement at a time since a
// unique violation aborts an enclosing PostgreSQL transaction.
func Load(ctx context.Context, st *store.Store, d *Data) (Result, error) {
	var res Result
	now := time.Now()
	q := st.Queries

	err := func() error {
		ids := make(map[string]string, len(d.Users))

		for _, su := range d.Users {
			u, err := q.Users().FindByEmail(ctx, su.Email)
			if errors.Is(err, store.ErrNotFound) {
				u = &model.User{Email: su.Email, Name: su.Name, Image: su.Image, CreatedAt: now, UpdatedAt: now}
				if su.Verified {
					u.EmailVerified = &now
				}
				if err := q.Users().Create(ctx, u); err != nil {
					return fmt.Errorf("create user %s: %w", su.Email, err)
				}
				res.Users++
			} else if err != nil {
				return err
			}
			ids[su.Email] = u.ID
		}

		for i, sb := range d.Bookmarks {
			userID, ok := ids[sb.Owner]
			if !ok {
				return fmt.Errorf("bookmark %s: unknown owner %s", sb.ArticleID, sb.Owner)
			}
			b := &model.Bookmark{
				UserID:      userID,
				ArticleID:   sb.ArticleID,
				Title:       sb.Title,
				Description: sb.Description,
				URL:         sb.URL,
				PublishedAt: sb.PublishedAt,
				Tags:        sb.Tags,
				CoverImage:  sb.CoverImage,
				Author:      sb.Author,
				// spread creation times so listing order is stable
				CreatedAt: now.Add(time.Duration(i) * time.Second),
			}
			err := q.Bookmarks().Create(ctx, b)
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			if err != nil {
				return fmt.Errorf("create bookmark %s: %w", sb.ArticleID, err)
			}
			res.Bookmarks++
		}
		return nil
	}()
	if err != nil {
		return Result{}, err
	}

	logger.Info("Seed data loaded",
		logger.F("users", res.Users),
		logger.F("bookmarks", res.Bookmarks))
	return res, nil
}
