// Package bookmarks manages the articles a user has saved.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
	"github.com/namgaylhamo24/quick-post-02240350/internal/validate"
)

// Repository is the persistence the service needs
type Repository interface {
	Create(ctx context.Context, b *model.Bookmark) error
	ListByUser(ctx context.Context, userID string) ([]model.Bookmark, error)
	Delete(ctx context.Context, userID, articleID string) error
}

// CreateInput is the body of a create request. articleId accepts a JSON
// number or a numeric string.
type CreateInput struct {
	ArticleID   json.Number `json:"articleId" validate:"required"`
	Title       string      `json:"title" validate:"required,max=500"`
	Description *string     `json:"description"`
	URL         string      `json:"url" validate:"required,url"`
	PublishedAt string      `json:"publishedAt" validate:"required,rfc3339"`
	Tags        []string    `json:"tags" validate:"max=50,dive,max=100"`
	CoverImage  *string     `json:"coverImage" validate:"omitempty,url"`
	Author      string      `json:"author" validate:"required,max=200"`
}

type Service struct {
	repo     Repository
	validate *validate.Validator
	policy   *bluemonday.Policy
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validate.New(),
		policy:   bluemonday.StrictPolicy(),
		now:      time.Now,
	}
}

// WithClock sets the time source used for created_at
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// List returns the user's bookmarks, newest first. No bookmarks is an empty slice.
func (s *Service) List(ctx context.Context, userID string) ([]model.Bookmark, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return list, nil
}

// Create saves an article for the user. Saving the same article twice yields
// ErrDuplicateBookmark.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Bookmark, error) {
	if in.CoverImage != nil && strings.TrimSpace(*in.CoverImage) == "" {
		in.CoverImage = nil
	}
	// sanitised before validation so markup-only text counts as missing
	in.Title = s.clean(in.Title)
	in.Author = s.clean(in.Author)
	if err := s.validate.Struct("Invalid request data", in); err != nil {
		return nil, err
	}

	articleID, err := normalizeArticleID(in.ArticleID)
	if err != nil {
		return nil, apperr.Invalid("Invalid request data", map[string]string{"articleId": err.Error()})
	}
	published, err := time.Parse(time.RFC3339, in.PublishedAt)
	if err != nil {
		return nil, apperr.Invalid("Invalid request data", map[string]string{"publishedAt": "publishedAt must be an RFC 3339 timestamp"})
	}

	b := &model.Bookmark{
		UserID:      userID,
		ArticleID:   articleID,
		Title:       in.Title,
		URL:         in.URL,
		PublishedAt: published,
		Tags:        make([]string, 0, len(in.Tags)),
		CoverImage:  in.CoverImage,
		Author:      in.Author,
		CreatedAt:   s.now(),
	}
	if in.Description != nil {
		d := s.clean(*in.Description)
		b.Description = &d
	}
	for _, tag := range in.Tags {
		if tag = s.clean(tag); tag != "" {
			b.Tags = append(b.Tags, tag)
		}
	}

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Wrap(apperr.ErrDuplicateBookmark, err)
		}
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	return b, nil
}

// Delete removes the user's bookmark for articleID. articleID is normalised
// like on create, so "042" matches "42". Bookmarks owned by other users and
// ids that cannot exist are reported as not found.
func (s *Service) Delete(ctx context.Context, userID, articleID string) error {
	id, err := normalizeArticleID(json.Number(strings.TrimSpace(articleID)))
	if err != nil {
		return apperr.Wrap(apperr.ErrBookmarkNotFound, err)
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Wrap(apperr.ErrBookmarkNotFound, err)
		}
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// clean strips markup and surrounding whitespace from user supplied text.
func (s *Service) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func normalizeArticleID(n json.Number) (string, error) {
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || id < 0 {
		return "", errors.New("articleId must be a non-negative integer")
	}
	return strconv.FormatInt(id, 10), nil
}
