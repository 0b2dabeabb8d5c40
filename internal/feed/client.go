// Package feed fetches articles from the upstream dev.to style JSON feed.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/metrics"
	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

const (
	DefaultBaseURL   = "https://dev.to/api/articles"
	DefaultUserAgent = "Quick-Post-Aggregator/1.0"
	DefaultPerPage   = 20
	MaxPerPage       = 1000
)

// Query selects a page of the feed
type Query struct {
	PerPage int
	Page    int
	Tag     string
}

// Normalize applies defaults and rejects out of range values.
func (q Query) Normalize() (Query, error) {
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > MaxPerPage {
		return q, apperr.Validationf("per_page must be between 1 and %d", MaxPerPage)
	}
	if q.Page < 1 {
		return q, apperr.Validationf("page must be at least 1")
	}
	q.Tag = strings.TrimSpace(q.Tag)
	return q, nil
}

// Config for the client
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client calls the upstream feed
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Articles returns one page of the feed. Any upstream problem is reported as
// ErrUpstream and the detail is only logged.
func (c *Client) Articles(ctx context.Context, q Query) ([]model.Article, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	params := u.Query()
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", strconv.Itoa(q.Page))
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	u.RawQuery = params.Encode()

	articles, err := c.fetch(ctx, u.String())
	if err != nil {
		metrics.RecordFeed("error")
		logger.Error("Failed to fetch articles",
			logger.F("url", u.String()),
			logger.F("error", err))
		return nil, apperr.Wrap(apperr.ErrUpstream, err)
	}

	metrics.RecordFeed("ok")
	return articles, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	articles := make([]model.Article, 0)
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return articles, nil
}
