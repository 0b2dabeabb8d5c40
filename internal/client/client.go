// Package client talks to the quickpost API and keeps the signed-in
// credential on disk.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/namgaylhamo24/quick-post-02240350/internal/model"
)

const DefaultServerURL = "http://localhost:3001"

// ErrNotLoggedIn is returned by calls that need a credential when none is stored.
var ErrNotLoggedIn = errors.New("not logged in, run 'quickpost auth login --email <address>'")

// Config is the persisted client state
type Config struct {
	ServerURL string    `json:"server_url"`
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	parts := make([]string, 0, len(e.Details))
	for field, msg := range e.Details {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, ", "))
}

// Client is the API client
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
}

// NewClient creates a client using ~/.quickpost/client.json
func NewClient() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewClientAt(filepath.Join(home, ".quickpost", "client.json"))
}

// NewClientAt creates a client persisting its state at path
func NewClientAt(path string) (*Client, error) {
	c := &Client{
		configPath: path,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := c.loadConfig(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) loadConfig() error {
	c.config = &Config{ServerURL: DefaultServerURL}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", c.configPath, err)
	}
	if err := json.Unmarshal(data, c.config); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.configPath, err)
	}
	return nil
}

func (c *Client) saveConfig() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the API base URL
func (c *Client) SetServer(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", rawURL)
	}
	c.config.ServerURL = strings.TrimRight(rawURL, "/")
	return c.saveConfig()
}

// IsLoggedIn reports whether an unexpired credential is stored
func (c *Client) IsLoggedIn() bool {
	if c.config.Token == "" {
		return false
	}
	return c.config.ExpiresAt.IsZero() || time.Now().Before(c.config.ExpiresAt)
}

// Status returns a copy of the persisted state
func (c *Client) Status() Config {
	return *c.config
}

// Logout forgets the stored credential
func (c *Client) Logout() error {
	c.config.Token = ""
	c.config.UserID = ""
	c.config.Email = ""
	c.config.ExpiresAt = time.Time{}
	return c.saveConfig()
}

// RequestMagicLink asks the server to email a sign-in link
func (c *Client) RequestMagicLink(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/magic-link", map[string]string{"email": email}, nil, false)
}

// VerifyResult is the server's answer to a verify call
type VerifyResult struct {
	User        model.PublicUser `json:"user"`
	AccessToken string           `json:"accessToken"`
	ExpiresAt   time.Time        `json:"expiresAt"`
}

// VerifyMagicLink redeems token and stores the returned access credential
func (c *Client) VerifyMagicLink(ctx context.Context, token string) (*VerifyResult, error) {
	var res VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/verify", map[string]string{"token": token}, &res, false); err != nil {
		return nil, err
	}

	c.config.Token = res.AccessToken
	c.config.UserID = res.User.ID
	c.config.Email = res.User.Email
	c.config.ExpiresAt = res.ExpiresAt
	if err := c.saveConfig(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me fetches the signed-in profile
func (c *Client) Me(ctx context.Context) (*model.PublicUser, error) {
	var u model.PublicUser
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u, true); err != nil {
		return nil, err
	}
	return &u, nil
}

// ArticleQuery selects a feed page. Zero values use the server defaults.
type ArticleQuery struct {
	Tag     string
	Page    int
	PerPage int
}

// Articles fetches a page of the feed
func (c *Client) Articles(ctx context.Context, q ArticleQuery) ([]model.Article, error) {
	params := url.Values{}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
	}

	path := "/api/articles"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []model.Article
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

// Bookmarks lists the user's bookmarks
func (c *Client) Bookmarks(ctx context.Context) ([]model.Bookmark, error) {
	var out []model.Bookmark
	if err := c.do(ctx, http.MethodGet, "/api/bookmarks", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// NewBookmark is the payload of AddBookmark
type NewBookmark struct {
	ArticleID   int64    `json:"articleId"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	Tags        []string `json:"tags"`
	CoverImage  *string  `json:"coverImage"`
	Author      string   `json:"author"`
}

// BookmarkFromArticle builds a bookmark payload from a feed entry
func BookmarkFromArticle(a model.Article) NewBookmark {
	b := NewBookmark{
		ArticleID:   a.ID,
		Title:       a.Title,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		Tags:        a.TagList,
		CoverImage:  a.CoverImage,
		Author:      a.User.Name,
	}
	if a.Description != "" {
		d := a.Description
		b.Description = &d
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b
}

// AddBookmark saves an article
func (c *Client) AddBookmark(ctx context.Context, b NewBookmark) (*model.Bookmark, error) {
	var out model.Bookmark
	if err := c.do(ctx, http.MethodPost, "/api/bookmarks", b, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveBookmark deletes the bookmark for articleID
func (c *Client) RemoveBookmark(ctx context.Context, articleID string) error {
	return c.do(ctx, http.MethodDelete, "/api/bookmarks/"+url.PathEscape(articleID), nil, nil, true)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	if authed && !c.IsLoggedIn() {
		return ErrNotLoggedIn
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.ServerURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if err := json.Unmarshal(respBody, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		var fields map[string]string
		if json.Unmarshal(payload.Details, &fields) == nil {
			apiErr.Details = fields
		}
	}
	return apiErr
}
