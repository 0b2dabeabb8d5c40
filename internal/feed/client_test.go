package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namgaylhamo24/quick-post-02240350/internal/apperr"
)

const sampleFeed = `[
  {
    "id": 1234567,
    "title": "Getting Started with Go",
    "description": "First steps",
    "url": "https://dev.to/x/getting-started",
    "published_at": "2024-01-15T10:30:00Z",
    "tag_list": ["go", "beginners"],
    "cover_image": null,
    "user": {"name": "Gopher", "username": "gopher", "profile_image": "https://img/g.png"},
    "reading_time_minutes": 4
  }
]`

func TestQuery_Normalize(t *testing.T) {
	q, err := Query{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Query{PerPage: 20, Page: 1}, q)

	_, err = Query{PerPage: 1001}.Normalize()
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	_, err = Query{PerPage: -1}.Normalize()
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	_, err = Query{Page: -2}.Normalize()
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "go", r.URL.Query().Get("tag"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	articles, err := c.Articles(context.Background(), Query{PerPage: 5, Page: 2, Tag: " go "})
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, int64(1234567), a.ID)
	assert.Equal(t, []string{"go", "beginners"}, a.TagList)
	assert.Nil(t, a.CoverImage)
	assert.Equal(t, "gopher", a.User.Username)
}

func TestArticles_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not": "a list"`))
		}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`[]`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
			_, err := c.Articles(context.Background(), Query{})
			assert.ErrorIs(t, err, apperr.ErrUpstream)
			assert.Equal(t, "Failed to fetch articles", apperr.PublicMessage(err))
		})
	}
}

func TestArticles_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: url}).Articles(context.Background(), Query{})
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}
