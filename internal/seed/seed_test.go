package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namgaylhamo24/quick-post-02240350/internal/store/storetest"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	assert.Len(t, d.Users, 5)
	assert.Len(t, d.Bookmarks, 8)
	assert.Equal(t, []string{"react", "javascript", "hooks", "frontend"}, d.Bookmarks[0].Tags)
	assert.Equal(t, 2024, d.Bookmarks[0].PublishedAt.Year())
}

func TestLoad_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	d, err := Default()
	require.NoError(t, err)

	res, err := Load(ctx, st, d)
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 5, Bookmarks: 8}, res)

	res, err = Load(ctx, st, d)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	jigme, err := st.Users().FindByEmail(ctx, "jigme.dorji@example.com")
	require.NoError(t, err)
	assert.NotNil(t, jigme.EmailVerified)

	list, err := st.Bookmarks().ListByUser(ctx, jigme.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "4567890", list[0].ArticleID)

	david, err := st.Users().FindByEmail(ctx, "david.brown@example.com")
	require.NoError(t, err)
	assert.Nil(t, david.EmailVerified)
	assert.Nil(t, david.Image)
}

func TestLoad_UnknownOwner(t *testing.T) {
	d, err := Parse([]byte(`
bookmarks:
  - owner: nobody@example.com
    article_id: "1"
    title: t
    url: https://x
    published_at: 2024-01-01T00:00:00Z
    author: a
`))
	require.NoError(t, err)

	_, err = Load(context.Background(), storetest.New(t), d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown owner")
}
