// Package storetest opens throwaway SQLite stores for tests in other packages.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
)

// New returns a migrated in-memory store closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), store.SQLite, "file:"+uuid.NewString()+"?mode=memory", store.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
