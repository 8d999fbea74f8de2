package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// fakeCache stands in for the identity client's serializer.
type fakeCache struct {
	data []byte
}

func (f *fakeCache) Marshal() ([]byte, error) {
	return f.data, nil
}

func (f *fakeCache) Unmarshal(b []byte) error {
	f.data = append([]byte(nil), b...)
	return nil
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "graph.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTokenCache_ReplaceEmpty(t *testing.T) {
	store := openTestStore(t)
	target := &fakeCache{data: []byte("untouched")}

	err := store.TokenCache().Replace(context.Background(), target, cache.ReplaceHints{})

	require.NoError(t, err)
	assert.Equal(t, []byte("untouched"), target.data)
}

func TestTokenCache_ExportThenReplace(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	tc := store.TokenCache()

	require.NoError(t, tc.Export(ctx, &fakeCache{data: []byte(`{"v":1}`)}, cache.ExportHints{}))
	require.NoError(t, tc.Export(ctx, &fakeCache{data: []byte(`{"v":2}`)}, cache.ExportHints{}))

	target := &fakeCache{}
	require.NoError(t, tc.Replace(ctx, target, cache.ReplaceHints{}))
	assert.Equal(t, []byte(`{"v":2}`), target.data)
}

func TestTokenCache_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.TokenCache().Export(ctx, &fakeCache{data: []byte("cached")}, cache.ExportHints{}))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	target := &fakeCache{}
	require.NoError(t, second.TokenCache().Replace(ctx, target, cache.ReplaceHints{}))
	assert.Equal(t, []byte("cached"), target.data)
	assert.Equal(t, path, second.Path())
}

func TestRedirectStore_SaveTake(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	redirects := store.RedirectStore()
	created := time.Unix(1700000000, 123).UTC()
	pending := domain.PendingRedirect{
		State:        "state-1",
		CodeVerifier: "verifier",
		RedirectURI:  "http://localhost",
		StartPage:    "http://localhost/done",
		Scopes:       []string{"User.Read", "Mail.Read"},
		CreatedAt:    created,
	}

	require.NoError(t, redirects.Save(ctx, pending))

	got, err := redirects.Take(ctx, "state-1")
	require.NoError(t, err)
	assert.Equal(t, pending.State, got.State)
	assert.Equal(t, pending.CodeVerifier, got.CodeVerifier)
	assert.Equal(t, pending.RedirectURI, got.RedirectURI)
	assert.Equal(t, pending.StartPage, got.StartPage)
	assert.Equal(t, pending.Scopes, got.Scopes)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = redirects.Take(ctx, "state-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedirectStore_SavePurgesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	store := openTestStore(t, WithClock(func() time.Time { return now }))
	redirects := store.RedirectStore()

	require.NoError(t, redirects.Save(ctx, domain.PendingRedirect{
		State:     "old",
		CreatedAt: now.Add(-domain.RedirectTTL - time.Minute),
	}))
	require.NoError(t, redirects.Save(ctx, domain.PendingRedirect{State: "new", CreatedAt: now}))

	_, err := redirects.Take(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = redirects.Take(ctx, "new")
	assert.NoError(t, err)
}

func TestRedirectStore_Clear(t *testing.T) {
	ctx := context.Background()
	redirects := openTestStore(t).RedirectStore()
	require.NoError(t, redirects.Save(ctx, domain.PendingRedirect{State: "a", CreatedAt: time.Now()}))

	require.NoError(t, redirects.Clear(ctx))

	_, err := redirects.Take(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedirectStore_SaveRequiresState(t *testing.T) {
	err := openTestStore(t).RedirectStore().Save(context.Background(), domain.PendingRedirect{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
