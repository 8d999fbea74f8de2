package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

func TestConfigStore_LoadMissingReturnsDefaults(t *testing.T) {
	store := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))

	cfg, err := store.Load()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestConfigStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	store := NewConfigStore(path)
	cfg := domain.DefaultConfig()
	cfg.ClientID = "11111111-2222-3333-4444-555555555555"
	cfg.CacheLocation = domain.CacheSession
	cfg.PreferRedirectFlow = true

	require.NoError(t, store.Save(cfg))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, path, store.Path())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`client_id = "abc"`+"\n"), 0o600))

	cfg, err := NewConfigStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.ClientID)
	assert.Equal(t, domain.DefaultAuthority, cfg.Authority)
	assert.Equal(t, domain.CacheLocal, cfg.CacheLocation)
	assert.True(t, cfg.PersistAcrossSessions)
}

func TestConfigStore_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("client_id = [unterminated"), 0o600))

	cfg, err := NewConfigStore(path).Load()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
