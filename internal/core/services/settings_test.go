package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

func newTestSettings(store *mockConfigStore, env map[string]string) *SettingsService {
	svc := NewSettingsService(store)
	svc.getenv = func(key string) string { return env[key] }
	return svc
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := newTestSettings(&mockConfigStore{}, nil)

	cfg, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestSettingsService_GetEnvOverrides(t *testing.T) {
	store := &mockConfigStore{cfg: &domain.Config{ClientID: "file-id", Authority: domain.DefaultAuthority}}
	svc := newTestSettings(store, map[string]string{
		EnvClientID:    "env-id",
		EnvRedirectURI: "http://localhost:8400",
	})

	cfg, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, "env-id", cfg.ClientID)
	assert.Equal(t, domain.DefaultAuthority, cfg.Authority)
	assert.Equal(t, "http://localhost:8400", cfg.RedirectURI)
}

func TestSettingsService_GetLoadError(t *testing.T) {
	svc := newTestSettings(&mockConfigStore{loadErr: errors.New("bad toml")}, nil)

	cfg, err := svc.Get()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, cfg *domain.Config)
	}{
		{"client id", "client_id", " abc ", func(t *testing.T, cfg *domain.Config) {
			assert.Equal(t, "abc", cfg.ClientID)
		}},
		{"authority", "authority", "https://login.microsoftonline.com/contoso", func(t *testing.T, cfg *domain.Config) {
			assert.Equal(t, "https://login.microsoftonline.com/contoso", cfg.Authority)
		}},
		{"cache location", "cache_location", "session", func(t *testing.T, cfg *domain.Config) {
			assert.Equal(t, domain.CacheSession, cfg.CacheLocation)
		}},
		{"persist", "persist_across_sessions", "false", func(t *testing.T, cfg *domain.Config) {
			assert.False(t, cfg.PersistAcrossSessions)
		}},
		{"prefer redirect", "prefer_redirect_flow", "true", func(t *testing.T, cfg *domain.Config) {
			assert.True(t, cfg.PreferRedirectFlow)
			assert.Equal(t, domain.FlowRedirect, cfg.Flow())
		}},
		{"graph base url", "graph_base_url", "https://graph.microsoft.com/beta", func(t *testing.T, cfg *domain.Config) {
			assert.Equal(t, "https://graph.microsoft.com/beta", cfg.GraphBaseURL)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockConfigStore{}
			svc := newTestSettings(store, nil)

			err := svc.Set(tt.key, tt.value)

			require.NoError(t, err)
			require.NotNil(t, store.saved)
			tt.check(t, store.saved)
		})
	}
}

func TestSettingsService_SetInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "tenant", "x"},
		{"bad cache location", "cache_location", "cookie"},
		{"bad bool", "persist_across_sessions", "maybe"},
		{"bad flow bool", "prefer_redirect_flow", "popup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockConfigStore{}
			svc := newTestSettings(store, nil)

			err := svc.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, store.saved)
		})
	}
}

func TestSettingsService_SetDoesNotPersistEnv(t *testing.T) {
	store := &mockConfigStore{cfg: &domain.Config{ClientID: "file-id"}}
	svc := newTestSettings(store, map[string]string{EnvClientID: "env-id"})

	require.NoError(t, svc.Set("authority", "https://login.microsoftonline.com/contoso"))

	assert.Equal(t, "file-id", store.saved.ClientID)
}

func TestSettingsService_SetSaveError(t *testing.T) {
	svc := newTestSettings(&mockConfigStore{saveErr: errors.New("read-only")}, nil)

	err := svc.Set("client_id", "abc")

	assert.Error(t, err)
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, "client_id")
	assert.Len(t, keys, 7)
}

func TestSettingsService_Path(t *testing.T) {
	svc := newTestSettings(&mockConfigStore{}, nil)
	assert.Equal(t, "/tmp/graph/config.toml", svc.Path())
}
