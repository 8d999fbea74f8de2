package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables that override the configuration file.
const (
	EnvClientID    = "GRAPH_CLIENT_ID"
	EnvAuthority   = "GRAPH_AUTHORITY"
	EnvRedirectURI = "GRAPH_REDIRECT_URI"
)

// SettingsService reads and updates the configuration file.
type SettingsService struct {
	store  driven.ConfigStore
	getenv func(string) string
}

// NewSettingsService creates a SettingsService backed by store.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{
		store:  store,
		getenv: os.Getenv,
	}
}

// Get returns the stored configuration with environment overrides applied.
// It does not validate; callers constructing a session call Validate.
func (s *SettingsService) Get() (*domain.Config, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v := s.getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}
	if v := s.getenv(EnvAuthority); v != "" {
		cfg.Authority = v
	}
	if v := s.getenv(EnvRedirectURI); v != "" {
		cfg.RedirectURI = v
	}
	return cfg, nil
}

// setters maps configuration keys to their update functions.
var setters = map[string]func(cfg *domain.Config, value string) error{
	"client_id": func(cfg *domain.Config, value string) error {
		cfg.ClientID = strings.TrimSpace(value)
		return nil
	},
	"authority": func(cfg *domain.Config, value string) error {
		cfg.Authority = strings.TrimSpace(value)
		return nil
	},
	"redirect_uri": func(cfg *domain.Config, value string) error {
		cfg.RedirectURI = strings.TrimSpace(value)
		return nil
	},
	"cache_location": func(cfg *domain.Config, value string) error {
		loc := domain.CacheLocation(strings.TrimSpace(value))
		if loc != domain.CacheSession && loc != domain.CacheLocal {
			return fmt.Errorf("%w: cache_location must be %q or %q",
				domain.ErrInvalidInput, domain.CacheSession, domain.CacheLocal)
		}
		cfg.CacheLocation = loc
		return nil
	},
	"persist_across_sessions": func(cfg *domain.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: persist_across_sessions: %w", domain.ErrInvalidInput, err)
		}
		cfg.PersistAcrossSessions = b
		return nil
	},
	"prefer_redirect_flow": func(cfg *domain.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: prefer_redirect_flow: %w", domain.ErrInvalidInput, err)
		}
		cfg.PreferRedirectFlow = b
		return nil
	},
	"graph_base_url": func(cfg *domain.Config, value string) error {
		cfg.GraphBaseURL = strings.TrimSpace(value)
		return nil
	},
}

// Keys returns the configuration keys accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates one key in the stored configuration. Environment overrides
// are not written back.
func (s *SettingsService) Set(key, value string) error {
	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (valid: %s)",
			domain.ErrInvalidInput, key, strings.Join(Keys(), ", "))
	}

	cfg, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := setter(cfg, value); err != nil {
		return err
	}
	if err := s.store.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	return s.store.Path()
}
