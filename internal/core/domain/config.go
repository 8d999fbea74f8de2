package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// CacheLocation selects where the identity client keeps its token cache.
type CacheLocation string

const (
	// CacheSession keeps tokens in process memory only.
	CacheSession CacheLocation = "session"
	// CacheLocal persists tokens in the local data store.
	CacheLocal CacheLocation = "local"
)

// DefaultAuthority is the multi-tenant Microsoft identity platform authority.
const DefaultAuthority = "https://login.microsoftonline.com/common"

// DefaultRedirectURI is a loopback address accepted by public clients.
const DefaultRedirectURI = "http://localhost"

// Config holds the settings consumed when the session is constructed.
type Config struct {
	ClientID              string        `toml:"client_id"`
	Authority             string        `toml:"authority"`
	RedirectURI           string        `toml:"redirect_uri"`
	CacheLocation         CacheLocation `toml:"cache_location"`
	PersistAcrossSessions bool          `toml:"persist_across_sessions"`
	PreferRedirectFlow    bool          `toml:"prefer_redirect_flow"`
	GraphBaseURL          string        `toml:"graph_base_url,omitempty"`
}

// DefaultConfig returns the default configuration. ClientID must be set by
// the user before signing in.
func DefaultConfig() *Config {
	return &Config{
		Authority:             DefaultAuthority,
		RedirectURI:           DefaultRedirectURI,
		CacheLocation:         CacheLocal,
		PersistAcrossSessions: true,
		GraphBaseURL:          DefaultGraphBaseURL,
	}
}

// Validate checks the settings required to construct the identity client.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" {
		return fmt.Errorf("%w: client_id is required", ErrConfiguration)
	}
	if strings.TrimSpace(c.Authority) == "" {
		return fmt.Errorf("%w: authority is required", ErrConfiguration)
	}
	u, err := url.Parse(c.Authority)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: authority must be an https URL: %q", ErrConfiguration, c.Authority)
	}
	if c.RedirectURI != "" {
		if _, err := url.Parse(c.RedirectURI); err != nil {
			return fmt.Errorf("%w: redirect_uri: %w", ErrConfiguration, err)
		}
	}
	switch c.CacheLocation {
	case CacheSession, CacheLocal:
	default:
		return fmt.Errorf("%w: cache_location must be %q or %q", ErrConfiguration, CacheSession, CacheLocal)
	}
	return nil
}

// Flow returns the interactive flow selected by the configuration.
func (c *Config) Flow() Flow {
	return FlowFor(c.PreferRedirectFlow)
}

// Endpoints returns the Graph endpoints derived from GraphBaseURL.
func (c *Config) Endpoints() Endpoints {
	return NewEndpoints(c.GraphBaseURL)
}
