package driven

import (
	"context"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// RedirectStateStore holds pending redirect requests between the two phases
// of a redirect flow.
type RedirectStateStore interface {
	// Save stores a pending redirect keyed by its state.
	Save(ctx context.Context, pending domain.PendingRedirect) error

	// Take returns and removes the pending redirect for state.
	// Returns domain.ErrNotFound when no such state exists.
	Take(ctx context.Context, state string) (*domain.PendingRedirect, error)

	// Clear removes all pending redirects.
	Clear(ctx context.Context) error
}

// ConfigStore loads and saves the CLI configuration.
type ConfigStore interface {
	Load() (*domain.Config, error)
	Save(cfg *domain.Config) error
	Path() string
}
