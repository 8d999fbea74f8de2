// Package memory provides in-process stores used when nothing should outlive
// the current run.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
)

// Ensure RedirectStore implements the interface.
var _ driven.RedirectStateStore = (*RedirectStore)(nil)

// RedirectStore keeps pending redirects in memory.
type RedirectStore struct {
	mu      sync.Mutex
	pending map[string]domain.PendingRedirect
}

// NewRedirectStore creates an empty store.
func NewRedirectStore() *RedirectStore {
	return &RedirectStore{pending: make(map[string]domain.PendingRedirect)}
}

// Save stores pending under its state, replacing any previous entry.
func (s *RedirectStore) Save(_ context.Context, pending domain.PendingRedirect) error {
	if pending.State == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pending.Scopes = append([]string(nil), pending.Scopes...)
	s.pending[pending.State] = pending
	return nil
}

// Take returns and removes the pending redirect for state.
func (s *RedirectStore) Take(_ context.Context, state string) (*domain.PendingRedirect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.pending[state]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.pending, state)
	return &pending, nil
}

// Clear removes every pending redirect.
func (s *RedirectStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.pending)
	return nil
}
