package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
)

// Ensure RedirectStore implements the interface.
var _ driven.RedirectStateStore = (*RedirectStore)(nil)

// RedirectStore persists pending redirects so that a redirect started by one
// invocation can be completed by the next.
type RedirectStore struct {
	store *Store
}

// Save stores pending and purges entries older than domain.RedirectTTL.
func (r *RedirectStore) Save(ctx context.Context, pending domain.PendingRedirect) error {
	if pending.State == "" {
		return domain.ErrInvalidInput
	}
	cutoff := r.store.clock().Add(-domain.RedirectTTL).UnixNano()
	if _, err := r.store.db.ExecContext(ctx,
		`DELETE FROM pending_redirects WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("purge pending redirects: %w", err)
	}

	query := `
		INSERT INTO pending_redirects (state, code_verifier, redirect_uri, start_page, scopes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (state) DO UPDATE SET
			code_verifier = excluded.code_verifier,
			redirect_uri = excluded.redirect_uri,
			start_page = excluded.start_page,
			scopes = excluded.scopes,
			created_at = excluded.created_at
	`
	_, err := r.store.db.ExecContext(ctx, query,
		pending.State,
		pending.CodeVerifier,
		pending.RedirectURI,
		pending.StartPage,
		strings.Join(pending.Scopes, " "),
		pending.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save pending redirect: %w", err)
	}
	return nil
}

// Take returns and removes the pending redirect for state.
func (r *RedirectStore) Take(ctx context.Context, state string) (*domain.PendingRedirect, error) {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		pending   domain.PendingRedirect
		scopes    string
		createdAt int64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT state, code_verifier, redirect_uri, start_page, scopes, created_at
		FROM pending_redirects WHERE state = ?`, state,
	).Scan(&pending.State, &pending.CodeVerifier, &pending.RedirectURI, &pending.StartPage, &scopes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read pending redirect: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_redirects WHERE state = ?`, state); err != nil {
		return nil, fmt.Errorf("delete pending redirect: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	pending.Scopes = strings.Fields(scopes)
	pending.CreatedAt = time.Unix(0, createdAt)
	return &pending, nil
}

// Clear removes all pending redirects.
func (r *RedirectStore) Clear(ctx context.Context) error {
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM pending_redirects`); err != nil {
		return fmt.Errorf("clear pending redirects: %w", err)
	}
	return nil
}
