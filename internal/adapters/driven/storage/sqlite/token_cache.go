package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
)

// Ensure TokenCache implements the identity client's cache accessor.
var _ cache.ExportReplace = (*TokenCache)(nil)

// TokenCache stores the identity client's serialized cache as a single row.
// The identity client calls Replace before reading its cache and Export
// after writing it.
type TokenCache struct {
	store *Store
}

// Replace loads the persisted cache into the identity client.
// An empty database leaves the in-memory cache untouched.
func (c *TokenCache) Replace(ctx context.Context, u cache.Unmarshaler, _ cache.ReplaceHints) error {
	var data []byte
	err := c.store.db.QueryRowContext(ctx, `SELECT data FROM token_cache WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token cache: %w", err)
	}
	if err := u.Unmarshal(data); err != nil {
		return fmt.Errorf("decode token cache: %w", err)
	}
	return nil
}

// Export persists the identity client's cache.
func (c *TokenCache) Export(ctx context.Context, m cache.Marshaler, _ cache.ExportHints) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encode token cache: %w", err)
	}
	query := `
		INSERT INTO token_cache (id, data, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`
	if _, err := c.store.db.ExecContext(ctx, query, data, c.store.clock().UnixNano()); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}
