package driven

import (
	"context"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// IdentityClient is the identity provider client used by the session.
// Token issuance, caching and refresh are its responsibility.
type IdentityClient interface {
	// Accounts returns the accounts present in the token cache.
	Accounts(ctx context.Context) ([]domain.Account, error)

	// AcquireTokenSilent returns a token from the cache or by refresh.
	// Returns an error matching domain.ErrInteractionRequired when the user
	// must interact; any other error is a hard failure.
	AcquireTokenSilent(ctx context.Context, req domain.TokenRequest) (*domain.AuthResult, error)

	// AcquireTokenInteractive prompts the user in the system browser and
	// blocks until the result is available.
	AcquireTokenInteractive(ctx context.Context, req domain.TokenRequest) (*domain.AuthResult, error)

	// BeginRedirect records the state for a redirect flow and returns the
	// authorization URL the browser should navigate to.
	BeginRedirect(ctx context.Context, req domain.TokenRequest) (string, error)

	// CompleteRedirect resolves the URL the browser was redirected to.
	// Returns nil, nil when callbackURL is empty.
	CompleteRedirect(ctx context.Context, callbackURL string) (*domain.AuthResult, error)

	// RemoveAccount signs the account out of the token cache.
	RemoveAccount(ctx context.Context, account domain.Account) error
}

// Navigator sends the user's browser to a URL.
type Navigator interface {
	Open(url string) error
}
