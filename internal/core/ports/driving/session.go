package driving

import (
	"context"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// SessionService manages the signed-in account and token acquisition.
type SessionService interface {
	// CompleteRedirectIfPending resolves a redirect response, if callbackURL
	// is set, and otherwise selects a cached account. Must run before other
	// operations when the redirect flow is used.
	CompleteRedirectIfPending(ctx context.Context, callbackURL string) (*domain.Account, error)

	// ResolveActiveAccount returns the first cached account, or nil.
	ResolveActiveAccount(ctx context.Context) (*domain.Account, error)

	// ActiveAccount returns the held account, or nil.
	ActiveAccount() *domain.Account

	// SignIn starts interactive sign-in.
	// The redirect flow returns domain.ErrRedirectPending.
	SignIn(ctx context.Context, flow domain.Flow) (*domain.Account, error)

	// SignOut removes the active account.
	SignOut(ctx context.Context) error

	// AcquireToken returns a token for scopes, silently when possible.
	AcquireToken(ctx context.Context, scopes []string, flow domain.Flow) (string, error)

	// GetProfileToken returns a token for the profile endpoint.
	GetProfileToken(ctx context.Context, flow domain.Flow) (string, error)

	// GetMailToken returns a token for the mail endpoint.
	GetMailToken(ctx context.Context, flow domain.Flow) (string, error)

	// GetIDToken returns the raw ID token for the signed-in user.
	GetIDToken(ctx context.Context, flow domain.Flow) (string, error)
}

// GraphService reads the signed-in user's Graph resources.
type GraphService interface {
	// SignIn signs in with the configured flow.
	SignIn(ctx context.Context) (*domain.Account, error)

	// SignOut signs the active account out.
	SignOut(ctx context.Context) error

	// UserName returns the signed-in username, or "" when signed out.
	UserName(ctx context.Context) string

	// GetToken returns a bearer token for the profile endpoint.
	GetToken(ctx context.Context) (string, error)

	// GetProfile fetches the user's profile.
	GetProfile(ctx context.Context) (*domain.UserInfo, error)

	// GetMail fetches the user's messages.
	GetMail(ctx context.Context) (*domain.MailInfo, error)

	// Claims decodes the signed-in user's ID token.
	Claims(ctx context.Context) (*domain.IDTokenClaims, error)
}

// SettingsService manages the CLI configuration.
type SettingsService interface {
	// Get returns the current configuration with environment overrides applied.
	Get() (*domain.Config, error)

	// Set updates a single configuration key and saves the file.
	Set(key, value string) error

	// Path returns the configuration file location.
	Path() string
}
