// Package msal adapts the Microsoft Authentication Library public client to
// the driven.IdentityClient port.
package msal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/cache"
	"github.com/AzureAD/microsoft-authentication-library-for-go/apps/public"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.IdentityClient = (*Client)(nil)

// publicClient is the subset of public.Client used by this adapter.
type publicClient interface {
	Accounts(ctx context.Context) ([]public.Account, error)
	AcquireTokenSilent(
		ctx context.Context, scopes []string, opts ...public.AcquireSilentOption,
	) (public.AuthResult, error)
	AcquireTokenInteractive(
		ctx context.Context, scopes []string, opts ...public.AcquireInteractiveOption,
	) (public.AuthResult, error)
	AuthCodeURL(
		ctx context.Context, clientID, redirectURI string, scopes []string, opts ...public.AuthCodeURLOption,
	) (string, error)
	AcquireTokenByAuthCode(
		ctx context.Context, code, redirectURI string, scopes []string, opts ...public.AcquireByAuthCodeOption,
	) (public.AuthResult, error)
	RemoveAccount(ctx context.Context, account public.Account) error
}

// Options configures the identity client.
type Options struct {
	ClientID    string
	Authority   string
	RedirectURI string

	// Cache persists the token cache. Nil keeps it in memory.
	Cache cache.ExportReplace

	// Redirects holds pending redirect requests. Required for the redirect flow.
	Redirects driven.RedirectStateStore

	// Navigator opens the browser for the popup flow. Nil uses the
	// library's default browser launcher.
	Navigator driven.Navigator

	// HTTPClient overrides the client used to reach the authority.
	HTTPClient *http.Client
}

// Client is a driven.IdentityClient backed by an MSAL public client.
type Client struct {
	app         publicClient
	clientID    string
	redirectURI string
	redirects   driven.RedirectStateStore
	navigator   driven.Navigator
	now         func() time.Time
}

// New constructs the identity client. Failures are reported as
// domain.ErrConfiguration.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", domain.ErrConfiguration)
	}

	appOpts := []public.Option{}
	if opts.Authority != "" {
		appOpts = append(appOpts, public.WithAuthority(opts.Authority))
	}
	if opts.Cache != nil {
		appOpts = append(appOpts, public.WithCache(opts.Cache))
	}
	if opts.HTTPClient != nil {
		appOpts = append(appOpts, public.WithHTTPClient(opts.HTTPClient))
	}

	app, err := public.New(opts.ClientID, appOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}
	return newClient(app, opts), nil
}

func newClient(app publicClient, opts Options) *Client {
	redirectURI := opts.RedirectURI
	if redirectURI == "" {
		redirectURI = domain.DefaultRedirectURI
	}
	return &Client{
		app:         app,
		clientID:    opts.ClientID,
		redirectURI: redirectURI,
		redirects:   opts.Redirects,
		navigator:   opts.Navigator,
		now:         time.Now,
	}
}

// Accounts lists the accounts in the token cache.
func (c *Client) Accounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := c.app.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccount(a))
	}
	return out, nil
}

// AcquireTokenSilent returns a cached or refreshed token for the request's
// account. Failures that need the user are reported as
// domain.ErrInteractionRequired.
func (c *Client) AcquireTokenSilent(ctx context.Context, req domain.TokenRequest) (*domain.AuthResult, error) {
	if req.Account() == nil {
		return nil, fmt.Errorf("%w: no account", domain.ErrInteractionRequired)
	}
	account, err := c.lookup(ctx, *req.Account())
	if err != nil {
		if errors.Is(err, domain.ErrNoAccount) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInteractionRequired, err)
		}
		return nil, err
	}

	result, err := c.app.AcquireTokenSilent(ctx, req.Scopes(), public.WithSilentAccount(account))
	if err != nil {
		return nil, classifySilent(err)
	}
	return toResult(result), nil
}

// AcquireTokenInteractive opens the system browser and waits for the user
// on a loopback listener.
func (c *Client) AcquireTokenInteractive(ctx context.Context, req domain.TokenRequest) (*domain.AuthResult, error) {
	opts := []public.AcquireInteractiveOption{public.WithRedirectURI(c.redirectURI)}
	if c.navigator != nil {
		opts = append(opts, public.WithOpenURL(c.navigator.Open))
	}
	if account := req.Account(); account != nil && account.Username != "" {
		opts = append(opts, public.WithLoginHint(account.Username))
	}

	result, err := c.app.AcquireTokenInteractive(ctx, req.Scopes(), opts...)
	if err != nil {
		return nil, err
	}
	return toResult(result), nil
}

// BeginRedirect records a pending redirect and returns the authorization URL.
// The URL carries a random state and a PKCE challenge; the verifier stays in
// the redirect store.
func (c *Client) BeginRedirect(ctx context.Context, req domain.TokenRequest) (string, error) {
	if c.redirects == nil {
		return "", fmt.Errorf("%w: redirect flow needs a redirect store", domain.ErrConfiguration)
	}

	pending := domain.PendingRedirect{
		State:        uuid.NewString(),
		CodeVerifier: oauth2.GenerateVerifier(),
		RedirectURI:  c.redirectURI,
		StartPage:    req.RedirectStartPage(),
		Scopes:       req.Scopes(),
		CreatedAt:    c.now(),
	}

	var opts []public.AuthCodeURLOption
	if account := req.Account(); account != nil && account.Username != "" {
		opts = append(opts, public.WithLoginHint(account.Username))
	}
	raw, err := c.app.AuthCodeURL(ctx, c.clientID, pending.RedirectURI, pending.Scopes, opts...)
	if err != nil {
		return "", fmt.Errorf("build authorization URL: %w", err)
	}

	authURL, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse authorization URL: %w", err)
	}
	q := authURL.Query()
	q.Set("state", pending.State)
	q.Set("code_challenge", oauth2.S256ChallengeFromVerifier(pending.CodeVerifier))
	q.Set("code_challenge_method", "S256")
	q.Set("response_mode", "query")
	authURL.RawQuery = q.Encode()

	if err := c.redirects.Save(ctx, pending); err != nil {
		return "", fmt.Errorf("save pending redirect: %w", err)
	}
	logger.Debug("msal: redirect started for [%s]", strings.Join(pending.Scopes, " "))
	return authURL.String(), nil
}

// CompleteRedirect exchanges the code in callbackURL for tokens. An empty
// callbackURL means there is nothing to complete and returns nil, nil.
func (c *Client) CompleteRedirect(ctx context.Context, callbackURL string) (*domain.AuthResult, error) {
	if strings.TrimSpace(callbackURL) == "" {
		return nil, nil
	}
	if c.redirects == nil {
		return nil, fmt.Errorf("%w: redirect flow needs a redirect store", domain.ErrConfiguration)
	}

	u, err := url.Parse(strings.TrimSpace(callbackURL))
	if err != nil {
		return nil, fmt.Errorf("%w: callback URL: %w", domain.ErrInvalidInput, err)
	}
	q := u.Query()

	state := q.Get("state")
	if e := q.Get("error"); e != "" {
		if state != "" {
			_, _ = c.redirects.Take(ctx, state)
		}
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrTokenAcquisition, e, q.Get("error_description"))
	}
	if state == "" {
		return nil, fmt.Errorf("%w: callback has no state", domain.ErrRedirectState)
	}
	pending, err := c.redirects.Take(ctx, state)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrRedirectState, state)
	}
	if err != nil {
		return nil, fmt.Errorf("load pending redirect: %w", err)
	}
	if pending.Expired(c.now()) {
		return nil, fmt.Errorf("%w: request %q expired", domain.ErrRedirectState, state)
	}

	code := q.Get("code")
	if code == "" {
		return nil, fmt.Errorf("%w: callback has no authorization code", domain.ErrTokenAcquisition)
	}

	result, err := c.app.AcquireTokenByAuthCode(ctx, code, pending.RedirectURI, pending.Scopes,
		public.WithChallenge(pending.CodeVerifier))
	if err != nil {
		return nil, fmt.Errorf("%w: redeem authorization code: %w", domain.ErrTokenAcquisition, err)
	}
	if pending.StartPage != "" {
		logger.Debug("msal: redirect completed, returning to %s", pending.StartPage)
	}
	return toResult(result), nil
}

// RemoveAccount deletes the account and its tokens from the cache.
func (c *Client) RemoveAccount(ctx context.Context, account domain.Account) error {
	found, err := c.lookup(ctx, account)
	if err != nil {
		return err
	}
	return c.app.RemoveAccount(ctx, found)
}

// lookup finds the library's account matching account.
func (c *Client) lookup(ctx context.Context, account domain.Account) (public.Account, error) {
	accounts, err := c.app.Accounts(ctx)
	if err != nil {
		return public.Account{}, err
	}
	for _, a := range accounts {
		if a.HomeAccountID == account.HomeAccountID {
			return a, nil
		}
	}
	return public.Account{}, fmt.Errorf("%w: %s", domain.ErrNoAccount, account.Username)
}

func toAccount(a public.Account) domain.Account {
	return domain.Account{
		HomeAccountID: a.HomeAccountID,
		Username:      a.PreferredUsername,
		Name:          a.Name,
		TenantID:      a.Realm,
		Environment:   a.Environment,
	}
}

func toResult(r public.AuthResult) *domain.AuthResult {
	return &domain.AuthResult{
		Account:       toAccount(r.Account),
		AccessToken:   r.AccessToken,
		IDToken:       r.IDToken.RawToken,
		ExpiresOn:     r.ExpiresOn,
		GrantedScopes: r.GrantedScopes,
	}
}
