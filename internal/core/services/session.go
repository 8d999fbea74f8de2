package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionService = (*SessionManager)(nil)

// sharedAcquireTimeout bounds a token acquisition shared by several callers.
// It outlives any single caller's context.
const sharedAcquireTimeout = domain.RedirectTTL

// SessionManager owns one identity client and the active account.
// Tokens are acquired silently first and interactively only when the
// identity client reports that interaction is required.
type SessionManager struct {
	client    driven.IdentityClient
	navigator driven.Navigator
	requests  domain.RequestSet

	mu      sync.RWMutex
	account *domain.Account
	// resolved is set once the token cache has been consulted for an
	// account, or an account has been set explicitly.
	resolved bool

	// inflight collapses concurrent identical token requests so that only
	// one interactive prompt is shown.
	inflight singleflight.Group
}

// NewSessionManager creates a session over an identity client.
// redirectStartPage is recorded on redirect requests as the page to return to.
func NewSessionManager(
	client driven.IdentityClient,
	navigator driven.Navigator,
	redirectStartPage string,
) *SessionManager {
	return &SessionManager{
		client:    client,
		navigator: navigator,
		requests:  domain.NewRequestSet(redirectStartPage),
	}
}

// CompleteRedirectIfPending resolves a pending redirect response or selects
// an existing cached account.
func (s *SessionManager) CompleteRedirectIfPending(
	ctx context.Context, callbackURL string,
) (*domain.Account, error) {
	if callbackURL != "" {
		result, err := s.client.CompleteRedirect(ctx, callbackURL)
		if err != nil {
			return nil, fmt.Errorf("complete redirect: %w", err)
		}
		if result != nil {
			logger.Debug("session: redirect completed")
			s.setAccount(&result.Account)
			return s.ActiveAccount(), nil
		}
	}

	account, err := s.ResolveActiveAccount(ctx)
	if err != nil {
		return nil, err
	}
	s.setAccount(account)
	return account, nil
}

// ResolveActiveAccount returns the first cached account, or nil when none
// are cached.
func (s *SessionManager) ResolveActiveAccount(ctx context.Context) (*domain.Account, error) {
	accounts, err := s.client.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	switch len(accounts) {
	case 0:
		logger.Debug("session: no accounts detected")
		return nil, nil
	case 1:
	default:
		logger.Debug("session: %d accounts detected, using the first", len(accounts))
	}

	account := accounts[0]
	return &account, nil
}

// ActiveAccount returns a copy of the held account, or nil.
func (s *SessionManager) ActiveAccount() *domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil
	}
	account := *s.account
	return &account
}

// UserName returns the held account's username, or "".
func (s *SessionManager) UserName() string {
	if account := s.ActiveAccount(); account != nil {
		return account.Username
	}
	return ""
}

func (s *SessionManager) setAccount(account *domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved = true
	if account == nil || account.IsZero() {
		s.account = nil
		return
	}
	acc := *account
	s.account = &acc
}

// loadAccount returns the held account. The first call on a session with no
// account reads the token cache, so a sign-in persisted by an earlier process
// is used for silent acquisition.
func (s *SessionManager) loadAccount(ctx context.Context) (*domain.Account, error) {
	s.mu.RLock()
	resolved := s.resolved
	s.mu.RUnlock()
	if resolved {
		return s.ActiveAccount(), nil
	}

	account, err := s.ResolveActiveAccount(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.resolved {
		s.resolved = true
		if account != nil {
			s.account = account
		}
	}
	s.mu.Unlock()
	return s.ActiveAccount(), nil
}

// SignIn starts interactive sign-in. The popup flow blocks until the user
// finishes and makes the resulting account active. The redirect flow
// navigates to the identity provider and returns domain.ErrRedirectPending;
// the account becomes active in CompleteRedirectIfPending.
func (s *SessionManager) SignIn(ctx context.Context, flow domain.Flow) (*domain.Account, error) {
	switch flow {
	case domain.FlowRedirect:
		account, err := s.loadAccount(ctx)
		if err != nil {
			return nil, err
		}
		if account != nil {
			return account, nil
		}
		if err := s.beginRedirect(ctx, s.requests.LoginRedirect); err != nil {
			return nil, err
		}
		return nil, domain.ErrRedirectPending

	case domain.FlowPopup:
		result, err := s.client.AcquireTokenInteractive(ctx, s.requests.Login)
		if err != nil {
			return nil, fmt.Errorf("%w: sign in: %w", domain.ErrTokenAcquisition, err)
		}
		s.setAccount(&result.Account)
		logger.Debug("session: signed in")
		return s.ActiveAccount(), nil

	default:
		return nil, fmt.Errorf("%w: unknown flow %q", domain.ErrInvalidInput, flow)
	}
}

// SignOut removes the active account from the identity client's cache and
// clears it from the session.
func (s *SessionManager) SignOut(ctx context.Context) error {
	account := s.ActiveAccount()
	if account == nil {
		resolved, err := s.ResolveActiveAccount(ctx)
		if err != nil {
			return err
		}
		account = resolved
	}
	if account == nil {
		return domain.ErrNoAccount
	}

	if err := s.client.RemoveAccount(ctx, *account); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.setAccount(nil)
	logger.Debug("session: signed out")
	return nil
}

// AcquireToken returns a token for scopes using the silent-first policy.
func (s *SessionManager) AcquireToken(
	ctx context.Context, scopes []string, flow domain.Flow,
) (string, error) {
	if len(scopes) == 0 {
		return "", fmt.Errorf("%w: at least one scope is required", domain.ErrInvalidInput)
	}
	req := domain.NewTokenRequest(scopes...)
	return accessToken(s.acquire(ctx, req, interactiveFor(req, flow, s.requests.LoginRedirect.RedirectStartPage()), flow))
}

// GetProfileToken returns a token for the profile endpoint.
func (s *SessionManager) GetProfileToken(ctx context.Context, flow domain.Flow) (string, error) {
	interactive := s.requests.Profile
	if flow == domain.FlowRedirect {
		interactive = s.requests.ProfileRedirect
	}
	return accessToken(s.acquire(ctx, s.requests.SilentProfile, interactive, flow))
}

// GetMailToken returns a token for the mail endpoint.
func (s *SessionManager) GetMailToken(ctx context.Context, flow domain.Flow) (string, error) {
	interactive := s.requests.Mail
	if flow == domain.FlowRedirect {
		interactive = s.requests.MailRedirect
	}
	return accessToken(s.acquire(ctx, s.requests.SilentMail, interactive, flow))
}

// GetIDToken returns the raw ID token issued with the sign-in scopes.
func (s *SessionManager) GetIDToken(ctx context.Context, flow domain.Flow) (string, error) {
	interactive := s.requests.Login
	if flow == domain.FlowRedirect {
		interactive = s.requests.LoginRedirect
	}
	result, err := s.acquire(ctx, s.requests.Login, interactive, flow)
	if err != nil {
		return "", err
	}
	return result.IDToken, nil
}

func accessToken(result *domain.AuthResult, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

func interactiveFor(req domain.TokenRequest, flow domain.Flow, startPage string) domain.TokenRequest {
	if flow == domain.FlowRedirect {
		return req.WithRedirectStartPage(startPage)
	}
	return req
}

// acquire runs one silent attempt and, when interaction is required, one
// interactive attempt. Identical concurrent calls share a single result.
// The shared attempt runs detached from the caller that started it; each
// caller stops waiting when its own context is done.
func (s *SessionManager) acquire(
	ctx context.Context, silent, interactive domain.TokenRequest, flow domain.Flow,
) (*domain.AuthResult, error) {
	switch flow {
	case domain.FlowPopup, domain.FlowRedirect, domain.FlowNone:
	default:
		return nil, fmt.Errorf("%w: unknown flow %q", domain.ErrInvalidInput, flow)
	}

	key := strings.Join([]string{string(flow), silent.Key()}, "|")
	ch := s.inflight.DoChan(key, func() (any, error) {
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedAcquireTimeout)
		defer cancel()
		return s.acquireOnce(sharedCtx, silent, interactive, flow)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			logger.Debug("session: shared in-flight token request for [%s]", silent.Key())
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.AuthResult), nil
	}
}

func (s *SessionManager) acquireOnce(
	ctx context.Context, silent, interactive domain.TokenRequest, flow domain.Flow,
) (*domain.AuthResult, error) {
	account, err := s.loadAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenAcquisition, err)
	}

	result, err := s.client.AcquireTokenSilent(ctx, silent.WithAccount(account))
	if err == nil {
		if result == nil {
			return nil, fmt.Errorf("%w: no result from silent acquisition", domain.ErrTokenAcquisition)
		}
		return result, nil
	}

	logger.Debug("session: silent token acquisition failed for [%s]: %v", silent.Key(), err)
	if !errors.Is(err, domain.ErrInteractionRequired) || flow == domain.FlowNone {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenAcquisition, err)
	}

	if flow == domain.FlowRedirect {
		logger.Debug("session: acquiring token using redirect")
		if err := s.beginRedirect(ctx, interactive); err != nil {
			return nil, err
		}
		return nil, domain.ErrRedirectPending
	}

	logger.Debug("session: acquiring token using popup")
	result, err = s.client.AcquireTokenInteractive(ctx, interactive)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenAcquisition, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: no result from interactive acquisition", domain.ErrTokenAcquisition)
	}
	if s.ActiveAccount() == nil {
		s.setAccount(&result.Account)
	}
	return result, nil
}

// beginRedirect records the redirect request and sends the browser to the
// identity provider. Nothing is returned in-process.
func (s *SessionManager) beginRedirect(ctx context.Context, req domain.TokenRequest) error {
	authURL, err := s.client.BeginRedirect(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: begin redirect: %w", domain.ErrTokenAcquisition, err)
	}
	if s.navigator == nil {
		return fmt.Errorf("%w: no browser available to open %s", domain.ErrTokenAcquisition, authURL)
	}
	if err := s.navigator.Open(authURL); err != nil {
		return fmt.Errorf("%w: open browser: %w", domain.ErrTokenAcquisition, err)
	}
	return nil
}
