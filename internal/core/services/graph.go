package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driving"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

// Ensure GraphService implements the interface.
var _ driving.GraphService = (*GraphService)(nil)

// GraphService reads the signed-in user's profile and mail from Microsoft Graph.
type GraphService struct {
	session   driving.SessionService
	fetcher   driven.ResourceFetcher
	endpoints domain.Endpoints
	flow      domain.Flow
}

// NewGraphService creates a GraphService. flow selects the interactive
// fallback used when a token cannot be acquired silently.
func NewGraphService(
	session driving.SessionService,
	fetcher driven.ResourceFetcher,
	endpoints domain.Endpoints,
	flow domain.Flow,
) *GraphService {
	return &GraphService{
		session:   session,
		fetcher:   fetcher,
		endpoints: endpoints,
		flow:      flow,
	}
}

// Flow returns the interactive flow used by this service.
func (g *GraphService) Flow() domain.Flow {
	return g.flow
}

// SignIn signs in with the configured flow. With the redirect flow, any
// cached account is used first and the browser is only opened when there is
// none.
func (g *GraphService) SignIn(ctx context.Context) (*domain.Account, error) {
	if g.flow == domain.FlowRedirect {
		account, err := g.session.CompleteRedirectIfPending(ctx, "")
		if err != nil {
			return nil, err
		}
		if account != nil {
			return account, nil
		}
	}
	return g.session.SignIn(ctx, g.flow)
}

// SignOut signs the active account out.
func (g *GraphService) SignOut(ctx context.Context) error {
	return g.session.SignOut(ctx)
}

// UserName returns the username of the resolved account, or "".
func (g *GraphService) UserName(ctx context.Context) string {
	account, err := g.session.ResolveActiveAccount(ctx)
	if err != nil {
		logger.Debug("graph: resolve account: %v", err)
		return ""
	}
	if account == nil {
		return ""
	}
	return account.Username
}

// GetToken returns a bearer token for the profile endpoint.
func (g *GraphService) GetToken(ctx context.Context) (string, error) {
	return g.session.GetProfileToken(ctx, g.flow)
}

// GetProfile fetches the signed-in user's profile.
func (g *GraphService) GetProfile(ctx context.Context) (*domain.UserInfo, error) {
	token, err := g.session.GetProfileToken(ctx, g.flow)
	if err := checkToken(token, err, "profile"); err != nil {
		return nil, err
	}

	var info domain.UserInfo
	if err := g.fetcher.FetchJSON(ctx, g.endpoints.Profile, token, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetMail fetches the signed-in user's messages.
func (g *GraphService) GetMail(ctx context.Context) (*domain.MailInfo, error) {
	token, err := g.session.GetMailToken(ctx, g.flow)
	if err := checkToken(token, err, "mail"); err != nil {
		return nil, err
	}

	var info domain.MailInfo
	if err := g.fetcher.FetchJSON(ctx, g.endpoints.Mail, token, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Claims decodes the ID token issued at sign-in.
func (g *GraphService) Claims(ctx context.Context) (*domain.IDTokenClaims, error) {
	raw, err := g.session.GetIDToken(ctx, g.flow)
	if err != nil {
		return nil, err
	}
	return parseIDToken(raw)
}

// checkToken rejects a failed or empty token before any request is made.
func checkToken(token string, err error, resource string) error {
	if err != nil {
		if errors.Is(err, domain.ErrTokenAcquisition) {
			return err
		}
		return fmt.Errorf("%w: failed to acquire %s token: %w", domain.ErrTokenAcquisition, resource, err)
	}
	if token == "" {
		return fmt.Errorf("%w: failed to acquire %s token", domain.ErrTokenAcquisition, resource)
	}
	return nil
}
