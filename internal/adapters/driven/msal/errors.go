package msal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	msalerrors "github.com/AzureAD/microsoft-authentication-library-for-go/apps/errors"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// interactionCodes are the token endpoint error codes that can only be
// resolved by the user.
var interactionCodes = []string{
	"interaction_required",
	"invalid_grant",
	"login_required",
	"consent_required",
}

// classifySilent maps a silent acquisition failure onto the domain errors.
// Cache misses and refusals from the token endpoint become
// domain.ErrInteractionRequired. Cancellation, transport failures and server
// errors are returned unchanged.
func classifySilent(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var callErr msalerrors.CallErr
	if errors.As(err, &callErr) {
		if callErr.Resp != nil && callErr.Resp.StatusCode >= http.StatusInternalServerError {
			return err
		}
		if needsInteraction(callErr.Error()) {
			return fmt.Errorf("%w: %w", domain.ErrInteractionRequired, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return err
	}

	// Anything else is the library reporting that no usable token or
	// refresh token is cached for the account.
	return fmt.Errorf("%w: %w", domain.ErrInteractionRequired, err)
}

func needsInteraction(msg string) bool {
	msg = strings.ToLower(msg)
	for _, code := range interactionCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
