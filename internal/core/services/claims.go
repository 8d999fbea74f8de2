package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
)

// idTokenClaims is the subset of Microsoft identity platform ID token claims
// that are displayed.
type idTokenClaims struct {
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	ObjectID          string `json:"oid"`
	TenantID          string `json:"tid"`
	jwt.RegisteredClaims
}

// parseIDToken decodes raw without verifying its signature. The identity
// client has verified the token before caching it.
func parseIDToken(raw string) (*domain.IDTokenClaims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: no ID token", domain.ErrTokenAcquisition)
	}

	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: decode ID token: %w", domain.ErrInvalidInput, err)
	}

	out := &domain.IDTokenClaims{
		Name:              claims.Name,
		PreferredUsername: claims.PreferredUsername,
		ObjectID:          claims.ObjectID,
		TenantID:          claims.TenantID,
		Issuer:            claims.Issuer,
		Audience:          claims.Audience,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
