package domain

import "time"

// Account identifies a signed-in user as reported by the identity client.
// The identity client owns the account; this is a read-only view of it.
type Account struct {
	// HomeAccountID is the identity client's stable key for the account.
	HomeAccountID string `json:"home_account_id"`
	// Username is the preferred username (usually the UPN or email).
	Username string `json:"username"`
	// Name is the display name from the ID token, when present.
	Name string `json:"name,omitempty"`
	// TenantID is the directory the account signed in to.
	TenantID string `json:"tenant_id,omitempty"`
	// Environment is the authority host, e.g. login.microsoftonline.com.
	Environment string `json:"environment,omitempty"`
}

// IsZero reports whether the account carries no identity.
func (a Account) IsZero() bool {
	return a.HomeAccountID == ""
}

// AuthResult is the outcome of a successful token acquisition.
type AuthResult struct {
	Account       Account
	AccessToken   string
	IDToken       string
	ExpiresOn     time.Time
	GrantedScopes []string
}

// IDTokenClaims are the identity claims shown to the user. They are read
// from an ID token the identity client has already validated.
type IDTokenClaims struct {
	Name              string    `json:"name,omitempty"`
	PreferredUsername string    `json:"preferred_username,omitempty"`
	ObjectID          string    `json:"oid,omitempty"`
	TenantID          string    `json:"tid,omitempty"`
	Issuer            string    `json:"iss,omitempty"`
	Audience          []string  `json:"aud,omitempty"`
	IssuedAt          time.Time `json:"iat,omitempty"`
	ExpiresAt         time.Time `json:"exp,omitempty"`
}
