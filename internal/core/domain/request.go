package domain

import (
	"slices"
	"strings"
)

// Scopes used for Microsoft Graph requests.
const (
	ScopeUserRead = "User.Read"
	ScopeMailRead = "Mail.Read"
)

// TokenRequest describes one token acquisition: the scopes requested, the
// account to use for silent calls and, for redirect flows, the page to
// return to. Values are immutable; WithAccount returns a copy.
type TokenRequest struct {
	scopes            []string
	account           *Account
	redirectStartPage string
}

// NewTokenRequest creates a request for the given scopes.
func NewTokenRequest(scopes ...string) TokenRequest {
	return TokenRequest{scopes: slices.Clone(scopes)}
}

// Scopes returns a copy of the requested scopes.
func (r TokenRequest) Scopes() []string {
	return slices.Clone(r.scopes)
}

// Account returns the attached account, or nil.
func (r TokenRequest) Account() *Account {
	return r.account
}

// RedirectStartPage returns the page a redirect flow should return to.
func (r TokenRequest) RedirectStartPage() string {
	return r.redirectStartPage
}

// WithAccount returns a copy of the request bound to account.
func (r TokenRequest) WithAccount(account *Account) TokenRequest {
	r.scopes = slices.Clone(r.scopes)
	if account != nil {
		acc := *account
		r.account = &acc
	} else {
		r.account = nil
	}
	return r
}

// WithRedirectStartPage returns a copy of the request with a redirect target.
func (r TokenRequest) WithRedirectStartPage(page string) TokenRequest {
	r.scopes = slices.Clone(r.scopes)
	r.redirectStartPage = page
	return r
}

// Key identifies the scope set, independent of order.
func (r TokenRequest) Key() string {
	s := slices.Clone(r.scopes)
	slices.Sort(s)
	return strings.Join(s, " ")
}

// RequestSet holds the request descriptors built once per session.
type RequestSet struct {
	Login           TokenRequest
	LoginRedirect   TokenRequest
	Profile         TokenRequest
	ProfileRedirect TokenRequest
	Mail            TokenRequest
	MailRedirect    TokenRequest
	SilentProfile   TokenRequest
	SilentMail      TokenRequest
}

// NewRequestSet builds the descriptors for sign-in, profile and mail.
// The silent descriptors carry the same scopes as their interactive
// counterparts; the identity client adds the OpenID scopes itself.
func NewRequestSet(redirectStartPage string) RequestSet {
	login := NewTokenRequest(ScopeUserRead)
	profile := NewTokenRequest(ScopeUserRead)
	mail := NewTokenRequest(ScopeMailRead)

	return RequestSet{
		Login:           login,
		LoginRedirect:   login.WithRedirectStartPage(redirectStartPage),
		Profile:         profile,
		ProfileRedirect: profile.WithRedirectStartPage(redirectStartPage),
		Mail:            mail,
		MailRedirect:    mail.WithRedirectStartPage(redirectStartPage),
		SilentProfile:   NewTokenRequest(ScopeUserRead),
		SilentMail:      NewTokenRequest(ScopeMailRead),
	}
}
