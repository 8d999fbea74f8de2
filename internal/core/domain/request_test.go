package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenRequest_CopiesScopes(t *testing.T) {
	scopes := []string{ScopeMailRead}
	req := NewTokenRequest(scopes...)

	scopes[0] = "Files.Read"

	assert.Equal(t, []string{ScopeMailRead}, req.Scopes())
}

func TestTokenRequest_ScopesReturnsCopy(t *testing.T) {
	req := NewTokenRequest(ScopeUserRead)

	got := req.Scopes()
	got[0] = "changed"

	assert.Equal(t, []string{ScopeUserRead}, req.Scopes())
}

func TestTokenRequest_WithAccount(t *testing.T) {
	base := NewTokenRequest(ScopeMailRead)
	account := &Account{HomeAccountID: "uid.utid", Username: "user@example.com"}

	bound := base.WithAccount(account)

	require.NotNil(t, bound.Account())
	assert.Equal(t, "user@example.com", bound.Account().Username)
	assert.Nil(t, base.Account(), "original request must not be modified")
	assert.Equal(t, base.Scopes(), bound.Scopes())

	// Later changes to the caller's account do not leak into the request.
	account.Username = "other@example.com"
	assert.Equal(t, "user@example.com", bound.Account().Username)
}

func TestTokenRequest_WithAccountNil(t *testing.T) {
	req := NewTokenRequest(ScopeMailRead).WithAccount(&Account{HomeAccountID: "x"})

	cleared := req.WithAccount(nil)

	assert.Nil(t, cleared.Account())
}

func TestTokenRequest_Key(t *testing.T) {
	a := NewTokenRequest("Mail.Read", "User.Read")
	b := NewTokenRequest("User.Read", "Mail.Read")

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), NewTokenRequest("Mail.Read").Key())
}

func TestNewRequestSet(t *testing.T) {
	set := NewRequestSet("http://localhost/start")

	assert.Equal(t, []string{ScopeUserRead}, set.Login.Scopes())
	assert.Equal(t, []string{ScopeUserRead}, set.Profile.Scopes())
	assert.Equal(t, []string{ScopeMailRead}, set.Mail.Scopes())
	assert.Equal(t, set.Profile.Scopes(), set.SilentProfile.Scopes())
	assert.Equal(t, set.Mail.Scopes(), set.SilentMail.Scopes())

	assert.Empty(t, set.Profile.RedirectStartPage())
	assert.Equal(t, "http://localhost/start", set.LoginRedirect.RedirectStartPage())
	assert.Equal(t, "http://localhost/start", set.ProfileRedirect.RedirectStartPage())
	assert.Equal(t, "http://localhost/start", set.MailRedirect.RedirectStartPage())

	assert.Nil(t, set.SilentProfile.Account())
	assert.Nil(t, set.SilentMail.Account())
}
