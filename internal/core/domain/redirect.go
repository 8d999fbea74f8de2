package domain

import "time"

// RedirectTTL is how long a pending redirect remains valid.
const RedirectTTL = 10 * time.Minute

// PendingRedirect is the state persisted between starting a redirect flow
// and completing it from the URL the browser lands on.
type PendingRedirect struct {
	State        string
	CodeVerifier string
	RedirectURI  string
	StartPage    string
	Scopes       []string
	CreatedAt    time.Time
}

// Expired reports whether the pending redirect is older than RedirectTTL.
func (p *PendingRedirect) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > RedirectTTL
}
