// Package graph fetches JSON resources from Microsoft Graph.
//
// Requests carry the caller's access token as a bearer credential and pass
// through a token-bucket rate limiter. Throttled and unavailable responses
// are retried after the Retry-After interval.
//
// Every failure is reported as *domain.HTTPError. Status failures also wrap
// one of the sentinels in this package, so callers can test for
// ErrUnauthorised or ErrRateLimited with errors.Is.
//
// # Rate Limits
//
// Microsoft Graph allows approximately 10,000 requests per 10 minutes per app.
// The default limiter stays well below that.
package graph
