package driven

import "context"

// ResourceFetcher performs authenticated GET requests against a REST API.
type ResourceFetcher interface {
	// FetchJSON issues GET url with the bearer token and decodes the JSON
	// body into v. Fails with an error matching domain.ErrHTTP on transport
	// failure or an unparsable body.
	FetchJSON(ctx context.Context, url, token string, v any) error
}
