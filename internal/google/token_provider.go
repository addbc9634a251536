package google

import (
	"context"
	"net/http"
)

// TokenProvider supplies authenticated HTTP clients for the Drive API.
// The Authenticator is the file-backed implementation; tests substitute
// fakes so handlers can be exercised without real credentials.
type TokenProvider interface {
	// HTTPClient returns an HTTP client that attaches a valid bearer token.
	HTTPClient(ctx context.Context) (*http.Client, error)

	// HasToken reports whether credentials are available at all.
	HasToken() bool
}

var _ TokenProvider = (*Authenticator)(nil)
