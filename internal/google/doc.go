// Package google handles OAuth2 authentication against Google for the
// Drive API: building the consent URL, exchanging authorization codes, and
// caching the resulting token on disk with auto-refreshing token sources.
package google
