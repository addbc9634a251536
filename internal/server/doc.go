// Package server implements the driveguard HTTP layer: the REST endpoints
// for auth, uploads, and folder operations, the translation of domain
// errors to HTTP status codes, health probes for Kubernetes, and the
// dedicated Prometheus metrics server.
//
// Every mutating endpoint runs the folder scope guard before touching
// Drive; a folder outside the configured root subtree is rejected with 403
// regardless of what Drive itself would permit.
//
// The ServerContext carries the shared dependencies. The Drive client is
// built lazily from the stored OAuth token, so the server starts and serves
// the auth endpoints before the first token exchange has happened.
package server
