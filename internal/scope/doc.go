// Package scope contains the authorization and upload-resolution core of
// driveguard.
//
// The Guard decides whether a folder id lies inside the configured root
// subtree by walking parent links upward through the Drive folder graph.
// Every mutating operation the HTTP layer exposes is gated on this check.
//
// The Resolver decides create-vs-update semantics for an upload request.
// When overwrite is requested it searches the target folder for a file with
// the same name and, if one exists, plans an update of that file instead of
// creating a duplicate.
//
// Both types consume narrow capability interfaces (ParentLister,
// ChildLister) rather than a concrete Drive client, so they can be tested
// against in-memory fakes. Neither performs writes; they are pure decision
// layers over provider calls.
package scope
