// Package drive provides a typed client for the Google Drive API.
//
// The client covers exactly the operations driveguard proxies:
//   - Folder metadata and parent lookups (feeding the scope guard)
//   - Child listings (feeding overwrite resolution and folder listing)
//   - Folder creation
//   - File upload (create) and content update (overwrite)
//   - File deletion
//
// Provider responses are converted to typed structures at this boundary and
// raw API errors are classified into the package's sentinel errors
// (ErrNotFound, ErrUnauthorized, ErrNotFolder, ErrUnavailable); untyped JSON
// and googleapi errors never propagate past this package.
//
// The client satisfies the scope.ParentLister and scope.ChildLister
// capability interfaces consumed by the authorization core.
//
// No retries are performed here. A single provider failure propagates
// immediately; callers decide whether to retry or report.
package drive
