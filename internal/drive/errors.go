package drive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors classifying provider failures at the client boundary.
// Use errors.Is(err, drive.ErrNotFound) to check.
var (
	// ErrNotFound indicates the referenced file or folder id does not
	// resolve upstream (or is trashed).
	ErrNotFound = errors.New("drive: not found")

	// ErrUnauthorized indicates the provider rejected our credentials or
	// denied access to the resource.
	ErrUnauthorized = errors.New("drive: unauthorized")

	// ErrNotFolder indicates an id that resolves to a regular file where a
	// folder was required.
	ErrNotFolder = errors.New("drive: not a folder")

	// ErrUnavailable covers transient transport and server-side failures.
	ErrUnavailable = errors.New("drive: unavailable")
)

// classify maps a raw Drive API error to one of the sentinel errors,
// preserving the original error in the chain. Untyped provider errors never
// escape this package.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
	}

	// Network failures, 5xx responses, rate limits: all transient from the
	// caller's point of view.
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
