package scope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/driveguard/driveguard/internal/logging"
)

// ErrSearchFailed is returned by ResolvePlan when the child listing used for
// overwrite resolution fails. Callers must be able to distinguish this from
// "no existing file": silently falling back to a create on an unknown search
// state would risk duplicate files.
var ErrSearchFailed = errors.New("upload search failed")

// UploadMode selects between creating a new file and updating an existing one.
type UploadMode int

const (
	// ModeCreate creates a new file in the target folder.
	ModeCreate UploadMode = iota

	// ModeUpdate replaces the content of an existing file.
	ModeUpdate
)

// String returns the lowercase name of the mode, suitable for logs and metrics.
func (m UploadMode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// UploadPlan is the outcome of overwrite resolution. It feeds exactly one
// subsequent write: a create with metadata, or an update of TargetFileID.
type UploadPlan struct {
	Mode UploadMode

	// TargetFileID is the file to update. Set only when Mode is ModeUpdate.
	TargetFileID string
}

// ChildFile is a (id, name) pair from a folder listing, in listing order.
type ChildFile struct {
	ID   string
	Name string
}

// ChildLister lists the non-trashed children of a folder in provider order.
type ChildLister interface {
	Children(ctx context.Context, folderID string) ([]ChildFile, error)
}

// Resolver decides create-vs-update semantics for upload requests.
type Resolver struct {
	children ChildLister
	logger   *slog.Logger
}

// NewResolver creates a Resolver backed by the given child lister.
// If logger is nil, slog.Default() is used.
func NewResolver(children ChildLister, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		children: children,
		logger:   logger,
	}
}

// ResolvePlan decides whether an upload of fileName into parentFolderID is a
// create or an update.
//
// Without overwrite the plan is always a create and no listing call is made;
// this avoids a provider round trip and a race window against concurrent
// identical uploads. With overwrite the folder's children are listed and
// matched by exact, case-sensitive name equality. The first match in listing
// order wins; duplicate names are not disambiguated further.
//
// A listing failure is returned wrapped in ErrSearchFailed, never folded
// into a create.
func (r *Resolver) ResolvePlan(ctx context.Context, fileName, parentFolderID string, overwrite bool) (UploadPlan, error) {
	if !overwrite {
		return UploadPlan{Mode: ModeCreate}, nil
	}

	children, err := r.children.Children(ctx, parentFolderID)
	if err != nil {
		return UploadPlan{}, fmt.Errorf("%w: listing folder %s: %w", ErrSearchFailed, parentFolderID, err)
	}

	for _, child := range children {
		if child.Name == fileName {
			r.logger.Debug("overwrite target resolved",
				slog.String(logging.KeyFileName, fileName),
				slog.String(logging.KeyFolderID, parentFolderID),
				slog.String(logging.KeyFileID, child.ID))
			return UploadPlan{Mode: ModeUpdate, TargetFileID: child.ID}, nil
		}
	}

	return UploadPlan{Mode: ModeCreate}, nil
}
