package scope

import (
	"context"
	"log/slog"

	"github.com/driveguard/driveguard/internal/logging"
)

// MaxWalkDepth bounds the ancestor walk. The Drive folder graph is
// documented to be acyclic, but the bound keeps a malformed or adversarial
// parent chain from recursing without end. A real Drive hierarchy is nowhere
// near this deep.
const MaxWalkDepth = 64

// ParentLister provides the parent folder ids of a folder.
// Implementations report an error when the folder id does not resolve or the
// provider call fails; the Guard treats every error as a denial.
type ParentLister interface {
	Parents(ctx context.Context, folderID string) ([]string, error)
}

// Guard authorizes operations against a folder id relative to a single
// configured root folder. A folder is in scope iff it is the root itself or
// one of its ancestors, followed transitively, is the root.
type Guard struct {
	parents ParentLister
	rootID  string
	logger  *slog.Logger
}

// NewGuard creates a Guard confined to the given root folder id.
// If logger is nil, slog.Default() is used.
func NewGuard(parents ParentLister, rootID string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		parents: parents,
		rootID:  rootID,
		logger:  logger,
	}
}

// RootID returns the configured root folder id.
func (g *Guard) RootID() string {
	return g.rootID
}

// IsInScope reports whether folderID is the root folder or a transitive
// descendant of it. The root itself is authorized without any provider call.
//
// IsInScope never returns an error: a failed parent lookup denies that
// branch. Denying on uncertainty is deliberate, a transient provider failure
// must never widen the permitted subtree.
func (g *Guard) IsInScope(ctx context.Context, folderID string) bool {
	return g.walk(ctx, folderID, 0)
}

func (g *Guard) walk(ctx context.Context, folderID string, depth int) bool {
	if folderID == g.rootID {
		return true
	}

	if depth >= MaxWalkDepth {
		g.logger.Warn("ancestor walk exceeded depth ceiling, denying",
			slog.String(logging.KeyFolderID, folderID),
			slog.String(logging.KeyRootID, g.rootID),
			slog.Int(logging.KeyDepth, depth))
		return false
	}

	parents, err := g.parents.Parents(ctx, folderID)
	if err != nil {
		g.logger.Debug("parent lookup failed, denying branch",
			slog.String(logging.KeyFolderID, folderID),
			logging.Err(err))
		return false
	}

	// An orphan or top-level folder that is not the root is outside scope.
	for _, parent := range parents {
		if g.walk(ctx, parent, depth+1) {
			return true
		}
	}
	return false
}
