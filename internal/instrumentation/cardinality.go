package instrumentation

import "path"

// Cardinality and sensitivity helpers for metrics and general logs.
// File names are user content; outside dedicated audit streams they are
// reduced to their extension before logging.

// RedactName reduces a file name to its extension.
//
// Example:
//
//	RedactName("report-2026.pdf")  // "*.pdf"
//	RedactName("notes")            // "*"
//	RedactName("")                 // ""
func RedactName(name string) string {
	if name == "" {
		return ""
	}
	if ext := path.Ext(name); ext != "" {
		return "*" + ext
	}
	return "*"
}

// Operation names for audit records and metrics.
const (
	OpUpload         = "upload"
	OpFolderCreate   = "folder_create"
	OpFolderList     = "folder_list"
	OpDeleteContents = "delete_contents"
	OpAuthURL        = "auth_url"
	OpAuthExchange   = "auth_exchange"
)

// Drive API operation types for metrics.
const (
	DriveOpGet    = "get"
	DriveOpList   = "list"
	DriveOpCreate = "create"
	DriveOpUpdate = "update"
	DriveOpUpload = "upload"
	DriveOpDelete = "delete"
)
