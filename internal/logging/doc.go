// Package logging provides structured logging utilities for driveguard.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Token sanitization so credentials never reach log output
//   - Handler setup from configuration (level and text/json format)
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "drive.list")
//	logger.Info("listing folder",
//	    logging.FolderID(folderID),
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("token exchanged",
//	    "token", logging.SanitizeToken(tok.AccessToken))
package logging
