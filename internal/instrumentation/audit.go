package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// OperationRecord captures all information about an API operation for audit
// logging. Every write against Drive (uploads, folder creation, content
// deletion) and every auth event produces one record.
//
// # Privacy Considerations
//
// FileName and FolderName may contain user content. When logging, consider:
//   - Using RedactedFileName() for metrics-compatible general logs
//   - Only logging full names in audit-specific log streams
//   - Ensuring audit logs have appropriate access controls
type OperationRecord struct {
	// Operation name (upload, folder_create, folder_list, delete_contents,
	// auth_url, auth_exchange)
	Operation string

	// Target information
	FolderID   string
	FolderName string
	FileID     string
	FileName   string

	// Mode is the resolved upload mode for uploads (create or update).
	Mode string

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Denied    bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// RedactedFileName returns the file name reduced to its extension for
// lower-sensitivity logging.
func (r *OperationRecord) RedactedFileName() string {
	return RedactName(r.FileName)
}

// Status returns the label value for the record outcome.
func (r *OperationRecord) Status() string {
	switch {
	case r.Denied:
		return StatusDenied
	case r.Success:
		return StatusSuccess
	default:
		return StatusError
	}
}

// LogAttrs returns slog attributes for structured logging with file and
// folder names redacted. For full audit logging, use LogAuditAttrs.
func (r *OperationRecord) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", r.Operation),
		slog.String("status", r.Status()),
		slog.Duration("duration", r.Duration),
	}

	if r.FolderID != "" {
		attrs = append(attrs, slog.String("folder_id", r.FolderID))
	}
	if r.FileID != "" {
		attrs = append(attrs, slog.String("file_id", r.FileID))
	}
	if r.FileName != "" {
		attrs = append(attrs, slog.String("file_name", r.RedactedFileName()))
	}
	if r.Mode != "" {
		attrs = append(attrs, slog.String("mode", r.Mode))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}

	return attrs
}

// LogAuditAttrs returns slog attributes for full audit logging, including
// unredacted file and folder names. Ensure audit logs are stored securely
// with appropriate access controls.
func (r *OperationRecord) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", r.Operation),
		slog.String("status", r.Status()),
		slog.Duration("duration", r.Duration),
	}

	if r.FolderID != "" {
		attrs = append(attrs, slog.String("folder_id", r.FolderID))
	}
	if r.FolderName != "" {
		attrs = append(attrs, slog.String("folder_name", r.FolderName))
	}
	if r.FileID != "" {
		attrs = append(attrs, slog.String("file_id", r.FileID))
	}
	if r.FileName != "" {
		attrs = append(attrs, slog.String("file_name", r.FileName))
	}
	if r.Mode != "" {
		attrs = append(attrs, slog.String("mode", r.Mode))
	}
	if r.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", r.TraceID))
	}
	if r.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", r.SpanID))
	}
	if r.Error != "" {
		attrs = append(attrs, slog.String("error", r.Error))
	}

	return attrs
}

// NewOperationRecord creates a new OperationRecord with timing started.
// Call Complete() when the operation finishes.
func NewOperationRecord(operation string) *OperationRecord {
	return &OperationRecord{
		Operation: operation,
		StartTime: time.Now(),
	}
}

// WithFolder sets the target folder information.
func (r *OperationRecord) WithFolder(id, name string) *OperationRecord {
	r.FolderID = id
	r.FolderName = name
	return r
}

// WithFile sets the target file information.
func (r *OperationRecord) WithFile(id, name string) *OperationRecord {
	r.FileID = id
	r.FileName = name
	return r
}

// WithMode sets the resolved upload mode.
func (r *OperationRecord) WithMode(mode string) *OperationRecord {
	r.Mode = mode
	return r
}

// WithSpanContext extracts trace context from the current span.
func (r *OperationRecord) WithSpanContext(ctx context.Context) *OperationRecord {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.TraceID = span.SpanContext().TraceID().String()
		r.SpanID = span.SpanContext().SpanID().String()
	}
	return r
}

// Complete marks the record as completed and calculates duration.
// Returns the same OperationRecord for method chaining.
func (r *OperationRecord) Complete(success bool, err error) *OperationRecord {
	r.Duration = time.Since(r.StartTime)
	r.Success = success
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// CompleteWithError marks the record as failed with the given error.
func (r *OperationRecord) CompleteWithError(err error) *OperationRecord {
	return r.Complete(false, err)
}

// CompleteSuccess marks the record as successful.
func (r *OperationRecord) CompleteSuccess() *OperationRecord {
	return r.Complete(true, nil)
}

// CompleteDenied marks the record as rejected by the folder scope guard.
func (r *OperationRecord) CompleteDenied() *OperationRecord {
	r.Duration = time.Since(r.StartTime)
	r.Success = false
	r.Denied = true
	return r
}

// AuditLogger provides structured audit logging for API operations.
// It wraps slog.Logger with convenience methods for logging operations.
type AuditLogger struct {
	logger       *slog.Logger
	includeNames bool
	enabled      bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, file and folder names are redacted.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:       logger,
		includeNames: false,
		enabled:      true,
	}
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:       logger,
		includeNames: config.IncludeNames,
		enabled:      config.Enabled,
	}
}

// SetIncludeNames sets whether to include full file and folder names.
func (al *AuditLogger) SetIncludeNames(include bool) {
	al.includeNames = include
}

// SetEnabled sets whether audit logging is enabled.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

// LogOperation logs an operation record. When the logger is configured with
// IncludeNames, full file and folder names are logged; otherwise names are
// redacted to their extension.
func (al *AuditLogger) LogOperation(r *OperationRecord) {
	if !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includeNames {
		attrs = r.LogAuditAttrs()
	} else {
		attrs = r.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	switch {
	case r.Denied:
		al.logger.Warn("operation_denied", args...)
	case r.Success:
		al.logger.Info("operation_completed", args...)
	default:
		al.logger.Warn("operation_failed", args...)
	}
}
