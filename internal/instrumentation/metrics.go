package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrMode      = "mode"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	inflightRequests    metric.Int64UpDownCounter

	// Drive API metrics
	driveOperationsTotal   metric.Int64Counter
	driveOperationDuration metric.Float64Histogram

	// Scope guard metrics
	scopeChecksTotal   metric.Int64Counter
	scopeCheckDuration metric.Float64Histogram

	// Upload resolution metrics
	uploadResolutionsTotal metric.Int64Counter

	// OAuth metrics
	oauthExchangeTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.inflightRequests, err = meter.Int64UpDownCounter(
		"http_inflight_requests",
		metric.WithDescription("Number of HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_inflight_requests gauge: %w", err)
	}

	// Drive API Metrics
	m.driveOperationsTotal, err = meter.Int64Counter(
		"drive_api_operations_total",
		metric.WithDescription("Total number of Drive API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive_api_operations_total counter: %w", err)
	}

	m.driveOperationDuration, err = meter.Float64Histogram(
		"drive_api_operation_duration_seconds",
		metric.WithDescription("Drive API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive_api_operation_duration_seconds histogram: %w", err)
	}

	// Scope Guard Metrics
	m.scopeChecksTotal, err = meter.Int64Counter(
		"scope_checks_total",
		metric.WithDescription("Total number of folder scope checks"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scope_checks_total counter: %w", err)
	}

	m.scopeCheckDuration, err = meter.Float64Histogram(
		"scope_check_duration_seconds",
		metric.WithDescription("Folder scope check duration in seconds, including ancestor lookups"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scope_check_duration_seconds histogram: %w", err)
	}

	// Upload Resolution Metrics
	m.uploadResolutionsTotal, err = meter.Int64Counter(
		"upload_resolutions_total",
		metric.WithDescription("Total number of upload plan resolutions by mode and status"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload_resolutions_total counter: %w", err)
	}

	// OAuth Metrics
	m.oauthExchangeTotal, err = meter.Int64Counter(
		"oauth_exchange_total",
		metric.WithDescription("Total number of OAuth code exchange attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_exchange_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordDriveOperation records a Drive API operation with operation type,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (get, list, create, update, upload, delete)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordDriveOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.driveOperationsTotal == nil || m.driveOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.driveOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.driveOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordScopeCheck records a folder scope check with its verdict and duration.
// A denied check covers both out-of-scope folders and lookups that failed.
func (m *Metrics) RecordScopeCheck(ctx context.Context, allowed bool, duration time.Duration) {
	if m.scopeChecksTotal == nil || m.scopeCheckDuration == nil {
		return // Instrumentation not initialized
	}

	result := ScopeResultDenied
	if allowed {
		result = ScopeResultAllowed
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.scopeChecksTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.scopeCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUploadResolution records an upload plan resolution.
//
// Parameters:
//   - mode: Resolved mode ("create" or "update")
//   - status: Result status ("success" or "error")
func (m *Metrics) RecordUploadResolution(ctx context.Context, mode, status string) {
	if m.uploadResolutionsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMode, mode),
		attribute.String(attrStatus, status),
	}

	m.uploadResolutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordOAuthExchange records an OAuth code exchange attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthExchange(ctx context.Context, result string) {
	if m.oauthExchangeTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.oauthExchangeTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IncrementInflightRequests increments the in-flight request counter.
func (m *Metrics) IncrementInflightRequests(ctx context.Context) {
	if m.inflightRequests == nil {
		return // Instrumentation not initialized
	}

	m.inflightRequests.Add(ctx, 1)
}

// DecrementInflightRequests decrements the in-flight request counter.
func (m *Metrics) DecrementInflightRequests(ctx context.Context) {
	if m.inflightRequests == nil {
		return // Instrumentation not initialized
	}

	m.inflightRequests.Add(ctx, -1)
}
