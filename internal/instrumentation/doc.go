// Package instrumentation provides OpenTelemetry instrumentation for the
// driveguard API server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, Drive API calls, scope
//     checks, and upload resolutions
//   - Distributed tracing for request flows and Drive API calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//   - Structured audit logging for every write operation
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - http_inflight_requests: Gauge of requests currently being served
//
// Drive API Metrics:
//   - drive_api_operations_total: Counter of Drive API operations by operation, status
//   - drive_api_operation_duration_seconds: Histogram of Drive API operation durations
//
// Scope Guard Metrics:
//   - scope_checks_total: Counter of folder scope checks by verdict
//   - scope_check_duration_seconds: Histogram of scope check durations
//
// Upload Metrics:
//   - upload_resolutions_total: Counter of upload plan resolutions by mode and status
//
// OAuth Metrics:
//   - oauth_exchange_total: Counter of OAuth code exchange attempts by result
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - HTTP request handling
//   - API operations (driveguard.<operation>)
//   - Drive API calls (drive.<operation>)
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: driveguard)
//   - AUDIT_LOGGING_ENABLED: Enable/disable audit logging (default: true)
//   - AUDIT_LOGGING_INCLUDE_NAMES: Log full file/folder names (default: false)
package instrumentation
