package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "POST", "/api/v1/files", 201, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "GET", "/api/v1/folders/{id}/files", 502, 50*time.Millisecond)
}

func TestMetrics_RecordDriveOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordDriveOperation(ctx, DriveOpList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordDriveOperation(ctx, DriveOpUpload, StatusError, 500*time.Millisecond)
	metrics.RecordDriveOperation(ctx, DriveOpGet, StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordScopeCheck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordScopeCheck(ctx, true, 10*time.Millisecond)
	metrics.RecordScopeCheck(ctx, false, 250*time.Millisecond)
}

func TestMetrics_RecordUploadResolution(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordUploadResolution(ctx, ModeCreate, StatusSuccess)
	metrics.RecordUploadResolution(ctx, ModeUpdate, StatusSuccess)
	metrics.RecordUploadResolution(ctx, ModeCreate, StatusError)
}

func TestMetrics_RecordOAuthExchange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordOAuthExchange(ctx, OAuthResultSuccess)
	metrics.RecordOAuthExchange(ctx, OAuthResultFailure)
}

func TestMetrics_InflightRequests(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.IncrementInflightRequests(ctx)
	metrics.IncrementInflightRequests(ctx)
	metrics.DecrementInflightRequests(ctx)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All these should not panic even with nil underlying metrics
	metrics.RecordHTTPRequest(ctx, "POST", "/api/v1/files", 201, 100*time.Millisecond)
	metrics.RecordDriveOperation(ctx, DriveOpList, StatusSuccess, 200*time.Millisecond)
	metrics.RecordScopeCheck(ctx, true, 10*time.Millisecond)
	metrics.RecordUploadResolution(ctx, ModeCreate, StatusSuccess)
	metrics.RecordOAuthExchange(ctx, OAuthResultSuccess)
	metrics.IncrementInflightRequests(ctx)
	metrics.DecrementInflightRequests(ctx)
}
