package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestOperationRecord_Complete(t *testing.T) {
	record := NewOperationRecord(OpUpload)
	if record.StartTime.IsZero() {
		t.Error("expected start time to be set")
	}

	time.Sleep(time.Millisecond)
	record.CompleteSuccess()

	if !record.Success {
		t.Error("expected record to be successful")
	}
	if record.Duration <= 0 {
		t.Error("expected positive duration")
	}
	if record.Status() != StatusSuccess {
		t.Errorf("expected success status, got %q", record.Status())
	}
}

func TestOperationRecord_CompleteWithError(t *testing.T) {
	record := NewOperationRecord(OpFolderCreate).
		CompleteWithError(errors.New("parent folder not found"))

	if record.Success {
		t.Error("expected record to be failed")
	}
	if record.Error != "parent folder not found" {
		t.Errorf("expected error message, got %q", record.Error)
	}
	if record.Status() != StatusError {
		t.Errorf("expected error status, got %q", record.Status())
	}
}

func TestOperationRecord_CompleteDenied(t *testing.T) {
	record := NewOperationRecord(OpDeleteContents).
		WithFolder("folder-1", "Quarterly Reports").
		CompleteDenied()

	if record.Status() != StatusDenied {
		t.Errorf("expected denied status, got %q", record.Status())
	}
	if record.Success {
		t.Error("expected denied record not to be successful")
	}
}

func TestOperationRecord_Builders(t *testing.T) {
	record := NewOperationRecord(OpUpload).
		WithFolder("folder-1", "Reports").
		WithFile("file-1", "budget.xlsx").
		WithMode(ModeUpdate)

	if record.FolderID != "folder-1" || record.FolderName != "Reports" {
		t.Errorf("unexpected folder fields: %+v", record)
	}
	if record.FileID != "file-1" || record.FileName != "budget.xlsx" {
		t.Errorf("unexpected file fields: %+v", record)
	}
	if record.Mode != ModeUpdate {
		t.Errorf("expected update mode, got %q", record.Mode)
	}
	if record.RedactedFileName() != "*.xlsx" {
		t.Errorf("expected redacted name *.xlsx, got %q", record.RedactedFileName())
	}
}

func TestOperationRecord_LogAttrs_RedactsNames(t *testing.T) {
	record := NewOperationRecord(OpUpload).
		WithFile("file-1", "budget.xlsx").
		CompleteSuccess()

	for _, attr := range record.LogAttrs() {
		if attr.Key == "file_name" && attr.Value.String() != "*.xlsx" {
			t.Errorf("expected redacted file name, got %q", attr.Value.String())
		}
	}

	// Full audit attrs keep the real name.
	found := false
	for _, attr := range record.LogAuditAttrs() {
		if attr.Key == "file_name" {
			found = true
			if attr.Value.String() != "budget.xlsx" {
				t.Errorf("expected full file name in audit attrs, got %q", attr.Value.String())
			}
		}
	}
	if !found {
		t.Error("expected file_name in audit attrs")
	}
}

func TestAuditLogger_LogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	al.LogOperation(NewOperationRecord(OpUpload).
		WithFile("file-1", "budget.xlsx").
		CompleteSuccess())

	output := buf.String()
	if !strings.Contains(output, "operation_completed") {
		t.Errorf("expected completion message, got %q", output)
	}
	if strings.Contains(output, "budget.xlsx") {
		t.Errorf("expected file name to be redacted, got %q", output)
	}
	if !strings.Contains(output, "*.xlsx") {
		t.Errorf("expected redacted name in output, got %q", output)
	}
}

func TestAuditLogger_IncludeNames(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{
		Enabled:      true,
		IncludeNames: true,
	})
	al.LogOperation(NewOperationRecord(OpUpload).
		WithFile("file-1", "budget.xlsx").
		CompleteSuccess())

	if !strings.Contains(buf.String(), "budget.xlsx") {
		t.Errorf("expected full file name in output, got %q", buf.String())
	}
}

func TestAuditLogger_Denied(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLogger(logger)
	al.LogOperation(NewOperationRecord(OpDeleteContents).
		WithFolder("folder-1", "").
		CompleteDenied())

	output := buf.String()
	if !strings.Contains(output, "operation_denied") {
		t.Errorf("expected denial message, got %q", output)
	}
	if !strings.Contains(output, StatusDenied) {
		t.Errorf("expected denied status in output, got %q", output)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})
	al.LogOperation(NewOperationRecord(OpUpload).CompleteSuccess())

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", buf.String())
	}
}
