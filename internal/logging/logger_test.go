package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	return slog.New(newConsoleHandler(io.Writer(&buf), levelVar)), &buf
}

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	logger, buf := newBufferLogger(t)
	NewComponentLogger(logger, "record-store").Info("row appended", String("serial", "ABC123"))

	line := buf.String()
	if !strings.Contains(line, "INFO record-store: row appended") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "serial=ABC123") {
		t.Fatalf("missing serial attr: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be hoisted out of attrs: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.Warn("lookup failed", Error(errors.New("connection refused")))

	line := buf.String()
	if !strings.Contains(line, `error="connection refused"`) {
		t.Fatalf("expected quoted error value, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("should not panic")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}
