package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/notifications"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/testsupport"
)

type captured struct {
	title    string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNotifyBatchFinalized(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	cfg.Notifications.Finalize = true
	service := notifications.NewService(cfg)

	if err := service.NotifyBatchFinalized(context.Background(), "20250314-cph-crc.xlsx", 12); err != nil {
		t.Fatalf("notify finalize: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].title != "CRC Scanner - Batch Finalized" {
		t.Fatalf("unexpected title %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "20250314-cph-crc.xlsx") || !strings.Contains(got[0].body, "12") {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestNotifyErrorHonorsToggle(t *testing.T) {
	var got []captured
	server := newCaptureServer(t, &got)

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	cfg.Notifications.Errors = false
	service := notifications.NewService(cfg)

	if err := service.NotifyError(context.Background(), errors.New("boom"), "finalize"); err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected suppressed notification, got %d", len(got))
	}

	cfg.Notifications.Errors = true
	service = notifications.NewService(cfg)
	if err := service.NotifyError(context.Background(), errors.New("boom"), "finalize"); err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].priority != "high" {
		t.Fatalf("expected high priority, got %q", got[0].priority)
	}
	if !strings.Contains(got[0].body, "finalize") || !strings.Contains(got[0].body, "boom") {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestNoopWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	service := notifications.NewService(cfg)

	if err := service.TestNotification(context.Background()); err != nil {
		t.Fatalf("noop test notification: %v", err)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithNtfyTopic(server.URL))
	service := notifications.NewService(cfg)

	err := service.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
}
