package notifications_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"broll/internal/notifications"
	"broll/internal/testsupport"
)

type recorded struct {
	title    string
	tags     string
	priority string
	body     string
}

func recordingServer(t *testing.T, sink *[]recorded) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		*sink = append(*sink, recorded{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNoopServiceWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""

	service := notifications.NewService(cfg)
	if err := service.NotifyError(context.Background(), errors.New("boom"), "planning"); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
}

func TestNotificationsCarryNtfyHeaders(t *testing.T) {
	var got []recorded
	server := recordingServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(cfg)
	ctx := context.Background()
	if err := service.NotifyPlanReady(ctx, "Morning Routine", 6, 2); err != nil {
		t.Fatalf("notify plan ready: %v", err)
	}
	if err := service.NotifyProcessingCompleted(ctx, "Morning Routine", "/out/clip_broll.mp4"); err != nil {
		t.Fatalf("notify completed: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].title != "Broll - Plan Ready" {
		t.Fatalf("unexpected title %q", got[0].title)
	}
	if got[0].tags != "broll,plan,ready" {
		t.Fatalf("unexpected tags %q", got[0].tags)
	}
	if got[1].priority != "high" {
		t.Fatalf("completion should be high priority, got %q", got[1].priority)
	}
}

func TestCompletionToggleSuppressesNotification(t *testing.T) {
	var got []recorded
	server := recordingServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completed = false
	cfg.Notifications.Errors = false

	service := notifications.NewService(cfg)
	ctx := context.Background()
	if err := service.NotifyProcessingCompleted(ctx, "Morning Routine", ""); err != nil {
		t.Fatalf("notify completed: %v", err)
	}
	if err := service.NotifyError(ctx, errors.New("boom"), "rendering"); err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected suppressed notifications, got %d", len(got))
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	service := notifications.NewService(cfg)
	if err := service.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from ntfy failure response")
	}
}
