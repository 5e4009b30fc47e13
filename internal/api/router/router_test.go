package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aziwar/dr-islam-website-sub002/internal/http/handlers"
	"github.com/aziwar/dr-islam-website-sub002/internal/notify"
	"github.com/aziwar/dr-islam-website-sub002/internal/ratelimit"
)

type okProvider struct{}

func (okProvider) Name() string { return "ok" }

func (okProvider) Send(_ context.Context, _ notify.EmailMessage) (notify.DeliveryResult, error) {
	return notify.DeliveryResult{Provider: "ok", Success: true, StatusCode: http.StatusOK}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dispatcher, err := notify.NewDispatcher([]notify.Provider{okProvider{}}, "clinic@example.com", notify.DispatcherOptions{})
	if err != nil {
		t.Fatal(err)
	}
	contactHandler := handlers.NewContactHandler(handlers.ContactHandlerConfig{
		Limiter:    ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 5, time.Hour),
		Dispatcher: dispatcher,
	})
	return New(&Config{
		ContactHandler: contactHandler,
		AllowedOrigins: []string{"https://dr-elsagher.com"},
	})
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouter_ContactCarriesCORSOnEveryBranch(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		wantStatus int
	}{
		{"preflight", http.MethodOptions, http.StatusNoContent},
		{"wrong method", http.MethodGet, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/contact", nil)
			req.Header.Set("Origin", "https://dr-elsagher.com")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://dr-elsagher.com" {
				t.Errorf("missing CORS header on %s branch: %q", tt.name, got)
			}
		})
	}
}

func TestRouter_SubmitThroughFullStack(t *testing.T) {
	r := newTestRouter(t)

	body := `{"name":"Ali Hassan","phone":"+96555512345","email":"ali@example.com","service":"implant","message":"When are you open?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://dr-elsagher.com")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/125.0 Safari/537.36")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing CORS header on success")
	}
}
