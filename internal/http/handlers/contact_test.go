package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aziwar/dr-islam-website-sub002/internal/notify"
	"github.com/aziwar/dr-islam-website-sub002/internal/ratelimit"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0 Safari/537.36"

// mockProvider records sent messages and can be told to fail.
type mockProvider struct {
	name string
	fail bool
	sent []notify.EmailMessage
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Send(_ context.Context, msg notify.EmailMessage) (notify.DeliveryResult, error) {
	if m.fail {
		return notify.DeliveryResult{Provider: m.name, StatusCode: http.StatusInternalServerError, Error: "upstream 500"},
			fmt.Errorf("notify: %s send failed", m.name)
	}
	m.sent = append(m.sent, msg)
	return notify.DeliveryResult{Provider: m.name, Success: true, StatusCode: http.StatusOK}, nil
}

// failSecondProvider delivers the first message and fails all later ones.
type failSecondProvider struct {
	calls int
	sent  []notify.EmailMessage
}

func (m *failSecondProvider) Name() string { return "mock" }

func (m *failSecondProvider) Send(_ context.Context, msg notify.EmailMessage) (notify.DeliveryResult, error) {
	m.calls++
	if m.calls > 1 {
		return notify.DeliveryResult{Provider: m.Name(), StatusCode: http.StatusBadGateway, Error: "upstream 502"},
			fmt.Errorf("notify: send failed")
	}
	m.sent = append(m.sent, msg)
	return notify.DeliveryResult{Provider: m.Name(), Success: true, StatusCode: http.StatusOK}, nil
}

func newTestHandler(t *testing.T, providers ...notify.Provider) *ContactHandler {
	t.Helper()
	dispatcher, err := notify.NewDispatcher(providers, "clinic@example.com", notify.DispatcherOptions{})
	require.NoError(t, err)
	limiter := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 5, time.Hour)
	return NewContactHandler(ContactHandlerConfig{
		Limiter:    limiter,
		Dispatcher: dispatcher,
	})
}

func validBody() string {
	return `{"name":"Ali Hassan","phone":"+96555512345","email":"ali@example.com","service":"implant","message":"When are you open?"}`
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", browserUA)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestContact_EndToEndSuccess(t *testing.T) {
	provider := &mockProvider{name: "sendgrid"}
	h := newTestHandler(t, provider)

	rec := postJSON(h, validBody())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	reference, _ := body["reference"].(string)
	assert.True(t, strings.HasPrefix(reference, "DI-"), "reference %q", reference)

	// Clinic notified first, then patient confirmation.
	require.Len(t, provider.sent, 2)
	assert.Equal(t, "clinic@example.com", provider.sent[0].To)
	assert.Contains(t, provider.sent[0].Subject, "Ali Hassan")
	assert.Equal(t, "ali@example.com", provider.sent[1].To)

	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestContact_OptionsPreflight(t *testing.T) {
	h := newTestHandler(t, &mockProvider{name: "sendgrid"})

	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestContact_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, &mockProvider{name: "sendgrid"})

	req := httptest.NewRequest(http.MethodGet, "/api/contact", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestContact_MalformedBody(t *testing.T) {
	h := newTestHandler(t, &mockProvider{name: "sendgrid"})

	rec := postJSON(h, `{"name": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestContact_ValidationFailure(t *testing.T) {
	provider := &mockProvider{name: "sendgrid"}
	h := newTestHandler(t, provider)

	rec := postJSON(h, `{"name":"A","phone":"nope","email":"bad","service":"implant"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Validation failed", body["error"])
	details, ok := body["details"].([]any)
	require.True(t, ok, "details missing: %v", body)
	assert.Len(t, details, 3)
	assert.Empty(t, provider.sent, "nothing may be emailed for invalid input")
}

func TestContact_FormEncodedBody(t *testing.T) {
	provider := &mockProvider{name: "sendgrid"}
	h := newTestHandler(t, provider)

	form := url.Values{
		"name":    {"Ali Hassan"},
		"phone":   {"+96555512345"},
		"email":   {"ali@example.com"},
		"service": {"consultation"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUA)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, provider.sent, 2)
}

func TestContact_SpamBlocked(t *testing.T) {
	provider := &mockProvider{name: "sendgrid"}
	h := newTestHandler(t, provider)

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(
		`{"name":"Promo","phone":"+96555512345","email":"promo@example.com","service":"other","message":"http://a.example http://b.example http://c.example"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "curl/7.68.0")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Spam detected", body["error"])
	// Generic message only; no score or reasons leak to the caller.
	assert.NotContains(t, rec.Body.String(), "score")
	assert.NotContains(t, rec.Body.String(), "User-Agent")
	assert.Empty(t, provider.sent)
}

func TestContact_RateLimited(t *testing.T) {
	h := newTestHandler(t, &mockProvider{name: "sendgrid"})

	var rec *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		rec = postJSON(h, validBody())
	}

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Rate limit exceeded", body["error"])
	retryAfter, ok := body["retryAfter"].(float64)
	require.True(t, ok, "retryAfter missing: %v", body)
	assert.Greater(t, retryAfter, float64(0))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestContact_RateLimitIdentitiesIndependent(t *testing.T) {
	h := newTestHandler(t, &mockProvider{name: "sendgrid"})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(validBody()))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", browserUA)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestContact_AllProvidersFail(t *testing.T) {
	h := newTestHandler(t,
		&mockProvider{name: "sendgrid", fail: true},
		&mockProvider{name: "resend", fail: true},
	)

	rec := postJSON(h, validBody())

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Email sending failed", body["error"])
}

func TestContact_ProviderFailover(t *testing.T) {
	backup := &mockProvider{name: "resend"}
	h := newTestHandler(t, &mockProvider{name: "sendgrid", fail: true}, backup)

	rec := postJSON(h, validBody())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.EmailResults)
	assert.Equal(t, "sendgrid", resp.EmailResults[0].Provider)
	assert.False(t, resp.EmailResults[0].Success, "failed first attempt must be recorded")
	assert.Equal(t, "resend", resp.EmailResults[1].Provider)
	assert.True(t, resp.EmailResults[1].Success)
}

func TestContact_PartialPatientFailureStillSucceeds(t *testing.T) {
	h := newTestHandler(t, &failSecondProvider{})

	rec := postJSON(h, validBody())

	require.Equal(t, http.StatusOK, rec.Code)

	var resp submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "confirmation")

	// Clinic attempt succeeded, patient attempt recorded as failed.
	require.Len(t, resp.EmailResults, 2)
	assert.True(t, resp.EmailResults[0].Success)
	assert.False(t, resp.EmailResults[1].Success)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		remote   string
		expected string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.9, 70.41.3.18"}, "10.0.0.1:1234", "203.0.113.9"},
		{"single forwarded", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "10.0.0.1:1234", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.7"}, "10.0.0.1:1234", "198.51.100.7"},
		{"remote addr", nil, "192.0.2.4:5678", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, clientIP(req))
		})
	}
}
