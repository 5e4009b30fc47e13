package handlers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aziwar/dr-islam-website-sub002/internal/contact"
	"github.com/aziwar/dr-islam-website-sub002/internal/notify"
	"github.com/aziwar/dr-islam-website-sub002/internal/ratelimit"
	"github.com/aziwar/dr-islam-website-sub002/pkg/logging"
)

const maxBodyBytes = 64 << 10

// ContactHandler runs the submission pipeline for the public contact
// endpoint: method check, rate limit, parse, validate, sanitize, spam
// check, email dispatch. The ordering is load-bearing: nothing reaches
// template rendering before validation and the spam check have passed.
type ContactHandler struct {
	limiter       ratelimit.Limiter
	dispatcher    *notify.Dispatcher
	spamThreshold int
	debug         bool
	logger        *logging.Logger
	metrics       *ContactMetrics
}

// ContactHandlerConfig wires the handler's collaborators.
type ContactHandlerConfig struct {
	Limiter       ratelimit.Limiter
	Dispatcher    *notify.Dispatcher
	SpamThreshold int
	Debug         bool
	Logger        *logging.Logger
	Metrics       *ContactMetrics
}

// NewContactHandler creates the contact form handler.
func NewContactHandler(cfg ContactHandlerConfig) *ContactHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	threshold := cfg.SpamThreshold
	if threshold <= 0 {
		threshold = contact.DefaultSpamThreshold
	}
	return &ContactHandler{
		limiter:       cfg.Limiter,
		dispatcher:    cfg.Dispatcher,
		spamThreshold: threshold,
		debug:         cfg.Debug,
		logger:        logger,
		metrics:       cfg.Metrics,
	}
}

type submitResponse struct {
	Success      bool                    `json:"success"`
	Message      string                  `json:"message,omitempty"`
	Reference    string                  `json:"reference,omitempty"`
	EmailResults []notify.DeliveryResult `json:"emailResults,omitempty"`
}

type errorResponse struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error"`
	Message    string   `json:"message,omitempty"`
	Details    []string `json:"details,omitempty"`
	RetryAfter int      `json:"retryAfter,omitempty"`
}

// ServeHTTP dispatches on method: OPTIONS preflights terminate here, POST
// runs the pipeline, everything else is rejected. CORS headers are applied
// by middleware before this handler runs, so every branch carries them.
func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer h.recoverPanic(w, r)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		h.count("method_not_allowed")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	}
}

func (h *ContactHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	identity := clientIP(r)

	limit, err := h.limiter.Check(r.Context(), identity)
	if err != nil {
		// Limiters fail open; an error here is a bug worth logging, not a
		// reason to drop a patient inquiry.
		h.logger.Error("rate limit check errored", "error", err, "identity", identity)
		limit.Allowed = true
	}
	if !limit.Allowed {
		h.count("rate_limited")
		retryAfter := int(limit.RetryAfter.Round(time.Second).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.logger.Warn("rate limit exceeded", "identity", identity, "reset_at", limit.ResetAt)
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Error:      "Rate limit exceeded",
			Message:    "Too many requests. Please try again later.",
			RetryAfter: retryAfter,
		})
		return
	}

	req, err := parseSubmission(r)
	if err != nil {
		h.count("bad_request")
		h.logger.Warn("unparseable submission body", "error", err, "identity", identity)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}

	if result := contact.Validate(req); !result.Valid {
		h.count("validation_failed")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Validation failed",
			Details: result.Errors,
		})
		return
	}

	sub := contact.Sanitize(req)

	if assessment := contact.AssessSpam(sub, r.Header, h.spamThreshold); assessment.IsSpam {
		h.count("spam_blocked")
		// Score and matched rules stay server-side; the caller only sees a
		// generic rejection.
		h.logger.Warn("submission blocked as spam",
			"identity", identity,
			"score", assessment.Score,
			"reasons", strings.Join(assessment.Reasons, "; "),
		)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "Spam detected",
			Message: "Your submission could not be processed. Please contact the clinic directly.",
		})
		return
	}

	summary, err := h.dispatcher.SendAll(r.Context(), sub)
	if err != nil {
		h.count("delivery_failed")
		h.logger.Error("clinic notification undeliverable", "error", err, "identity", identity)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Email sending failed",
			Message: "We could not process your request right now. Please call the clinic directly.",
		})
		return
	}

	h.count("accepted")
	reference := newReference()
	message := "Thank you! Your request has been received and the clinic has been notified."
	if summary.PatientAttempted() && !summary.PatientDelivered() {
		message = "Thank you! Your request has been received, but we could not send you a confirmation email."
	}

	h.logger.Info("submission accepted",
		"reference", reference,
		"service", sub.Service,
		"patient_confirmed", summary.PatientDelivered(),
	)

	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit.Remaining))
	writeJSON(w, http.StatusOK, submitResponse{
		Success:      true,
		Message:      message,
		Reference:    reference,
		EmailResults: summary.Results(),
	})
}

func (h *ContactHandler) recoverPanic(w http.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	h.count("internal_error")
	h.logger.Error("panic handling submission", "panic", fmt.Sprint(rec), "path", r.URL.Path)
	resp := errorResponse{Error: "Internal server error"}
	if h.debug {
		resp.Message = fmt.Sprint(rec)
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func (h *ContactHandler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.submissions.WithLabelValues(outcome).Inc()
	}
}

// parseSubmission accepts JSON or form-encoded bodies.
func parseSubmission(r *http.Request) (contact.SubmissionRequest, error) {
	var req contact.SubmissionRequest
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	contentType := r.Header.Get("Content-Type")
	if mediaType, _, found := strings.Cut(contentType, ";"); found {
		contentType = mediaType
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))

	switch contentType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		req.Name = r.PostFormValue("name")
		req.Phone = r.PostFormValue("phone")
		req.Email = r.PostFormValue("email")
		req.Service = r.PostFormValue("service")
		req.Message = r.PostFormValue("message")
		return req, nil
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("decode json: %w", err)
		}
		return req, nil
	}
}

// clientIP extracts the real client IP. X-Forwarded-For is checked first
// (both deployment targets sit behind a proxy or API gateway), then
// X-Real-Ip, then RemoteAddr.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func newReference() string {
	return "DI-" + strings.ToUpper(uuid.NewString()[:8])
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
