package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shalev396/Call-Filter/internal/usecase/screening"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

type Handler struct {
	svc     *screening.Service
	limiter *rate.Limiter
	logger  zerolog.Logger
}

type Option func(*Handler)

// WithRateLimit limits the call-filter webhook to rps requests per second.
// A non-positive rps disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(h *Handler) {
		if rps <= 0 {
			h.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewHandler(svc *screening.Service, logger zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		logger: logger.With().Str("component", "http").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeCallFilter answers the telephony webhook. The caller number is read from the
// "From" (or "from") form or query field. The response is always a decision; the
// status is 200 when the call is allowed and 403 otherwise.
func (h *Handler) ServeCallFilter(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	w.Header().Set(requestIDHeader, requestID)

	if h.limiter != nil && !h.limiter.Allow() {
		h.logger.Warn().Str("request_id", requestID).Msg("call filter rate limited")
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	// ParseForm also merges query parameters into r.Form.
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	accountID := r.Form.Get("account_id")
	caller := r.Form.Get("From")
	if caller == "" {
		caller = r.Form.Get("from")
	}

	d := h.svc.Screen(r.Context(), accountID, caller)
	h.logger.Debug().
		Str("request_id", requestID).
		Str("account_id", accountID).
		Bool("allow", d.Allow).
		Str("reason", string(d.Reason)).
		Msg("webhook answered")

	status := http.StatusOK
	if !d.Allow {
		status = http.StatusForbidden
	}
	writeJSON(w, status, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
