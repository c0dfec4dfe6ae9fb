package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shalev396/Call-Filter/internal/domain"
	"github.com/shalev396/Call-Filter/internal/port"
)

const maxBodyBytes = 1 << 20

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/call-filter", h.ServeCallFilter)
	mux.HandleFunc("GET /api/accounts", h.ListAccounts)
	mux.HandleFunc("POST /api/accounts", h.CreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", h.GetAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", h.DeleteAccount)
	mux.HandleFunc("GET /api/accounts/{id}/config", h.GetConfig)
	mux.HandleFunc("PUT /api/accounts/{id}/config", h.UpdateConfig)
	mux.HandleFunc("GET /api/accounts/{id}/preview", h.Preview)
	mux.HandleFunc("GET /healthz", h.Health)
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, port.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrMalformedConfig),
		errors.Is(err, domain.ErrUnknownTimezone):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	http.Error(w, err.Error(), status)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	type accountInfo struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	result := make([]accountInfo, 0, len(accounts))
	for _, a := range accounts {
		result = append(result, accountInfo{ID: a.ID, Name: a.Name, Version: a.Version})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	acc, err := h.svc.CreateAccount(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": acc.ID})
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	acc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", `"`+acc.Version+`"`)
	writeJSON(w, http.StatusOK, acc.Config)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.Config
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	acc, err := h.svc.UpdateConfig(r.Context(), r.PathValue("id"), cfg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": acc.ID, "version": acc.Version})
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Preview(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lookup loads the account named by the {id} path value and writes 404 if it is missing.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Account, bool) {
	acc, err := h.svc.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	if acc == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil, false
	}
	return acc, true
}
