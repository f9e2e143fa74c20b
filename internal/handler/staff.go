package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nees-commerce/admin-gateway/internal/auth"
	"github.com/nees-commerce/admin-gateway/internal/enum"
	"github.com/nees-commerce/admin-gateway/internal/middleware"
)

// Forwarder relays raw requests to the upstream backend.
type Forwarder interface {
	Forward(ctx context.Context, method, path, token string, body io.Reader) (json.RawMessage, error)
}

// StaffHandler manages admin staff accounts by proxying to the
// backend, enforcing the role hierarchy before anything leaves the
// gateway.
type StaffHandler struct {
	backend Forwarder
}

func NewStaffHandler(backend Forwarder) *StaffHandler {
	return &StaffHandler{backend: backend}
}

func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	raw, err := h.backend.Forward(r.Context(), http.MethodGet, "/admin/all", claims.UpstreamToken, nil)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeRaw(w, raw)
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.forwardManaged(w, r, http.MethodPost, "/admin/add")
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.forwardManaged(w, r, http.MethodPut, "/admin/update-stuff/"+url.PathEscape(id))
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	// Only the CEO removes accounts; there is no target role to
	// inspect on a delete.
	if claims.Role != enum.RoleCEO {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	id := chi.URLParam(r, "id")
	raw, err := h.backend.Forward(r.Context(), http.MethodDelete, "/admin/"+url.PathEscape(id), claims.UpstreamToken, nil)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeRaw(w, raw)
}

// forwardManaged relays a staff mutation after checking the actor may
// manage an account with the role named in the payload.
func (h *StaffHandler) forwardManaged(w http.ResponseWriter, r *http.Request, method, path string) {
	claims := middleware.ClaimsFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Role == "" {
		writeError(w, http.StatusBadRequest, "role is required")
		return
	}
	if !auth.CanManageStaff(claims.Role, payload.Role) {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	raw, err := h.backend.Forward(r.Context(), method, path, claims.UpstreamToken, bytes.NewReader(body))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeRaw(w, raw)
}

func writeRaw(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}
