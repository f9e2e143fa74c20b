package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nees-commerce/admin-gateway/internal/middleware"
)

// catalogPrefixes are the upstream areas the gateway exposes
// untouched. File upload routes stay off this list.
var catalogPrefixes = map[string]bool{
	"brand":             true,
	"category":          true,
	"coupon":            true,
	"product":           true,
	"machines":          true,
	"clinical-products": true,
	"contact-us":        true,
}

// CatalogHandler relays catalog management requests to the backend
// verbatim. The order workflow is the only surface the gateway
// reshapes; everything else passes through.
type CatalogHandler struct {
	backend Forwarder
}

func NewCatalogHandler(backend Forwarder) *CatalogHandler {
	return &CatalogHandler{backend: backend}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/*", h.Proxy)
}

func (h *CatalogHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	path := chi.URLParam(r, "*")
	prefix, _, _ := strings.Cut(path, "/")
	if !catalogPrefixes[prefix] {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var body io.Reader
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodDelete {
		body = io.LimitReader(r.Body, 10<<20)
	}

	upstreamPath := "/" + path
	if r.URL.RawQuery != "" {
		upstreamPath += "?" + r.URL.RawQuery
	}

	raw, err := h.backend.Forward(r.Context(), r.Method, upstreamPath, claims.UpstreamToken, body)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeRaw(w, raw)
}
