package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/nees-commerce/admin-gateway/internal/upstream"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError maps upstream client failures onto gateway
// responses. Unknown failures surface as 502 so callers can tell a
// backend outage from a gateway bug.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "upstream session expired")
	case errors.Is(err, upstream.ErrForbidden):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, upstream.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			log.Printf("ERROR: upstream returned %d: %s", apiErr.StatusCode, apiErr.Message)
		} else {
			log.Printf("ERROR: upstream request failed: %v", err)
		}
		writeError(w, http.StatusBadGateway, "backend unavailable")
	}
}
