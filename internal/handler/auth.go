package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nees-commerce/admin-gateway/internal/auth"
)

// LoginBackend is the slice of the upstream client auth needs.
type LoginBackend interface {
	Login(ctx context.Context, email, password string) (json.RawMessage, error)
}

// AuthHandler proxies credential checks to the upstream backend and
// mints the gateway's own session token from the returned profile.
type AuthHandler struct {
	backend   LoginBackend
	jwtSecret string
}

func NewAuthHandler(backend LoginBackend, jwtSecret string) *AuthHandler {
	return &AuthHandler{backend: backend, jwtSecret: jwtSecret}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	raw, err := h.backend.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	profile := parseLoginProfile(raw)
	if profile.Token == "" || profile.Role == "" {
		writeError(w, http.StatusBadGateway, "unexpected login response")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, profile.ID, profile.Name, profile.Role, profile.Token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User: userResponse{
			ID:    profile.ID,
			Name:  profile.Name,
			Email: profile.Email,
			Role:  profile.Role,
		},
	})
}

type loginProfile struct {
	Token string
	ID    string
	Name  string
	Email string
	Role  string
}

// parseLoginProfile digs the token and admin profile out of the login
// response, which sometimes nests the profile under a wrapper key.
func parseLoginProfile(raw json.RawMessage) loginProfile {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return loginProfile{}
	}

	p := loginProfile{
		Token: stringField(obj, "token", "accessToken"),
		ID:    stringField(obj, "_id", "id"),
		Name:  stringField(obj, "name"),
		Email: stringField(obj, "email"),
		Role:  stringField(obj, "role"),
	}

	for _, key := range []string{"user", "admin", "data"} {
		inner, ok := obj[key]
		if !ok {
			continue
		}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err != nil {
			continue
		}
		if p.Token == "" {
			p.Token = stringField(nested, "token", "accessToken")
		}
		if p.ID == "" {
			p.ID = stringField(nested, "_id", "id")
		}
		if p.Name == "" {
			p.Name = stringField(nested, "name")
		}
		if p.Email == "" {
			p.Email = stringField(nested, "email")
		}
		if p.Role == "" {
			p.Role = stringField(nested, "role")
		}
	}
	return p
}

func stringField(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
