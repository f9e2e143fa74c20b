package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nees-commerce/admin-gateway/internal/auth"
	"github.com/nees-commerce/admin-gateway/internal/handler"
	"github.com/nees-commerce/admin-gateway/internal/upstream"
)

const testSecret = "test-secret"

type mockLoginBackend struct {
	resp      json.RawMessage
	err       error
	lastEmail string
}

func (m *mockLoginBackend) Login(_ context.Context, email, _ string) (json.RawMessage, error) {
	m.lastEmail = email
	return m.resp, m.err
}

func serveLogin(t *testing.T, backend *mockLoginBackend, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := handler.NewAuthHandler(backend, testSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestLogin(t *testing.T) {
	backend := &mockLoginBackend{resp: json.RawMessage(`{"token":"up-tok","_id":"a1","name":"Boss","email":"ceo@x.com","role":"CEO"}`)}

	rr := serveLogin(t, backend, `{"email":"ceo@x.com","password":"secret"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body)
	}
	if backend.lastEmail != "ceo@x.com" {
		t.Errorf("email forwarded = %q", backend.lastEmail)
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Name string `json:"name"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.User.Role != "CEO" {
		t.Errorf("role = %q, want CEO", resp.User.Role)
	}

	claims, err := auth.ValidateToken(testSecret, resp.Token)
	if err != nil {
		t.Fatalf("validate minted token: %v", err)
	}
	if claims.Role != "CEO" || claims.Name != "Boss" || claims.AdminID != "a1" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.UpstreamToken != "up-tok" {
		t.Errorf("upstream token = %q, want up-tok", claims.UpstreamToken)
	}
}

func TestLoginNestedProfile(t *testing.T) {
	backend := &mockLoginBackend{resp: json.RawMessage(`{"token":"up-tok","user":{"_id":"a2","name":"Mgr","role":"Manager"}}`)}

	rr := serveLogin(t, backend, `{"email":"m@x.com","password":"pw"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200: %s", rr.Code, rr.Body)
	}

	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(rr.Body.Bytes(), &resp)
	claims, err := auth.ValidateToken(testSecret, resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Role != "Manager" || claims.AdminID != "a2" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	backend := &mockLoginBackend{err: upstream.ErrUnauthorized}

	rr := serveLogin(t, backend, `{"email":"x@x.com","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rr.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	for _, body := range []string{`{}`, `{"email":"x@x.com"}`, `{"password":"pw"}`, `not json`} {
		rr := serveLogin(t, &mockLoginBackend{}, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rr.Code)
		}
	}
}

func TestLoginUnparseableProfile(t *testing.T) {
	backend := &mockLoginBackend{resp: json.RawMessage(`{"message":"welcome"}`)}

	rr := serveLogin(t, backend, `{"email":"x@x.com","password":"pw"}`)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", rr.Code)
	}
}
