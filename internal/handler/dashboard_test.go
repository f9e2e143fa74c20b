package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nees-commerce/admin-gateway/internal/enum"
	"github.com/nees-commerce/admin-gateway/internal/handler"
	"github.com/nees-commerce/admin-gateway/internal/middleware"
)

type mockMetrics struct {
	mu    sync.Mutex
	resps map[string]json.RawMessage
	errs  map[string]error
	paths []string
}

func (m *mockMetrics) GetJSON(_ context.Context, _, path string) (json.RawMessage, error) {
	m.mu.Lock()
	m.paths = append(m.paths, path)
	m.mu.Unlock()
	if err := m.errs[path]; err != nil {
		return nil, err
	}
	if resp, ok := m.resps[path]; ok {
		return resp, nil
	}
	return json.RawMessage(`{}`), nil
}

func TestDashboardMetricsMerge(t *testing.T) {
	backend := &mockMetrics{resps: map[string]json.RawMessage{
		"/user-order/dashboard-amount":       json.RawMessage(`{"todayAmount":120}`),
		"/user-order/sales-report":           json.RawMessage(`[{"date":"2026-03-14"}]`),
		"/user-order/most-selling-category":  json.RawMessage(`[{"name":"Serums"}]`),
		"/user-order/dashboard-recent-order": json.RawMessage(`{"orders":[]}`),
	}}
	h := handler.NewDashboardHandler(backend)
	r := chi.NewRouter()
	r.Route("/dashboard", h.RegisterRoutes)

	req := httptest.NewRequest("GET", "/dashboard/metrics", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), testClaims(enum.RoleAdmin)))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if len(backend.paths) != 4 {
		t.Errorf("fetched %d metrics, want 4", len(backend.paths))
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(resp["amounts"]) != `{"todayAmount":120}` {
		t.Errorf("amounts = %s", resp["amounts"])
	}
	if string(resp["salesReport"]) != `[{"date":"2026-03-14"}]` {
		t.Errorf("salesReport = %s", resp["salesReport"])
	}
}

func TestDashboardMetricsPartialFailure(t *testing.T) {
	backend := &mockMetrics{
		resps: map[string]json.RawMessage{
			"/user-order/dashboard-amount": json.RawMessage(`{"todayAmount":5}`),
		},
		errs: map[string]error{
			"/user-order/sales-report": errors.New("boom"),
		},
	}
	h := handler.NewDashboardHandler(backend)
	r := chi.NewRouter()
	r.Route("/dashboard", h.RegisterRoutes)

	req := httptest.NewRequest("GET", "/dashboard/metrics", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), testClaims(enum.RoleAdmin)))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(resp["salesReport"]) != "null" {
		t.Errorf("failed metric = %s, want null", resp["salesReport"])
	}
	if string(resp["amounts"]) != `{"todayAmount":5}` {
		t.Errorf("amounts = %s", resp["amounts"])
	}
}
