package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/nees-commerce/admin-gateway/internal/middleware"
)

// MetricsBackend fetches a single JSON resource from the backend.
type MetricsBackend interface {
	GetJSON(ctx context.Context, token, path string) (json.RawMessage, error)
}

// DashboardHandler merges the backend's separate metric endpoints
// into one response so the dashboard loads with a single round trip.
type DashboardHandler struct {
	backend MetricsBackend
}

func NewDashboardHandler(backend MetricsBackend) *DashboardHandler {
	return &DashboardHandler{backend: backend}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.Metrics)
}

type dashboardMetrics struct {
	Amounts             json.RawMessage `json:"amounts"`
	SalesReport         json.RawMessage `json:"salesReport"`
	MostSellingCategory json.RawMessage `json:"mostSellingCategory"`
	RecentOrders        json.RawMessage `json:"recentOrders"`
}

var metricSources = []struct {
	path   string
	assign func(*dashboardMetrics, json.RawMessage)
}{
	{"/user-order/dashboard-amount", func(m *dashboardMetrics, raw json.RawMessage) { m.Amounts = raw }},
	{"/user-order/sales-report", func(m *dashboardMetrics, raw json.RawMessage) { m.SalesReport = raw }},
	{"/user-order/most-selling-category", func(m *dashboardMetrics, raw json.RawMessage) { m.MostSellingCategory = raw }},
	{"/user-order/dashboard-recent-order", func(m *dashboardMetrics, raw json.RawMessage) { m.RecentOrders = raw }},
}

func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		metrics dashboardMetrics
	)
	for _, src := range metricSources {
		wg.Add(1)
		go func(path string, assign func(*dashboardMetrics, json.RawMessage)) {
			defer wg.Done()
			raw, err := h.backend.GetJSON(r.Context(), claims.UpstreamToken, path)
			if err != nil {
				// One failed metric degrades to null rather than
				// failing the whole dashboard.
				log.Printf("ERROR: fetch %s: %v", path, err)
				raw = json.RawMessage("null")
			}
			mu.Lock()
			assign(&metrics, raw)
			mu.Unlock()
		}(src.path, src.assign)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, metrics)
}
