package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/nees-commerce/admin-gateway/internal/audit"
	"github.com/nees-commerce/admin-gateway/internal/auth"
	"github.com/nees-commerce/admin-gateway/internal/enum"
	"github.com/nees-commerce/admin-gateway/internal/middleware"
	"github.com/nees-commerce/admin-gateway/internal/order"
	"github.com/nees-commerce/admin-gateway/internal/service"
	"github.com/nees-commerce/admin-gateway/internal/slip"
)

// OrderWorkflow drives status transitions. Satisfied by
// *service.Workflow; narrow interface for testability.
type OrderWorkflow interface {
	Load(ctx context.Context, token, id string) (*service.OrderView, error)
	Transition(ctx context.Context, token, id string, actor service.Actor, req service.TransitionRequest) (*service.OrderView, error)
}

// OrderLister fetches the order collection from the backend.
type OrderLister interface {
	ListOrders(ctx context.Context, token string) ([]order.Order, error)
}

// HistoryStore reads the recorded transition trail. May be absent
// when the gateway runs without a database.
type HistoryStore interface {
	History(ctx context.Context, orderID string) ([]audit.StatusEvent, error)
}

type OrderHandler struct {
	workflow OrderWorkflow
	lister   OrderLister
	slips    *slip.Generator
	history  HistoryStore
}

func NewOrderHandler(workflow OrderWorkflow, lister OrderLister, slips *slip.Generator, history HistoryStore) *OrderHandler {
	return &OrderHandler{workflow: workflow, lister: lister, slips: slips, history: history}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Get("/{id}/slip", h.Slip)
	r.Get("/{id}/history", h.HistoryByOrder)
}

// --- Response types ---

type orderListResponse struct {
	Orders []orderSummary `json:"orders"`
	Stats  orderStats     `json:"stats"`
}

type orderSummary struct {
	ID            string `json:"id"`
	Invoice       string `json:"invoice"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Status        string `json:"status"`
	TotalAmount   string `json:"totalAmount"`
	ItemCount     int    `json:"itemCount"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

type orderStats struct {
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Dispatched int    `json:"dispatched"`
	Cancelled  int    `json:"cancelled"`
	Revenue    string `json:"revenue"`
}

type orderViewResponse struct {
	Order       *order.Order `json:"order"`
	Status      string       `json:"status"`
	AllowedNext []string     `json:"allowedNext"`
	Couriers    []string     `json:"couriers"`
}

type statusEventResponse struct {
	OrderID    string `json:"orderId"`
	FromStatus string `json:"from"`
	ToStatus   string `json:"to"`
	TrackingID string `json:"trackingId,omitempty"`
	Courier    string `json:"courierCompany,omitempty"`
	ActorName  string `json:"actorName,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// --- Handlers ---

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	orders, err := h.lister.ListOrders(r.Context(), claims.UpstreamToken)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	var filter order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter = order.Normalize(raw)
	}

	resp := orderListResponse{Orders: make([]orderSummary, 0, len(orders))}
	revenue := decimal.Zero
	for i := range orders {
		o := &orders[i]
		status := o.CurrentStatus()
		resp.Stats.Total++
		switch status {
		case order.StatusPending:
			resp.Stats.Pending++
		case order.StatusProcessing:
			resp.Stats.Processing++
		case order.StatusDispatch:
			resp.Stats.Dispatched++
		case order.StatusCancel:
			resp.Stats.Cancelled++
		}
		revenue = revenue.Add(o.TotalAmount.Decimal)

		// Stats cover every order; the filter only narrows the list.
		if filter != "" && status != filter {
			continue
		}

		summary := orderSummary{
			ID:            o.ID.String(),
			Invoice:       o.InvoiceOrID(),
			Name:          o.Name,
			Email:         o.Email,
			Status:        string(status),
			TotalAmount:   o.TotalAmount.String(),
			ItemCount:     o.ItemCount(),
			PaymentMethod: o.PaymentMethod,
		}
		if !o.CreatedAt.IsZero() {
			summary.CreatedAt = o.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		resp.Orders = append(resp.Orders, summary)
	}
	resp.Stats.Revenue = revenue.String()

	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	view, err := h.workflow.Load(r.Context(), claims.UpstreamToken, id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewResponse(view))
}

type updateStatusRequest struct {
	Status         string `json:"status"`
	TrackingID     string `json:"trackingId"`
	CourierCompany string `json:"courierCompany"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	view, err := h.workflow.Transition(
		r.Context(),
		claims.UpstreamToken,
		id,
		service.Actor{ID: claims.AdminID, Name: claims.Name},
		service.TransitionRequest{
			Status:         req.Status,
			TrackingID:     req.TrackingID,
			CourierCompany: req.CourierCompany,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoChange):
			writeError(w, http.StatusConflict, service.ErrNoChange.Error())
		case errors.Is(err, service.ErrTransitionNotAllowed):
			writeError(w, http.StatusUnprocessableEntity, service.ErrTransitionNotAllowed.Error())
		case errors.Is(err, service.ErrTrackingRequired):
			writeError(w, http.StatusUnprocessableEntity, service.ErrTrackingRequired.Error())
		default:
			writeUpstreamError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, viewResponse(view))
}

func (h *OrderHandler) Slip(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if !auth.CanPrintSlips(claims.Role) {
		writeError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = enum.PaperAuto
	}
	if !slip.ValidFormat(format) {
		writeError(w, http.StatusBadRequest, "unknown format")
		return
	}

	id := chi.URLParam(r, "id")
	view, err := h.workflow.Load(r.Context(), claims.UpstreamToken, id)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.slips.Render(w, view.Order, format); err != nil {
		log.Printf("ERROR: render slip for order %s: %v", id, err)
	}
}

func (h *OrderHandler) HistoryByOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.history == nil {
		writeJSON(w, http.StatusOK, []statusEventResponse{})
		return
	}

	events, err := h.history.History(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: load history for order %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]statusEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, statusEventResponse{
			OrderID:    ev.OrderID,
			FromStatus: ev.FromStatus,
			ToStatus:   ev.ToStatus,
			TrackingID: ev.TrackingID.String,
			Courier:    ev.Courier.String,
			ActorName:  ev.ActorName.String,
			CreatedAt:  ev.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func viewResponse(view *service.OrderView) orderViewResponse {
	next := make([]string, len(view.AllowedNext))
	for i, s := range view.AllowedNext {
		next[i] = string(s)
	}
	return orderViewResponse{
		Order:       view.Order,
		Status:      string(view.Current),
		AllowedNext: next,
		Couriers:    enum.CourierCompanies,
	}
}
