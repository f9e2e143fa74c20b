package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/nees-commerce/admin-gateway/internal/order"
)

var (
	ErrNoChange             = errors.New("order already has this status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrTrackingRequired     = errors.New("tracking id and courier company are required to dispatch")
)

// Backend is the slice of the upstream client the workflow needs.
type Backend interface {
	GetOrder(ctx context.Context, token, id string) (*order.Order, error)
	UpdateOrder(ctx context.Context, token, id string, patch map[string]string) error
}

// StatusChange describes one applied transition, for auditing and
// live notifications.
type StatusChange struct {
	OrderID    string
	Invoice    string
	From       order.Status
	To         order.Status
	TrackingID string
	Courier    string
	ActorID    string
	ActorName  string
}

// AuditLog records applied transitions. Recording failures must not
// fail the transition itself.
type AuditLog interface {
	RecordStatusChange(ctx context.Context, change StatusChange) error
}

// Notifier fans a change out to connected dashboards.
type Notifier interface {
	NotifyStatusChange(change StatusChange)
}

// OrderView is an order plus the workflow state derived from it.
type OrderView struct {
	Order       *order.Order
	Current     order.Status
	AllowedNext []order.Status
}

// TransitionRequest is a submitted status change. Status is the raw
// user-supplied value; tracking fields are only consulted when the
// target is dispatch.
type TransitionRequest struct {
	Status         string
	TrackingID     string
	CourierCompany string
}

// Actor identifies the admin performing a transition.
type Actor struct {
	ID   string
	Name string
}

// Workflow drives the order status lifecycle against the upstream
// backend. Audit and notifier may be nil.
type Workflow struct {
	backend Backend
	audit   AuditLog
	notify  Notifier
}

func NewWorkflow(backend Backend, audit AuditLog, notify Notifier) *Workflow {
	return &Workflow{backend: backend, audit: audit, notify: notify}
}

// Load fetches an order and derives its workflow view.
func (wf *Workflow) Load(ctx context.Context, token, id string) (*OrderView, error) {
	o, err := wf.backend.GetOrder(ctx, token, id)
	if err != nil {
		return nil, err
	}
	return viewOf(o), nil
}

// Transition validates and applies a status change, then re-fetches
// the order so the caller sees exactly what the backend stored rather
// than an optimistic local copy.
func (wf *Workflow) Transition(ctx context.Context, token, id string, actor Actor, req TransitionRequest) (*OrderView, error) {
	o, err := wf.backend.GetOrder(ctx, token, id)
	if err != nil {
		return nil, err
	}

	current := o.CurrentStatus()
	target := order.Normalize(req.Status)

	if target == current {
		return nil, ErrNoChange
	}
	if !order.CanTransition(current, target) {
		return nil, ErrTransitionNotAllowed
	}

	patch := map[string]string{"status": order.WireValue(target)}

	var tracking, courier string
	if target == order.StatusDispatch {
		// The form pre-fills from the record, so a blank submission
		// falls back to whatever the order already carries.
		tracking = strings.TrimSpace(req.TrackingID)
		if tracking == "" {
			tracking = o.Tracking()
		}
		courier = strings.TrimSpace(req.CourierCompany)
		if courier == "" {
			courier = o.Courier()
		}
		if tracking == "" || courier == "" {
			return nil, ErrTrackingRequired
		}
		patch["trackingId"] = tracking
		patch["courierCompany"] = courier
	}

	if err := wf.backend.UpdateOrder(ctx, token, id, patch); err != nil {
		return nil, err
	}

	updated, err := wf.backend.GetOrder(ctx, token, id)
	if err != nil {
		return nil, err
	}

	change := StatusChange{
		OrderID:    id,
		Invoice:    updated.InvoiceOrID(),
		From:       current,
		To:         target,
		TrackingID: tracking,
		Courier:    courier,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
	}
	if wf.audit != nil {
		if err := wf.audit.RecordStatusChange(ctx, change); err != nil {
			log.Printf("ERROR: record status change for order %s: %v", id, err)
		}
	}
	if wf.notify != nil {
		wf.notify.NotifyStatusChange(change)
	}

	return viewOf(updated), nil
}

func viewOf(o *order.Order) *OrderView {
	current := o.CurrentStatus()
	return &OrderView{
		Order:       o,
		Current:     current,
		AllowedNext: order.AllowedNext(current),
	}
}
