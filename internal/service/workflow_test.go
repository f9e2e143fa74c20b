package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nees-commerce/admin-gateway/internal/order"
)

type mockBackend struct {
	orders     map[string]*order.Order
	getErr     error
	updateErr  error
	lastPatch  map[string]string
	getCalls   int
	updateHook func(id string, patch map[string]string)
}

func (m *mockBackend) GetOrder(_ context.Context, _, id string) (*order.Order, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *o
	return &cp, nil
}

func (m *mockBackend) UpdateOrder(_ context.Context, _, id string, patch map[string]string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastPatch = patch
	if m.updateHook != nil {
		m.updateHook(id, patch)
	} else if o, ok := m.orders[id]; ok {
		if s, ok := patch["status"]; ok {
			o.Status = s
		}
		if tr, ok := patch["trackingId"]; ok {
			o.TrackingID = order.FlexString(tr)
		}
		if cc, ok := patch["courierCompany"]; ok {
			o.CourierCompany = cc
		}
	}
	return nil
}

type mockAudit struct {
	changes []StatusChange
	err     error
}

func (m *mockAudit) RecordStatusChange(_ context.Context, c StatusChange) error {
	m.changes = append(m.changes, c)
	return m.err
}

type mockNotifier struct {
	changes []StatusChange
}

func (m *mockNotifier) NotifyStatusChange(c StatusChange) {
	m.changes = append(m.changes, c)
}

func newTestBackend(status string) *mockBackend {
	return &mockBackend{orders: map[string]*order.Order{
		"o1": {ID: "o1", Invoice: "1042", Name: "Ayesha", Status: status},
	}}
}

func TestWorkflowLoad(t *testing.T) {
	wf := NewWorkflow(newTestBackend("Processing"), nil, nil)

	view, err := wf.Load(context.Background(), "tok", "o1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if view.Current != order.StatusProcessing {
		t.Errorf("Current = %q, want processing", view.Current)
	}
	want := []order.Status{order.StatusProcessing, order.StatusDispatch, order.StatusCancel}
	if len(view.AllowedNext) != len(want) {
		t.Fatalf("AllowedNext = %v, want %v", view.AllowedNext, want)
	}
	for i := range want {
		if view.AllowedNext[i] != want[i] {
			t.Errorf("AllowedNext[%d] = %q, want %q", i, view.AllowedNext[i], want[i])
		}
	}
}

func TestTransitionPendingToProcessing(t *testing.T) {
	backend := newTestBackend("pending")
	audit := &mockAudit{}
	notify := &mockNotifier{}
	wf := NewWorkflow(backend, audit, notify)

	view, err := wf.Transition(context.Background(), "tok", "o1", Actor{ID: "a1", Name: "Boss"}, TransitionRequest{Status: "processing"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if view.Current != order.StatusProcessing {
		t.Errorf("Current = %q, want processing", view.Current)
	}
	if backend.lastPatch["status"] != "processing" {
		t.Errorf("patch status = %q, want processing", backend.lastPatch["status"])
	}
	if _, ok := backend.lastPatch["trackingId"]; ok {
		t.Error("non-dispatch patch must not carry trackingId")
	}
	if len(audit.changes) != 1 {
		t.Fatalf("audit changes = %d, want 1", len(audit.changes))
	}
	if audit.changes[0].From != order.StatusPending || audit.changes[0].To != order.StatusProcessing {
		t.Errorf("audit change = %+v", audit.changes[0])
	}
	if audit.changes[0].ActorName != "Boss" {
		t.Errorf("actor name = %q, want Boss", audit.changes[0].ActorName)
	}
	if len(notify.changes) != 1 {
		t.Errorf("notify changes = %d, want 1", len(notify.changes))
	}
}

func TestTransitionNoChange(t *testing.T) {
	wf := NewWorkflow(newTestBackend("processing"), nil, nil)

	_, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "Processing"})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("err = %v, want ErrNoChange", err)
	}
}

func TestTransitionNoChangeAcrossSpellings(t *testing.T) {
	// "cancelled" and "cancel" are the same canonical status.
	wf := NewWorkflow(newTestBackend("cancelled"), nil, nil)

	_, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "cancel"})
	if !errors.Is(err, ErrNoChange) {
		t.Fatalf("err = %v, want ErrNoChange", err)
	}
}

func TestTransitionNotAllowed(t *testing.T) {
	tests := []struct {
		from, to string
	}{
		{"pending", "dispatched"},
		{"dispatched", "pending"},
		{"dispatched", "processing"},
		{"cancel", "processing"},
		{"delivered", "pending"},
	}
	for _, tt := range tests {
		wf := NewWorkflow(newTestBackend(tt.from), nil, nil)
		_, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: tt.to})
		if !errors.Is(err, ErrTransitionNotAllowed) {
			t.Errorf("%s -> %s: err = %v, want ErrTransitionNotAllowed", tt.from, tt.to, err)
		}
	}
}

func TestTransitionDispatchRequiresTracking(t *testing.T) {
	wf := NewWorkflow(newTestBackend("processing"), nil, nil)

	_, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "dispatch"})
	if !errors.Is(err, ErrTrackingRequired) {
		t.Fatalf("err = %v, want ErrTrackingRequired", err)
	}

	_, err = wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "dispatch", TrackingID: "  ", CourierCompany: "DHL"})
	if !errors.Is(err, ErrTrackingRequired) {
		t.Fatalf("whitespace tracking: err = %v, want ErrTrackingRequired", err)
	}
}

func TestTransitionDispatchWritesWireSpelling(t *testing.T) {
	backend := newTestBackend("processing")
	wf := NewWorkflow(backend, nil, nil)

	view, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{
		Status:         "dispatch",
		TrackingID:     " TRK-77 ",
		CourierCompany: "TCS",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if backend.lastPatch["status"] != "dispatched" {
		t.Errorf("patch status = %q, want dispatched", backend.lastPatch["status"])
	}
	if backend.lastPatch["trackingId"] != "TRK-77" {
		t.Errorf("patch trackingId = %q, want TRK-77", backend.lastPatch["trackingId"])
	}
	if backend.lastPatch["courierCompany"] != "TCS" {
		t.Errorf("patch courierCompany = %q, want TCS", backend.lastPatch["courierCompany"])
	}
	if view.Current != order.StatusDispatch {
		t.Errorf("Current = %q, want dispatch", view.Current)
	}
}

func TestTransitionDispatchFallsBackToStoredTracking(t *testing.T) {
	backend := newTestBackend("processing")
	backend.orders["o1"].TrackingNumber = "STORED-9"
	backend.orders["o1"].CourierName = "Leopards"
	wf := NewWorkflow(backend, nil, nil)

	_, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "dispatched"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if backend.lastPatch["trackingId"] != "STORED-9" {
		t.Errorf("patch trackingId = %q, want STORED-9", backend.lastPatch["trackingId"])
	}
	if backend.lastPatch["courierCompany"] != "Leopards" {
		t.Errorf("patch courierCompany = %q, want Leopards", backend.lastPatch["courierCompany"])
	}
}

func TestTransitionCancelSendsCancel(t *testing.T) {
	backend := newTestBackend("pending")
	wf := NewWorkflow(backend, nil, nil)

	_, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "cancelled"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if backend.lastPatch["status"] != "cancel" {
		t.Errorf("patch status = %q, want cancel", backend.lastPatch["status"])
	}
}

func TestTransitionRefetchesAfterUpdate(t *testing.T) {
	backend := newTestBackend("pending")
	wf := NewWorkflow(backend, nil, nil)

	view, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "processing"})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	// One fetch before the update, one after.
	if backend.getCalls != 2 {
		t.Errorf("getCalls = %d, want 2", backend.getCalls)
	}
	if view.Order.Status != "processing" {
		t.Errorf("view status = %q, want stored value", view.Order.Status)
	}
}

func TestTransitionAuditFailureDoesNotFail(t *testing.T) {
	backend := newTestBackend("pending")
	audit := &mockAudit{err: errors.New("db down")}
	wf := NewWorkflow(backend, audit, nil)

	if _, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "cancel"}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
}

func TestTransitionUpdateErrorPropagates(t *testing.T) {
	backend := newTestBackend("pending")
	backend.updateErr = errors.New("upstream boom")
	audit := &mockAudit{}
	wf := NewWorkflow(backend, audit, nil)

	if _, err := wf.Transition(context.Background(), "tok", "o1", Actor{}, TransitionRequest{Status: "processing"}); err == nil {
		t.Fatal("expected error")
	}
	if len(audit.changes) != 0 {
		t.Errorf("audit recorded %d changes for a failed update, want 0", len(audit.changes))
	}
}
