package order

import (
	"strings"

	"github.com/nees-commerce/admin-gateway/internal/enum"
)

// Status is the canonical order lifecycle status used everywhere inside
// the gateway. The upstream backend is loose about spelling, so raw
// values must pass through Normalize before comparison.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDispatch   Status = "dispatch"
	StatusCancel     Status = "cancel"
)

// Statuses lists every canonical status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusDispatch, StatusCancel}

// Normalize maps any raw status string from the upstream into a
// canonical Status. Unknown and empty values collapse to pending so a
// malformed record still renders with a workable set of next steps.
func Normalize(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case enum.WireCancelled, enum.WireCanceled, enum.WireCancel:
		return StatusCancel
	case enum.WireDelivered, enum.WireDispatched, string(StatusDispatch):
		return StatusDispatch
	case enum.WireProcessing:
		return StatusProcessing
	case enum.WirePending:
		return StatusPending
	default:
		return StatusPending
	}
}

var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusPending, StatusProcessing, StatusCancel},
	StatusProcessing: {StatusProcessing, StatusDispatch, StatusCancel},
	StatusDispatch:   {StatusDispatch, StatusCancel},
	StatusCancel:     {StatusCancel},
}

// AllowedNext returns the statuses reachable from current, including
// current itself so a form can default to the present value. A status
// outside the table gets the full set rather than a dead end.
func AllowedNext(current Status) []Status {
	if next, ok := allowedTransitions[current]; ok {
		out := make([]Status, len(next))
		copy(out, next)
		return out
	}
	out := make([]Status, len(Statuses))
	copy(out, Statuses)
	return out
}

// CanTransition reports whether moving from current to target is a
// legal lifecycle step. Staying on the same status is always legal
// here; callers that treat a no-op submit as an error check equality
// themselves.
func CanTransition(current, target Status) bool {
	for _, s := range AllowedNext(current) {
		if s == target {
			return true
		}
	}
	return false
}

// WireValue translates a canonical status into the spelling the
// upstream PUT endpoint expects. Dispatch is stored as "dispatched";
// everything else goes over the wire unchanged.
func WireValue(s Status) string {
	if s == StatusDispatch {
		return enum.WireDispatched
	}
	return string(s)
}

// Label returns the human-facing label used in dashboards and slips.
func Label(s Status) string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusDispatch:
		return "Dispatched"
	case StatusCancel:
		return "Cancelled"
	default:
		if s == "" {
			return ""
		}
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}
