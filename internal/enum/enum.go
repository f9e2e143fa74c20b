package enum

// ── Status wire spellings (accepted from the upstream backend on read) ──

const (
	WirePending    = "pending"
	WireProcessing = "processing"
	WireDispatched = "dispatched"
	WireDelivered  = "delivered"
	WireCancel     = "cancel"
	WireCancelled  = "cancelled"
	WireCanceled   = "canceled"
)

// ── Admin roles ──

const (
	RoleCEO     = "CEO"
	RoleManager = "Manager"
	RoleAdmin   = "Admin"
)

// ── Dispatch slip paper formats ──

const (
	PaperAuto    = "auto"
	PaperA4      = "a4"
	PaperThermal = "thermal"
)

// ── Courier companies offered in the dispatch form (display labels) ──

var CourierCompanies = []string{"DHL", "TCS", "FedEx", "Blue Dart", "Leopards"}
