package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlexString unmarshals from a JSON string or number. Upstream records
// mix the two for fields like invoice and zip code.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// FlexAmount is a decimal amount tolerant of string, number or null
// encodings on the wire.
type FlexAmount struct {
	decimal.Decimal
}

func (f *FlexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.Decimal = decimal.Zero
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			f.Decimal = decimal.Zero
			return nil
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.Decimal = decimal.Zero
		return nil
	}
	f.Decimal = d
	return nil
}

func (f FlexAmount) MarshalJSON() ([]byte, error) {
	return []byte(f.Decimal.String()), nil
}

// CartItem is one line of an order's cart. Product records upstream
// are inconsistent about which field holds the name and quantity, so
// the struct captures all spellings and resolves through accessors.
type CartItem struct {
	ID          FlexString `json:"_id,omitempty"`
	Title       string     `json:"title,omitempty"`
	Name        string     `json:"name,omitempty"`
	ProductName string     `json:"productName,omitempty"`
	OrderQty    FlexString `json:"orderQuantity,omitempty"`
	Quantity    FlexString `json:"quantity,omitempty"`
	Qty         FlexString `json:"qty,omitempty"`
	Price       FlexAmount `json:"price,omitempty"`
	Image       string     `json:"image,omitempty"`
}

// DisplayName resolves the item's label, falling back to a positional
// placeholder when the record carries no name at all.
func (c CartItem) DisplayName(idx int) string {
	for _, s := range []string{c.Title, c.Name, c.ProductName} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fmt.Sprintf("Item %d", idx+1)
}

// Count resolves the quantity, defaulting to 1 when absent or not a
// positive integer.
func (c CartItem) Count() int {
	for _, f := range []FlexString{c.OrderQty, c.Quantity, c.Qty} {
		if n, err := strconv.Atoi(strings.TrimSpace(f.String())); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

// Order is the upstream order record. Field tags follow the backend's
// Mongo document shape; alternate spellings observed in production
// data get their own fields and are reconciled by accessor methods.
type Order struct {
	ID             FlexString `json:"_id"`
	Invoice        FlexString `json:"invoice,omitempty"`
	Name           string     `json:"name,omitempty"`
	Email          string     `json:"email,omitempty"`
	Contact        FlexString `json:"contact,omitempty"`
	PhoneField     FlexString `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	ZipCode        FlexString `json:"zipCode,omitempty"`
	Cart           []CartItem `json:"cart,omitempty"`
	SubTotal       FlexAmount `json:"subTotal,omitempty"`
	ShippingCost   FlexAmount `json:"shippingCost,omitempty"`
	Discount       FlexAmount `json:"discount,omitempty"`
	TotalAmount    FlexAmount `json:"totalAmount,omitempty"`
	Status         string     `json:"status,omitempty"`
	TrackingID     FlexString `json:"trackingId,omitempty"`
	TrackingNumber FlexString `json:"trackingNumber,omitempty"`
	CourierCompany string     `json:"courierCompany,omitempty"`
	CourierName    string     `json:"courierName,omitempty"`
	OrderNote      string     `json:"orderNote,omitempty"`
	NoteField      string     `json:"note,omitempty"`
	DeliveryNotes  string     `json:"deliveryNotes,omitempty"`
	ExpectedDate   FlexString `json:"expectedDeliveryDate,omitempty"`
	ExpectedAlt    FlexString `json:"expectedDelivery,omitempty"`
	DeliveryDate   FlexString `json:"deliveryDate,omitempty"`
	PaymentMethod  string     `json:"paymentMethod,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt,omitempty"`
}

// CurrentStatus is the canonical form of the record's raw status.
func (o *Order) CurrentStatus() Status {
	return Normalize(o.Status)
}

// Tracking returns the tracking identifier under either of its
// upstream spellings.
func (o *Order) Tracking() string {
	if s := strings.TrimSpace(o.TrackingID.String()); s != "" {
		return s
	}
	return strings.TrimSpace(o.TrackingNumber.String())
}

// Courier returns the courier company under either spelling.
func (o *Order) Courier() string {
	if s := strings.TrimSpace(o.CourierCompany); s != "" {
		return s
	}
	return strings.TrimSpace(o.CourierName)
}

// Phone returns the customer contact number under either spelling.
func (o *Order) Phone() string {
	if s := strings.TrimSpace(o.Contact.String()); s != "" {
		return s
	}
	return strings.TrimSpace(o.PhoneField.String())
}

// Notes returns the order note under either spelling.
func (o *Order) Notes() string {
	if s := strings.TrimSpace(o.OrderNote); s != "" {
		return s
	}
	return strings.TrimSpace(o.NoteField)
}

// DeliveryNote returns the note shown on dispatch paperwork, which
// prefers the delivery-specific field over the general order note.
func (o *Order) DeliveryNote() string {
	if s := strings.TrimSpace(o.DeliveryNotes); s != "" {
		return s
	}
	return strings.TrimSpace(o.OrderNote)
}

// ExpectedDelivery returns the expected delivery date under any of
// its upstream spellings, empty when none is set.
func (o *Order) ExpectedDelivery() string {
	for _, f := range []FlexString{o.ExpectedDate, o.ExpectedAlt, o.DeliveryDate} {
		if s := strings.TrimSpace(f.String()); s != "" {
			return s
		}
	}
	return ""
}

// InvoiceOrID prefers the human invoice number, falling back to the
// record id for orders created before invoices were assigned.
func (o *Order) InvoiceOrID() string {
	if s := strings.TrimSpace(o.Invoice.String()); s != "" {
		return s
	}
	return o.ID.String()
}

// ItemCount sums the cart quantities.
func (o *Order) ItemCount() int {
	total := 0
	for _, item := range o.Cart {
		total += item.Count()
	}
	return total
}
