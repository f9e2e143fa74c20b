// Package slip renders printable dispatch slips for orders. The slip
// carries item names and quantities only; unit prices stay off
// warehouse paperwork.
package slip

import (
	"encoding/base64"
	"html/template"
	"io"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/nees-commerce/admin-gateway/internal/enum"
	"github.com/nees-commerce/admin-gateway/internal/order"
)

const qrSize = 140

// Generator renders dispatch slips. The QR encoder and clock are
// injectable for tests.
type Generator struct {
	qrEncode func(text string, size int) ([]byte, error)
	now      func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		qrEncode: func(text string, size int) ([]byte, error) {
			return qrcode.Encode(text, qrcode.Medium, size)
		},
		now: time.Now,
	}
}

type slipItem struct {
	Name string
	Qty  int
}

type slipData struct {
	OrderID          string
	PageCSS          template.CSS
	MaxWidth         string
	Padding          string
	QRDataURL        template.URL
	Name             string
	Contact          string
	Payment          string
	OrderDate        string
	ExpectedDelivery string
	Address          string
	City             string
	Zip              string
	Items            []slipItem
	Total            string
	Notes            string
	PrintedAt        string
}

// Render writes the slip HTML for an order in the given paper format.
// Formats other than a4 and thermal fall back to auto sizing. A QR
// encoding failure degrades to a placeholder box rather than failing
// the whole slip.
func (g *Generator) Render(w io.Writer, o *order.Order, format string) error {
	data := slipData{
		OrderID:          o.ID.String(),
		PageCSS:          pageCSS(format),
		MaxWidth:         "190mm",
		Padding:          "4mm",
		Name:             o.Name,
		Contact:          o.Phone(),
		Payment:          o.PaymentMethod,
		OrderDate:        fmtDate(o.CreatedAt),
		ExpectedDelivery: o.ExpectedDelivery(),
		Address:          o.Address,
		City:             o.City,
		Zip:              o.ZipCode.String(),
		Total:            o.TotalAmount.String(),
		Notes:            o.DeliveryNote(),
		PrintedAt:        g.now().Format("Jan 2, 2006 3:04 PM"),
	}
	if format == enum.PaperThermal {
		data.MaxWidth = "80mm"
		data.Padding = "0"
	}
	for i, item := range o.Cart {
		data.Items = append(data.Items, slipItem{Name: item.DisplayName(i), Qty: item.Count()})
	}
	if png, err := g.qrEncode(data.OrderID, qrSize); err == nil {
		data.QRDataURL = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}
	return slipTemplate.Execute(w, data)
}

func pageCSS(format string) template.CSS {
	switch format {
	case enum.PaperA4:
		return "@page{size:A4;margin:10mm;}"
	case enum.PaperThermal:
		return "@page{size:80mm auto;margin:4mm;}"
	default:
		return "@page{size:auto;margin:10mm;}"
	}
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

var slipTemplate = template.Must(template.New("slip").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Dispatch Slip - {{.OrderID}}</title>
<style>
{{.PageCSS}}
*{box-sizing:border-box}
body{margin:0;font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Arial;color:#111;background:#fff}
.slip{width:100%;max-width:{{.MaxWidth}};margin:0 auto;padding:{{.Padding}}}
.header{display:flex;gap:12px;align-items:center;justify-content:space-between;border-bottom:2px solid #111;padding-bottom:10px;margin-bottom:10px}
.brand{display:flex;flex-direction:column;gap:2px}
.brand .nees{font-size:22px;font-weight:900;letter-spacing:1.5px;line-height:1}
.brand .sub{font-size:12px;color:#444;margin-top:2px}
.qr{width:72px;height:72px;object-fit:contain}
.qr-placeholder{width:72px;height:72px;display:flex;align-items:center;justify-content:center;border:1px solid #ddd;border-radius:10px;font-size:11px}
.title{display:flex;justify-content:space-between;align-items:flex-end;gap:12px;margin:10px 0 12px}
.title h2{margin:0;font-size:16px}
.title .oid{font-family:ui-monospace,SFMono-Regular,Menlo,Monaco,Consolas,monospace;font-weight:700}
.grid{display:grid;grid-template-columns:1fr 1fr;gap:10px}
.box{border:1px solid #ddd;border-radius:10px;padding:10px}
.box h3{margin:0 0 8px;font-size:13px;text-transform:uppercase;letter-spacing:0.6px}
.row{display:flex;gap:10px;justify-content:space-between}
.k{color:#555;font-size:12px}
.v{font-size:12px;font-weight:600}
.full{grid-column:1 / -1}
table{width:100%;border-collapse:collapse;margin-top:8px}
th,td{border:1px solid #ddd;padding:8px;vertical-align:top}
th{background:#f6f6f6;font-size:12px;text-align:left}
td{font-size:12px}
.col-qty{width:70px;text-align:center;font-weight:700}
.item-name{font-weight:700}
.totals{margin-top:10px;border-top:2px solid #111;padding-top:10px}
.totals .v.big{font-size:16px}
.notes{white-space:pre-wrap}
.muted{color:#555;font-size:11px}
@media print{body{-webkit-print-color-adjust:exact;print-color-adjust:exact}.slip{max-width:none}}
</style>
</head>
<body>
<div class="slip">
<div class="header">
<div class="brand">
<div class="nees">NEES</div>
<div class="sub">Customer Dispatch Slip</div>
</div>
<div style="text-align:right">
{{if .QRDataURL}}<img class="qr" src="{{.QRDataURL}}" alt="Order QR" />{{else}}<div class="qr-placeholder">QR</div>{{end}}
<div class="muted" style="margin-top:4px">Scan: Order ID</div>
</div>
</div>
<div class="title">
<h2>Order Dispatch Slip</h2>
<div class="oid">Order ID: {{.OrderID}}</div>
</div>
<div class="grid">
<div class="box">
<h3>Customer</h3>
<div class="row"><div class="k">Name</div><div class="v">{{.Name}}</div></div>
<div class="row"><div class="k">Contact</div><div class="v">{{.Contact}}</div></div>
<div class="row"><div class="k">Payment</div><div class="v">{{.Payment}}</div></div>
</div>
<div class="box">
<h3>Dates</h3>
<div class="row"><div class="k">Order Date</div><div class="v">{{.OrderDate}}</div></div>
{{if .ExpectedDelivery}}<div class="row"><div class="k">Expected Delivery</div><div class="v">{{.ExpectedDelivery}}</div></div>{{else}}<div class="row"><div class="k">Expected Delivery</div><div class="v muted">&mdash;</div></div>{{end}}
</div>
<div class="box full">
<h3>Dispatch To</h3>
<div class="row"><div class="k">Address</div><div class="v">{{.Address}}</div></div>
<div class="row"><div class="k">City / Area</div><div class="v">{{.City}}</div></div>
<div class="row"><div class="k">Zip</div><div class="v">{{.Zip}}</div></div>
</div>
<div class="box full">
<h3>Items</h3>
<table>
<thead><tr><th>Item</th><th class="col-qty">Qty</th></tr></thead>
<tbody>
{{range .Items}}<tr><td class="col-name"><div class="item-name">{{.Name}}</div></td><td class="col-qty">{{.Qty}}</td></tr>
{{else}}<tr><td colspan="2" class="muted">No items</td></tr>
{{end}}</tbody>
</table>
<div class="totals">
<div class="row"><div class="k">Total Amount</div><div class="v big">{{.Total}}</div></div>
</div>
</div>
{{if .Notes}}<div class="box full">
<h3>Delivery Notes</h3>
<div class="notes">{{.Notes}}</div>
</div>{{end}}
</div>
<div class="muted" style="margin-top:10px">Printed: {{.PrintedAt}}</div>
</div>
</body>
</html>
`))

// ValidFormat reports whether format names a supported paper size.
func ValidFormat(format string) bool {
	switch format {
	case enum.PaperAuto, enum.PaperA4, enum.PaperThermal:
		return true
	}
	return false
}
