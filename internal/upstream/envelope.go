package upstream

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/nees-commerce/admin-gateway/internal/order"
)

// ErrNoOrder is returned when a response body contains nothing that
// looks like an order record.
var ErrNoOrder = errors.New("upstream: no order found in response")

// listKeys are the envelope keys the backend has been observed to wrap
// collections in, tried in priority order.
var listKeys = []string{"orders", "order", "data", "result", "results", "docs", "items", "products"}

// orderKeys are fields whose presence marks a JSON object as an order
// record rather than a wrapper around one.
var orderKeys = []string{"name", "email", "cart", "totalAmount", "invoice"}

// DecodeList extracts a slice of orders from any of the envelope
// shapes the backend emits: a bare array, a keyed wrapper, a wrapper
// nested one level deeper, or a single object. A body with no usable
// collection decodes to an empty slice rather than an error so list
// pages degrade to "no orders" instead of failing.
func DecodeList(body []byte) ([]order.Order, error) {
	raw := pickArray(body, 0)
	if raw == nil {
		// Single-object fallback.
		if one, err := DecodeOrder(body); err == nil {
			return []order.Order{*one}, nil
		}
		return []order.Order{}, nil
	}
	orders := make([]order.Order, 0, len(raw))
	for _, item := range raw {
		var o order.Order
		if err := json.Unmarshal(item, &o); err != nil {
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// pickArray finds the first JSON array in a value, looking through
// known envelope keys and recursing one level into wrapper objects.
func pickArray(data []byte, depth int) []json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > 2 {
		return nil
	}
	if data[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil
		}
		return arr
	}
	if data[0] != '{' {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	for _, key := range listKeys {
		if inner, ok := obj[key]; ok {
			if arr := pickArray(inner, depth+1); arr != nil {
				return arr
			}
		}
	}
	return nil
}

// DecodeOrder extracts a single order from a response body. The record
// may arrive bare, wrapped under an envelope key, or buried a couple
// of levels down; resolution searches breadth-first for the first
// object carrying order-like fields.
func DecodeOrder(body []byte) (*order.Order, error) {
	raw := findOrder(body, 0)
	if raw == nil {
		return nil, ErrNoOrder
	}
	var o order.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, ErrNoOrder
	}
	return &o, nil
}

// findOrder returns the raw JSON of the first order-like object found
// within data, searching at most three levels deep.
func findOrder(data []byte, depth int) json.RawMessage {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || depth > 3 {
		return nil
	}
	switch data[0] {
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil
		}
		if looksLikeOrder(obj) {
			return data
		}
		// Priority keys first, then everything else.
		for _, key := range listKeys {
			if inner, ok := obj[key]; ok {
				if found := findOrder(inner, depth+1); found != nil {
					return found
				}
			}
		}
		for key, inner := range obj {
			if isListKey(key) {
				continue
			}
			if found := findOrder(inner, depth+1); found != nil {
				return found
			}
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil
		}
		for _, item := range arr {
			if found := findOrder(item, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

func looksLikeOrder(obj map[string]json.RawMessage) bool {
	for _, key := range orderKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}

func isListKey(key string) bool {
	for _, k := range listKeys {
		if key == k {
			return true
		}
	}
	return false
}
