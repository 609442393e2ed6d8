package listing

import (
	"bytes"
	"encoding/json"

	"orderdesk/internal/model"
)

// Shape identifies the envelope a list response arrived in.
type Shape int

const (
	ShapeUnknown    Shape = iota
	ShapeArray            // [ ... ]
	ShapeData             // {"data": [ ... ]}
	ShapeOrders           // {"orders": [ ... ], "total": n}
	ShapeNestedData       // {"data": {"orders": [ ... ], "total": n}}
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeData:
		return "data"
	case ShapeOrders:
		return "orders"
	case ShapeNestedData:
		return "data.orders"
	}
	return "unknown"
}

type ordersEnvelope struct {
	Orders json.RawMessage `json:"orders"`
	Total  *int            `json:"total"`
}

type topEnvelope struct {
	Data json.RawMessage `json:"data"`
	ordersEnvelope
}

// Decode normalises a list response body into a Page. Every recognised
// envelope is handled here; anything else, including invalid JSON, yields an
// empty page and ShapeUnknown so the caller can flag the contract drift.
// A missing total falls back to the number of items.
func Decode(body []byte) (Page, Shape) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return emptyPage(), ShapeUnknown
	}

	switch body[0] {
	case '[':
		if items, ok := decodeOrders(body); ok {
			return Page{Items: items, Total: len(items)}, ShapeArray
		}

	case '{':
		var env topEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return emptyPage(), ShapeUnknown
		}

		data := bytes.TrimSpace(env.Data)
		if bytes.Equal(data, []byte("null")) {
			data = nil
		}
		switch {
		case isArray(data):
			if items, ok := decodeOrders(data); ok {
				return Page{Items: items, Total: totalOr(env.Total, len(items))}, ShapeData
			}
		case isObject(data):
			var inner ordersEnvelope
			if err := json.Unmarshal(data, &inner); err == nil && isArray(bytes.TrimSpace(inner.Orders)) {
				if items, ok := decodeOrders(inner.Orders); ok {
					return Page{Items: items, Total: totalOr(inner.Total, len(items))}, ShapeNestedData
				}
			}
		case len(data) == 0 && isArray(bytes.TrimSpace(env.Orders)):
			if items, ok := decodeOrders(env.Orders); ok {
				return Page{Items: items, Total: totalOr(env.Total, len(items))}, ShapeOrders
			}
		}
	}

	return emptyPage(), ShapeUnknown
}

func decodeOrders(raw []byte) ([]model.Order, bool) {
	var items []model.Order
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	if items == nil {
		items = []model.Order{}
	}
	return items, true
}

func totalOr(total *int, fallback int) int {
	if total == nil || *total < 0 {
		return fallback
	}
	return *total
}

func isArray(b []byte) bool {
	return len(b) > 0 && b[0] == '['
}

func isObject(b []byte) bool {
	return len(b) > 0 && b[0] == '{'
}

func emptyPage() Page {
	return Page{Items: []model.Order{}, Total: 0}
}
