package live

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalJSON unmarshals model-supplied JSON, attempting to repair
// malformed output before giving up. The upstream model's output shape
// is not guaranteed well-formed.
func unmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}

// orderItemShape is the tolerant per-item shape: the model variously
// emits "name" or "item" for the name and "quantity" or "qty" for the
// count.
type orderItemShape struct {
	Name     string   `json:"name"`
	Item     string   `json:"item"`
	Quantity *float64 `json:"quantity"`
	Qty      *float64 `json:"qty"`
	Notes    string   `json:"notes"`
}

// orderWrapperShape is the canonical declared shape.
type orderWrapperShape struct {
	Items []orderItemShape `json:"items"`
}

// rawOrderItem is one normalized order line before catalog resolution.
type rawOrderItem struct {
	Name     string
	Quantity float64
	Notes    string
}

// parseOrderItems normalizes a log-order payload. Accepted shapes, the
// explicit union of what the model has been observed to emit:
//
//   - {"items": [ {...}, ... ]}   (the declared schema)
//   - [ {...}, ... ]              (bare array)
//   - {...}                       (bare single item)
//
// Shapes outside the union are rejected with an error; the caller logs
// and reports rather than crashing. Items with an empty or explicitly
// "unknown" name are discarded; quantities default to 1.
func parseOrderItems(raw json.RawMessage) ([]rawOrderItem, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty order payload")
	}

	var shapes []orderItemShape
	switch {
	case strings.HasPrefix(strings.TrimSpace(string(raw)), "["):
		if err := unmarshalJSON(raw, &shapes); err != nil {
			return nil, fmt.Errorf("order payload array: %w", err)
		}
	default:
		var wrapper orderWrapperShape
		if err := unmarshalJSON(raw, &wrapper); err == nil && wrapper.Items != nil {
			shapes = wrapper.Items
			break
		}
		var single orderItemShape
		if err := unmarshalJSON(raw, &single); err != nil {
			return nil, fmt.Errorf("unrecognized order payload shape: %w", err)
		}
		shapes = []orderItemShape{single}
	}

	var items []rawOrderItem
	for _, s := range shapes {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = strings.TrimSpace(s.Item)
		}
		if name == "" || strings.EqualFold(name, "unknown") {
			continue
		}
		qty := 1.0
		if s.Quantity != nil && *s.Quantity > 0 {
			qty = *s.Quantity
		} else if s.Qty != nil && *s.Qty > 0 {
			qty = *s.Qty
		}
		items = append(items, rawOrderItem{Name: name, Quantity: qty, Notes: s.Notes})
	}
	return items, nil
}
