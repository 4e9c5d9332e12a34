// Package pos holds recognized orders and insights for the current
// session and implements the dashboard visibility and merge policies.
//
// The Store is the single owner of mutable order state: the live
// session's tool handlers, the dashboard tick, and the exporter all go
// through its API instead of sharing a "latest order" reference.
package pos

import (
	"encoding/json"

	"github.com/counterpal/counterpal/pkg/jsontime"
)

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusServed    OrderStatus = "served"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderItem is a single order line. UnitPrice is the resolved catalog
// price in the minor currency unit, 0 for unknown items.
type OrderItem struct {
	Name      string  `json:"name" msgpack:"name"`
	Quantity  float64 `json:"quantity" msgpack:"quantity"`
	UnitPrice int     `json:"unit_price" msgpack:"unit_price"`
	Notes     string  `json:"notes,omitempty" msgpack:"notes"`
}

// Order is a recognized shop order. Orders are append-only: after
// creation they are only modified by a context merge within the merge
// window, never by display filtering.
type Order struct {
	ID     string         `json:"id" msgpack:"id"`
	Time   jsontime.Milli `json:"time" msgpack:"time"`
	Items  []OrderItem    `json:"items" msgpack:"items"`
	Status OrderStatus    `json:"status" msgpack:"status"`
	Total  int            `json:"total" msgpack:"total"`
}

// InsightCategory classifies an insight.
type InsightCategory string

const (
	InsightInventory    InsightCategory = "inventory"
	InsightCustomer     InsightCategory = "customer"
	InsightGeneral      InsightCategory = "general"
	InsightShoppingList InsightCategory = "shopping_list"
	InsightSecurityRisk InsightCategory = "security_risk"
)

// Severity is the insight severity level.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// NormalizeSeverity maps free-form severity text to a Severity,
// defaulting to low for empty or unrecognized values.
func NormalizeSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityMedium:
		return SeverityMedium
	case SeverityHigh:
		return SeverityHigh
	default:
		return SeverityLow
	}
}

// NormalizeCategory maps free-form category text to an InsightCategory,
// defaulting to general for empty or unrecognized values.
func NormalizeCategory(s string) InsightCategory {
	switch InsightCategory(s) {
	case InsightInventory, InsightCustomer, InsightShoppingList, InsightSecurityRisk:
		return InsightCategory(s)
	default:
		return InsightGeneral
	}
}

// Insight is a recognized shop insight. Immutable after creation.
type Insight struct {
	ID       string          `json:"id" msgpack:"id"`
	Time     jsontime.Milli  `json:"time" msgpack:"time"`
	Category InsightCategory `json:"category" msgpack:"category"`
	Content  string          `json:"content" msgpack:"content"`
	Severity Severity        `json:"severity" msgpack:"severity"`
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	v := *o
	v.Items = make([]OrderItem, len(o.Items))
	copy(v.Items, o.Items)
	return &v
}

// String returns a compact JSON representation for logging.
func (o *Order) String() string {
	b, _ := json.Marshal(o)
	return string(b)
}
