package live

import (
	"encoding/json"
	"testing"
)

func TestParseOrderItemsWrapper(t *testing.T) {
	raw := json.RawMessage(`{"items":[{"name":"samosa","quantity":2},{"name":"chai"}]}`)
	items, err := parseOrderItems(raw)
	if err != nil {
		t.Fatalf("parseOrderItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "samosa" || items[0].Quantity != 2 {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Name != "chai" || items[1].Quantity != 1 {
		t.Errorf("item 1 = %+v, want quantity default 1", items[1])
	}
}

func TestParseOrderItemsBareArray(t *testing.T) {
	raw := json.RawMessage(`[{"item":"jalebi","qty":3}]`)
	items, err := parseOrderItems(raw)
	if err != nil {
		t.Fatalf("parseOrderItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Name != "jalebi" {
		t.Errorf("name = %q, want jalebi via item alias", items[0].Name)
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %v, want 3 via qty alias", items[0].Quantity)
	}
}

func TestParseOrderItemsBareSingle(t *testing.T) {
	raw := json.RawMessage(`{"name":"lassi","notes":"less sugar"}`)
	items, err := parseOrderItems(raw)
	if err != nil {
		t.Fatalf("parseOrderItems: %v", err)
	}
	if len(items) != 1 || items[0].Name != "lassi" || items[0].Notes != "less sugar" {
		t.Fatalf("items = %+v", items)
	}
}

func TestParseOrderItemsDiscardsUnknown(t *testing.T) {
	raw := json.RawMessage(`{"items":[{"name":"unknown"},{"name":""},{"name":"samosa"}]}`)
	items, err := parseOrderItems(raw)
	if err != nil {
		t.Fatalf("parseOrderItems: %v", err)
	}
	if len(items) != 1 || items[0].Name != "samosa" {
		t.Fatalf("items = %+v, want only samosa", items)
	}
}

func TestParseOrderItemsMalformed(t *testing.T) {
	// Trailing comma; the repair pass should make this parse.
	raw := json.RawMessage(`{"items":[{"name":"samosa",}]}`)
	items, err := parseOrderItems(raw)
	if err != nil {
		t.Fatalf("parseOrderItems after repair: %v", err)
	}
	if len(items) != 1 || items[0].Name != "samosa" {
		t.Fatalf("items = %+v", items)
	}
}

func TestParseOrderItemsRejectsScalar(t *testing.T) {
	if _, err := parseOrderItems(json.RawMessage(`"samosa"`)); err == nil {
		t.Fatal("expected error for scalar payload")
	}
	if _, err := parseOrderItems(nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestUnmarshalJSONRepairs(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	if err := unmarshalJSON([]byte(`{name: "chai"}`), &v); err != nil {
		t.Fatalf("unmarshalJSON: %v", err)
	}
	if v.Name != "chai" {
		t.Errorf("name = %q", v.Name)
	}
}
