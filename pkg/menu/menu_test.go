package menu_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/counterpal/counterpal/pkg/menu"
)

func TestMatchCanonical(t *testing.T) {
	c := menu.Default()

	for _, q := range []string{"Kachori", "kachori", "KACHORI", "kAcHoRi"} {
		it, ok := c.Match(q)
		if !ok {
			t.Fatalf("Match(%q): no match", q)
		}
		if it.Name != "Kachori" {
			t.Fatalf("Match(%q) = %q, want Kachori", q, it.Name)
		}
	}
}

func TestMatchAlias(t *testing.T) {
	c := menu.Default()

	tests := []struct {
		query string
		want  string
	}{
		{"pyaaz kachori", "Kachori"},
		{"Pyaaz Kachori", "Kachori"},
		{"mirchi bada", "Mirchi Vada"},
		{"chai", "Masala Chai"},
		{"thali", "Special Thali"},
	}
	for _, tt := range tests {
		it, ok := c.Match(tt.query)
		if !ok {
			t.Fatalf("Match(%q): no match", tt.query)
		}
		if it.Name != tt.want {
			t.Fatalf("Match(%q) = %q, want %q", tt.query, it.Name, tt.want)
		}
	}
}

func TestMatchNoMatch(t *testing.T) {
	c := menu.Default()

	if it, ok := c.Match("xyz123"); ok {
		t.Fatalf("Match(xyz123) = %q, want no match", it.Name)
	}
	if _, ok := c.Match(""); ok {
		t.Fatal("Match of empty query should not match")
	}
	if _, ok := c.Match("   "); ok {
		t.Fatal("Match of blank query should not match")
	}
}

func TestMatchSubstring(t *testing.T) {
	c := menu.Default()

	// Query contained in canonical name.
	it, ok := c.Match("vada")
	if !ok || it.Name != "Mirchi Vada" {
		t.Fatalf("Match(vada) = %v/%v, want Mirchi Vada", it, ok)
	}

	// Canonical name contained in query.
	it, ok = c.Match("one hot samosa please")
	if !ok || it.Name != "Samosa" {
		t.Fatalf("Match(one hot samosa please) = %v/%v, want Samosa", it, ok)
	}
}

func TestMatchPrecedence(t *testing.T) {
	// An alias that is also a substring of another item's canonical name
	// must resolve via the alias, not the substring fallback.
	c, err := menu.New([]menu.Item{
		{Name: "Jumbo Jamun Plate", Price: 100, Category: "sweet"},
		{Name: "Gulab Jamun", Price: 60, Category: "sweet", Aliases: []string{"jamun"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	it, ok := c.Match("jamun")
	if !ok || it.Name != "Gulab Jamun" {
		t.Fatalf("Match(jamun) = %v/%v, want Gulab Jamun via alias", it, ok)
	}

	// Exact canonical beats alias of another item.
	c2, err := menu.New([]menu.Item{
		{Name: "Chai", Price: 10, Category: "beverage"},
		{Name: "Masala Chai", Price: 15, Category: "beverage", Aliases: []string{"chai"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	it, ok = c2.Match("chai")
	if !ok || it.Name != "Chai" {
		t.Fatalf("Match(chai) = %v/%v, want exact canonical Chai", it, ok)
	}
}

func TestMatchSubstringOrder(t *testing.T) {
	// The substring fallback picks the first catalog entry in
	// declaration order, not the best match.
	c, err := menu.New([]menu.Item{
		{Name: "Vada Pav", Price: 25, Category: "snack"},
		{Name: "Mirchi Vada", Price: 30, Category: "snack"},
	})
	if err != nil {
		t.Fatal(err)
	}
	it, ok := c.Match("vada")
	if !ok || it.Name != "Vada Pav" {
		t.Fatalf("Match(vada) = %v/%v, want first entry Vada Pav", it, ok)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := menu.New([]menu.Item{{Name: "", Price: 10}}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := menu.New([]menu.Item{{Name: "Chai", Price: 0}}); err == nil {
		t.Fatal("expected error for non-positive price")
	}
	if _, err := menu.New([]menu.Item{
		{Name: "Chai", Price: 10},
		{Name: "chai", Price: 12},
	}); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestHighValue(t *testing.T) {
	c := menu.Default()
	if !c.HighValue("special") {
		t.Fatal("special should be high value")
	}
	if !c.HighValue("Special") {
		t.Fatal("high value category check should be case-insensitive")
	}
	if c.HighValue("snack") {
		t.Fatal("snack should not be high value")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	data := `
items:
  - name: Samosa
    price: 20
    category: snack
    aliases: [samose]
  - name: Special Thali
    price: 250
    category: special
high_value_categories: [special]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := menu.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	it, ok := c.Match("samose")
	if !ok || it.Name != "Samosa" {
		t.Fatalf("Match(samose) = %v/%v, want Samosa", it, ok)
	}
	if !c.HighValue("special") {
		t.Fatal("special should be high value")
	}
	if _, err := menu.LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
