// Package menu provides the menu catalog and the fuzzy item matcher.
//
// A catalog maps canonical item names to price, category, and a set of
// colloquial aliases. Catalogs are immutable after construction and are
// either built in (Default) or loaded from a YAML file (LoadFile).
package menu

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Item is a single catalog entry. Price is in the minor currency unit.
type Item struct {
	Name     string   `yaml:"name" json:"name"`
	Price    int      `yaml:"price" json:"price"`
	Category string   `yaml:"category" json:"category"`
	Aliases  []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Catalog is an ordered, immutable collection of menu items.
// Declaration order matters: the substring fallback in Match picks the
// first entry in catalog order, not a ranked best match.
type Catalog struct {
	items   []Item
	byName  map[string]int
	byAlias map[string]int

	// highValue holds categories whose orders get the extended
	// dashboard visibility window.
	highValue map[string]bool
}

// catalogFile is the YAML document shape for LoadFile.
type catalogFile struct {
	Items               []Item   `yaml:"items"`
	HighValueCategories []string `yaml:"high_value_categories,omitempty"`
}

// New builds a catalog from items. Item names must be unique
// (case-insensitive); duplicate names or non-positive prices are errors.
func New(items []Item, highValueCategories ...string) (*Catalog, error) {
	c := &Catalog{
		items:     make([]Item, len(items)),
		byName:    make(map[string]int, len(items)),
		byAlias:   make(map[string]int),
		highValue: make(map[string]bool),
	}
	copy(c.items, items)
	for i, it := range c.items {
		if it.Name == "" {
			return nil, fmt.Errorf("menu: item %d has empty name", i)
		}
		if it.Price <= 0 {
			return nil, fmt.Errorf("menu: item %q has non-positive price %d", it.Name, it.Price)
		}
		key := strings.ToLower(it.Name)
		if _, ok := c.byName[key]; ok {
			return nil, fmt.Errorf("menu: duplicate item name %q", it.Name)
		}
		c.byName[key] = i
		for _, a := range it.Aliases {
			c.byAlias[strings.ToLower(a)] = i
		}
	}
	for _, cat := range highValueCategories {
		c.highValue[strings.ToLower(cat)] = true
	}
	return c, nil
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("menu: read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("menu: parse catalog: %w", err)
	}
	return New(f.Items, f.HighValueCategories...)
}

// Items returns the catalog entries in declaration order.
// The returned slice must not be modified.
func (c *Catalog) Items() []Item {
	return c.items
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Lookup returns the item with the given canonical name (case-insensitive).
func (c *Catalog) Lookup(name string) (*Item, bool) {
	if i, ok := c.byName[strings.ToLower(name)]; ok {
		return &c.items[i], true
	}
	return nil, false
}

// HighValue reports whether the category gets the extended dashboard
// visibility window.
func (c *Catalog) HighValue(category string) bool {
	return c.highValue[strings.ToLower(category)]
}

// Match resolves a free-form query to the single best-matching catalog
// item. Precedence, in strict order:
//
//  1. case-insensitive exact match against a canonical name
//  2. case-insensitive exact match against any alias
//  3. case-insensitive substring match in either direction, first
//     catalog entry in declaration order
//
// The substring fallback has no length or word-boundary guard; short
// generic queries may match unintended entries. That fuzziness is the
// documented matching policy.
func (c *Catalog) Match(query string) (*Item, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, false
	}
	if i, ok := c.byName[q]; ok {
		return &c.items[i], true
	}
	if i, ok := c.byAlias[q]; ok {
		return &c.items[i], true
	}
	for i := range c.items {
		name := strings.ToLower(c.items[i].Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return &c.items[i], true
		}
	}
	return nil, false
}
