package pos_test

import (
	"testing"
	"time"

	"github.com/counterpal/counterpal/pkg/menu"
	"github.com/counterpal/counterpal/pkg/pos"
)

// fakeClock is a manually advanced clock for policy-window tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*pos.Store, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	s := pos.NewStore(menu.Default(), &pos.Options{Clock: clk.now})
	return s, clk
}

func TestAppendOrderTotal(t *testing.T) {
	s, _ := newTestStore(t)

	o, merged := s.AppendOrder([]pos.OrderItem{
		{Name: "Kachori", Quantity: 2},
		{Name: "Masala Chai", Quantity: 1},
		{Name: "mystery item", Quantity: 3},
	})
	if merged {
		t.Fatal("first order should not merge")
	}
	// 2*25 + 1*15 + 3*0
	if o.Total != 65 {
		t.Fatalf("Total = %d, want 65", o.Total)
	}
	if o.Status != pos.StatusPending {
		t.Fatalf("Status = %q, want pending", o.Status)
	}
	if o.ID == "" {
		t.Fatal("order ID should be set")
	}
}

func TestAppendOrderEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	if o, _ := s.AppendOrder(nil); o != nil {
		t.Fatal("empty item list should not create an order")
	}
}

func TestContextMerge(t *testing.T) {
	s, clk := newTestStore(t)

	first, _ := s.AppendOrder([]pos.OrderItem{{Name: "Samosa", Quantity: 1}})

	// 5 seconds later: merged into the first order.
	clk.advance(5 * time.Second)
	o, merged := s.AppendOrder([]pos.OrderItem{{Name: "Jalebi", Quantity: 1}})
	if !merged {
		t.Fatal("order 5s apart should merge")
	}
	if o.ID != first.ID {
		t.Fatalf("merged order ID = %q, want %q", o.ID, first.ID)
	}
	if len(o.Items) != 2 {
		t.Fatalf("merged order has %d items, want 2", len(o.Items))
	}
	// 1*20 + 1*50
	if o.Total != 70 {
		t.Fatalf("merged Total = %d, want 70", o.Total)
	}
	if n, _ := s.Counts(); n != 1 {
		t.Fatalf("stored orders = %d, want 1", n)
	}

	// 40 seconds after the first order: separate order.
	clk.advance(35 * time.Second)
	_, merged = s.AppendOrder([]pos.OrderItem{{Name: "Lassi", Quantity: 1}})
	if merged {
		t.Fatal("order 40s apart should not merge")
	}
	if n, _ := s.Counts(); n != 2 {
		t.Fatalf("stored orders = %d, want 2", n)
	}
}

func TestVisibilityWindows(t *testing.T) {
	s, clk := newTestStore(t)

	s.AppendOrder([]pos.OrderItem{{Name: "Samosa", Quantity: 2}})

	clk.advance(44 * time.Second)
	if got := s.Visible(clk.now()); len(got) != 1 {
		t.Fatalf("plain order at 44s: visible = %d, want 1", len(got))
	}
	clk.advance(2 * time.Second)
	if got := s.Visible(clk.now()); len(got) != 0 {
		t.Fatalf("plain order at 46s: visible = %d, want 0", len(got))
	}
}

func TestVisibilityHighValue(t *testing.T) {
	s, clk := newTestStore(t)

	s.AppendOrder([]pos.OrderItem{{Name: "Special Thali", Quantity: 1}})

	clk.advance(89 * time.Second)
	if got := s.Visible(clk.now()); len(got) != 1 {
		t.Fatalf("high-value order at 89s: visible = %d, want 1", len(got))
	}
	clk.advance(2 * time.Second)
	if got := s.Visible(clk.now()); len(got) != 0 {
		t.Fatalf("high-value order at 91s: visible = %d, want 0", len(got))
	}
}

func TestVisibilityManyLines(t *testing.T) {
	s, clk := newTestStore(t)

	s.AppendOrder([]pos.OrderItem{
		{Name: "Samosa", Quantity: 1},
		{Name: "Kachori", Quantity: 1},
		{Name: "Jalebi", Quantity: 1},
		{Name: "Masala Chai", Quantity: 1},
	})

	clk.advance(60 * time.Second)
	if got := s.Visible(clk.now()); len(got) != 1 {
		t.Fatalf("4-line order at 60s: visible = %d, want 1", len(got))
	}
	// Visibility filters rendering only; the record itself stays.
	clk.advance(60 * time.Second)
	if got := s.Visible(clk.now()); len(got) != 0 {
		t.Fatalf("4-line order at 120s: visible = %d, want 0", len(got))
	}
	if n, _ := s.Counts(); n != 1 {
		t.Fatalf("stored orders = %d, want 1", n)
	}
}

func TestRecentTotal(t *testing.T) {
	s, clk := newTestStore(t)

	s.AppendOrder([]pos.OrderItem{{Name: "Samosa", Quantity: 1}}) // 20
	clk.advance(2 * time.Minute)
	s.AppendOrder([]pos.OrderItem{{Name: "Jalebi", Quantity: 1}}) // 50
	clk.advance(2 * time.Minute)
	s.AppendOrder([]pos.OrderItem{{Name: "Lassi", Quantity: 2}}) // 90

	if got := s.RecentTotal(clk.now(), 5*time.Minute); got != 160 {
		t.Fatalf("RecentTotal(5m) = %d, want 160", got)
	}
	if got := s.RecentTotal(clk.now(), 3*time.Minute); got != 140 {
		t.Fatalf("RecentTotal(3m) = %d, want 140", got)
	}
	if got := s.RecentTotal(clk.now(), time.Minute); got != 90 {
		t.Fatalf("RecentTotal(1m) = %d, want 90", got)
	}
}

func TestAppendInsightDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	in := s.AppendInsight("", "restock onions", "")
	if in.Severity != pos.SeverityLow {
		t.Fatalf("Severity = %q, want low", in.Severity)
	}
	if in.Category != pos.InsightGeneral {
		t.Fatalf("Category = %q, want general", in.Category)
	}

	in = s.AppendInsight("security_risk", "till left open", "high")
	if in.Severity != pos.SeverityHigh || in.Category != pos.InsightSecurityRisk {
		t.Fatalf("got %q/%q, want security_risk/high", in.Category, in.Severity)
	}

	in = s.AppendInsight("bogus", "note", "extreme")
	if in.Severity != pos.SeverityLow || in.Category != pos.InsightGeneral {
		t.Fatalf("unrecognized values should default, got %q/%q", in.Category, in.Severity)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	s, _ := newTestStore(t)

	s.AppendOrder([]pos.OrderItem{{Name: "Samosa", Quantity: 1}})
	snap := s.Orders()
	snap[0].Items[0].Name = "tampered"
	snap[0].Total = -1

	again := s.Orders()
	if again[0].Items[0].Name != "Samosa" || again[0].Total != 20 {
		t.Fatal("snapshot mutation must not affect the store")
	}
}
