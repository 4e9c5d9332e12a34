package pos

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/counterpal/counterpal/pkg/jsontime"
	"github.com/counterpal/counterpal/pkg/menu"
)

// Default policy windows. Visibility is a presentation policy: it
// filters what the dashboard renders and never deletes records.
const (
	// DefaultMergeWindow is the age below which a new order is folded
	// into the most recent existing order instead of creating a new one.
	DefaultMergeWindow = 30 * time.Second

	// DefaultVisibleFor is how long a plain order stays on the dashboard.
	DefaultVisibleFor = 45 * time.Second

	// DefaultVisibleForLong is the extended window for orders that
	// contain a high-value-category item or more than 3 line items.
	DefaultVisibleForLong = 90 * time.Second

	// longOrderLines is the line-item count above which an order gets
	// the extended visibility window.
	longOrderLines = 3
)

// Options configures a Store. Zero values select the defaults above.
type Options struct {
	MergeWindow    time.Duration
	VisibleFor     time.Duration
	VisibleForLong time.Duration

	// Clock overrides the wall clock, for tests.
	Clock func() time.Time
}

func (o *Options) mergeWindow() time.Duration {
	if o != nil && o.MergeWindow > 0 {
		return o.MergeWindow
	}
	return DefaultMergeWindow
}

func (o *Options) visibleFor() time.Duration {
	if o != nil && o.VisibleFor > 0 {
		return o.VisibleFor
	}
	return DefaultVisibleFor
}

func (o *Options) visibleForLong() time.Duration {
	if o != nil && o.VisibleForLong > 0 {
		return o.VisibleForLong
	}
	return DefaultVisibleForLong
}

func (o *Options) clock() func() time.Time {
	if o != nil && o.Clock != nil {
		return o.Clock
	}
	return time.Now
}

// Store is the in-memory, append-only session log of orders and
// insights. It is safe for concurrent use; the live session's tool
// handlers and the dashboard tick run on different goroutines.
//
// The store persists across reconnects by design: it is a separate
// structure from any connection object, so the session transcript
// survives connection churn until the process exits.
type Store struct {
	catalog *menu.Catalog
	opts    Options
	now     func() time.Time

	mu       sync.Mutex
	orders   []*Order
	insights []*Insight
}

// NewStore creates a Store over the given catalog.
func NewStore(catalog *menu.Catalog, opts *Options) *Store {
	s := &Store{catalog: catalog}
	if opts != nil {
		s.opts = *opts
	}
	s.now = s.opts.clock()
	return s
}

// Catalog returns the catalog this store prices orders against.
func (s *Store) Catalog() *menu.Catalog {
	return s.catalog
}

// AppendOrder records a recognized order. If the most recent order is
// younger than the merge window, items are folded into it (context
// merge) and merged reports true; otherwise a new pending order is
// appended. The order total is always recomputed from current catalog
// prices, using 0 for unmatched items.
func (s *Store) AppendOrder(items []OrderItem) (order *Order, merged bool) {
	if len(items) == 0 {
		return nil, false
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.orders); n > 0 {
		last := s.orders[n-1]
		if now.Sub(last.Time.Time()) < s.opts.mergeWindow() {
			last.Items = append(last.Items, items...)
			last.Total = s.total(last.Items)
			return last.Clone(), true
		}
	}

	o := &Order{
		ID:     uuid.New().String(),
		Time:   jsontime.Milli(now),
		Items:  items,
		Status: StatusPending,
		Total:  s.total(items),
	}
	s.orders = append(s.orders, o)
	return o.Clone(), false
}

// total recomputes an order total from current catalog prices.
func (s *Store) total(items []OrderItem) int {
	sum := 0
	for i := range items {
		price := items[i].UnitPrice
		if it, ok := s.catalog.Lookup(items[i].Name); ok {
			price = it.Price
			items[i].UnitPrice = it.Price
		}
		sum += int(float64(price) * items[i].Quantity)
	}
	return sum
}

// AppendInsight records an insight. Severity defaults to low and
// category to general when absent or unrecognized.
func (s *Store) AppendInsight(category, content, severity string) *Insight {
	in := &Insight{
		ID:       uuid.New().String(),
		Time:     jsontime.Milli(s.now()),
		Category: NormalizeCategory(category),
		Content:  content,
		Severity: NormalizeSeverity(severity),
	}
	s.mu.Lock()
	s.insights = append(s.insights, in)
	s.mu.Unlock()
	return in
}

// Orders returns a snapshot of all recorded orders in append order.
func (s *Store) Orders() []*Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Insights returns a snapshot of all recorded insights in append order.
func (s *Store) Insights() []*Insight {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Insight, len(s.insights))
	for i, in := range s.insights {
		v := *in
		out[i] = &v
	}
	return out
}

// Visible returns the orders the dashboard should render at the given
// instant: younger than 45s, or 90s for orders with a high-value item
// or more than 3 lines. Recomputed on every call; underlying records
// are never removed.
func (s *Store) Visible(now time.Time) []*Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Order
	for _, o := range s.orders {
		window := s.opts.visibleFor()
		if s.extended(o) {
			window = s.opts.visibleForLong()
		}
		if now.Sub(o.Time.Time()) < window {
			out = append(out, o.Clone())
		}
	}
	return out
}

// extended reports whether the order qualifies for the long window.
func (s *Store) extended(o *Order) bool {
	if len(o.Items) > longOrderLines {
		return true
	}
	for _, it := range o.Items {
		if m, ok := s.catalog.Lookup(it.Name); ok && s.catalog.HighValue(m.Category) {
			return true
		}
	}
	return false
}

// RecentTotal sums the totals of orders created within the lookback
// window ending at now. Used to answer running-total prompts locally
// instead of trusting a model-supplied number.
func (s *Store) RecentTotal(now time.Time, lookback time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, o := range s.orders {
		if now.Sub(o.Time.Time()) <= lookback {
			sum += o.Total
		}
	}
	return sum
}

// Counts returns the number of recorded orders and insights.
func (s *Store) Counts() (orders, insights int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders), len(s.insights)
}
