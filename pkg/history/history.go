// Package history archives completed sessions so past days remain
// exportable after the process exits. Records are msgpack-encoded into
// a key-value store under session/<date>/<id>.
package history

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/counterpal/counterpal/pkg/jsontime"
	"github.com/counterpal/counterpal/pkg/kv"
	"github.com/counterpal/counterpal/pkg/pos"
	"github.com/counterpal/counterpal/pkg/report"
)

// Record is one archived session.
type Record struct {
	ID       string         `msgpack:"id"`
	Started  jsontime.Milli `msgpack:"started"`
	Ended    jsontime.Milli `msgpack:"ended"`
	Orders   []*pos.Order   `msgpack:"orders"`
	Insights []*pos.Insight `msgpack:"insights"`
}

// Date returns the archive date of the record, from its start time.
// UTC, so archive keys do not depend on the host timezone.
func (r *Record) Date() string {
	return r.Started.Time().UTC().Format("2006-01-02")
}

// Archive reads and writes session records.
type Archive struct {
	store kv.Store
}

// New creates an Archive over the given store.
func New(store kv.Store) *Archive {
	return &Archive{store: store}
}

// Store exposes the underlying key-value store, which also holds the
// tray count log.
func (a *Archive) Store() kv.Store {
	return a.store
}

// Save archives one session record.
func (a *Archive) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		return fmt.Errorf("history: record has no ID")
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: encode session %s: %w", rec.ID, err)
	}
	key := kv.Key{"session", rec.Date(), rec.ID}
	if err := a.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("history: save session %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads one archived session.
func (a *Archive) Get(ctx context.Context, date, id string) (*Record, error) {
	data, err := a.store.Get(ctx, kv.Key{"session", date, id})
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("history: decode session %s: %w", id, err)
	}
	return &rec, nil
}

// List returns all sessions archived on the given date, oldest first
// by key order. An empty date lists every archived session.
func (a *Archive) List(ctx context.Context, date string) ([]*Record, error) {
	prefix := kv.Key{"session"}
	if date != "" {
		prefix = append(prefix, date)
	}

	var out []*Record
	for e, err := range a.store.List(ctx, prefix) {
		if err != nil {
			return nil, fmt.Errorf("history: list sessions: %w", err)
		}
		var rec Record
		if derr := msgpack.Unmarshal(e.Value, &rec); derr != nil {
			return nil, fmt.Errorf("history: decode session %s: %w", e.Key, derr)
		}
		out = append(out, &rec)
	}
	return out, nil
}

// ExportCSV writes one archived session as a CSV report.
func (a *Archive) ExportCSV(ctx context.Context, date, id string, w io.Writer) error {
	rec, err := a.Get(ctx, date, id)
	if err != nil {
		return err
	}
	return report.WriteSession(w, rec.Orders, rec.Insights)
}

// Snapshot captures the current store contents as an archive record.
func Snapshot(store *pos.Store, started time.Time) *Record {
	orders := store.Orders()
	insights := store.Insights()
	id := started.UTC().Format("20060102T150405")
	return &Record{
		ID:       id,
		Started:  jsontime.Milli(started),
		Ended:    jsontime.Now(),
		Orders:   orders,
		Insights: insights,
	}
}
