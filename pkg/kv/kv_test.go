package kv

import (
	"context"
	"errors"
	"testing"
)

// stores returns one of each implementation for cross-checking.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	b, err := NewBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"badger": b,
	}
}

func TestStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := Key{"session", "2026-08-24", "abc"}

			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get missing = %v, want ErrNotFound", err)
			}
			if err := s.Set(ctx, key, []byte("v1")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := s.Get(ctx, key)
			if err != nil || string(got) != "v1" {
				t.Fatalf("Get = %q, %v", got, err)
			}
			if err := s.Set(ctx, key, []byte("v2")); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, _ = s.Get(ctx, key)
			if string(got) != "v2" {
				t.Errorf("Get after overwrite = %q", got)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete = %v, want ErrNotFound", err)
			}
			// Deleting again is fine.
			if err := s.Delete(ctx, key); err != nil {
				t.Errorf("Delete missing: %v", err)
			}
		})
	}
}

func TestStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			entries := []Entry{
				{Key: Key{"session", "2026-08-23", "a"}, Value: []byte("1")},
				{Key: Key{"session", "2026-08-24", "b"}, Value: []byte("2")},
				{Key: Key{"session", "2026-08-24", "c"}, Value: []byte("3")},
				{Key: Key{"sessionx", "2026-08-24", "d"}, Value: []byte("4")},
			}
			for _, e := range entries {
				if err := s.Set(ctx, e.Key, e.Value); err != nil {
					t.Fatalf("Set: %v", err)
				}
			}

			var got []string
			for e, err := range s.List(ctx, Key{"session", "2026-08-24"}) {
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				got = append(got, e.Key.String()+"="+string(e.Value))
			}
			want := []string{
				"session:2026-08-24:b=2",
				"session:2026-08-24:c=3",
			}
			if len(got) != len(want) {
				t.Fatalf("List = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("List[%d] = %q, want %q", i, got[i], want[i])
				}
			}

			// Sibling prefix must not leak in.
			n := 0
			for _, err := range s.List(ctx, Key{"session"}) {
				if err != nil {
					t.Fatalf("List: %v", err)
				}
				n++
			}
			if n != 3 {
				t.Errorf("List(session) yielded %d entries, want 3", n)
			}
		})
	}
}

func TestKeyRoundtrip(t *testing.T) {
	k := Key{"session", "2026-08-24", "id-1"}
	if got := k.String(); got != "session:2026-08-24:id-1" {
		t.Errorf("String = %q", got)
	}
	back := decode(encode(k))
	if back.String() != k.String() {
		t.Errorf("decode(encode) = %v, want %v", back, k)
	}
}
