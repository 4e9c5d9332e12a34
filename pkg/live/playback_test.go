package live

import (
	"bytes"
	"testing"
	"time"
)

func TestPlayerGaplessSchedule(t *testing.T) {
	now := time.Unix(100, 0)
	p := NewPlayer(PlayerConfig{Clock: func() time.Time { return now }})

	// 24000 samples/s * 2 bytes = 48000 bytes/s, so 4800 bytes is 100ms.
	chunk := make([]byte, 4800)
	if err := p.Schedule(chunk); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := p.Schedule(chunk); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	// Two back-to-back chunks queue, not overlap.
	if got, want := p.Remaining(), 200*time.Millisecond; got != want {
		t.Errorf("Remaining = %v, want %v", got, want)
	}
	if !p.Speaking() {
		t.Error("Speaking = false with queued audio")
	}

	now = now.Add(250 * time.Millisecond)
	if p.Speaking() {
		t.Error("Speaking = true after queue drained")
	}
	if got := p.Remaining(); got != 0 {
		t.Errorf("Remaining = %v after drain, want 0", got)
	}
}

func TestPlayerReset(t *testing.T) {
	now := time.Unix(100, 0)
	p := NewPlayer(PlayerConfig{Clock: func() time.Time { return now }})

	p.Schedule(make([]byte, 48000))
	if !p.Speaking() {
		t.Fatal("Speaking = false with queued audio")
	}
	p.Reset()
	if p.Speaking() {
		t.Error("Speaking = true after Reset")
	}
}

func TestPlayerSink(t *testing.T) {
	var sink bytes.Buffer
	p := NewPlayer(PlayerConfig{Sink: &sink})

	chunk := []byte{1, 2, 3, 4}
	if err := p.Schedule(chunk); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !bytes.Equal(sink.Bytes(), chunk) {
		t.Errorf("sink = %v, want %v", sink.Bytes(), chunk)
	}
}

func TestPlayerEmptyChunk(t *testing.T) {
	p := NewPlayer(PlayerConfig{})
	if err := p.Schedule(nil); err != nil {
		t.Fatalf("Schedule(nil): %v", err)
	}
	if p.Speaking() {
		t.Error("Speaking = true after empty chunk")
	}
}
