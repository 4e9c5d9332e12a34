package live

import (
	"io"
	"sync"
	"time"
)

// Player schedules inbound model speech for gapless playback. Each
// chunk is appended at max(now, end-of-scheduled-audio), so chunks
// that arrive faster than real time queue up instead of overlapping.
// Reset drops the queue on interruption.
//
// Playback itself is delegated to an optional sink (a WAV speaker or a
// device writer); the Player owns only the timeline bookkeeping that
// drives the speaking indicator.
type Player struct {
	sink io.Writer
	now  func() time.Time

	mu  sync.Mutex
	end time.Time
}

// PlayerConfig configures a Player. Chunks are assumed to be in
// OutputFormat; downstream conversion is the sink's concern.
type PlayerConfig struct {
	// Sink receives scheduled chunks in arrival order. May be nil.
	Sink io.Writer

	// Clock overrides the wall clock, for tests.
	Clock func() time.Time
}

// NewPlayer creates a Player.
func NewPlayer(cfg PlayerConfig) *Player {
	p := &Player{
		sink: cfg.Sink,
		now:  cfg.Clock,
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Schedule appends one audio chunk to the playback timeline.
func (p *Player) Schedule(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	d := OutputFormat.Duration(len(chunk))

	p.mu.Lock()
	start := p.now()
	if p.end.After(start) {
		start = p.end
	}
	p.end = start.Add(d)
	p.mu.Unlock()

	if p.sink != nil {
		if _, err := p.sink.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// Speaking reports whether scheduled audio extends past now.
func (p *Player) Speaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.end.After(p.now())
}

// Reset drops all queued audio. Called on interruption and on
// reconnect so stale speech never plays over a new exchange.
func (p *Player) Reset() {
	p.mu.Lock()
	p.end = time.Time{}
	p.mu.Unlock()
}

// Remaining returns how much scheduled audio is left to play.
func (p *Player) Remaining() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d := p.end.Sub(p.now()); d > 0 {
		return d
	}
	return 0
}
