package live

import (
	"math"
	"sync"
)

// MeterBuckets is the number of level buckets the dashboard renders.
const MeterBuckets = 30

// thinkingThreshold is the average level below which input is
// considered silence for the listening/thinking indicator.
const thinkingThreshold = 0.02

// Meter tracks microphone input levels for the dashboard visualizer.
// Each Update records the mean absolute level of one frame into a
// rolling bucket window, so a single click in an otherwise quiet frame
// does not read as speech. Safe for concurrent use.
type Meter struct {
	mu      sync.Mutex
	buckets [MeterBuckets]float32
	next    int
}

// NewMeter creates a Meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Update records one frame of float32 samples.
func (m *Meter) Update(samples []float32) {
	var level float32
	if len(samples) > 0 {
		var sum float64
		for _, s := range samples {
			sum += math.Abs(float64(s))
		}
		level = float32(sum / float64(len(samples)))
	}
	if level > 1 {
		level = 1
	}

	m.mu.Lock()
	m.buckets[m.next] = level
	m.next = (m.next + 1) % MeterBuckets
	m.mu.Unlock()
}

// Levels returns the bucket window oldest-first.
func (m *Meter) Levels() []float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float32, MeterBuckets)
	for i := 0; i < MeterBuckets; i++ {
		out[i] = m.buckets[(m.next+i)%MeterBuckets]
	}
	return out
}

// Active reports whether the most recent frame was above the silence
// threshold.
func (m *Meter) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := (m.next + MeterBuckets - 1) % MeterBuckets
	return m.buckets[last] >= thinkingThreshold
}

// Reset clears the window.
func (m *Meter) Reset() {
	m.mu.Lock()
	m.buckets = [MeterBuckets]float32{}
	m.next = 0
	m.mu.Unlock()
}
