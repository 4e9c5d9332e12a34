package capture

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// frameDuration is the chunk size FileMic emits, matching what a real
// capture callback would deliver.
const frameDuration = 20 * time.Millisecond

// FileMic replays a 16-bit PCM WAV file as a microphone stream, paced
// at real time. It implements MicSource for development and tests.
type FileMic struct {
	path string

	// Pace disables real-time pacing when false, for tests.
	Pace bool

	mu     sync.Mutex
	file   *os.File
	cancel context.CancelFunc
	closed bool
}

// NewFileMic creates a mic source replaying the given WAV file.
func NewFileMic(path string) *FileMic {
	return &FileMic{path: path, Pace: true}
}

// Start opens the file and begins emitting frames. The file handle is
// released when the stream ends, the context is cancelled, or Close is
// called.
func (m *FileMic) Start(ctx context.Context) (<-chan Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, micErr(fmt.Errorf("source closed"))
	}
	if m.file != nil {
		return nil, micErr(fmt.Errorf("already started"))
	}

	f, err := os.Open(m.path)
	if err != nil {
		return nil, micErr(err)
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, micErr(fmt.Errorf("%s: not a valid wav file", m.path))
	}
	if dec.BitDepth != 16 || dec.NumChans != 1 {
		f.Close()
		return nil, micErr(fmt.Errorf("%s: want 16-bit mono, got %d-bit %d-channel", m.path, dec.BitDepth, dec.NumChans))
	}

	ctx, cancel := context.WithCancel(ctx)
	m.file = f
	m.cancel = cancel

	rate := int(dec.SampleRate)
	frames := make(chan Frame, 4)
	go m.pump(ctx, dec, rate, frames)
	return frames, nil
}

// pump reads the decoder and emits frames until EOF or cancellation.
func (m *FileMic) pump(ctx context.Context, dec *wav.Decoder, rate int, frames chan<- Frame) {
	defer close(frames)
	defer m.release()

	samplesPerFrame := rate * int(frameDuration/time.Millisecond) / 1000
	buf := &audio.IntBuffer{
		Data:   make([]int, samplesPerFrame),
		Format: &audio.Format{NumChannels: 1, SampleRate: rate},
	}

	var ticker *time.Ticker
	if m.Pace {
		ticker = time.NewTicker(frameDuration)
		defer ticker.Stop()
	}

	for {
		n, err := dec.PCMBuffer(buf)
		if n == 0 || err != nil {
			return
		}
		samples := make([]float32, n)
		for i := 0; i < n; i++ {
			samples[i] = float32(buf.Data[i]) / 32768
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
		select {
		case <-ctx.Done():
			return
		case frames <- Frame{Samples: samples, Rate: rate}:
		}
	}
}

// release closes the underlying file handle once.
func (m *FileMic) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file != nil {
		m.file.Close()
		m.file = nil
	}
}

// Close stops the stream and releases the file. Safe to call twice.
func (m *FileMic) Close() error {
	m.mu.Lock()
	m.closed = true
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.release()
	return nil
}

var _ MicSource = (*FileMic)(nil)
