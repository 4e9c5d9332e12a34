package capture

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/counterpal/counterpal/pkg/audio/pcm"
	"github.com/counterpal/counterpal/pkg/audio/resampler"
)

// WavSpeaker records model speech to a WAV file. Inbound audio arrives
// at the model output rate (24 kHz); when the target format differs it
// is converted through the bandlimited resampler.
type WavSpeaker struct {
	path   string
	srcFmt pcm.Format
	dstFmt pcm.Format

	mu     sync.Mutex
	file   *os.File
	enc    *wav.Encoder
	closed bool
}

// NewWavSpeaker creates a speaker writing srcFmt audio to a WAV file
// in dstFmt.
func NewWavSpeaker(path string, srcFmt, dstFmt pcm.Format) (*WavSpeaker, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: create wav: %w", err)
	}
	enc := wav.NewEncoder(f, dstFmt.SampleRate(), dstFmt.Depth(), dstFmt.Channels(), 1)
	return &WavSpeaker{path: path, srcFmt: srcFmt, dstFmt: dstFmt, file: f, enc: enc}, nil
}

// Write converts and appends one chunk of s16le PCM at the source rate.
func (s *WavSpeaker) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("capture: speaker closed")
	}

	out := data
	if s.srcFmt != s.dstFmt {
		r, err := resampler.New(bytes.NewReader(data), s.srcFmt, s.dstFmt)
		if err != nil {
			return 0, err
		}
		var conv []byte
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				conv = append(conv, buf[:n]...)
			}
			if err != nil {
				break
			}
		}
		r.Close()
		out = conv
	}

	samples := pcm.S16LEToF32(out)
	ints := make([]int, len(samples))
	for i, v := range samples {
		ints[i] = int(v * 32767)
	}
	err := s.enc.Write(&audio.IntBuffer{
		Data:   ints,
		Format: &audio.Format{NumChannels: s.dstFmt.Channels(), SampleRate: s.dstFmt.SampleRate()},
	})
	if err != nil {
		return 0, fmt.Errorf("capture: wav write: %w", err)
	}
	return len(data), nil
}

// Close finalizes the WAV header and releases the file.
func (s *WavSpeaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("capture: close wav: %w", err)
	}
	return s.file.Close()
}
