// Package resampler provides bandlimited sample rate conversion
// between PCM formats, used on the playback capture path where the
// model output rate differs from the requested file rate.
//
// The outbound microphone pipeline intentionally does NOT use this
// package; it uses pcm.Decimate (nearest-sample) per the capture
// design.
package resampler

import (
	"fmt"
	"io"
	"sync"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/counterpal/counterpal/pkg/audio/pcm"
)

// Reader wraps an io.Reader of srcFmt PCM and yields dstFmt PCM.
// It must be closed to release resources. Not safe for concurrent Read.
type Reader struct {
	src    io.Reader
	srcFmt pcm.Format
	dstFmt pcm.Format

	mu        sync.Mutex
	resampler resampling.Resampler
	readBuf   []byte
	leftover  []byte
	closeErr  error
}

// New creates a Reader converting srcFmt to dstFmt. Equal formats read
// straight through.
func New(src io.Reader, srcFmt, dstFmt pcm.Format) (*Reader, error) {
	r := &Reader{src: src, srcFmt: srcFmt, dstFmt: dstFmt}
	if srcFmt.SampleRate() != dstFmt.SampleRate() {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(srcFmt.SampleRate()),
			OutputRate: float64(dstFmt.SampleRate()),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("resampler: %w", err)
		}
		r.resampler = rs
	}
	return r, nil
}

// Read fills p with converted PCM. p must hold at least one sample.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) < 2 {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)/2*2]

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.leftover) > 0 {
		n := copy(p, r.leftover)
		r.leftover = r.leftover[n:]
		return n, nil
	}
	if r.closeErr != nil {
		return 0, r.closeErr
	}
	if r.resampler == nil {
		return r.src.Read(p)
	}

	// Estimate source bytes needed for len(p) output bytes.
	ratio := float64(r.srcFmt.SampleRate()) / float64(r.dstFmt.SampleRate())
	need := (int(float64(len(p))*ratio) + 8) / 2 * 2
	if cap(r.readBuf) < need {
		r.readBuf = make([]byte, need)
	}
	rn, readErr := r.src.Read(r.readBuf[:need])
	if rn == 0 {
		if readErr != nil {
			return 0, readErr
		}
		return 0, io.EOF
	}

	in := pcm.S16LEToF32(r.readBuf[:rn])
	in64 := make([]float64, len(in))
	for i, s := range in {
		in64[i] = float64(s)
	}
	out64, err := r.resampler.Process(in64)
	if err != nil {
		return 0, fmt.Errorf("resampler: %w", err)
	}
	out := make([]float32, len(out64))
	for i, s := range out64 {
		out[i] = float32(s)
	}
	data := pcm.F32ToS16LE(out)

	n := copy(p, data)
	if len(data) > n {
		r.leftover = append(r.leftover, data[n:]...)
	}
	return n, readErr
}

// Close releases resources. Subsequent reads return io.ErrClosedPipe.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closeErr == nil {
		r.closeErr = fmt.Errorf("resampler: %w", io.ErrClosedPipe)
	}
	r.resampler = nil
	return nil
}
