// Package capture acquires camera frames and microphone audio from the
// host, behind interfaces so the live session and the CLI do not care
// whether frames come from real hardware or file replay.
//
// Acquisition is scoped: a source claims its device on Start and is
// guaranteed to release it on Close, including on error paths.
package capture

import (
	"context"
	"errors"
	"fmt"
)

// ErrDeviceUnavailable is the sentinel for a camera or microphone that
// is denied, busy, or missing. Recovery is a user-triggered retry.
var ErrDeviceUnavailable = errors.New("capture: device unavailable")

// Device error codes surfaced as short status strings.
const (
	CodeCameraUnavailable = "CAMERA_UNAVAILABLE"
	CodeMicUnavailable    = "MIC_UNAVAILABLE"
)

// DeviceError wraps ErrDeviceUnavailable with a device code and cause.
type DeviceError struct {
	Code  string
	Cause error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("capture: %s: %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("capture: %s", e.Code)
}

// Unwrap makes errors.Is(err, ErrDeviceUnavailable) work.
func (e *DeviceError) Unwrap() error {
	return ErrDeviceUnavailable
}

// cameraErr wraps a cause as a camera failure.
func cameraErr(cause error) error {
	return &DeviceError{Code: CodeCameraUnavailable, Cause: cause}
}

// micErr wraps a cause as a microphone failure.
func micErr(cause error) error {
	return &DeviceError{Code: CodeMicUnavailable, Cause: cause}
}

// Frame is one chunk of captured microphone audio.
type Frame struct {
	// Samples are normalized mono samples at Rate Hz.
	Samples []float32
	// Rate is the capture sample rate in Hz.
	Rate int
}

// MicSource is a continuous microphone stream.
//
// Start claims the device and returns a channel of frames; the channel
// is closed when the source ends or the context is cancelled. Close
// releases the device and is safe to call more than once.
type MicSource interface {
	Start(ctx context.Context) (<-chan Frame, error)
	Close() error
}

// Photo is a captured still image, JPEG-encoded.
type Photo struct {
	JPEG   []byte
	Width  int
	Height int
}

// Camera captures still images on demand.
type Camera interface {
	Still(ctx context.Context) (*Photo, error)
}
