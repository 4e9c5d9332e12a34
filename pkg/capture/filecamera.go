package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"
)

// jpegQuality matches the capture encoder setting (~0.9).
const jpegQuality = 90

// FileCamera serves a still image from a file, re-encoded as JPEG the
// way a real camera capture would be. It implements Camera for
// development and tests.
type FileCamera struct {
	path string
}

// NewFileCamera creates a camera backed by the given image file
// (JPEG, PNG, or GIF).
func NewFileCamera(path string) *FileCamera {
	return &FileCamera{path: path}
}

// Still reads and re-encodes the image. A missing or unreadable file
// surfaces as CAMERA_UNAVAILABLE; the caller decides retry policy.
func (c *FileCamera) Still(ctx context.Context) (*Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.path)
	if err != nil {
		return nil, cameraErr(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, cameraErr(fmt.Errorf("%s: %w", c.path, err))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, cameraErr(err)
	}
	b := img.Bounds()
	return &Photo{
		JPEG:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

var _ Camera = (*FileCamera)(nil)
