// Package storage abstracts the destination of exported reports so the
// export command can write CSV files to a local directory or an
// S3-compatible bucket through the same interface.
package storage

import (
	"context"
	"io"
	"strings"
)

// FileStore is a minimal file-oriented store.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading. If the file does not
	// exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating any existing
	// file and creating parents as needed. The caller must close the
	// returned WriteCloser to flush.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// ParseS3Dest splits an "s3://bucket/prefix" destination into bucket
// and prefix. ok is false when dest is not an S3 URL.
func ParseS3Dest(dest string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(dest, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	prefix = strings.TrimSuffix(prefix, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, prefix, true
}
