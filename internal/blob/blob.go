// Package blob abstracts the object store holding plugin jars and thumbnail
// images. The core only ever handles opaque object keys; bytes live in an
// S3-compatible store.
package blob

import (
	"context"
	"io"
)

type Store interface {
	// Put uploads an object under key and returns its public URL.
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	// URL returns the public URL for an already-stored object.
	URL(key string) string
}
