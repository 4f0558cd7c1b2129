package object

import (
	"context"
	"io"
)

// ObjectStore persists uploaded image bytes. Keys are opaque to callers; the
// store owns the layout.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
