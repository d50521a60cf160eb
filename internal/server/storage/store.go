// Package storage uploads images to the binary object host and removes them.
package storage

import (
	"context"
	"io"
)

// Upload is one file handed to the object host. Body must be seekable so the
// request can be signed and retried.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Object is what the host reports back for a stored upload.
type Object struct {
	URL string
	Key string
}

// ObjectStore is the object host as seen by the services.
type ObjectStore interface {
	Put(ctx context.Context, folder string, up Upload) (*Object, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, error)
	Ping(ctx context.Context) error
}
