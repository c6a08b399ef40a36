package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when nothing is stored at the path
var ErrNotFound = errors.New("object not found")

// Adapter defines the interface for storage backends holding library records.
// Paths are slash separated and relative to the adapter root.
type Adapter interface {
	// Put stores data at the given path, replacing previous content
	Put(ctx context.Context, path string, data io.Reader) error

	// Get retrieves data from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes data at the given path; deleting a missing path is not an error
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// List returns paths matching the given prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Close cleans up any resources
	Close() error
}
