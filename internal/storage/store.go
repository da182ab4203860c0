// Package storage owns the physical file bytes. Two variants exist across
// the system's evolution: a database-embedded chunked blob store and an
// external S3 object store. They are mutually exclusive alternatives chosen
// by configuration at boot, never layered.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/projectpulse/backend/internal/config"
	"gorm.io/gorm"
)

// Category partitions stored files into namespaces with distinct size and
// type policies.
type Category string

const (
	CategoryImages      Category = "images"
	CategoryAttachments Category = "attachments"
)

// ErrNotFound is returned when a key does not resolve to stored bytes.
// Callers map it to their own not-found kind; no backend error objects
// cross this boundary.
var ErrNotFound = errors.New("object not found")

// Store is the backend-agnostic contract for physical bytes. Keys are
// "{prefix}/{filename}" strings; the prefix is unique per upload so keys
// never collide.
type Store interface {
	// Save writes size bytes from r under the given key. A failed save
	// leaves nothing behind that Open can observe.
	Save(ctx context.Context, category Category, key string, r io.Reader, size int64) error

	// Open returns a streaming reader for the stored bytes. The caller must
	// close it; closing releases the underlying read handle.
	Open(ctx context.Context, category Category, key string) (io.ReadCloser, error)

	// Rename moves stored bytes to a new key within the same category.
	Rename(ctx context.Context, category Category, oldKey, newKey string) error

	// Delete removes stored bytes. Deleting a missing key is not an error:
	// delete is idempotent so a retried cleanup never fails upward.
	Delete(ctx context.Context, category Category, key string) error
}

// New builds the configured store variant.
func New(ctx context.Context, cfg *config.StorageConfig, db *gorm.DB) (Store, error) {
	switch cfg.Driver {
	case "database":
		return NewDatabaseStore(db), nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
