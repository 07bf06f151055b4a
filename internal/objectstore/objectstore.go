// Package objectstore persists photo binaries in an S3-compatible bucket.
// Two backends are provided: a self-hosted MinIO server and Tencent Cloud
// Object Storage, which is reached over its S3 protocol.
package objectstore

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrObjectNotFound = errors.New("object not found")
)

// Store is the minimal object store used by the ingestion pipeline.
type Store interface {
	// EnsureBucket makes sure the configured bucket exists. Only the first
	// successful call talks to the backend.
	EnsureBucket(ctx context.Context) error
	// PutObject writes data under key, replacing any previous object.
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	// DeleteObject removes key. It returns ErrObjectNotFound when the object
	// is absent.
	DeleteObject(ctx context.Context, key string) error
}

// bucketGuard caches bucket readiness. Failed provisioning leaves it unset
// so the next call retries.
type bucketGuard struct {
	mu    sync.Mutex
	ready bool
}

func (g *bucketGuard) ensure(ctx context.Context, provision func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return nil
	}
	if err := provision(ctx); err != nil {
		return err
	}
	g.ready = true
	return nil
}
