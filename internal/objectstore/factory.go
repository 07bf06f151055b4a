package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/tangerinesoft/photo-service/internal/config"
)

// New builds the adapter named by cfg.Backend without contacting it.
func New(ctx context.Context, cfg config.Storage) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "minio":
		return NewMinIOStore(cfg.MinIO)
	case "cos":
		return NewCOSStore(ctx, cfg.COS)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Open builds the configured adapter and provisions its bucket.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	store, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}
	return store, nil
}
