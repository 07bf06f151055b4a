package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangerinesoft/photo-service/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Storage{
		MinIO: config.MinIO{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "photos"},
		COS:   config.COS{SecretID: "id", SecretKey: "key", Region: "ap-guangzhou", Bucket: "photos-125"},
	}

	tests := []struct {
		backend string
		want    any
	}{
		{backend: "minio", want: &MinIOStore{}},
		{backend: "MinIO", want: &MinIOStore{}},
		{backend: "cos", want: &COSStore{}},
		{backend: "COS", want: &COSStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg.Backend = tt.backend
			store, err := New(context.Background(), cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	for _, backend := range []string{"", "s3", "gcs"} {
		_, err := New(context.Background(), config.Storage{Backend: backend})
		assert.ErrorIs(t, err, ErrUnknownBackend)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Backend: "ftp"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
