package storage

import (
	"context"
	"time"
)

// NoopUploader é usado quando STORAGE_PROVIDER=noop.
type NoopUploader struct{}

// Upload sempre retorna ErrNotConfigured.
func (NoopUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, ErrNotConfigured
}

// PresignGet sempre retorna ErrNotConfigured.
func (NoopUploader) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrNotConfigured
}
