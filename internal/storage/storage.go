package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured indica que nenhum backend de anexos foi configurado.
var ErrNotConfigured = errors.New("storage: armazenamento de anexos não configurado")

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	Key  string
	ETag string
}

// Uploader armazena anexos (termos digitalizados e notas fiscais) e gera links
// temporários para leitura sob demanda.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
