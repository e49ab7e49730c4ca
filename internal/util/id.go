package util

import "github.com/google/uuid"

// NewID gera o identificador de entidades, eventos e termos (UUID v4).
func NewID() string {
	return uuid.NewString()
}
