package services

import (
	"github.com/google/uuid"

	"github.com/mpetrov/filedrop/applications/server/interfaces"
)

type uuidKeyGenerator struct{}

// NewKeyGenerator returns a generator backed by random v4 uuids.
func NewKeyGenerator() interfaces.KeyGenerator {
	return uuidKeyGenerator{}
}

// Key returns a fresh random key, suffixed with "."+extension when the
// file has a known extension. Every call draws a new uuid, so collision
// retries never reuse a value.
func (uuidKeyGenerator) Key(extension string) string {
	key := uuid.NewString()
	if extension != "" {
		key += "." + extension
	}

	return key
}
