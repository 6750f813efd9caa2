// Package storage provides object storage for rendered documents.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by Get for a missing key
var ErrObjectNotFound = errors.New("storage: object not found")

// ErrEmptyKey is returned when an operation is called without a key
var ErrEmptyKey = errors.New("storage: key is required")

// ObjectStorage stores immutable binary objects by key
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}
