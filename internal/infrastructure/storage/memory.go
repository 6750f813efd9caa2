package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryObjectStorage keeps objects in process. It backs tests and
// deployments with storage disabled.
type MemoryObjectStorage struct {
	// BaseURL prefixes presigned URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "memory://objects",
		objects: make(map[string]memoryObject),
	}
}

// Put stores a copy of data
func (s *MemoryObjectStorage) Put(_ context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Get returns a copy of the object
func (s *MemoryObjectStorage) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

// Exists reports whether key is stored
func (s *MemoryObjectStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Delete removes key; a missing key is not an error
func (s *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PresignGet returns a fake URL carrying the expiry
func (s *MemoryObjectStorage) PresignGet(_ context.Context, key string, expiresIn time.Duration) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return s.BaseURL + "/" + key + "?expires=" + time.Now().Add(expiresIn).UTC().Format(time.RFC3339), nil
}

// ContentType returns the stored content type of key
func (s *MemoryObjectStorage) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key].contentType
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)
