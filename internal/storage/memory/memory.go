package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
)

// Storage is an in-memory storage.Storage. A positive quota bounds the total
// size of keys plus values in bytes, so tests can reproduce a full browser
// storage.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
	quota  int
	used   int
}

// New creates an unbounded in-memory storage.
func New() *Storage {
	return NewWithQuota(0)
}

// NewWithQuota creates an in-memory storage limited to quota bytes (0 = unbounded).
func NewWithQuota(quota int) *Storage {
	return &Storage{values: make(map[string]string), quota: quota}
}

// Get returns the value stored under key.
func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key, or fails with storage.ErrQuotaExceeded.
func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used + len(key) + len(value)
	if old, ok := s.values[key]; ok {
		used -= len(key) + len(old)
	}
	if s.quota > 0 && used > s.quota {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), storage.ErrQuotaExceeded)
	}

	s.values[key] = value
	s.used = used
	return nil
}

// Remove deletes key.
func (s *Storage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok {
		s.used -= len(key) + len(old)
		delete(s.values, key)
	}
	return nil
}

// SetQuota changes the quota; existing values are kept even if they exceed it.
func (s *Storage) SetQuota(quota int) {
	s.mu.Lock()
	s.quota = quota
	s.mu.Unlock()
}

// Len returns the number of stored keys.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
