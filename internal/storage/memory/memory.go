package memory

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// Store is an in-memory blob store. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Put stores a copy of data under id.
func (s *Store) Put(id string, data []byte) {
	copied := make([]byte, len(data))
	copy(copied, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = copied
}

func (s *Store) Stat(_ context.Context, id string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[id]
	if !ok {
		return 0, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	return int64(len(data)), nil
}

// Get returns a copy of the blob.
func (s *Store) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[id]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return copied, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return fmt.Errorf("blob %s: %w", id, os.ErrNotExist)
	}
	delete(s.blobs, id)
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored blobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
