package tracker

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	store map[string]Journey // userID -> journey
}

// NewMemoryStore returns an in-memory store intended for local development and tests.
func NewMemoryStore() Store {
	return &memoryStore{
		store: make(map[string]Journey),
	}
}

func (s *memoryStore) Load(_ context.Context, userID string) (Journey, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.store[userID]
	if !ok {
		return Journey{}, false, nil
	}
	return j.Clone(), true, nil
}

func (s *memoryStore) Save(_ context.Context, userID string, journey Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[userID] = journey.Clone()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.store, userID)
	return nil
}
