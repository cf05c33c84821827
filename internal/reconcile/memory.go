package reconcile

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu      sync.RWMutex
	credits map[string]TopupCredit
}

// NewMemoryStore constructs an in-memory credit store for development and
// tests.
func NewMemoryStore() Store {
	return &memoryStore{credits: make(map[string]TopupCredit)}
}

func (s *memoryStore) RecordCredit(_ context.Context, credit TopupCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credits[credit.TopupID]; exists {
		return nil
	}
	s.credits[credit.TopupID] = credit
	return nil
}

func (s *memoryStore) ListCredits(_ context.Context, cardID string) ([]TopupCredit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var credits []TopupCredit
	for _, credit := range s.credits {
		if credit.CardID == cardID {
			credits = append(credits, credit)
		}
	}
	return credits, nil
}
