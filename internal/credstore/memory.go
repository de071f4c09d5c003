package credstore

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	cred domain.Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred.IsZero() {
		return "", ErrNotFound
	}
	return s.cred, nil
}

func (s *MemoryStore) Save(_ context.Context, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = cred
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = ""
	return nil
}
