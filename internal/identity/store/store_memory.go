package store

import (
	"context"
	"sync"

	"ballotbox/internal/identity/models"
	"ballotbox/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users keyed by id with a secondary index on the
// identity code. A single mutex makes GetOrCreate atomic.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	byCode map[string]string
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		byID:   make(map[string]*models.User),
		byCode: make(map[string]string),
	}
}

// GetOrCreate stores user unless its identity code is already registered, in
// which case the existing record is returned untouched.
func (s *InMemoryUserStore) GetOrCreate(_ context.Context, user *models.User) (*models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byCode[user.IdentityCode]; ok {
		existing := *s.byID[id]
		return &existing, false, nil
	}
	stored := *user
	s.byID[stored.ID] = &stored
	s.byCode[stored.IdentityCode] = stored.ID
	created := stored
	return &created, true, nil
}

func (s *InMemoryUserStore) FindByIdentityCode(_ context.Context, code string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user := *s.byID[id]
	return &user, nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	found := *user
	return &found, nil
}
