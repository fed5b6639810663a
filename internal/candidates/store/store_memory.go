package store

import (
	"context"
	"sync"

	"ballotbox/internal/candidates/models"
	"ballotbox/pkg/platform/sentinel"
)

// InMemoryStore keeps the live roster in id order. Removed ids are retired
// forever because nextID only grows.
type InMemoryStore struct {
	mu         sync.RWMutex
	candidates map[int64]*models.Candidate
	order      []int64
	nextID     int64
	revision   int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		candidates: make(map[int64]*models.Candidate),
		nextID:     1,
	}
}

func (s *InMemoryStore) Create(_ context.Context, fields models.Fields) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Candidate{ID: s.nextID}
	c.Apply(fields)
	s.nextID++
	s.candidates[c.ID] = c
	s.order = append(s.order, c.ID)
	s.revision++
	out := *c
	return &out, nil
}

func (s *InMemoryStore) Get(_ context.Context, id int64) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *InMemoryStore) Update(_ context.Context, id int64, fields models.Fields) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.Apply(fields)
	s.revision++
	out := *c
	return &out, nil
}

// Remove deletes the candidate once guard approves it. guard runs while the
// roster is write-locked, so no vote can target the candidate meanwhile.
func (s *InMemoryStore) Remove(ctx context.Context, id int64, guard func(ctx context.Context, c *models.Candidate) error) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *c
	if guard != nil {
		if err := guard(ctx, &out); err != nil {
			return nil, err
		}
	}
	delete(s.candidates, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.revision++
	return &out, nil
}

func (s *InMemoryStore) Snapshot(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &models.Snapshot{Revision: s.revision, Candidates: make([]models.Candidate, 0, len(s.order))}
	for _, id := range s.order {
		snap.Candidates = append(snap.Candidates, *s.candidates[id])
	}
	return snap, nil
}

// WithLive runs fn while holding the roster read lock, after confirming id
// is live. Callers use it to make "candidate exists" and their own write one
// atomic step.
func (s *InMemoryStore) WithLive(_ context.Context, id int64, fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.candidates[id]; !ok {
		return sentinel.ErrNotFound
	}
	return fn()
}
