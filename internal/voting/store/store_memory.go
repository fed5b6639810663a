package store

import (
	"context"
	"slices"
	"sync"

	"ballotbox/internal/voting/models"
	"ballotbox/pkg/platform/sentinel"
)

// CandidateGuard runs fn only while the candidate is live and cannot be
// removed. The in-memory candidate store satisfies it.
type CandidateGuard interface {
	WithLive(ctx context.Context, candidateID int64, fn func() error) error
}

// InMemoryStore keeps one vote per user.
type InMemoryStore struct {
	mu         sync.RWMutex
	byUser     map[string]models.Vote
	candidates CandidateGuard
}

func NewInMemoryStore(candidates CandidateGuard) *InMemoryStore {
	return &InMemoryStore{
		byUser:     make(map[string]models.Vote),
		candidates: candidates,
	}
}

// Insert holds the candidate guard across the uniqueness check and the write,
// so the vote and the candidate's existence are observed together.
func (s *InMemoryStore) Insert(ctx context.Context, vote *models.Vote) error {
	return s.candidates.WithLive(ctx, vote.CandidateID, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.byUser[vote.UserID]; ok {
			return sentinel.ErrConflict
		}
		s.byUser[vote.UserID] = *vote
		return nil
	})
}

func (s *InMemoryStore) HasVoted(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byUser[userID]
	return ok, nil
}

func (s *InMemoryStore) Tally(_ context.Context) ([]models.TallyEntry, error) {
	s.mu.RLock()
	counts := make(map[int64]int64)
	for _, v := range s.byUser {
		counts[v.CandidateID]++
	}
	s.mu.RUnlock()

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]models.TallyEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TallyEntry{CandidateID: id, Votes: counts[id]})
	}
	return out, nil
}

func (s *InMemoryStore) CountForCandidate(_ context.Context, candidateID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.byUser {
		if v.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}
