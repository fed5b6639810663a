package audit

import "time"

// Action names an auditable domain action.
type Action string

const (
	ActionUserRegistered   Action = "user_registered"
	ActionUserLoggedIn     Action = "user_logged_in"
	ActionVoteCast         Action = "vote_cast"
	ActionCandidateCreated Action = "candidate_created"
	ActionCandidateUpdated Action = "candidate_updated"
	ActionCandidateRemoved Action = "candidate_removed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action      Action    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
	UserID      string    `json:"userId,omitempty"`
	CandidateID int64     `json:"candidateId,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
}

// Key partitions events: user-scoped events by user, registry events share one key.
func (e Event) Key() string {
	if e.UserID != "" {
		return "user:" + e.UserID
	}
	return "registry"
}
