package models

import "time"

// Vote is immutable once accepted; a user owns at most one.
type Vote struct {
	UserID      string    `json:"userId"`
	CandidateID int64     `json:"candidateId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TallyEntry is the vote count of one candidate.
type TallyEntry struct {
	CandidateID int64 `json:"candidateId"`
	Votes       int64 `json:"votes"`
}
