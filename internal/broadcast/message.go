package broadcast

import "ballotbox/internal/candidates/models"

// MessageTypeCandidates tags roster snapshots on the wire.
const MessageTypeCandidates = "candidates"

// Message is the payload pushed to observers.
type Message struct {
	Type       string             `json:"type"`
	Revision   int64              `json:"revision"`
	Candidates []models.Candidate `json:"candidates"`
}

func NewMessage(snap models.Snapshot) Message {
	candidates := snap.Candidates
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return Message{Type: MessageTypeCandidates, Revision: snap.Revision, Candidates: candidates}
}
