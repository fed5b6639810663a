package models

import (
	"strings"

	dErrors "ballotbox/pkg/domain-errors"
)

// Candidate is a roster entry. IDs are assigned by the store, strictly
// increasing and never reused.
type Candidate struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Fields carries a partial set of candidate attributes. A nil pointer means
// "leave unchanged" on update and "empty" on create.
type Fields struct {
	Name        *string `json:"name,omitempty"`
	Party       *string `json:"party,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// NewFields builds a fully populated Fields value.
func NewFields(name, party, description, image string) Fields {
	return Fields{Name: &name, Party: &party, Description: &description, Image: &image}
}

// Normalize trims surrounding whitespace from every provided field.
func (f *Fields) Normalize() {
	for _, p := range []*string{f.Name, f.Party, f.Description, f.Image} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// ValidateCreate requires a name on new candidates.
func (f Fields) ValidateCreate() error {
	if f.Name == nil || *f.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "candidate name is required")
	}
	return nil
}

// ValidateUpdate rejects an explicit empty name; other fields may be blanked.
func (f Fields) ValidateUpdate() error {
	if f.Name != nil && *f.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "candidate name must not be empty")
	}
	return nil
}

// Apply merges the provided fields into c. The id is never touched.
func (c *Candidate) Apply(f Fields) {
	if f.Name != nil {
		c.Name = *f.Name
	}
	if f.Party != nil {
		c.Party = *f.Party
	}
	if f.Description != nil {
		c.Description = *f.Description
	}
	if f.Image != nil {
		c.Image = *f.Image
	}
}

// Snapshot is the full live roster at one registry revision.
type Snapshot struct {
	Revision   int64       `json:"revision"`
	Candidates []Candidate `json:"candidates"`
}
