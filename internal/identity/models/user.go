package models

import (
	"regexp"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
)

// identityCodePattern accepts exactly 13 ASCII digits.
var identityCodePattern = regexp.MustCompile(`^[0-9]{13}$`)

// User is a registered voter. Users are never mutated or deleted after creation.
type User struct {
	ID           string    `json:"id"`
	IdentityCode string    `json:"identityCode"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"-"`
}

// ValidateIdentityCode rejects anything but a 13 digit national identity code.
func ValidateIdentityCode(code string) error {
	if !identityCodePattern.MatchString(code) {
		return dErrors.New(dErrors.CodeValidation, "identity code must be exactly 13 digits")
	}
	return nil
}
