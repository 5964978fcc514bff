package auth

import "errors"

var (
	// ErrInvalidInput is returned when a request is missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAuthentication is returned when the provider neither issued
	// tokens nor failed outright. Challenge errors match it with errors.Is.
	ErrInvalidAuthentication = errors.New("invalid authentication")
)

// ChallengeError reports that the identity provider demanded an additional
// authentication step. Challenges are never answered, so it is terminal.
type ChallengeError struct {
	Name string
}

func (e *ChallengeError) Error() string {
	return `Invalid authentication: challenge "` + e.Name + `"`
}

func (e *ChallengeError) Unwrap() error {
	return ErrInvalidAuthentication
}
