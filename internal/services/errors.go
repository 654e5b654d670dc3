package services

import (
	"errors"
	"fmt"
)

// ErrAuthentication is returned when the participant directory yields no usable token
var ErrAuthentication = errors.New("participant directory authentication failed")

// ValidationError reports a participant whose category count is not an integer
type ValidationError struct {
	ParticipantID string
	Field         string
	Value         string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("participant %s: field %s must be an integer, got %q", e.ParticipantID, e.Field, e.Value)
}

// SubmissionError reports a failed write to the participant directory. Category is 0 for
// status updates.
type SubmissionError struct {
	ParticipantID string
	Category      int
	Err           error
}

func (e *SubmissionError) Error() string {
	if e.Category == 0 {
		return fmt.Sprintf("submit status for participant %s: %v", e.ParticipantID, e.Err)
	}
	return fmt.Sprintf("submit category %d for participant %s: %v", e.Category, e.ParticipantID, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
