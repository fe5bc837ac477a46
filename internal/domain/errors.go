package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownQuestion is returned when a submitted question ID is not in the catalog.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidOption is returned when a label does not match any option of the question.
	ErrInvalidOption = errors.New("invalid option")
	// ErrSessionNotFound is returned when no session exists for the given token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinalized is returned when an operation requires an in-progress
	// session but the session already reached a terminal state.
	ErrSessionFinalized = errors.New("session already finalized")
	// ErrIncompleteAssessment is returned when finalize is attempted before
	// every question has an answer.
	ErrIncompleteAssessment = errors.New("incomplete assessment")
	// ErrResultNotFound is returned when a result is requested for a session
	// that never completed.
	ErrResultNotFound = errors.New("result not found")
)

// InvalidOptionError carries the legal labels so clients can self-correct.
type InvalidOptionError struct {
	QuestionID  string
	Label       string
	LegalLabels []string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %q for question %s (legal: %s)",
		e.Label, e.QuestionID, strings.Join(e.LegalLabels, ", "))
}

func (e *InvalidOptionError) Unwrap() error { return ErrInvalidOption }

// IncompleteAssessmentError reports expected vs. actual distinct answers.
type IncompleteAssessmentError struct {
	Expected int
	Actual   int
}

func (e *IncompleteAssessmentError) Error() string {
	return fmt.Sprintf("incomplete assessment: %d of %d questions answered", e.Actual, e.Expected)
}

func (e *IncompleteAssessmentError) Unwrap() error { return ErrIncompleteAssessment }
