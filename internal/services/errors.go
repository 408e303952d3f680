package services

import (
	"errors"
	"fmt"
)

// Extraction lane names, used to scope fetch/extraction errors.
const (
	LaneDocument = "document"
	LaneMedia    = "media"
)

// ValidationError rejects a request before any session is created: a bad
// roster (missing identity column, no parseable rows) or empty criteria.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// FetchError means an artifact could not be retrieved from the file store,
// after retries where the failure was transient. Candidate-scoped.
type FetchError struct {
	Lane string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s artifact: %v", e.Lane, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means fetched bytes could not be turned into text.
// Candidate-scoped; the lane is simply left empty.
type ExtractionError struct {
	Lane string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s content: %v", e.Lane, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ModelError covers scoring backend failures: unreachable, timed out, or a
// malformed/out-of-range response. Forces the candidate's outcome to Error.
type ModelError struct {
	Reason string
	Err    error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scoring failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("scoring failed: %s", e.Reason)
}

func (e *ModelError) Unwrap() error { return e.Err }

// PersistenceError is run-fatal: a result or session row could not be
// durably stored. The session transitions to failed and remaining batches
// are not attempted.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence unavailable: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a request-level validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
