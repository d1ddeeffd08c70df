package finalization

import (
	"errors"
	"fmt"
)

var (
	ErrScopeEmpty             = errors.New("no employees found for finalization scope")
	ErrValidationFailed       = errors.New("Validation errors found")
	ErrFinalizationNotFound   = errors.New("finalization record not found")
	ErrCompanyMismatch        = errors.New("company does not match authenticated company")
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with a different request")
	ErrIdempotencyInProgress  = errors.New("a request with this idempotency key is still processing")
)

// CollectionError wraps a failed read of one of the collaborator stores.
type CollectionError struct {
	Source string
	Err    error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("failed to collect %s: %v", e.Source, e.Err)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// CommitError wraps a failure of the finalization upsert itself.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit finalization: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
