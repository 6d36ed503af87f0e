package recurring

import (
	"errors"
	"fmt"

	"drgroup/cmd/internal/domain/entity"
)

var (
	// ErrInvalidInput means a required template field is missing or blank.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPeriodicity means the periodicity is not one of the known values.
	ErrInvalidPeriodicity = errors.New("invalid periodicity")

	// ErrInvalidDate means the due date is missing or not a calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmptyGeneration means the horizon excluded every candidate instance.
	ErrEmptyGeneration = errors.New("empty generation result")

	// ErrOrphanRisk means a record without a company name reached a write
	// boundary. Nothing is written when this is returned.
	ErrOrphanRisk = errors.New("orphan risk detected")

	// ErrPersistenceIntegrity means writes started but not every record got an
	// id back. The series may be partially persisted.
	ErrPersistenceIntegrity = errors.New("persistence integrity error")
)

// PersistError reports a series whose writes started but did not finish.
// Written records stay in the store; retrying would duplicate them.
type PersistError struct {
	GroupID  entity.SeriesID
	Written  int
	Intended int
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("series %s persisted %d of %d records: %v", e.GroupID, e.Written, e.Intended, e.Err)
}

// Unwrap exposes both the integrity sentinel and the underlying store error.
func (e *PersistError) Unwrap() []error {
	if e.Err == nil || errors.Is(e.Err, ErrPersistenceIntegrity) {
		return []error{ErrPersistenceIntegrity}
	}
	return []error{ErrPersistenceIntegrity, e.Err}
}
