package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write finds the record in an unexpected state.
	ErrConflict = errors.New("record state changed")
	// ErrAmbiguous is returned when an id prefix matches more than one record.
	ErrAmbiguous = errors.New("id prefix matches several records")
)
