package appointments

import "errors"

var (
	// ErrNotFound is returned when an appointment does not exist
	ErrNotFound = errors.New("appointment not found")

	// ErrNotScheduled is returned when an operation requires a scheduled
	// appointment but the row is in another status
	ErrNotScheduled = errors.New("appointment is not scheduled")
)
