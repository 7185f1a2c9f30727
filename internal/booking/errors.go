package booking

import "errors"

var (
	// ErrValidation is returned for malformed or missing input, before any
	// transaction opens
	ErrValidation = errors.New("validation failed")

	// ErrNoDoctorAvailable is returned when neither the recommended
	// specialization nor the general-physician fallback yields a doctor
	ErrNoDoctorAvailable = errors.New("no doctor available")

	// ErrSlotConflict is returned when the requested slot is held by an
	// equal or higher priority case; the transaction is rolled back
	ErrSlotConflict = errors.New("time slot is taken by another high-priority case")
)
