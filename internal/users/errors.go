package users

import "errors"

var (
	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrNoDoctorMatch is returned when no doctor matches a specialty query
	ErrNoDoctorMatch = errors.New("no doctor matches the requested specialty")
)
