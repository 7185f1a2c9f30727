package users

import (
	"github.com/google/uuid"
)

// Role distinguishes the two account types the scheduler cares about.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// User is an account in the platform's identity store. Token issuance and
// session handling live in the auth service; the scheduler only reads
// profile data for doctor resolution and notification addressing.
type User struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
}

// Doctor is a user joined with their doctor profile.
type Doctor struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty"`
}
