package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DB abstracts the pgx query surface the directory needs, for testing.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDirectory reads users and doctor profiles from the relational
// database.
type PostgresDirectory struct {
	db DB
}

// NewPostgresDirectory initializes a directory backed by pgx.
func NewPostgresDirectory(db DB) *PostgresDirectory {
	if db == nil {
		panic("users: pgx pool required")
	}
	return &PostgresDirectory{db: db}
}

// GetUser retrieves a user by ID.
func (d *PostgresDirectory) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	row := d.db.QueryRow(ctx, `
		SELECT id, full_name, email, role
		FROM users
		WHERE id = $1`, id)

	var u User
	var role string
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select user: %w", err)
	}
	u.Role = Role(role)
	return &u, nil
}

// GetDoctor retrieves a doctor profile joined with its user account.
func (d *PostgresDirectory) GetDoctor(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	row := d.db.QueryRow(ctx, `
		SELECT doctor_profiles.user_id, users.full_name, users.email, doctor_profiles.specialty
		FROM doctor_profiles
		JOIN users ON users.id = doctor_profiles.user_id
		WHERE doctor_profiles.user_id = $1`, userID)

	var doc Doctor
	if err := row.Scan(&doc.UserID, &doc.FullName, &doc.Email, &doc.Specialty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select doctor: %w", err)
	}
	return &doc, nil
}

// FindDoctorBySpecialty returns one doctor whose specialty matches the
// query, case-insensitively.
func (d *PostgresDirectory) FindDoctorBySpecialty(ctx context.Context, specialty string) (*Doctor, error) {
	row := d.db.QueryRow(ctx, `
		SELECT doctor_profiles.user_id, users.full_name, users.email, doctor_profiles.specialty
		FROM doctor_profiles
		JOIN users ON users.id = doctor_profiles.user_id
		WHERE doctor_profiles.specialty ILIKE $1
		LIMIT 1`, "%"+specialty+"%")

	var doc Doctor
	if err := row.Scan(&doc.UserID, &doc.FullName, &doc.Email, &doc.Specialty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDoctorMatch
		}
		return nil, fmt.Errorf("users: find doctor by specialty: %w", err)
	}
	return &doc, nil
}

var _ Directory = (*PostgresDirectory)(nil)
