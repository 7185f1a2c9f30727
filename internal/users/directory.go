package users

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Directory looks up users and doctors. Implementations must treat
// specialty matching as a case-insensitive substring test, mirroring what
// the doctor onboarding flow stores in the specialty column.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetDoctor(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	FindDoctorBySpecialty(ctx context.Context, specialty string) (*Doctor, error)
}

// MemoryDirectory is an in-memory Directory for tests and development mode.
type MemoryDirectory struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*User
	doctors []*Doctor
}

// NewMemoryDirectory creates an empty in-memory directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[uuid.UUID]*User)}
}

// AddUser registers a user.
func (d *MemoryDirectory) AddUser(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := u
	d.users[u.ID] = &cp
}

// AddDoctor registers a doctor and the backing user account.
func (d *MemoryDirectory) AddDoctor(doc Doctor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := doc
	d.doctors = append(d.doctors, &cp)
	d.users[doc.UserID] = &User{ID: doc.UserID, FullName: doc.FullName, Email: doc.Email, Role: RoleDoctor}
}

// GetUser retrieves a user by ID.
func (d *MemoryDirectory) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetDoctor retrieves a doctor by user ID.
func (d *MemoryDirectory) GetDoctor(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, doc := range d.doctors {
		if doc.UserID == userID {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindDoctorBySpecialty returns the first doctor whose specialty contains
// the query, case-insensitively.
func (d *MemoryDirectory) FindDoctorBySpecialty(ctx context.Context, specialty string) (*Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	q := strings.ToLower(specialty)
	for _, doc := range d.doctors {
		if strings.Contains(strings.ToLower(doc.Specialty), q) {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, ErrNoDoctorMatch
}

var _ Directory = (*MemoryDirectory)(nil)
