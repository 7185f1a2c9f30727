package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tx is the unit-of-work surface handed to callers inside a transaction.
// All reads issued through it hold their row locks until the transaction
// ends, so a decide-then-apply sequence over the same doctor's slots is
// serialized against concurrent bookings.
type Tx interface {
	// LockOverlapping returns the scheduled appointments for the doctor
	// whose 30-minute windows overlap [from, from+30m), ordered by start
	// time ascending, with the matching rows locked for the remainder of
	// the transaction.
	LockOverlapping(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Appointment, error)

	// Reschedule moves a scheduled appointment to newStart, recording where
	// it originally was and why it moved. Exactly one such move is ever
	// applied to an appointment.
	Reschedule(ctx context.Context, id uuid.UUID, newStart, originalStart time.Time, reason string) error

	CreateAppointment(ctx context.Context, appt *Appointment) error
	CreateIntake(ctx context.Context, rec *IntakeRecord) error

	// CreateConsultationStub writes the empty consultation record that the
	// consultation lifecycle fills in later.
	CreateConsultationStub(ctx context.Context, appointmentID uuid.UUID) error

	CreateNotification(ctx context.Context, n *Notification) error
}

// Store is the persistence contract for the scheduling engine. InTx runs fn
// inside one transaction: if fn returns an error the transaction rolls back
// and nothing fn did is visible; otherwise it commits atomically.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)
	// ListByDoctor orders by urgency first (EMERGENCY before HIGH before
	// MEDIUM before NORMAL), then by start time.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error)
}
