package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/scheduler/internal/appointments"
	"github.com/careconnect/scheduler/internal/triage"
	"github.com/careconnect/scheduler/pkg/logging"
)

// Action is the allocator's terminal decision for one booking request.
type Action string

const (
	ActionBook            Action = "BOOK"
	ActionBumpedAndBooked Action = "BUMPED_AND_BOOKED"
	ActionConflict        Action = "CONFLICT"
)

// BumpOffset is the fixed displacement applied to a bumped appointment.
// The target slot is NOT re-checked for occupancy: if it is itself taken,
// the two appointments double-book. A bounded gap search was considered and
// rejected for now; callers rely on the single-step behavior.
const BumpOffset = 60 * time.Minute

// RescheduleReason is recorded on every displaced appointment.
const RescheduleReason = "Displaced by Emergency Case"

// Decision is the outcome of Allocate. Bumped is set only for
// ActionBumpedAndBooked.
type Decision struct {
	Action Action
	Start  time.Time
	Bumped *Displacement
}

// Displacement describes the appointment moved aside by a bump.
type Displacement struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	OldStart      time.Time
	NewStart      time.Time
}

// Allocator decides whether a booking request gets its requested slot,
// displaces a lower-priority holder, or conflicts. It must be called inside
// a transaction: the overlap read locks the rows it returns, so the
// decide-then-apply sequence is serialized per doctor and time window.
type Allocator struct {
	logger *logging.Logger
}

// NewAllocator creates a slot allocator.
func NewAllocator(logger *logging.Logger) *Allocator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Allocator{logger: logger}
}

// Allocate resolves slot contention for one request. The allocator never
// retries: ActionConflict is terminal for this request and the enclosing
// transaction must roll back without creating the incoming appointment.
func (a *Allocator) Allocate(ctx context.Context, tx appointments.Tx, doctorID uuid.UUID, desiredStart time.Time, incoming triage.UrgencyLevel) (Decision, error) {
	overlapping, err := tx.LockOverlapping(ctx, doctorID, desiredStart)
	if err != nil {
		return Decision{}, fmt.Errorf("scheduling: lock overlapping slots: %w", err)
	}

	if len(overlapping) == 0 {
		return Decision{Action: ActionBook, Start: desiredStart}, nil
	}

	// The no-overlap invariant means at most one row should match; ties are
	// broken deterministically by taking the earliest start.
	existing := overlapping[0]

	if !incoming.Preempts(existing.UrgencyLevel) {
		a.logger.Info("slot conflict, existing appointment holds priority",
			"doctor_id", doctorID,
			"desired_start", desiredStart,
			"existing_id", existing.ID,
			"existing_urgency", existing.UrgencyLevel,
			"incoming_urgency", incoming,
		)
		return Decision{Action: ActionConflict}, nil
	}

	newStart := existing.StartTime.Add(BumpOffset)
	if err := tx.Reschedule(ctx, existing.ID, newStart, existing.StartTime, RescheduleReason); err != nil {
		return Decision{}, fmt.Errorf("scheduling: bump appointment %s: %w", existing.ID, err)
	}

	notification := &appointments.Notification{
		UserID: existing.PatientID,
		Type:   appointments.NotificationTypeWarning,
		Message: fmt.Sprintf("Your appointment has been rescheduled to %s due to an incoming emergency case.",
			newStart.Format("Monday, January 2, 2006 at 3:04 PM")),
	}
	if err := tx.CreateNotification(ctx, notification); err != nil {
		return Decision{}, fmt.Errorf("scheduling: notify bumped patient: %w", err)
	}

	a.logger.Info("bumped lower-priority appointment",
		"doctor_id", doctorID,
		"bumped_id", existing.ID,
		"old_start", existing.StartTime,
		"new_start", newStart,
		"incoming_urgency", incoming,
	)

	return Decision{
		Action: ActionBumpedAndBooked,
		Start:  desiredStart,
		Bumped: &Displacement{
			AppointmentID: existing.ID,
			PatientID:     existing.PatientID,
			OldStart:      existing.StartTime,
			NewStart:      newStart,
		},
	}, nil
}
