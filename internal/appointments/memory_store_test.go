package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/scheduler/internal/triage"
)

func TestMemoryStoreTxAtomicity(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	doctorID := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	boom := errors.New("boom")
	var staged *Appointment
	err := store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		staged = &Appointment{PatientID: uuid.New(), DoctorID: doctorID, StartTime: start}
		if err := tx.CreateAppointment(ctx, staged); err != nil {
			return err
		}
		if err := tx.CreateNotification(ctx, &Notification{UserID: staged.PatientID, Type: NotificationTypeWarning, Message: "m"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing written by the failed transaction is visible.
	_, err = store.GetByID(ctx, staged.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	notifs, err := store.ListNotifications(ctx, staged.PatientID)
	require.NoError(t, err)
	assert.Empty(t, notifs)

	// A successful transaction commits as a whole.
	appt := &Appointment{PatientID: uuid.New(), DoctorID: doctorID, StartTime: start}
	err = store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateAppointment(ctx, appt)
	})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, start, got.StartTime)
	assert.Equal(t, StatusScheduled, got.Status)
}

func TestMemoryStoreLockOverlappingWindow(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	doctorID := uuid.New()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	seed := func(start time.Time, status Status) *Appointment {
		appt := &Appointment{PatientID: uuid.New(), DoctorID: doctorID, StartTime: start, Status: status}
		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.CreateAppointment(ctx, appt)
		}))
		return appt
	}

	inside := seed(base, StatusScheduled)
	seed(base.Add(-SlotDuration), StatusScheduled) // ends exactly at the window start
	seed(base.Add(SlotDuration), StatusScheduled)  // starts exactly at the window end
	// Cancelled appointments never block a slot.
	seed(base.Add(10*time.Minute), StatusCancelled)

	err := store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		overlapping, err := tx.LockOverlapping(ctx, doctorID, base)
		if err != nil {
			return err
		}
		require.Len(t, overlapping, 1)
		assert.Equal(t, inside.ID, overlapping[0].ID)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreListByDoctorUrgencyFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	doctorID := uuid.New()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	levels := []triage.UrgencyLevel{triage.UrgencyNormal, triage.UrgencyEmergency, triage.UrgencyMedium, triage.UrgencyHigh}
	for i, level := range levels {
		appt := &Appointment{
			PatientID:    uuid.New(),
			DoctorID:     doctorID,
			StartTime:    base.Add(time.Duration(i) * time.Hour),
			UrgencyLevel: level,
		}
		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.CreateAppointment(ctx, appt)
		}))
	}

	listed, err := store.ListByDoctor(ctx, doctorID)
	require.NoError(t, err)
	require.Len(t, listed, 4)
	got := make([]triage.UrgencyLevel, 0, 4)
	for _, a := range listed {
		got = append(got, a.UrgencyLevel)
	}
	assert.Equal(t, []triage.UrgencyLevel{triage.UrgencyEmergency, triage.UrgencyHigh, triage.UrgencyMedium, triage.UrgencyNormal}, got)
}

func TestMemoryStoreRescheduleRequiresScheduled(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Reschedule(ctx, uuid.New(), time.Now(), time.Now(), "reason")
	})
	assert.ErrorIs(t, err, ErrNotScheduled)
}
