package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/scheduler/internal/triage"
)

var serializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresStore(mock)
}

func appointmentRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "start_time", "status", "urgency_level",
		"reported_severity", "auto_severity", "final_severity",
		"original_start_time", "reschedule_reason", "created_at",
	})
}

func TestPostgresStoreGetByID(t *testing.T) {
	mock, store := newMockStore(t)

	id := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(id).
		WillReturnRows(appointmentRows().AddRow(
			id, uuid.New(), uuid.New(), start, "scheduled", "EMERGENCY",
			2, 5, 5, nil, nil, start,
		))

	appt, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, appt.ID)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, triage.UrgencyEmergency, appt.UrgencyLevel)
	assert.Nil(t, appt.RescheduleReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetByIDNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetByID(context.Background(), id)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A full bump-and-book sequence: lock, displace, warn, insert the new
// appointment with its intake and consultation stub, commit.
func TestPostgresStoreBumpFlow(t *testing.T) {
	mock, store := newMockStore(t)

	doctorID := uuid.New()
	victimID := uuid.New()
	victimPatient := uuid.New()
	desired := time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC)
	victimStart := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(doctorID, desired.Add(SlotDuration), desired).
		WillReturnRows(appointmentRows().AddRow(
			victimID, victimPatient, doctorID, victimStart, "scheduled", "NORMAL",
			1, 1, 1, nil, nil, victimStart,
		))
	mock.ExpectExec("UPDATE appointments").
		WithArgs(victimStart.Add(time.Hour), victimStart, "Displaced by Emergency Case", victimID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(pgxmock.AnyArg(), victimPatient, pgxmock.AnyArg(), NotificationTypeWarning, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), doctorID, desired, "scheduled",
			"EMERGENCY", 5, 5, 5, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO intake_forms").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Alice Reed", "alice@example.com", "5551234567",
			"severe chest pain", "", 5, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO consultation_records").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		overlapping, err := tx.LockOverlapping(ctx, doctorID, desired)
		if err != nil {
			return err
		}
		require.Len(t, overlapping, 1)
		require.Equal(t, victimID, overlapping[0].ID)

		victim := overlapping[0]
		if err := tx.Reschedule(ctx, victim.ID, victim.StartTime.Add(time.Hour), victim.StartTime, "Displaced by Emergency Case"); err != nil {
			return err
		}
		if err := tx.CreateNotification(ctx, &Notification{
			UserID:  victim.PatientID,
			Type:    NotificationTypeWarning,
			Message: "Your appointment has been rescheduled",
		}); err != nil {
			return err
		}

		appt := &Appointment{
			PatientID:        uuid.New(),
			DoctorID:         doctorID,
			StartTime:        desired,
			UrgencyLevel:     triage.UrgencyEmergency,
			ReportedSeverity: 5,
			AutoSeverity:     5,
			FinalSeverity:    5,
		}
		if err := tx.CreateAppointment(ctx, appt); err != nil {
			return err
		}
		if err := tx.CreateIntake(ctx, &IntakeRecord{
			AppointmentID: appt.ID,
			PatientName:   "Alice Reed",
			Email:         "alice@example.com",
			PhoneNumber:   "5551234567",
			Symptoms:      "severe chest pain",
			Severity:      5,
		}); err != nil {
			return err
		}
		return tx.CreateConsultationStub(ctx, appt.ID)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Two bookings racing for a free slot lock nothing in LockOverlapping, so
// the no-double-BOOK guarantee rests on the transaction isolation level.
// Every unit of work must request serializable; pgxmock fails the
// expectation if a weaker level is used.
func TestPostgresStoreInTxRequiresSerializable(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreInTxRollsBackOnError(t *testing.T) {
	mock, store := newMockStore(t)

	boom := errors.New("boom")
	mock.ExpectBeginTx(serializableTx)
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreRescheduleMissesInactiveRow(t *testing.T) {
	mock, store := newMockStore(t)

	id := uuid.New()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectExec("UPDATE appointments").
		WithArgs(start.Add(time.Hour), start, "Displaced by Emergency Case", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.Reschedule(ctx, id, start.Add(time.Hour), start, "Displaced by Emergency Case")
	})
	require.ErrorIs(t, err, ErrNotScheduled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListNotifications(t *testing.T) {
	mock, store := newMockStore(t)

	userID := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("FROM notifications").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "message", "type", "created_at"}).
			AddRow(uuid.New(), userID, "Your appointment has been rescheduled", NotificationTypeWarning, now))

	notifs, err := store.ListNotifications(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.Equal(t, NotificationTypeWarning, notifs[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}
