package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/careconnect/scheduler/internal/triage"
)

// DB abstracts the pgx pool surface the store needs, for testing.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists appointments in the relational database.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by pgx.
func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// InTx runs fn inside one serializable transaction. Row locks taken by fn
// via Tx.LockOverlapping are held until commit or rollback; serializable
// isolation additionally covers two bookings racing for a free slot, where
// the overlap query matches no rows and FOR UPDATE locks nothing. One of
// the racers then fails to commit instead of both inserting.
func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("appointments: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &postgresTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit tx: %w", err)
	}
	return nil
}

const appointmentColumns = `id, patient_id, doctor_id, start_time, status, urgency_level,
		reported_severity, auto_severity, final_severity, original_start_time, reschedule_reason, created_at`

// GetByID fetches a single appointment.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select by id: %w", err)
	}
	return appt, nil
}

// ListByPatient returns a patient's appointments ordered by start time.
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_time ASC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByDoctor returns a doctor's appointments, most urgent first.
func (s *PostgresStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY
			CASE urgency_level
				WHEN 'EMERGENCY' THEN 1
				WHEN 'HIGH' THEN 2
				WHEN 'MEDIUM' THEN 3
				ELSE 4
			END ASC,
			start_time ASC`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by doctor: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListNotifications returns a user's notifications, newest first.
func (s *PostgresStore) ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, message, type, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan notification: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// postgresTx implements Tx on top of a live pgx transaction.
type postgresTx struct {
	tx pgx.Tx
}

// LockOverlapping finds and locks the scheduled appointments whose windows
// overlap [from, from+30m). FOR UPDATE holds the row locks until the
// enclosing transaction ends, so two concurrent bookings for the same slot
// cannot both observe it as free.
func (t *postgresTx) LockOverlapping(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Appointment, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND status = 'scheduled'
		  AND start_time < $2
		  AND (start_time + interval '30 minutes') > $3
		ORDER BY start_time ASC
		FOR UPDATE`, doctorID, from.Add(SlotDuration), from)
	if err != nil {
		return nil, fmt.Errorf("appointments: lock overlapping: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// Reschedule moves a scheduled appointment and records the displacement.
func (t *postgresTx) Reschedule(ctx context.Context, id uuid.UUID, newStart, originalStart time.Time, reason string) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE appointments
		SET start_time = $1,
		    original_start_time = $2,
		    reschedule_reason = $3
		WHERE id = $4 AND status = 'scheduled'`,
		newStart, originalStart, reason, id)
	if err != nil {
		return fmt.Errorf("appointments: reschedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotScheduled
	}
	return nil
}

// CreateAppointment inserts a new row.
func (t *postgresTx) CreateAppointment(ctx context.Context, appt *Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.Status == "" {
		appt.Status = StatusScheduled
	}
	appt.CreatedAt = time.Now().UTC()

	_, err := t.tx.Exec(ctx, `
		INSERT INTO appointments
		(id, patient_id, doctor_id, start_time, status, urgency_level, reported_severity, auto_severity, final_severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		appt.ID, appt.PatientID, appt.DoctorID, appt.StartTime, string(appt.Status),
		string(appt.UrgencyLevel), appt.ReportedSeverity, appt.AutoSeverity, appt.FinalSeverity, appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert appointment: %w", err)
	}
	return nil
}

// CreateIntake inserts the intake record for an appointment.
func (t *postgresTx) CreateIntake(ctx context.Context, rec *IntakeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	_, err := t.tx.Exec(ctx, `
		INSERT INTO intake_forms
		(id, appointment_id, patient_name, email, phone_number, symptom, history, severity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.AppointmentID, rec.PatientName, rec.Email, rec.PhoneNumber,
		rec.Symptoms, rec.MedicalHistory, rec.Severity, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert intake: %w", err)
	}
	return nil
}

// CreateConsultationStub inserts the empty consultation record placeholder.
func (t *postgresTx) CreateConsultationStub(ctx context.Context, appointmentID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO consultation_records (id, appointment_id) VALUES ($1, $2)`,
		uuid.New(), appointmentID)
	if err != nil {
		return fmt.Errorf("appointments: insert consultation stub: %w", err)
	}
	return nil
}

// CreateNotification inserts an in-app notification row.
func (t *postgresTx) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := t.tx.Exec(ctx, `
		INSERT INTO notifications (id, user_id, message, type, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.UserID, n.Message, n.Type, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("appointments: insert notification: %w", err)
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status, urgency string
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.StartTime, &status, &urgency,
		&a.ReportedSeverity, &a.AutoSeverity, &a.FinalSeverity,
		&a.OriginalStartTime, &a.RescheduleReason, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	a.UrgencyLevel = triage.UrgencyLevel(urgency)
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan appointment: %w", err)
		}
		result = append(result, *appt)
	}
	return result, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
var _ Tx = (*postgresTx)(nil)
