package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/scheduler/internal/triage"
)

// MemoryStore is an in-memory Store for tests and development mode. InTx
// serializes transactions under one mutex and applies fn to a snapshot, so a
// failed transaction leaves no trace and concurrent bookings observe each
// other's committed writes, mirroring the locking behavior of the Postgres
// store at coarser granularity.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	appointments  map[uuid.UUID]*Appointment
	intakes       map[uuid.UUID]*IntakeRecord
	consultations map[uuid.UUID]uuid.UUID // consultation id -> appointment id
	notifications []Notification
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			appointments:  make(map[uuid.UUID]*Appointment),
			intakes:       make(map[uuid.UUID]*IntakeRecord),
			consultations: make(map[uuid.UUID]uuid.UUID),
		},
	}
}

// InTx runs fn against a snapshot of the store. The snapshot replaces the
// live state only when fn succeeds.
func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(ctx, &memoryTx{state: &staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// GetByID fetches a single appointment.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.state.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

// ListByPatient returns a patient's appointments ordered by start time.
func (s *MemoryStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Appointment
	for _, appt := range s.state.appointments {
		if appt.PatientID == patientID {
			result = append(result, *appt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

// ListByDoctor returns a doctor's appointments, most urgent first.
func (s *MemoryStore) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Appointment
	for _, appt := range s.state.appointments {
		if appt.DoctorID == doctorID {
			result = append(result, *appt)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ri, rj := urgencyRank(result[i].UrgencyLevel), urgencyRank(result[j].UrgencyLevel)
		if ri != rj {
			return ri < rj
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *MemoryStore) ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Notification
	for _, n := range s.state.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Intake returns the intake record for an appointment, for tests.
func (s *MemoryStore) Intake(appointmentID uuid.UUID) (*IntakeRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.state.intakes {
		if rec.AppointmentID == appointmentID {
			cp := *rec
			return &cp, true
		}
	}
	return nil, false
}

// HasConsultationStub reports whether an appointment has its consultation
// placeholder, for tests.
func (s *MemoryStore) HasConsultationStub(appointmentID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, apptID := range s.state.consultations {
		if apptID == appointmentID {
			return true
		}
	}
	return false
}

func urgencyRank(u triage.UrgencyLevel) int {
	switch u {
	case triage.UrgencyEmergency:
		return 1
	case triage.UrgencyHigh:
		return 2
	case triage.UrgencyMedium:
		return 3
	default:
		return 4
	}
}

func (st memoryState) clone() memoryState {
	out := memoryState{
		appointments:  make(map[uuid.UUID]*Appointment, len(st.appointments)),
		intakes:       make(map[uuid.UUID]*IntakeRecord, len(st.intakes)),
		consultations: make(map[uuid.UUID]uuid.UUID, len(st.consultations)),
		notifications: append([]Notification(nil), st.notifications...),
	}
	for id, appt := range st.appointments {
		cp := *appt
		out.appointments[id] = &cp
	}
	for id, rec := range st.intakes {
		cp := *rec
		out.intakes[id] = &cp
	}
	for id, apptID := range st.consultations {
		out.consultations[id] = apptID
	}
	return out
}

// memoryTx mutates a staged snapshot.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) LockOverlapping(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]Appointment, error) {
	var result []Appointment
	for _, appt := range t.state.appointments {
		if appt.DoctorID == doctorID && appt.Status == StatusScheduled && appt.Overlaps(from) {
			result = append(result, *appt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (t *memoryTx) Reschedule(ctx context.Context, id uuid.UUID, newStart, originalStart time.Time, reason string) error {
	appt, ok := t.state.appointments[id]
	if !ok || appt.Status != StatusScheduled {
		return ErrNotScheduled
	}
	appt.StartTime = newStart
	orig := originalStart
	appt.OriginalStartTime = &orig
	r := reason
	appt.RescheduleReason = &r
	return nil
}

func (t *memoryTx) CreateAppointment(ctx context.Context, appt *Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.Status == "" {
		appt.Status = StatusScheduled
	}
	appt.CreatedAt = time.Now().UTC()
	cp := *appt
	t.state.appointments[appt.ID] = &cp
	return nil
}

func (t *memoryTx) CreateIntake(ctx context.Context, rec *IntakeRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()
	cp := *rec
	t.state.intakes[rec.ID] = &cp
	return nil
}

func (t *memoryTx) CreateConsultationStub(ctx context.Context, appointmentID uuid.UUID) error {
	t.state.consultations[uuid.New()] = appointmentID
	return nil
}

func (t *memoryTx) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now().UTC()
	t.state.notifications = append(t.state.notifications, *n)
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ Tx = (*memoryTx)(nil)
