package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/scheduler/internal/appointments"
	"github.com/careconnect/scheduler/internal/notify"
	"github.com/careconnect/scheduler/internal/observability/metrics"
	"github.com/careconnect/scheduler/internal/scheduling"
	"github.com/careconnect/scheduler/internal/triage"
	"github.com/careconnect/scheduler/internal/users"
	"github.com/careconnect/scheduler/pkg/logging"
)

// IntentDispatcher delivers notification intents after a booking commits.
type IntentDispatcher interface {
	Dispatch(intents ...notify.Intent)
}

// Request carries one booking attempt. DoctorID is nil when the patient
// wants a doctor recommended from their symptoms.
type Request struct {
	PatientID      uuid.UUID  `json:"-"`
	DoctorID       *uuid.UUID `json:"doctor_id,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	PatientName    string     `json:"patient_name"`
	Email          string     `json:"email"`
	PhoneNumber    string     `json:"phone_number"`
	Symptoms       string     `json:"symptoms"`
	MedicalHistory string     `json:"medical_history,omitempty"`
	Severity       int        `json:"severity"`
}

// Validate rejects malformed input before any transaction opens.
func (r *Request) Validate() error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient id is required", ErrValidation)
	}
	if r.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time must be a valid timestamp", ErrValidation)
	}
	if len(strings.TrimSpace(r.PatientName)) < 2 {
		return fmt.Errorf("%w: patient name must be at least 2 characters", ErrValidation)
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if len(strings.TrimSpace(r.PhoneNumber)) < 10 {
		return fmt.Errorf("%w: phone number must be at least 10 characters", ErrValidation)
	}
	if len(strings.TrimSpace(r.Symptoms)) < 3 {
		return fmt.Errorf("%w: symptoms must be at least 3 characters", ErrValidation)
	}
	if r.Severity < 1 || r.Severity > 5 {
		return fmt.Errorf("%w: severity must be between 1 and 5", ErrValidation)
	}
	return nil
}

// Result reports a successful booking.
type Result struct {
	AppointmentID  uuid.UUID             `json:"id"`
	Start          time.Time             `json:"start_time"`
	Status         appointments.Status   `json:"status"`
	UrgencyLevel   triage.UrgencyLevel   `json:"urgency_level"`
	FinalSeverity  int                   `json:"final_severity"`
	AssignedDoctor users.Doctor          `json:"assigned_doctor"`
	Recommended    triage.Specialization `json:"recommended_specialization,omitempty"`
	Bumped         bool                  `json:"-"`
}

// Service is the booking orchestrator: it resolves a doctor, classifies
// urgency, allocates a slot, and persists the appointment, intake record and
// consultation stub in one transaction. Notification intents are dispatched
// only after the transaction commits.
type Service struct {
	store      appointments.Store
	directory  users.Directory
	allocator  *scheduling.Allocator
	dispatcher IntentDispatcher
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

// NewService creates the booking orchestrator.
func NewService(store appointments.Store, directory users.Directory, allocator *scheduling.Allocator, dispatcher IntentDispatcher, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		directory:  directory,
		allocator:  allocator,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

// Book runs one booking attempt end to end.
func (s *Service) Book(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doctor, recommended, err := s.resolveDoctor(ctx, req)
	if err != nil {
		return nil, err
	}

	autoSeverity := triage.DetectAutoSeverity(req.Symptoms)
	finalSeverity, level := triage.Classify(req.Symptoms, req.Severity)

	s.logger.Info("booking request classified",
		"patient_id", req.PatientID,
		"doctor_id", doctor.UserID,
		"reported_severity", req.Severity,
		"auto_severity", autoSeverity,
		"final_severity", finalSeverity,
		"urgency", level,
	)

	appt := &appointments.Appointment{
		PatientID:        req.PatientID,
		DoctorID:         doctor.UserID,
		Status:           appointments.StatusScheduled,
		UrgencyLevel:     level,
		ReportedSeverity: req.Severity,
		AutoSeverity:     autoSeverity,
		FinalSeverity:    finalSeverity,
	}

	var decision scheduling.Decision
	err = s.store.InTx(ctx, func(ctx context.Context, tx appointments.Tx) error {
		var err error
		allocStart := time.Now()
		decision, err = s.allocator.Allocate(ctx, tx, doctor.UserID, req.StartTime, level)
		s.metrics.ObserveAllocationLatency(time.Since(allocStart).Seconds())
		if err != nil {
			return err
		}
		if decision.Action == scheduling.ActionConflict {
			return ErrSlotConflict
		}

		appt.StartTime = decision.Start
		if err := tx.CreateAppointment(ctx, appt); err != nil {
			return err
		}
		if err := tx.CreateIntake(ctx, &appointments.IntakeRecord{
			AppointmentID:  appt.ID,
			PatientName:    req.PatientName,
			Email:          req.Email,
			PhoneNumber:    req.PhoneNumber,
			Symptoms:       req.Symptoms,
			MedicalHistory: req.MedicalHistory,
			Severity:       finalSeverity,
		}); err != nil {
			return err
		}
		return tx.CreateConsultationStub(ctx, appt.ID)
	})
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			s.metrics.ObserveBooking(string(level), "conflict")
			return nil, ErrSlotConflict
		}
		s.metrics.ObserveBooking(string(level), "error")
		return nil, fmt.Errorf("booking: transaction failed: %w", err)
	}

	s.metrics.ObserveBooking(string(level), "created")
	if decision.Action == scheduling.ActionBumpedAndBooked {
		s.metrics.ObserveBump()
	}

	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"patient_id", req.PatientID,
		"doctor_id", doctor.UserID,
		"start_time", appt.StartTime,
		"action", decision.Action,
	)

	s.dispatchNotifications(ctx, req, doctor, appt, decision)

	return &Result{
		AppointmentID:  appt.ID,
		Start:          appt.StartTime,
		Status:         appt.Status,
		UrgencyLevel:   level,
		FinalSeverity:  finalSeverity,
		AssignedDoctor: *doctor,
		Recommended:    recommended,
		Bumped:         decision.Action == scheduling.ActionBumpedAndBooked,
	}, nil
}

// resolveDoctor picks the target doctor. A patient-chosen doctor is loaded
// directly; otherwise the recommender maps symptoms to a specialization and
// the directory is searched, falling back to any General Physician.
func (s *Service) resolveDoctor(ctx context.Context, req *Request) (*users.Doctor, triage.Specialization, error) {
	if req.DoctorID != nil {
		doctor, err := s.directory.GetDoctor(ctx, *req.DoctorID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return nil, "", ErrNoDoctorAvailable
			}
			return nil, "", fmt.Errorf("booking: load doctor: %w", err)
		}
		return doctor, "", nil
	}

	recommended := triage.Recommend(req.Symptoms)
	doctor, err := s.directory.FindDoctorBySpecialty(ctx, string(recommended))
	if err == nil {
		return doctor, recommended, nil
	}
	if !errors.Is(err, users.ErrNoDoctorMatch) {
		return nil, "", fmt.Errorf("booking: find doctor: %w", err)
	}

	doctor, err = s.directory.FindDoctorBySpecialty(ctx, "General")
	if err != nil {
		if errors.Is(err, users.ErrNoDoctorMatch) {
			s.logger.Warn("no doctor for recommendation and no general physician", "recommended", recommended)
			return nil, "", ErrNoDoctorAvailable
		}
		return nil, "", fmt.Errorf("booking: general physician fallback: %w", err)
	}
	return doctor, recommended, nil
}

// dispatchNotifications builds and enqueues all post-commit email intents.
// Errors here are logged only; the booking already committed.
func (s *Service) dispatchNotifications(ctx context.Context, req *Request, doctor *users.Doctor, appt *appointments.Appointment, decision scheduling.Decision) {
	if s.dispatcher == nil {
		return
	}

	intents := []notify.Intent{
		{
			Kind:           notify.IntentPatientConfirmation,
			RecipientEmail: req.Email,
			RecipientName:  req.PatientName,
			DoctorName:     doctor.FullName,
			SlotTime:       appt.StartTime,
			Urgency:        appt.UrgencyLevel,
		},
		{
			Kind:           notify.IntentDoctorAssignment,
			RecipientEmail: doctor.Email,
			RecipientName:  doctor.FullName,
			PatientName:    req.PatientName,
			SlotTime:       appt.StartTime,
			Urgency:        appt.UrgencyLevel,
			Symptoms:       req.Symptoms,
		},
	}

	if decision.Action == scheduling.ActionBumpedAndBooked && decision.Bumped != nil {
		bumped := decision.Bumped
		victim, err := s.directory.GetUser(ctx, bumped.PatientID)
		if err != nil {
			s.logger.Error("failed to load bumped patient for notification", "error", err, "patient_id", bumped.PatientID)
		} else {
			intents = append(intents, notify.Intent{
				Kind:           notify.IntentPatientRescheduled,
				RecipientEmail: victim.Email,
				RecipientName:  victim.FullName,
				OldTime:        bumped.OldStart,
				NewTime:        bumped.NewStart,
			})
		}
		intents = append(intents, notify.Intent{
			Kind:           notify.IntentDoctorRescheduled,
			RecipientEmail: doctor.Email,
			RecipientName:  doctor.FullName,
			NewTime:        bumped.NewStart,
			Reason:         "Incoming Emergency Patient",
		})
	}

	s.dispatcher.Dispatch(intents...)
}
