package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/careconnect/scheduler/internal/triage"
)

// SlotDuration is the fixed length of every consultation slot.
const SlotDuration = 30 * time.Minute

// Status tracks the consultation lifecycle of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Appointment is a 30-minute consultation slot held by a patient with a
// doctor. OriginalStartTime and RescheduleReason are populated only when the
// appointment was displaced by a higher-priority case.
type Appointment struct {
	ID                uuid.UUID           `json:"id"`
	PatientID         uuid.UUID           `json:"patient_id"`
	DoctorID          uuid.UUID           `json:"doctor_id"`
	StartTime         time.Time           `json:"start_time"`
	Status            Status              `json:"status"`
	UrgencyLevel      triage.UrgencyLevel `json:"urgency_level"`
	ReportedSeverity  int                 `json:"reported_severity"`
	AutoSeverity      int                 `json:"auto_severity"`
	FinalSeverity     int                 `json:"final_severity"`
	OriginalStartTime *time.Time          `json:"original_start_time,omitempty"`
	RescheduleReason  *string             `json:"reschedule_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
}

// EndTime is the implicit end of the slot window.
func (a *Appointment) EndTime() time.Time {
	return a.StartTime.Add(SlotDuration)
}

// Overlaps applies the half-open interval test against another slot window
// starting at from: existing.start < from+30m AND existing.end > from.
func (a *Appointment) Overlaps(from time.Time) bool {
	return a.StartTime.Before(from.Add(SlotDuration)) && a.EndTime().After(from)
}

// IntakeRecord captures what the patient declared when booking. The severity
// stored is the final severity, not merely the reported one. Immutable once
// created.
type IntakeRecord struct {
	ID             uuid.UUID `json:"id"`
	AppointmentID  uuid.UUID `json:"appointment_id"`
	PatientName    string    `json:"patient_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Symptoms       string    `json:"symptoms"`
	MedicalHistory string    `json:"medical_history,omitempty"`
	Severity       int       `json:"severity"`
	CreatedAt      time.Time `json:"created_at"`
}

// Notification is an in-app message persisted for a user. Delivery by email
// happens separately and its failure never affects the owning transaction.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationTypeWarning marks notifications caused by a displacement.
const NotificationTypeWarning = "warning"
