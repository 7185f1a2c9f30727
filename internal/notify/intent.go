package notify

import (
	"time"

	"github.com/careconnect/scheduler/internal/triage"
)

// IntentKind names the outbound emails the booking flow produces.
type IntentKind string

const (
	// IntentPatientConfirmation confirms a freshly booked slot to the patient.
	IntentPatientConfirmation IntentKind = "patient_confirmation"
	// IntentDoctorAssignment tells the doctor a new patient landed on their schedule.
	IntentDoctorAssignment IntentKind = "doctor_assignment"
	// IntentPatientRescheduled warns a bumped patient their slot moved.
	IntentPatientRescheduled IntentKind = "patient_rescheduled"
	// IntentDoctorRescheduled tells the doctor an existing slot was shifted.
	IntentDoctorRescheduled IntentKind = "doctor_rescheduled"
)

// Intent is a deliverable notification produced by the booking flow after
// its transaction commits. The core never depends on delivery succeeding;
// the dispatcher delivers intents best-effort and logs failures.
type Intent struct {
	Kind IntentKind

	RecipientEmail string
	RecipientName  string

	PatientName string
	DoctorName  string

	// SlotTime is the confirmed slot for confirmation/assignment intents.
	SlotTime time.Time
	// OldTime/NewTime describe the displacement for reschedule intents.
	OldTime time.Time
	NewTime time.Time

	Urgency  triage.UrgencyLevel
	Symptoms string
	Reason   string
}
