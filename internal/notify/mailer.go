package notify

import (
	"fmt"

	"github.com/careconnect/scheduler/internal/triage"
)

const slotTimeFormat = "Monday, January 2, 2006 at 3:04 PM"

// Mailer renders notification intents into email messages.
type Mailer struct {
	// DashboardURL is linked from patient-facing emails.
	DashboardURL string
}

// NewMailer creates a mailer pointing patients at the given dashboard.
func NewMailer(dashboardURL string) *Mailer {
	return &Mailer{DashboardURL: dashboardURL}
}

// Render builds the email for an intent.
func (m *Mailer) Render(intent Intent) (EmailMessage, error) {
	switch intent.Kind {
	case IntentPatientConfirmation:
		return m.patientConfirmation(intent), nil
	case IntentDoctorAssignment:
		return m.doctorAssignment(intent), nil
	case IntentPatientRescheduled:
		return m.patientRescheduled(intent), nil
	case IntentDoctorRescheduled:
		return m.doctorRescheduled(intent), nil
	default:
		return EmailMessage{}, fmt.Errorf("notify: unknown intent kind %q", intent.Kind)
	}
}

func (m *Mailer) patientConfirmation(intent Intent) EmailMessage {
	when := intent.SlotTime.Format(slotTimeFormat)
	body := fmt.Sprintf(`Dear %s,

Your consultation has been successfully scheduled.

Doctor: Dr. %s
Date & Time: %s
Urgency: %s

Please login to your dashboard to join the video consultation at the scheduled time.
%s

CareConnect Automated System`,
		intent.RecipientName, intent.DoctorName, when, intent.Urgency, m.DashboardURL)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px;">
<h2 style="color: #0d6efd;">Appointment Confirmed</h2>
<p>Dear <strong>%s</strong>,</p>
<p>Your consultation has been successfully scheduled.</p>
<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px;">
  <p style="margin: 5px 0;"><strong>Doctor:</strong> Dr. %s</p>
  <p style="margin: 5px 0;"><strong>Date &amp; Time:</strong> %s</p>
  <p style="margin: 5px 0;"><strong>Urgency:</strong> <span style="background-color: %s; color: white; padding: 2px 8px; border-radius: 4px;">%s</span></p>
</div>
<p>Please login to your dashboard to join the video consultation at the scheduled time.</p>
<p><a href="%s" style="background-color: #0d6efd; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Go to Dashboard</a></p>
<p style="font-size: 12px; color: #777;">CareConnect Automated System</p>
</div>`,
		intent.RecipientName, intent.DoctorName, when, urgencyBadgeColor(intent), intent.Urgency, m.DashboardURL)

	return EmailMessage{
		To:      intent.RecipientEmail,
		ToName:  intent.RecipientName,
		Subject: "Your Appointment Slot is Confirmed – CareConnect",
		Body:    body,
		HTML:    html,
	}
}

func (m *Mailer) doctorAssignment(intent Intent) EmailMessage {
	when := intent.SlotTime.Format(slotTimeFormat)
	body := fmt.Sprintf(`Hello Dr. %s,

A new patient has been assigned to your schedule.

Patient: %s
Time: %s
Urgency: %s
Symptoms: %s

CareConnect Automated System`,
		intent.RecipientName, intent.PatientName, when, intent.Urgency, intent.Symptoms)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px;">
<h2 style="color: %s;">New Appointment Assigned</h2>
<p>Hello Dr. %s,</p>
<p>A new patient has been assigned to your schedule.</p>
<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px;">
  <p style="margin: 5px 0;"><strong>Patient:</strong> %s</p>
  <p style="margin: 5px 0;"><strong>Time:</strong> %s</p>
  <p style="margin: 5px 0;"><strong>Urgency:</strong> <span style="background-color: %s; color: white; padding: 2px 8px; border-radius: 4px;">%s</span></p>
  <p style="margin: 5px 0;"><strong>Symptoms:</strong> %s</p>
</div>
<p style="font-size: 12px; color: #777;">CareConnect Automated System</p>
</div>`,
		urgencyBadgeColor(intent), intent.RecipientName, intent.PatientName, when,
		urgencyBadgeColor(intent), intent.Urgency, intent.Symptoms)

	return EmailMessage{
		To:      intent.RecipientEmail,
		ToName:  intent.RecipientName,
		Subject: "New Appointment Assigned – CareConnect",
		Body:    body,
		HTML:    html,
	}
}

func (m *Mailer) patientRescheduled(intent Intent) EmailMessage {
	oldWhen := intent.OldTime.Format(slotTimeFormat)
	newWhen := intent.NewTime.Format(slotTimeFormat)
	body := fmt.Sprintf(`Dear %s,

We strictly prioritize critical care. Due to an incoming Emergency Case requiring immediate attention, your appointment slot has been automatically shifted.

Old Slot: %s
New Slot: %s

We sincerely apologize for this inconvenience and appreciate your cooperation in helping us save lives.

CareConnect Automated System`,
		intent.RecipientName, oldWhen, newWhen)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px;">
<h2 style="color: #d9534f;">Important: Appointment Rescheduled</h2>
<p>Dear <strong>%s</strong>,</p>
<p>We strictly prioritize critical care. Due to an incoming <strong>Emergency Case</strong> requiring immediate attention, your appointment slot has been automatically shifted.</p>
<div style="background-color: #fff3cd; color: #856404; padding: 15px; border-radius: 5px;">
  <p style="margin: 5px 0; text-decoration: line-through;"><strong>Old Slot:</strong> %s</p>
  <p style="margin: 5px 0;"><strong>New Slot:</strong> <strong>%s</strong></p>
</div>
<p>We sincerely apologize for this inconvenience and appreciate your cooperation in helping us save lives.</p>
<p style="font-size: 12px; color: #777;">CareConnect Automated System</p>
</div>`,
		intent.RecipientName, oldWhen, newWhen)

	return EmailMessage{
		To:      intent.RecipientEmail,
		ToName:  intent.RecipientName,
		Subject: "Important: Your Appointment Slot Has Been Updated",
		Body:    body,
		HTML:    html,
	}
}

func (m *Mailer) doctorRescheduled(intent Intent) EmailMessage {
	newWhen := intent.NewTime.Format(slotTimeFormat)
	body := fmt.Sprintf(`Hello Dr. %s,

A slot on your schedule was shifted to %s.
Reason: %s

CareConnect Automated System`,
		intent.RecipientName, newWhen, intent.Reason)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; color: #333; max-width: 600px;">
<h2 style="color: #d9534f;">Schedule Update</h2>
<p>Hello Dr. %s,</p>
<p>A slot on your schedule was shifted to <strong>%s</strong>.</p>
<p><strong>Reason:</strong> %s</p>
<p style="font-size: 12px; color: #777;">CareConnect Automated System</p>
</div>`,
		intent.RecipientName, newWhen, intent.Reason)

	return EmailMessage{
		To:      intent.RecipientEmail,
		ToName:  intent.RecipientName,
		Subject: "Schedule Update – CareConnect",
		Body:    body,
		HTML:    html,
	}
}

func urgencyBadgeColor(intent Intent) string {
	switch intent.Urgency {
	case triage.UrgencyEmergency:
		return "#dc3545"
	case triage.UrgencyHigh:
		return "#ffc107"
	default:
		return "#28a745"
	}
}
