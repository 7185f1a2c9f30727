package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []EmailMessage
	fail bool
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) messages() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}

func TestDispatcherDeliversIntents(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(NewMailer("https://app.careconnect.test"), sender, DispatcherConfig{Workers: 1, QueueSize: 8}, nil)

	slot := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	d.Dispatch(
		Intent{Kind: IntentPatientConfirmation, RecipientEmail: "jane@example.com", RecipientName: "Jane", DoctorName: "Patel", SlotTime: slot},
		Intent{Kind: IntentDoctorAssignment, RecipientEmail: "patel@clinic.test", RecipientName: "Patel", PatientName: "Jane", SlotTime: slot},
	)
	d.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "jane@example.com", msgs[0].To)
	assert.Equal(t, "patel@clinic.test", msgs[1].To)
}

func TestDispatcherDropsIntentWithoutRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(NewMailer(""), sender, DispatcherConfig{Workers: 1, QueueSize: 8}, nil)

	d.Dispatch(Intent{Kind: IntentPatientConfirmation})
	d.Close()

	assert.Empty(t, sender.messages())
}

// Delivery failures are swallowed: the booking already committed and the
// caller never hears about a dead mail provider.
func TestDispatcherSwallowsSendFailures(t *testing.T) {
	sender := &recordingSender{fail: true}
	d := NewDispatcher(NewMailer(""), sender, DispatcherConfig{Workers: 2, QueueSize: 8}, nil)

	d.Dispatch(Intent{Kind: IntentPatientConfirmation, RecipientEmail: "jane@example.com"})
	d.Close()

	assert.Empty(t, sender.messages())
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(NewMailer(""), &recordingSender{}, DispatcherConfig{}, nil)
	d.Close()
	d.Close()
}
