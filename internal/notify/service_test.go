package notify

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonsuite/platform/internal/jobs"
	"github.com/salonsuite/platform/pkg/logging"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (s *recordingSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type staticResolver map[string]string

func (r staticResolver) EmailFor(ctx context.Context, userID string) (string, error) {
	return r[userID], nil
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

func TestBookingConfirmationEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, "Lumen Salon", quietLogger())

	err := svc.HandleBookingConfirmation(context.Background(), jobs.BookingConfirmation{
		AppointmentID: "appt-1",
		ClientName:    "Avery Quinn",
		ClientEmail:   "avery@example.com",
		StylistName:   "Riley Fox",
		LocationName:  "Downtown",
		ServiceNames:  []string{"Cut", "Gloss"},
		StartTime:     "2026-09-05T10:00:00Z",
		TotalPrice:    120,
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "avery@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Downtown")
	assert.Contains(t, msg.Body, "Cut, Gloss")
	assert.Contains(t, msg.Body, "Riley Fox")
	assert.Contains(t, msg.Body, "$120.00")
	assert.Contains(t, msg.Body, "Lumen Salon")
}

func TestBookingConfirmationIncludesRecurringNote(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, "", quietLogger())

	err := svc.HandleBookingConfirmation(context.Background(), jobs.BookingConfirmation{
		AppointmentID: "appt-1",
		ClientName:    "Avery",
		ClientEmail:   "avery@example.com",
		RecurringNote: "Booked 4 of 6 appointments; 2 skipped due to conflicts.",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "Booked 4 of 6")
}

func TestBookingConfirmationSkipsWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, nil, "", quietLogger())

	err := svc.HandleBookingConfirmation(context.Background(), jobs.BookingConfirmation{
		AppointmentID: "appt-1",
		ClientName:    "Walk In",
	})
	require.NoError(t, err, "a missing address is not a failure")
	assert.Empty(t, sender.sent)
}

func TestMentionAlertResolvesRecipient(t *testing.T) {
	sender := &recordingSender{}
	resolver := staticResolver{"user-riley": "riley@example.com"}
	svc := NewService(sender, resolver, "", quietLogger())

	err := svc.HandleMentionAlert(context.Background(), jobs.MentionAlert{
		ChannelID:       "ch-1",
		ChannelName:     "front-desk",
		MessageID:       "msg-1",
		AuthorName:      "Dana Cole",
		MentionedUserID: "user-riley",
		Excerpt:         "can you cover Saturday?",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "riley@example.com", msg.To)
	assert.Contains(t, msg.Subject, "Dana Cole")
	assert.Contains(t, msg.Subject, "front-desk")
	assert.Contains(t, msg.Body, "can you cover Saturday?")
}

func TestMentionAlertSkipsUnresolvableUser(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, staticResolver{}, "", quietLogger())

	err := svc.HandleMentionAlert(context.Background(), jobs.MentionAlert{
		MentionedUserID: "user-unknown",
	})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}
