package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/salonsuite/platform/internal/jobs"
	"github.com/salonsuite/platform/pkg/logging"
)

// EmailResolver maps a staff user ID to an email address for mention alerts.
type EmailResolver interface {
	EmailFor(ctx context.Context, userID string) (string, error)
}

// Service turns queued notification jobs into emails. It implements the
// jobs worker's handler.
type Service struct {
	email    EmailSender
	resolver EmailResolver
	salon    string
	logger   *logging.Logger
}

// NewService creates a notification service. resolver may be nil; mention
// alerts without a resolvable address are skipped.
func NewService(email EmailSender, resolver EmailResolver, salonName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if salonName == "" {
		salonName = "SalonSuite"
	}
	return &Service{email: email, resolver: resolver, salon: salonName, logger: logger}
}

// HandleBookingConfirmation emails the client their appointment details.
func (s *Service) HandleBookingConfirmation(ctx context.Context, c jobs.BookingConfirmation) error {
	if s.email == nil {
		s.logger.Debug("notify: email disabled, skipping confirmation", "appointment_id", c.AppointmentID)
		return nil
	}
	if c.ClientEmail == "" {
		s.logger.Debug("notify: client has no email, skipping confirmation", "appointment_id", c.AppointmentID)
		return nil
	}

	services := strings.Join(c.ServiceNames, ", ")
	recurringLine := ""
	if c.RecurringNote != "" {
		recurringLine = "\n" + c.RecurringNote
	}

	msg := EmailMessage{
		To:      c.ClientEmail,
		ToName:  c.ClientName,
		Subject: fmt.Sprintf("Your appointment at %s is booked", c.LocationName),
		Body: fmt.Sprintf(`Hi %s,

Your appointment is confirmed.

Services: %s
Stylist: %s
Location: %s
When: %s
Total: $%.2f%s

See you soon!
— %s`, c.ClientName, services, c.StylistName, c.LocationName, c.StartTime, c.TotalPrice, recurringLine, s.salon),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation for %s: %w", c.AppointmentID, err)
	}
	s.logger.Info("notify: booking confirmation sent", "appointment_id", c.AppointmentID, "to", c.ClientEmail)
	return nil
}

// HandleMentionAlert emails a staff member that they were mentioned in chat.
func (s *Service) HandleMentionAlert(ctx context.Context, m jobs.MentionAlert) error {
	if s.email == nil {
		return nil
	}

	to := m.MentionedEmail
	if to == "" && s.resolver != nil {
		resolved, err := s.resolver.EmailFor(ctx, m.MentionedUserID)
		if err != nil {
			return fmt.Errorf("notify: resolve mention recipient %s: %w", m.MentionedUserID, err)
		}
		to = resolved
	}
	if to == "" {
		s.logger.Debug("notify: no address for mentioned user, skipping", "user_id", m.MentionedUserID)
		return nil
	}

	channel := m.ChannelName
	if channel == "" {
		channel = m.ChannelID
	}

	msg := EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("%s mentioned you in #%s", m.AuthorName, channel),
		Body: fmt.Sprintf(`%s mentioned you in #%s:

"%s"

Open the team chat to reply.
— %s`, m.AuthorName, channel, m.Excerpt, s.salon),
	}

	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: mention alert for %s: %w", m.MentionedUserID, err)
	}
	s.logger.Info("notify: mention alert sent", "to", to, "message_id", m.MessageID)
	return nil
}

var _ jobs.Handler = (*Service)(nil)
