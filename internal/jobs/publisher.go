package jobs

import (
	"context"
	"fmt"

	"github.com/salonsuite/platform/pkg/logging"
)

// Publisher enqueues notification jobs.
type Publisher struct {
	queue  Queue
	logger *logging.Logger
}

// NewPublisher creates a publisher over a queue.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// EnqueueBookingConfirmation queues a confirmation email job.
func (p *Publisher) EnqueueBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	body, err := encodePayload(queuePayload{Kind: kindBookingConfirmation, Confirmation: &c})
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("jobs: enqueue booking confirmation: %w", err)
	}
	p.logger.Debug("jobs: booking confirmation enqueued", "appointment_id", c.AppointmentID)
	return nil
}

// EnqueueMentionAlert queues a mention notification job.
func (p *Publisher) EnqueueMentionAlert(ctx context.Context, m MentionAlert) error {
	body, err := encodePayload(queuePayload{Kind: kindMentionAlert, Mention: &m})
	if err != nil {
		return err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("jobs: enqueue mention alert: %w", err)
	}
	p.logger.Debug("jobs: mention alert enqueued", "message_id", m.MessageID, "user_id", m.MentionedUserID)
	return nil
}
