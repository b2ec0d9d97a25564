package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/salonsuite/platform/pkg/logging"
)

// Handler processes dequeued notification jobs.
type Handler interface {
	HandleBookingConfirmation(ctx context.Context, c BookingConfirmation) error
	HandleMentionAlert(ctx context.Context, m MentionAlert) error
}

// Worker polls the queue and dispatches jobs to the handler.
type Worker struct {
	queue       Queue
	handler     Handler
	logger      *logging.Logger
	concurrency int
}

// NewWorker creates a worker pool over the queue.
func NewWorker(queue Queue, handler Handler, concurrency int, logger *logging.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{queue: queue, handler: handler, logger: logger, concurrency: concurrency}
}

// Run blocks until the context is cancelled, polling with long-poll receives.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, 5, 10)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("jobs: receive failed", "worker", id, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		for _, msg := range messages {
			if err := w.process(ctx, msg); err != nil {
				// Leave the message for redelivery.
				w.logger.Error("jobs: job failed", "worker", id, "message_id", msg.ID, "error", err)
				continue
			}
			if err := w.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				w.logger.Error("jobs: delete failed", "worker", id, "message_id", msg.ID, "error", err)
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, msg Message) error {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		// Malformed payloads will never succeed; log and drop.
		w.logger.Error("jobs: dropping malformed payload", "message_id", msg.ID, "error", err)
		return nil
	}

	switch payload.Kind {
	case kindBookingConfirmation:
		if payload.Confirmation == nil {
			w.logger.Error("jobs: confirmation payload missing body", "message_id", msg.ID)
			return nil
		}
		return w.handler.HandleBookingConfirmation(ctx, *payload.Confirmation)
	case kindMentionAlert:
		if payload.Mention == nil {
			w.logger.Error("jobs: mention payload missing body", "message_id", msg.ID)
			return nil
		}
		return w.handler.HandleMentionAlert(ctx, *payload.Mention)
	default:
		w.logger.Warn("jobs: unknown job kind", "kind", string(payload.Kind), "message_id", msg.ID)
		return nil
	}
}
