package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process queue for local development and tests.
type MemoryQueue struct {
	mu       sync.Mutex
	messages []Message
	notify   chan struct{}
}

// NewMemoryQueue creates an empty in-memory queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{notify: make(chan struct{}, 1)}
}

func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	q.mu.Lock()
	q.messages = append(q.messages, Message{
		ID:            uuid.NewString(),
		Body:          body,
		ReceiptHandle: uuid.NewString(),
	})
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	deadline := time.Now().Add(time.Duration(waitSeconds) * time.Second)
	for {
		q.mu.Lock()
		if len(q.messages) > 0 {
			n := maxMessages
			if n > len(q.messages) {
				n = len(q.messages)
			}
			batch := make([]Message, n)
			copy(batch, q.messages[:n])
			q.messages = q.messages[n:]
			q.mu.Unlock()
			return batch, nil
		}
		q.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		case <-time.After(remaining):
			return nil, nil
		}
	}
}

// Delete is a no-op: messages are removed on receive.
func (q *MemoryQueue) Delete(ctx context.Context, receiptHandle string) error {
	return nil
}

// Len reports the number of queued messages. Used by tests.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
