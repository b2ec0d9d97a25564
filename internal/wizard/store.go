package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrSessionNotFound indicates the wizard session expired or never existed.
var ErrSessionNotFound = errors.New("wizard: session not found")

// SessionStore persists drafts in Redis for the life of the wizard session.
// The TTL is the draft lifecycle: expiry equals the wizard closing.
type SessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewSessionStore creates a store with the given session TTL.
func NewSessionStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *SessionStore {
	if client == nil {
		panic("wizard: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("salonsuite.internal.wizard.sessions")
	}
	return &SessionStore{redis: client, ttl: ttl, tracer: tracer}
}

// Save persists the draft and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, d *Draft) error {
	ctx, span := s.tracer.Start(ctx, "wizard.save_session")
	defer span.End()

	d.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(d)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: failed to marshal draft: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(d.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: failed to persist draft: %w", err)
	}
	return nil
}

// Load retrieves a draft by session ID.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Draft, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrSessionNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("wizard: failed to load draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("wizard: failed to decode draft: %w", err)
	}
	return &d, nil
}

// Delete discards the draft. Called on close and on successful submit.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "wizard.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("wizard: failed to delete draft: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("wizard_session:%s", id)
}
