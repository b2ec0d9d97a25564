package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrChannelNotFound indicates an unknown channel ID.
var ErrChannelNotFound = errors.New("chat: channel not found")

// DB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists channels, messages, and reactions. Message bodies are
// stored in the wire format and parsed back into spans on read.
type Store struct {
	db DB
}

// NewStore creates a chat store backed by pgxpool.
func NewStore(pool *pgxpool.Pool) *Store {
	if pool == nil {
		panic("chat: pgx pool required")
	}
	return &Store{db: pool}
}

// NewStoreWithDB allows injecting mocks for tests.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

// CreateChannel inserts a channel.
func (s *Store) CreateChannel(ctx context.Context, name, topic, createdBy string) (*Channel, error) {
	ch := &Channel{
		ID:        uuid.NewString(),
		Name:      name,
		Topic:     topic,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_channels (id, name, topic, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, ch.ID, ch.Name, ch.Topic, ch.CreatedBy, ch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("chat: create channel: %w", err)
	}
	return ch, nil
}

// ListChannels returns all channels ordered by name.
func (s *Store) ListChannels(ctx context.Context) ([]Channel, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(topic, ''), created_by, created_at
		FROM chat_channels
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("chat: list channels: %w", err)
	}
	defer rows.Close()

	var out []Channel
	for rows.Next() {
		var ch Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Topic, &ch.CreatedBy, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("chat: scan channel: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// CreateMessage inserts a message. The content is serialized to the wire
// format; parentID may be empty for a root message.
func (s *Store) CreateMessage(ctx context.Context, channelID, parentID, authorID, authorName string, content Content) (*Message, error) {
	msg := &Message{
		ID:         uuid.NewString(),
		ChannelID:  channelID,
		ParentID:   parentID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	var parent any
	if parentID != "" {
		parent = parentID
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO chat_messages (id, channel_id, parent_id, author_id, author_name, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, msg.ID, msg.ChannelID, parent, msg.AuthorID, msg.AuthorName, content.Wire(), msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("chat: create message: %w", err)
	}
	return msg, nil
}

// ListMessages returns the latest root messages for a channel, oldest first,
// each carrying its thread reply count.
func (s *Store) ListMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.channel_id, COALESCE(m.parent_id::text, ''), m.author_id, m.author_name, m.body, m.created_at,
		       (SELECT COUNT(*) FROM chat_messages r WHERE r.parent_id = m.id)
		FROM chat_messages m
		WHERE m.channel_id = $1 AND m.parent_id IS NULL
		ORDER BY m.created_at DESC
		LIMIT $2
	`, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: list messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	// Newest-first query, oldest-first response.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ThreadReplies returns the replies under a root message, oldest first.
func (s *Store) ThreadReplies(ctx context.Context, parentID string) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.channel_id, COALESCE(m.parent_id::text, ''), m.author_id, m.author_name, m.body, m.created_at, 0
		FROM chat_messages m
		WHERE m.parent_id = $1
		ORDER BY m.created_at
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("chat: thread replies: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// SearchMessages does a plain ILIKE search over message bodies in a channel.
func (s *Store) SearchMessages(ctx context.Context, channelID, query string, limit int) ([]Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.channel_id, COALESCE(m.parent_id::text, ''), m.author_id, m.author_name, m.body, m.created_at, 0
		FROM chat_messages m
		WHERE m.channel_id = $1 AND m.body ILIKE '%' || $2 || '%'
		ORDER BY m.created_at DESC
		LIMIT $3
	`, channelID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: search messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ToggleReaction adds the user's reaction, or removes it when it already
// exists. Returns true when the reaction was added.
func (s *Store) ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM chat_reactions WHERE message_id = $1 AND user_id = $2 AND emoji = $3
	`, messageID, userID, emoji)
	if err != nil {
		return false, fmt.Errorf("chat: remove reaction: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO chat_reactions (message_id, user_id, emoji, created_at)
		VALUES ($1, $2, $3, $4)
	`, messageID, userID, emoji, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("chat: add reaction: %w", err)
	}
	return true, nil
}

// Reactions aggregates reactions on a message per emoji.
func (s *Store) Reactions(ctx context.Context, messageID string) ([]ReactionCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT emoji, user_id
		FROM chat_reactions
		WHERE message_id = $1
		ORDER BY created_at
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("chat: reactions: %w", err)
	}
	defer rows.Close()

	byEmoji := make(map[string]*ReactionCount)
	var order []string
	for rows.Next() {
		var emoji, userID string
		if err := rows.Scan(&emoji, &userID); err != nil {
			return nil, fmt.Errorf("chat: scan reaction: %w", err)
		}
		rc, ok := byEmoji[emoji]
		if !ok {
			rc = &ReactionCount{Emoji: emoji}
			byEmoji[emoji] = rc
			order = append(order, emoji)
		}
		rc.Count++
		rc.UserIDs = append(rc.UserIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]ReactionCount, 0, len(order))
	for _, emoji := range order {
		out = append(out, *byEmoji[emoji])
	}
	return out, nil
}

func scanMessages(rows pgx.Rows) ([]Message, error) {
	var out []Message
	for rows.Next() {
		var m Message
		var body string
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.ParentID, &m.AuthorID, &m.AuthorName, &body, &m.CreatedAt, &m.ReplyCount); err != nil {
			return nil, fmt.Errorf("chat: scan message: %w", err)
		}
		m.Content = ParseWire(body)
		out = append(out, m)
	}
	return out, rows.Err()
}
