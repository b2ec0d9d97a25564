package chat

import "time"

// Channel is a team chat room.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Topic     string    `json:"topic,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one chat message. ParentID links thread replies to their root
// message; a root message has no parent. Content carries the parsed mention
// spans; the wire format lives only in storage.
type Message struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	ParentID   string    `json:"parent_id,omitempty"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    Content   `json:"content"`
	ReplyCount int       `json:"reply_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReactionCount aggregates one emoji on one message.
type ReactionCount struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
}
