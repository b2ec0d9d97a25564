// Package jobs carries asynchronous notification work: booking confirmation
// emails after a successful submit and mention alerts from team chat. Jobs
// flow through SQS in production and an in-memory channel in development.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Queue is the transport jobs flow through. SQSQueue serves production;
// MemoryQueue serves development and tests.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Message is one in-flight queue entry.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type jobKind string

const (
	kindBookingConfirmation jobKind = "booking_confirmation"
	kindMentionAlert        jobKind = "mention_alert"
)

// BookingConfirmation is enqueued after a successful booking submit.
type BookingConfirmation struct {
	AppointmentID string   `json:"appointment_id"`
	ClientName    string   `json:"client_name"`
	ClientEmail   string   `json:"client_email,omitempty"`
	StylistName   string   `json:"stylist_name"`
	LocationName  string   `json:"location_name"`
	ServiceNames  []string `json:"service_names"`
	StartTime     string   `json:"start_time"`
	TotalPrice    float64  `json:"total_price"`
	// RecurringNote carries the partial-success summary when a recurring
	// series was requested ("Booked 4 of 6; 2 skipped").
	RecurringNote string `json:"recurring_note,omitempty"`
}

// MentionAlert is enqueued when a chat message mentions a user.
type MentionAlert struct {
	ChannelID       string `json:"channel_id"`
	ChannelName     string `json:"channel_name"`
	MessageID       string `json:"message_id"`
	AuthorName      string `json:"author_name"`
	MentionedUserID string `json:"mentioned_user_id"`
	MentionedEmail  string `json:"mentioned_email,omitempty"`
	Excerpt         string `json:"excerpt"`
}

type queuePayload struct {
	ID           string               `json:"id"`
	Kind         jobKind              `json:"kind"`
	Confirmation *BookingConfirmation `json:"confirmation,omitempty"`
	Mention      *MentionAlert        `json:"mention,omitempty"`
}

func encodePayload(payload queuePayload) (string, error) {
	if payload.ID == "" {
		payload.ID = uuid.NewString()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("jobs: failed to encode payload: %w", err)
	}
	return string(body), nil
}
