package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"

	"github.com/salonsuite/platform/internal/jobs"
	"github.com/salonsuite/platform/internal/observability/metrics"
	"github.com/salonsuite/platform/pkg/logging"
)

// MessageStore is the persistence surface the handler needs.
type MessageStore interface {
	CreateChannel(ctx context.Context, name, topic, createdBy string) (*Channel, error)
	ListChannels(ctx context.Context) ([]Channel, error)
	CreateMessage(ctx context.Context, channelID, parentID, authorID, authorName string, content Content) (*Message, error)
	ListMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	ThreadReplies(ctx context.Context, parentID string) ([]Message, error)
	SearchMessages(ctx context.Context, channelID, query string, limit int) ([]Message, error)
	ToggleReaction(ctx context.Context, messageID, userID, emoji string) (bool, error)
	Reactions(ctx context.Context, messageID string) ([]ReactionCount, error)
}

// MentionPublisher queues mention notifications for fan-out.
type MentionPublisher interface {
	EnqueueMentionAlert(ctx context.Context, m jobs.MentionAlert) error
}

// AssistantPanel answers assistant panel requests.
type AssistantPanel interface {
	Reply(ctx context.Context, turns []AssistantTurn) (string, error)
}

// Handler serves the chat endpoints and the websocket.
type Handler struct {
	store     MessageStore
	hub       *Hub
	publisher MentionPublisher
	assistant AssistantPanel
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
}

// NewHandler creates a chat handler. publisher, assistant, and metrics may be
// nil; the corresponding features degrade to no-ops.
func NewHandler(store MessageStore, hub *Hub, publisher MentionPublisher, assistant AssistantPanel, m *metrics.ChatMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if hub == nil {
		hub = NewHub()
	}
	return &Handler{
		store:     store,
		hub:       hub,
		publisher: publisher,
		assistant: assistant,
		metrics:   m,
		logger:    logger,
	}
}

// Routes mounts the chat endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/channels", h.ListChannels)
	r.Post("/channels", h.CreateChannel)
	r.Get("/channels/{channelID}/messages", h.ListMessages)
	r.Post("/channels/{channelID}/messages", h.PostMessage)
	r.Get("/channels/{channelID}/search", h.SearchMessages)
	r.Get("/messages/{messageID}/thread", h.ThreadReplies)
	r.Post("/messages/{messageID}/reactions", h.ToggleReaction)
	r.Get("/messages/{messageID}/reactions", h.Reactions)
	r.Post("/assistant", h.Assistant)
	r.Get("/ws", h.HandleWebSocket)
	return r
}

// ListChannels handles GET /chat/channels.
func (h *Handler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.store.ListChannels(r.Context())
	if err != nil {
		h.logger.Error("chat: list channels failed", "error", err)
		http.Error(w, "list channels failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

// CreateChannel handles POST /chat/channels.
func (h *Handler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name      string `json:"name"`
		Topic     string `json:"topic"`
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		http.Error(w, "channel name required", http.StatusBadRequest)
		return
	}
	ch, err := h.store.CreateChannel(r.Context(), in.Name, in.Topic, in.CreatedBy)
	if err != nil {
		h.logger.Error("chat: create channel failed", "error", err)
		http.Error(w, "create channel failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

// ListMessages handles GET /chat/channels/{channelID}/messages?limit=.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := h.store.ListMessages(r.Context(), chi.URLParam(r, "channelID"), limit)
	if err != nil {
		h.logger.Error("chat: list messages failed", "error", err)
		http.Error(w, "list messages failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

type postMessageInput struct {
	ParentID   string        `json:"parent_id,omitempty"`
	AuthorID   string        `json:"author_id"`
	AuthorName string        `json:"author_name"`
	Text       string        `json:"text"`
	Mentions   []MentionSpan `json:"mentions,omitempty"`
}

// PostMessage handles POST /chat/channels/{channelID}/messages.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var in postMessageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	channelID := chi.URLParam(r, "channelID")
	msg, err := h.postMessage(r.Context(), channelID, in)
	if err != nil {
		if errors.Is(err, errMessageInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("chat: post message failed", "error", err, "channel_id", channelID)
		http.Error(w, "post message failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handler) postMessage(ctx context.Context, channelID string, in postMessageInput) (*Message, error) {
	if strings.TrimSpace(in.Text) == "" || in.AuthorID == "" {
		return nil, errMessageInput
	}

	content := Content{Text: in.Text, Mentions: in.Mentions}
	msg, err := h.store.CreateMessage(ctx, channelID, in.ParentID, in.AuthorID, in.AuthorName, content)
	if err != nil {
		return nil, err
	}

	kind := "channel"
	if in.ParentID != "" {
		kind = "thread"
	}
	h.metrics.ObserveMessage(kind)

	h.hub.Broadcast(channelID, Event{Type: "message", ChannelID: channelID, Message: msg})
	h.fanOutMentions(ctx, channelID, msg)
	return msg, nil
}

// fanOutMentions enqueues one alert per mentioned user. Self-mentions are
// skipped.
func (h *Handler) fanOutMentions(ctx context.Context, channelID string, msg *Message) {
	if h.publisher == nil {
		return
	}
	for _, userID := range msg.Content.MentionedUserIDs() {
		if userID == msg.AuthorID {
			continue
		}
		excerpt := msg.Content.Text
		if len(excerpt) > 140 {
			excerpt = excerpt[:140]
		}
		alert := jobs.MentionAlert{
			ChannelID:       channelID,
			MessageID:       msg.ID,
			AuthorName:      msg.AuthorName,
			MentionedUserID: userID,
			Excerpt:         excerpt,
		}
		if err := h.publisher.EnqueueMentionAlert(ctx, alert); err != nil {
			h.logger.Error("chat: mention alert enqueue failed",
				"message_id", msg.ID, "user_id", userID, "error", err)
		}
	}
}

// ThreadReplies handles GET /chat/messages/{messageID}/thread.
func (h *Handler) ThreadReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.store.ThreadReplies(r.Context(), chi.URLParam(r, "messageID"))
	if err != nil {
		h.logger.Error("chat: thread replies failed", "error", err)
		http.Error(w, "thread lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": replies})
}

// SearchMessages handles GET /chat/channels/{channelID}/search?q=&limit=.
func (h *Handler) SearchMessages(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q parameter required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := h.store.SearchMessages(r.Context(), chi.URLParam(r, "channelID"), query, limit)
	if err != nil {
		h.logger.Error("chat: search failed", "error", err)
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// ToggleReaction handles POST /chat/messages/{messageID}/reactions.
func (h *Handler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id"`
		Emoji  string `json:"emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.UserID == "" || in.Emoji == "" {
		http.Error(w, "user_id and emoji required", http.StatusBadRequest)
		return
	}
	messageID := chi.URLParam(r, "messageID")
	added, err := h.store.ToggleReaction(r.Context(), messageID, in.UserID, in.Emoji)
	if err != nil {
		h.logger.Error("chat: toggle reaction failed", "error", err)
		http.Error(w, "reaction failed", http.StatusInternalServerError)
		return
	}

	reactions, err := h.store.Reactions(r.Context(), messageID)
	if err != nil {
		h.logger.Error("chat: reaction reload failed", "error", err)
		http.Error(w, "reaction failed", http.StatusInternalServerError)
		return
	}
	// Every subscriber sees the updated counts, including the toggler.
	h.hub.Broadcast(r.URL.Query().Get("channel"), Event{
		Type:      "reaction",
		MessageID: messageID,
		Reactions: reactions,
	})
	writeJSON(w, http.StatusOK, map[string]any{"added": added, "reactions": reactions})
}

// Reactions handles GET /chat/messages/{messageID}/reactions.
func (h *Handler) Reactions(w http.ResponseWriter, r *http.Request) {
	reactions, err := h.store.Reactions(r.Context(), chi.URLParam(r, "messageID"))
	if err != nil {
		h.logger.Error("chat: reactions failed", "error", err)
		http.Error(w, "reactions failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reactions": reactions})
}

// Assistant handles POST /chat/assistant.
func (h *Handler) Assistant(w http.ResponseWriter, r *http.Request) {
	if h.assistant == nil {
		http.Error(w, "assistant not configured", http.StatusServiceUnavailable)
		return
	}
	var in struct {
		Turns []AssistantTurn `json:"turns"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Turns) == 0 {
		http.Error(w, "turns required", http.StatusBadRequest)
		return
	}
	answer, err := h.assistant.Reply(r.Context(), in.Turns)
	if err != nil {
		h.logger.Error("chat: assistant failed", "error", err)
		http.Error(w, "assistant unavailable", http.StatusBadGateway)
		return
	}
	h.metrics.ObserveMessage("assistant")
	writeJSON(w, http.StatusOK, map[string]any{"text": answer})
}

// inboundWS is what a websocket client sends.
type inboundWS struct {
	Type       string        `json:"type"` // "message", "ping"
	AuthorID   string        `json:"author_id"`
	AuthorName string        `json:"author_name"`
	ParentID   string        `json:"parent_id,omitempty"`
	Text       string        `json:"text"`
	Mentions   []MentionSpan `json:"mentions,omitempty"`
}

// HandleWebSocket upgrades GET /chat/ws?channel= and streams channel events.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	channelID := r.URL.Query().Get("channel")
	if channelID == "" {
		_ = websocket.JSON.Send(conn, Event{Type: "error", Text: "missing channel parameter"})
		return
	}

	// Replay recent history on connect.
	if history, err := h.store.ListMessages(r.Context(), channelID, 50); err == nil && len(history) > 0 {
		_ = websocket.JSON.Send(conn, Event{Type: "history", ChannelID: channelID, Messages: history})
	}

	c := &hubConn{conn: conn, done: make(chan struct{})}
	h.hub.add(channelID, c)
	defer func() {
		h.hub.remove(channelID, c)
		close(c.done)
	}()

	h.logger.Info("chat: connection opened", "channel_id", channelID)

	for {
		var msg inboundWS
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat: connection closed", "channel_id", channelID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, Event{Type: "pong"})
		case "message":
			if _, err := h.postMessage(r.Context(), channelID, postMessageInput{
				ParentID:   msg.ParentID,
				AuthorID:   msg.AuthorID,
				AuthorName: msg.AuthorName,
				Text:       msg.Text,
				Mentions:   msg.Mentions,
			}); err != nil {
				_ = websocket.JSON.Send(conn, Event{Type: "error", Text: "message could not be sent"})
			}
		}
	}
}

var errMessageInput = errors.New("chat: author_id and text are required")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
