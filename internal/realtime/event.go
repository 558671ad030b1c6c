package realtime

// Event is one realtime push frame sent to a connected client
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Event types pushed over the socket
const (
	EventMessageNew      = "message.new"
	EventMessageDeleted  = "message.deleted"
	EventReactionAdded   = "reaction.added"
	EventReactionRemoved = "reaction.removed"
	EventNotificationNew = "notification.new"
	EventUnreadCount     = "unread_count"
	EventTyping          = "typing"
)

// Publisher is the push side services depend on. The hub implements
// it; tests substitute a recorder.
type Publisher interface {
	SendToUser(userID string, event *Event)
}

// NopPublisher drops every event (used when realtime is disabled)
type NopPublisher struct{}

// SendToUser implements Publisher
func (NopPublisher) SendToUser(string, *Event) {}

// ReactionEventPayload is the payload for reaction add/remove events,
// carrying exactly the natural key clients reconcile on.
type ReactionEventPayload struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Emoji          string `json:"emoji"`
}

// MessageDeletedPayload identifies a soft-deleted message
type MessageDeletedPayload struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
}

// TypingPayload is the ephemeral typing snapshot for one conversation
type TypingPayload struct {
	ConversationID string   `json:"conversation_id"`
	UserIDs        []string `json:"user_ids"`
}

// UnreadCountPayload refreshes a badge authoritatively
type UnreadCountPayload struct {
	Scope string `json:"scope"` // "messages" or "notifications"
	Count int64  `json:"count"`
}
