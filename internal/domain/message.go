package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media kinds accepted on messages
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaGif   = "gif"
)

// Message is one DM. Soft delete keeps the row so reply references
// and reaction tuples stay id-stable; reads exclude deleted rows and
// reply previews render a placeholder instead.
type Message struct {
	ID             string     `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	ConversationID string     `gorm:"column:conversation_id;type:char(36);index:idx_conv_created,priority:1" json:"conversation_id"`
	SenderID       string     `gorm:"column:sender_id;type:char(36);index" json:"sender_id"`
	Content        *string    `gorm:"column:content;type:text" json:"content"`
	MediaURL       *string    `gorm:"column:media_url" json:"media_url,omitempty"`
	MediaType      *string    `gorm:"column:media_type;size:10" json:"media_type,omitempty"`
	ReplyToID      *string    `gorm:"column:reply_to_id;type:char(36)" json:"reply_to_id,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime;index:idx_conv_created,priority:2" json:"created_at"`
	DeletedAt      *time.Time `gorm:"column:deleted_at" json:"-"`
}

func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns a UUID when none is set
func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MessageReaction is one (message, user, emoji) tuple. The unique
// index is what makes the toggle idempotent under concurrent writers.
type MessageReaction struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	MessageID string    `gorm:"column:message_id;type:char(36);uniqueIndex:uq_reaction,priority:1" json:"message_id"`
	UserID    string    `gorm:"column:user_id;type:char(36);uniqueIndex:uq_reaction,priority:2" json:"user_id"`
	Emoji     string    `gorm:"column:emoji;size:16;uniqueIndex:uq_reaction,priority:3" json:"emoji"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MessageReaction) TableName() string {
	return "message_reactions"
}

// ReactionGroup aggregates one emoji's reactions on a message
type ReactionGroup struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"user_ids"`
	Reacted bool     `json:"reacted"` // viewer is among UserIDs
}

// ReplyPreview is the inline quote of a replied-to message.
// Deleted targets keep their id but render as a placeholder.
type ReplyPreview struct {
	ID        string  `json:"id"`
	Content   *string `json:"content"`
	MediaType *string `json:"media_type,omitempty"`
	Sender    UserRef `json:"sender"`
	Deleted   bool    `json:"deleted"`
}

// MessageView is a thread entry with everything the UI renders
type MessageView struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Sender         UserRef         `json:"sender"`
	Content        *string         `json:"content"`
	MediaURL       *string         `json:"media_url,omitempty"`
	MediaType      *string         `json:"media_type,omitempty"`
	ReplyTo        *ReplyPreview   `json:"reply_to,omitempty"`
	Reactions      []ReactionGroup `json:"reactions"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SendMessageRequest is the send-message payload
type SendMessageRequest struct {
	Content   *string `json:"content"`
	MediaURL  *string `json:"media_url"`
	MediaType *string `json:"media_type"`
	ReplyToID *string `json:"reply_to_id"`
}

// ReactRequest is the reaction toggle payload
type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}
