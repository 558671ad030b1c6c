package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a persistent DM thread. updated_at is bumped on
// every message insert so the conversation list sorts by activity.
// The pair key makes first-message creation idempotent: two
// simultaneous opens from both sides of a pair land on one row.
type Conversation struct {
	ID        string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	PairKey   string    `gorm:"column:pair_key;uniqueIndex;size:80" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// BeforeCreate assigns a UUID when none is set
func (c *Conversation) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// PairKeyFor builds the canonical unordered-pair key for two user ids
func PairKeyFor(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return strings.Join([]string{userA, userB}, ":")
}

// ConversationParticipant tracks membership and the read cursor.
// last_read_at only ever moves forward; it is the sole input to the
// unread counter.
type ConversationParticipant struct {
	ConversationID string     `gorm:"column:conversation_id;primaryKey;type:char(36)" json:"conversation_id"`
	UserID         string     `gorm:"column:user_id;primaryKey;type:char(36);index" json:"user_id"`
	LastReadAt     *time.Time `gorm:"column:last_read_at" json:"last_read_at,omitempty"`
	JoinedAt       time.Time  `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}

// ConversationView is a conversation list entry for one viewer
type ConversationView struct {
	ID          string       `json:"id"`
	OtherUser   UserRef      `json:"other_user"`
	LastMessage *MessageView `json:"last_message,omitempty"`
	UnreadCount int64        `json:"unread_count"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// GetAuthorID lets the visibility filter hide threads with blocked users
func (v ConversationView) GetAuthorID() string {
	return v.OtherUser.ID
}
