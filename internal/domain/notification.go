package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types. Mention and reply form one logical category at
// read time (the "mentions" filter selects both).
const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationReply   = "reply"
	NotificationRetweet = "retweet"
	NotificationMention = "mention"
)

// MentionOrReplyTypes is the merged category behind the mentions filter
var MentionOrReplyTypes = []string{NotificationReply, NotificationMention}

// Notification is one fan-out record. Created atomically with the
// triggering action and never retracted afterwards; only the
// recipient's read flag changes, and only false -> true.
type Notification struct {
	ID          string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	RecipientID string    `gorm:"column:recipient_id;type:char(36);index:idx_recipient_created,priority:1" json:"recipient_id"`
	ActorID     string    `gorm:"column:actor_id;type:char(36)" json:"actor_id"`
	Type        string    `gorm:"column:type;size:10" json:"type"`
	ContentID   *string   `gorm:"column:content_id;type:char(36)" json:"content_id,omitempty"`
	Read        bool      `gorm:"column:is_read" json:"read"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index:idx_recipient_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns a UUID when none is set
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

// NotificationItem is a list entry with the actor attached
type NotificationItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Actor     UserRef   `json:"actor"`
	ContentID *string   `json:"content_id,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// GetAuthorID lets the visibility filter treat the actor as author
func (n NotificationItem) GetAuthorID() string {
	return n.Actor.ID
}

// NotificationSummary is the unread badge payload
type NotificationSummary struct {
	TotalUnread int64 `json:"total_unread"`
}
