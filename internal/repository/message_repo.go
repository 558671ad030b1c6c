package repository

import (
	"errors"
	"time"

	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access
type MessageRepository interface {
	// Create inserts the message and bumps conversation.updated_at in
	// one transaction so the conversation list never lags the thread.
	Create(msg *domain.Message) error
	FindByID(id string) (*domain.Message, error)
	// FindByIDs returns rows regardless of deletion state; reply
	// previews need deleted targets to render placeholders.
	FindByIDs(ids []string) ([]domain.Message, error)
	// ListByConversation returns non-deleted messages in created_at
	// order with id as tiebreak.
	ListByConversation(conversationID string, offset, limit int) ([]domain.Message, int64, error)
	LastInConversation(conversationID string) (*domain.Message, error)
	// SoftDelete marks the row deleted only when senderID owns it.
	// Returns gorm.ErrRecordNotFound when no live row matched.
	SoftDelete(id, senderID string) error
	// UnreadCount counts live messages from others after the cursor.
	UnreadCount(conversationID, userID string, lastReadAt *time.Time) (int64, error)
	// UnreadTotal sums unread messages across all of the user's
	// conversations; the app badge is driven by this number.
	UnreadTotal(userID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

func (r *messageRepository) FindByID(id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindByIDs(ids []string) ([]domain.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var msgs []domain.Message
	err := r.db.Where("id IN ?", ids).Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) ListByConversation(conversationID string, offset, limit int) ([]domain.Message, int64, error) {
	query := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND deleted_at IS NULL", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []domain.Message
	if err := query.Order("created_at ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

func (r *messageRepository) LastInConversation(conversationID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("conversation_id = ? AND deleted_at IS NULL", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) SoftDelete(id, senderID string) error {
	res := r.db.Model(&domain.Message{}).
		Where("id = ? AND sender_id = ? AND deleted_at IS NULL", id, senderID).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *messageRepository) UnreadCount(conversationID, userID string, lastReadAt *time.Time) (int64, error) {
	query := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND deleted_at IS NULL", conversationID, userID)
	if lastReadAt != nil {
		query = query.Where("created_at > ?", *lastReadAt)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *messageRepository) UnreadTotal(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = messages.conversation_id").
		Where("cp.user_id = ?", userID).
		Where("messages.sender_id != ? AND messages.deleted_at IS NULL", userID).
		Where("cp.last_read_at IS NULL OR messages.created_at > cp.last_read_at").
		Count(&count).Error
	return count, err
}
