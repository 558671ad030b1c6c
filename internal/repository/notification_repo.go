package repository

import (
	"errors"

	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository notification data access
type NotificationRepository interface {
	Create(n *domain.Notification) error
	// Exists reports whether a notification for the same
	// (recipient, actor, type, content) tuple already exists.
	Exists(recipientID, actorID, ntype string, contentID *string) (bool, error)
	FindByID(id string) (*domain.Notification, error)
	// List returns reverse-chronological notifications. mentionsOnly
	// restricts to the merged reply/mention category.
	List(recipientID string, mentionsOnly bool, offset, limit int) ([]domain.Notification, int64, error)
	UnreadCount(recipientID string) (int64, error)
	// MarkRead flips read for one notification. Ownership is checked
	// at the service layer via FindByID; the transition is one-way.
	MarkRead(id string) error
	MarkAllRead(recipientID string) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) Exists(recipientID, actorID, ntype string, contentID *string) (bool, error) {
	query := r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND actor_id = ? AND type = ?", recipientID, actorID, ntype)
	if contentID != nil {
		query = query.Where("content_id = ?", *contentID)
	} else {
		query = query.Where("content_id IS NULL")
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *notificationRepository) FindByID(id string) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) List(recipientID string, mentionsOnly bool, offset, limit int) ([]domain.Notification, int64, error) {
	query := r.db.Model(&domain.Notification{}).Where("recipient_id = ?", recipientID)
	if mentionsOnly {
		query = query.Where("type IN ?", domain.MentionOrReplyTypes)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []domain.Notification
	if err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) UnreadCount(recipientID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(id string) error {
	return r.db.Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(recipientID string) error {
	return r.db.Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = false", recipientID).
		Update("is_read", true).Error
}
