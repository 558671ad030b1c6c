package repository

import (
	"errors"
	"time"

	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
)

// ParticipantRepository read-cursor and membership data access
type ParticipantRepository interface {
	Find(conversationID, userID string) (*domain.ConversationParticipant, error)
	OtherParticipants(conversationID, userID string) ([]domain.ConversationParticipant, error)
	// MarkRead raises last_read_at for one participant. The guarded
	// WHERE keeps the cursor monotonic: a stale timestamp never wins.
	MarkRead(conversationID, userID string, at time.Time) error
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Find(conversationID, userID string) (*domain.ConversationParticipant, error) {
	var p domain.ConversationParticipant
	err := r.db.Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) OtherParticipants(conversationID, userID string) ([]domain.ConversationParticipant, error) {
	var out []domain.ConversationParticipant
	err := r.db.Where("conversation_id = ? AND user_id != ?", conversationID, userID).Find(&out).Error
	return out, err
}

func (r *participantRepository) MarkRead(conversationID, userID string, at time.Time) error {
	return r.db.Model(&domain.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ? AND (last_read_at IS NULL OR last_read_at < ?)",
			conversationID, userID, at).
		Update("last_read_at", at).Error
}
