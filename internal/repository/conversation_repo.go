package repository

import (
	"errors"
	"time"

	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository conversation data access
type ConversationRepository interface {
	// GetOrCreate finds or atomically creates the conversation for an
	// unordered user pair. Safe under concurrent calls from both sides:
	// the pair_key unique index makes the insert race collapse onto one
	// row, and the loser re-reads the winner's row.
	GetOrCreate(userA, userB string) (*domain.Conversation, bool, error)
	FindByID(id string) (*domain.Conversation, error)
	ListForUser(userID string, page, perPage int) ([]*domain.Conversation, int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) GetOrCreate(userA, userB string) (*domain.Conversation, bool, error) {
	pairKey := domain.PairKeyFor(userA, userB)

	var conv domain.Conversation
	err := r.db.Where("pair_key = ?", pairKey).First(&conv).Error
	if err == nil {
		return &conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	created := true
	err = r.db.Transaction(func(tx *gorm.DB) error {
		conv = domain.Conversation{PairKey: pairKey, UpdatedAt: time.Now()}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race: the other side created it first
			created = false
			if err := tx.Where("pair_key = ?", pairKey).First(&conv).Error; err != nil {
				return err
			}
			return nil
		}

		participants := []domain.ConversationParticipant{
			{ConversationID: conv.ID, UserID: userA},
			{ConversationID: conv.ID, UserID: userB},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &conv, created, nil
}

func (r *conversationRepository) FindByID(id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(userID string, page, perPage int) ([]*domain.Conversation, int64, error) {
	base := r.db.Model(&domain.Conversation{}).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []*domain.Conversation
	offset := (page - 1) * perPage
	if err := base.Order("conversations.updated_at DESC").
		Offset(offset).Limit(perPage).
		Find(&convs).Error; err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}
