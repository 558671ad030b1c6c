package repository

import (
	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository message reaction data access
type ReactionRepository interface {
	// Add inserts the (message, user, emoji) tuple. The unique index
	// absorbs concurrent duplicates; inserted=false means the tuple
	// already existed and nothing changed.
	Add(messageID, userID, emoji string) (inserted bool, err error)
	Remove(messageID, userID, emoji string) (removed bool, err error)
	Exists(messageID, userID, emoji string) (bool, error)
	// GroupsByMessageIDs aggregates reactions into per-emoji groups,
	// flagging the viewer's own tuples.
	GroupsByMessageIDs(messageIDs []string, viewerID string) (map[string][]domain.ReactionGroup, error)
}

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Add(messageID, userID, emoji string) (bool, error) {
	reaction := domain.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reaction)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reactionRepository) Remove(messageID, userID, emoji string) (bool, error) {
	res := r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&domain.MessageReaction{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *reactionRepository) Exists(messageID, userID, emoji string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.MessageReaction{}).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Count(&count).Error
	return count > 0, err
}

func (r *reactionRepository) GroupsByMessageIDs(messageIDs []string, viewerID string) (map[string][]domain.ReactionGroup, error) {
	result := make(map[string][]domain.ReactionGroup)
	if len(messageIDs) == 0 {
		return result, nil
	}

	var rows []domain.MessageReaction
	if err := r.db.Where("message_id IN ?", messageIDs).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	// Group by (message, emoji) preserving first-reaction order
	type key struct{ messageID, emoji string }
	index := make(map[key]int)
	for _, row := range rows {
		k := key{row.MessageID, row.Emoji}
		groups := result[row.MessageID]
		i, ok := index[k]
		if !ok {
			groups = append(groups, domain.ReactionGroup{Emoji: row.Emoji})
			i = len(groups) - 1
			index[k] = i
		}
		groups[i].Count++
		groups[i].UserIDs = append(groups[i].UserIDs, row.UserID)
		if row.UserID == viewerID {
			groups[i].Reacted = true
		}
		result[row.MessageID] = groups
	}
	return result, nil
}
