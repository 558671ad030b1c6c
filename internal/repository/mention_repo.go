package repository

import (
	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MentionRepository derived post-mention association data access
type MentionRepository interface {
	// ReplaceForPost swaps the full mention set of a post and returns
	// only the user ids that were newly added. Edit-time fan-out
	// notifies just those, so re-saving a post never re-notifies
	// users mentioned before the edit.
	ReplaceForPost(postID string, userIDs []string) (added []string, err error)
}

type mentionRepository struct {
	db *gorm.DB
}

// NewMentionRepository creates a new MentionRepository
func NewMentionRepository(db *gorm.DB) MentionRepository {
	return &mentionRepository{db: db}
}

func (r *mentionRepository) ReplaceForPost(postID string, userIDs []string) ([]string, error) {
	var added []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&domain.PostMention{}).
			Where("post_id = ?", postID).
			Pluck("user_id", &existing).Error; err != nil {
			return err
		}
		existingSet := make(map[string]struct{}, len(existing))
		for _, id := range existing {
			existingSet[id] = struct{}{}
		}

		newSet := make(map[string]struct{}, len(userIDs))
		var rows []domain.PostMention
		for _, id := range userIDs {
			newSet[id] = struct{}{}
			rows = append(rows, domain.PostMention{PostID: postID, UserID: id})
			if _, ok := existingSet[id]; !ok {
				added = append(added, id)
			}
		}

		// Drop mentions removed by the edit
		var removed []string
		for _, id := range existing {
			if _, ok := newSet[id]; !ok {
				removed = append(removed, id)
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("post_id = ? AND user_id IN ?", postID, removed).
				Delete(&domain.PostMention{}).Error; err != nil {
				return err
			}
		}

		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}
