package repository

import (
	"github.com/flocknet/flock-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipRepository follow/block/mute edge data access
type RelationshipRepository interface {
	Follow(followerID, followeeID string) (inserted bool, err error)
	Unfollow(followerID, followeeID string) error

	// CreateBlock inserts the block edge and severs follow edges in
	// both directions in one transaction, so visibility and follow
	// state change atomically at the moment the block commits.
	CreateBlock(blockerID, blockedID string) (inserted bool, err error)
	DeleteBlock(blockerID, blockedID string) error
	IsBlocked(blockerID, blockedID string) (bool, error)

	CreateMute(muterID, mutedID string) (inserted bool, err error)
	DeleteMute(muterID, mutedID string) error

	// BlockedIDs returns both directions: users the viewer blocked and
	// users who blocked the viewer. Blocking is symmetric for
	// visibility, so the filter needs the union.
	BlockedIDs(viewerID string) ([]string, error)
	MutedIDs(viewerID string) ([]string, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new RelationshipRepository
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Follow(followerID, followeeID string) (bool, error) {
	edge := domain.Follow{FollowerID: followerID, FolloweeID: followeeID}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *relationshipRepository) Unfollow(followerID, followeeID string) error {
	return r.db.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&domain.Follow{}).Error
}

func (r *relationshipRepository) CreateBlock(blockerID, blockedID string) (bool, error) {
	inserted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		edge := domain.Block{BlockerID: blockerID, BlockedID: blockedID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if res.Error != nil {
			return res.Error
		}
		inserted = res.RowsAffected > 0

		// Sever follow edges both ways
		return tx.Where(
			"(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			blockerID, blockedID, blockedID, blockerID,
		).Delete(&domain.Follow{}).Error
	})
	return inserted, err
}

func (r *relationshipRepository) DeleteBlock(blockerID, blockedID string) error {
	return r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&domain.Block{}).Error
}

func (r *relationshipRepository) IsBlocked(blockerID, blockedID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

func (r *relationshipRepository) CreateMute(muterID, mutedID string) (bool, error) {
	edge := domain.Mute{MuterID: muterID, MutedID: mutedID}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *relationshipRepository) DeleteMute(muterID, mutedID string) error {
	return r.db.Where("muter_id = ? AND muted_id = ?", muterID, mutedID).
		Delete(&domain.Mute{}).Error
}

func (r *relationshipRepository) BlockedIDs(viewerID string) ([]string, error) {
	var outgoing []string
	if err := r.db.Model(&domain.Block{}).
		Where("blocker_id = ?", viewerID).
		Pluck("blocked_id", &outgoing).Error; err != nil {
		return nil, err
	}
	var incoming []string
	if err := r.db.Model(&domain.Block{}).
		Where("blocked_id = ?", viewerID).
		Pluck("blocker_id", &incoming).Error; err != nil {
		return nil, err
	}
	return append(outgoing, incoming...), nil
}

func (r *relationshipRepository) MutedIDs(viewerID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.Mute{}).
		Where("muter_id = ?", viewerID).
		Pluck("muted_id", &ids).Error
	return ids, err
}
