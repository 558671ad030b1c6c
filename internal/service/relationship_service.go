package service

import (
	"context"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/repository"
	"github.com/flocknet/flock-backend/internal/visibility"
	pkglogger "github.com/flocknet/flock-backend/pkg/logger"
)

// RelationshipService manages the follow/block/mute edges that drive
// both notification fan-out and visibility filtering.
type RelationshipService struct {
	relRepo      repository.RelationshipRepository
	userRepo     repository.UserRepository
	notifService *NotificationService
	loader       *visibility.Loader
}

// NewRelationshipService creates a new RelationshipService
func NewRelationshipService(
	relRepo repository.RelationshipRepository,
	userRepo repository.UserRepository,
	notifService *NotificationService,
	loader *visibility.Loader,
) *RelationshipService {
	return &RelationshipService{
		relRepo:      relRepo,
		userRepo:     userRepo,
		notifService: notifService,
		loader:       loader,
	}
}

// Follow creates a follow edge and fans out the notification. A
// repeated follow is a no-op and emits nothing. Following across a
// block in either direction is rejected.
func (s *RelationshipService) Follow(actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrSelfTarget
	}
	if err := s.requireUser(targetID); err != nil {
		return err
	}

	// A block in either direction forbids following
	for _, pair := range [][2]string{{actorID, targetID}, {targetID, actorID}} {
		blocked, err := s.relRepo.IsBlocked(pair[0], pair[1])
		if err != nil {
			return err
		}
		if blocked {
			return common.ErrPermission
		}
	}

	inserted, err := s.relRepo.Follow(actorID, targetID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	if s.notifService != nil {
		if err := s.notifService.FanOutFollow(actorID, targetID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).
				Str("actor_id", actorID).
				Str("target_id", targetID).
				Msg("follow fan-out failed")
		}
	}
	return nil
}

// Unfollow removes the follow edge. Absent edges are a no-op; the
// follow notification, if any, stays in the recipient's log.
func (s *RelationshipService) Unfollow(actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrSelfTarget
	}
	return s.relRepo.Unfollow(actorID, targetID)
}

// Block creates the block edge and severs follows in both directions
// in the same transaction. Both users' cached visibility sets are
// invalidated because blocks hide content both ways.
func (s *RelationshipService) Block(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrSelfTarget
	}
	if err := s.requireUser(targetID); err != nil {
		return err
	}
	if _, err := s.relRepo.CreateBlock(actorID, targetID); err != nil {
		return err
	}
	s.invalidate(ctx, actorID, targetID)
	return nil
}

// Unblock removes the block edge. Severed follows are not restored.
func (s *RelationshipService) Unblock(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrSelfTarget
	}
	if err := s.relRepo.DeleteBlock(actorID, targetID); err != nil {
		return err
	}
	s.invalidate(ctx, actorID, targetID)
	return nil
}

// Mute creates a mute edge. Mutes are one way and invisible to the
// target, so only the actor's cached sets change.
func (s *RelationshipService) Mute(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrSelfTarget
	}
	if err := s.requireUser(targetID); err != nil {
		return err
	}
	if _, err := s.relRepo.CreateMute(actorID, targetID); err != nil {
		return err
	}
	s.invalidate(ctx, actorID)
	return nil
}

// Unmute removes a mute edge
func (s *RelationshipService) Unmute(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return common.ErrSelfTarget
	}
	if err := s.relRepo.DeleteMute(actorID, targetID); err != nil {
		return err
	}
	s.invalidate(ctx, actorID)
	return nil
}

func (s *RelationshipService) requireUser(userID string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return common.ErrUserNotFound
	}
	return nil
}

func (s *RelationshipService) invalidate(ctx context.Context, userIDs ...string) {
	if s.loader == nil {
		return
	}
	for _, id := range userIDs {
		s.loader.Invalidate(ctx, id)
	}
}
