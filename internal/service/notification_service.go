package service

import (
	"context"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/flocknet/flock-backend/internal/realtime"
	"github.com/flocknet/flock-backend/internal/repository"
	"github.com/flocknet/flock-backend/internal/visibility"
	pkglogger "github.com/flocknet/flock-backend/pkg/logger"
	"github.com/flocknet/flock-backend/pkg/textparse"
)

// NotificationService derives notification records from user actions
// and serves the per-recipient log. Notifications are never retracted
// once emitted; only the recipient's read flag changes, one way.
type NotificationService struct {
	notifRepo   repository.NotificationRepository
	userRepo    repository.UserRepository
	mentionRepo repository.MentionRepository
	loader      *visibility.Loader
	publisher   realtime.Publisher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	mentionRepo repository.MentionRepository,
	loader *visibility.Loader,
	publisher realtime.Publisher,
) *NotificationService {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &NotificationService{
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		mentionRepo: mentionRepo,
		loader:      loader,
		publisher:   publisher,
	}
}

// Emit writes one notification record and pushes it. Self-actions and
// duplicates of the same (recipient, actor, type, content) tuple are
// silently suppressed.
func (s *NotificationService) Emit(recipientID, actorID, ntype string, contentID *string) error {
	if recipientID == actorID {
		return nil
	}

	exists, err := s.notifRepo.Exists(recipientID, actorID, ntype, contentID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	n := &domain.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        ntype,
		ContentID:   contentID,
	}
	if err := s.notifRepo.Create(n); err != nil {
		return err
	}

	item := domain.NotificationItem{
		ID:        n.ID,
		Type:      n.Type,
		ContentID: n.ContentID,
		CreatedAt: n.CreatedAt,
	}
	if actor, err := s.userRepo.FindByID(actorID); err == nil && actor != nil {
		item.Actor = actor.Ref()
	}
	s.publisher.SendToUser(recipientID, &realtime.Event{
		Type:    realtime.EventNotificationNew,
		Payload: item,
	})
	if count, err := s.notifRepo.UnreadCount(recipientID); err == nil {
		s.publisher.SendToUser(recipientID, &realtime.Event{
			Type:    realtime.EventUnreadCount,
			Payload: realtime.UnreadCountPayload{Scope: "notifications", Count: count},
		})
	}
	return nil
}

// FanOutPost handles reply and mention fan-out for a created or
// edited post. The mention set is fully recomputed and replaced;
// only users newly added by this write are notified, so an edit
// never re-notifies users already mentioned before it.
func (s *NotificationService) FanOutPost(post domain.PostRef, isEdit bool) error {
	if !isEdit && post.ReplyToAuthorID != nil {
		if err := s.Emit(*post.ReplyToAuthorID, post.AuthorID, domain.NotificationReply, &post.ID); err != nil {
			return err
		}
	}
	if !isEdit && post.QuotedAuthorID != nil {
		if err := s.Emit(*post.QuotedAuthorID, post.AuthorID, domain.NotificationRetweet, &post.ID); err != nil {
			return err
		}
	}

	// Unknown usernames are dropped by resolution, not errors
	names := textparse.Mentions(post.Text)
	users, err := s.userRepo.FindByUsernames(names)
	if err != nil {
		return err
	}
	userIDs := make([]string, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}

	added, err := s.mentionRepo.ReplaceForPost(post.ID, userIDs)
	if err != nil {
		return err
	}
	for _, userID := range added {
		if err := s.Emit(userID, post.AuthorID, domain.NotificationMention, &post.ID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).
				Str("post_id", post.ID).
				Str("user_id", userID).
				Msg("mention fan-out failed")
		}
	}
	return nil
}

// FanOutFollow emits the follow notification
func (s *NotificationService) FanOutFollow(actorID, targetID string) error {
	return s.Emit(targetID, actorID, domain.NotificationFollow, nil)
}

// FanOutLike emits the like notification for a post
func (s *NotificationService) FanOutLike(actorID, postAuthorID, postID string) error {
	return s.Emit(postAuthorID, actorID, domain.NotificationLike, &postID)
}

// FanOutRetweet emits the retweet notification for a post
func (s *NotificationService) FanOutRetweet(actorID, postAuthorID, postID string) error {
	return s.Emit(postAuthorID, actorID, domain.NotificationRetweet, &postID)
}

// List returns the recipient's notifications newest first. The
// mentions filter selects the merged reply/mention category. Actors
// hidden by the visibility filter are dropped like any other surface.
func (s *NotificationService) List(ctx context.Context, recipientID string, mentionsOnly bool, page, perPage int) ([]domain.NotificationItem, int64, error) {
	page, perPage = normalizePage(page, perPage)

	notifications, total, err := s.notifRepo.List(recipientID, mentionsOnly, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}

	actorIDs := make([]string, 0, len(notifications))
	for _, n := range notifications {
		actorIDs = append(actorIDs, n.ActorID)
	}
	actors, err := s.userRepo.FindByIDs(actorIDs)
	if err != nil {
		return nil, 0, err
	}

	items := make([]domain.NotificationItem, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, domain.NotificationItem{
			ID:        n.ID,
			Type:      n.Type,
			Actor:     actors[n.ActorID].Ref(),
			ContentID: n.ContentID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	if s.loader != nil {
		sets, err := s.loader.Load(ctx, recipientID)
		if err != nil {
			return nil, 0, err
		}
		items = visibility.Filter(items, sets)
	}
	return items, total, nil
}

// UnreadCount returns the badge value
func (s *NotificationService) UnreadCount(recipientID string) (*domain.NotificationSummary, error) {
	count, err := s.notifRepo.UnreadCount(recipientID)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationSummary{TotalUnread: count}, nil
}

// MarkRead marks one notification read after an ownership check
func (s *NotificationService) MarkRead(recipientID, notificationID string) error {
	n, err := s.notifRepo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n == nil {
		return common.ErrNotificationNotFound
	}
	if n.RecipientID != recipientID {
		return common.ErrPermission
	}
	return s.notifRepo.MarkRead(notificationID)
}

// MarkAllRead marks every unread notification read for the recipient
func (s *NotificationService) MarkAllRead(recipientID string) error {
	return s.notifRepo.MarkAllRead(recipientID)
}
