package service

import (
	"context"
	"time"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/flocknet/flock-backend/internal/realtime"
	"github.com/flocknet/flock-backend/internal/repository"
	"github.com/flocknet/flock-backend/internal/visibility"
	pkglogger "github.com/flocknet/flock-backend/pkg/logger"
	"github.com/flocknet/flock-backend/pkg/textparse"
	"gorm.io/gorm"
)

// ConversationService owns DM threads: creation, message ordering,
// reactions, read cursors and the realtime events derived from them.
type ConversationService struct {
	convRepo  repository.ConversationRepository
	partRepo  repository.ParticipantRepository
	msgRepo   repository.MessageRepository
	reactRepo repository.ReactionRepository
	userRepo  repository.UserRepository
	loader    *visibility.Loader
	presence  *realtime.Coordinator
	publisher realtime.Publisher
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	convRepo repository.ConversationRepository,
	partRepo repository.ParticipantRepository,
	msgRepo repository.MessageRepository,
	reactRepo repository.ReactionRepository,
	userRepo repository.UserRepository,
	loader *visibility.Loader,
	presence *realtime.Coordinator,
	publisher realtime.Publisher,
) *ConversationService {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &ConversationService{
		convRepo:  convRepo,
		partRepo:  partRepo,
		msgRepo:   msgRepo,
		reactRepo: reactRepo,
		userRepo:  userRepo,
		loader:    loader,
		presence:  presence,
		publisher: publisher,
	}
}

// GetOrCreateConversation returns the one conversation for a user
// pair, creating it lazily on first contact. Concurrent first
// messages from both sides converge on the same id.
func (s *ConversationService) GetOrCreateConversation(viewerID, otherUserID string) (*domain.Conversation, error) {
	if viewerID == otherUserID {
		return nil, common.ErrSelfTarget
	}
	other, err := s.userRepo.FindByID(otherUserID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, common.ErrUserNotFound
	}

	conv, _, err := s.convRepo.GetOrCreate(viewerID, otherUserID)
	return conv, err
}

// ListConversations returns the viewer's threads newest-activity
// first, with unread counts. Threads with blocked users are hidden.
func (s *ConversationService) ListConversations(ctx context.Context, viewerID string, page, perPage int) ([]domain.ConversationView, int64, error) {
	page, perPage = normalizePage(page, perPage)

	convs, total, err := s.convRepo.ListForUser(viewerID, page, perPage)
	if err != nil {
		return nil, 0, err
	}

	views := make([]domain.ConversationView, 0, len(convs))
	for _, conv := range convs {
		view, err := s.buildConversationView(conv, viewerID)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}

	if s.loader != nil {
		sets, err := s.loader.Load(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
		// Only blocks hide a thread; muting suppresses content
		// surfaces, not existing DM threads.
		sets.Muted = nil
		views = visibility.Filter(views, sets)
	}
	return views, total, nil
}

func (s *ConversationService) buildConversationView(conv *domain.Conversation, viewerID string) (domain.ConversationView, error) {
	view := domain.ConversationView{ID: conv.ID, UpdatedAt: conv.UpdatedAt}

	others, err := s.partRepo.OtherParticipants(conv.ID, viewerID)
	if err != nil {
		return view, err
	}
	if len(others) > 0 {
		if other, err := s.userRepo.FindByID(others[0].UserID); err == nil && other != nil {
			view.OtherUser = other.Ref()
		}
	}

	self, err := s.partRepo.Find(conv.ID, viewerID)
	if err != nil {
		return view, err
	}
	var lastReadAt *time.Time
	if self != nil {
		lastReadAt = self.LastReadAt
	}
	unread, err := s.msgRepo.UnreadCount(conv.ID, viewerID, lastReadAt)
	if err != nil {
		return view, err
	}
	view.UnreadCount = unread

	last, err := s.msgRepo.LastInConversation(conv.ID)
	if err != nil {
		return view, err
	}
	if last != nil {
		views, err := s.buildMessageViews(conv.ID, viewerID, []domain.Message{*last})
		if err != nil {
			return view, err
		}
		if len(views) > 0 {
			view.LastMessage = &views[0]
		}
	}
	return view, nil
}

// SendMessage validates and stores a message, bumps the conversation,
// clears the sender's typing state and pushes the event to the other
// participants.
func (s *ConversationService) SendMessage(conversationID, senderID string, req *domain.SendMessageRequest) (*domain.MessageView, error) {
	if err := validateMessagePayload(req); err != nil {
		return nil, err
	}

	participant, err := s.partRepo.Find(conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, common.ErrNotParticipant
	}

	if req.ReplyToID != nil {
		target, err := s.msgRepo.FindByID(*req.ReplyToID)
		if err != nil {
			return nil, err
		}
		if target == nil || target.ConversationID != conversationID {
			return nil, common.ErrValidation
		}
	}

	msg := &domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        req.Content,
		MediaURL:       req.MediaURL,
		MediaType:      req.MediaType,
		ReplyToID:      req.ReplyToID,
		CreatedAt:      time.Now(),
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}

	// Sending unconditionally ends the typing indicator
	if s.presence != nil {
		s.presence.SetTyping(conversationID, senderID, false)
	}

	views, err := s.buildMessageViews(conversationID, senderID, []domain.Message{*msg})
	if err != nil {
		return nil, err
	}
	view := &views[0]

	s.pushToOthers(conversationID, senderID, &realtime.Event{
		Type:    realtime.EventMessageNew,
		Payload: view,
	})
	s.pushUnreadCounts(conversationID, senderID)

	return view, nil
}

func validateMessagePayload(req *domain.SendMessageRequest) error {
	hasContent := req.Content != nil && len(*req.Content) > 0
	hasMedia := req.MediaURL != nil && *req.MediaURL != ""
	if !hasContent && !hasMedia {
		return common.ErrEmptyMessage
	}
	if hasContent && len([]rune(*req.Content)) > textparse.MaxPostLength {
		return common.ErrContentTooLong
	}
	return nil
}

// ListMessages returns the thread in created_at order with reactions
// and reply previews attached. Deleted reply targets render as
// placeholders, never dangling references.
func (s *ConversationService) ListMessages(conversationID, viewerID string, page, perPage int) ([]domain.MessageView, int64, error) {
	participant, err := s.partRepo.Find(conversationID, viewerID)
	if err != nil {
		return nil, 0, err
	}
	if participant == nil {
		return nil, 0, common.ErrNotParticipant
	}

	page, perPage = normalizePage(page, perPage)
	msgs, total, err := s.msgRepo.ListByConversation(conversationID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.buildMessageViews(conversationID, viewerID, msgs)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *ConversationService) buildMessageViews(conversationID, viewerID string, msgs []domain.Message) ([]domain.MessageView, error) {
	messageIDs := make([]string, 0, len(msgs))
	userIDs := make([]string, 0, len(msgs))
	var replyToIDs []string
	for _, m := range msgs {
		messageIDs = append(messageIDs, m.ID)
		userIDs = append(userIDs, m.SenderID)
		if m.ReplyToID != nil {
			replyToIDs = append(replyToIDs, *m.ReplyToID)
		}
	}

	groups, err := s.reactRepo.GroupsByMessageIDs(messageIDs, viewerID)
	if err != nil {
		return nil, err
	}

	// Reply targets are fetched regardless of deletion state so a
	// deleted target still resolves to a placeholder.
	replyTargets := make(map[string]domain.Message)
	if len(replyToIDs) > 0 {
		targets, err := s.msgRepo.FindByIDs(replyToIDs)
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			replyTargets[t.ID] = t
			userIDs = append(userIDs, t.SenderID)
		}
	}

	users, err := s.userRepo.FindByIDs(userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(msgs))
	for _, m := range msgs {
		view := domain.MessageView{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Sender:         users[m.SenderID].Ref(),
			Content:        m.Content,
			MediaURL:       m.MediaURL,
			MediaType:      m.MediaType,
			Reactions:      groups[m.ID],
			CreatedAt:      m.CreatedAt,
		}
		if view.Reactions == nil {
			view.Reactions = []domain.ReactionGroup{}
		}
		if m.ReplyToID != nil {
			if target, ok := replyTargets[*m.ReplyToID]; ok {
				preview := domain.ReplyPreview{
					ID:     target.ID,
					Sender: users[target.SenderID].Ref(),
				}
				if target.DeletedAt != nil {
					preview.Deleted = true
				} else {
					preview.Content = target.Content
					preview.MediaType = target.MediaType
				}
				view.ReplyTo = &preview
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// React toggles a (message, user, emoji) reaction. A duplicate insert
// lost to a concurrent writer is absorbed as already-in-desired-state.
func (s *ConversationService) React(messageID, viewerID, emoji string) ([]domain.ReactionGroup, error) {
	if emoji == "" {
		return nil, common.ErrValidation
	}

	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.DeletedAt != nil {
		return nil, common.ErrMessageNotFound
	}

	participant, err := s.partRepo.Find(msg.ConversationID, viewerID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, common.ErrNotParticipant
	}

	exists, err := s.reactRepo.Exists(messageID, viewerID, emoji)
	if err != nil {
		return nil, err
	}

	eventType := realtime.EventReactionAdded
	if exists {
		if _, err := s.reactRepo.Remove(messageID, viewerID, emoji); err != nil {
			return nil, err
		}
		eventType = realtime.EventReactionRemoved
	} else {
		inserted, err := s.reactRepo.Add(messageID, viewerID, emoji)
		if err != nil {
			return nil, err
		}
		if !inserted {
			// Concurrent duplicate: already in desired state
			pkglogger.GetLogger().Debug().
				Str("message_id", messageID).
				Str("user_id", viewerID).
				Msg("duplicate reaction absorbed")
		}
	}

	s.pushToOthers(msg.ConversationID, viewerID, &realtime.Event{
		Type: eventType,
		Payload: realtime.ReactionEventPayload{
			MessageID:      messageID,
			ConversationID: msg.ConversationID,
			UserID:         viewerID,
			Emoji:          emoji,
		},
	})

	groups, err := s.reactRepo.GroupsByMessageIDs([]string{messageID}, viewerID)
	if err != nil {
		return nil, err
	}
	result := groups[messageID]
	if result == nil {
		result = []domain.ReactionGroup{}
	}
	return result, nil
}

// UnreadTotal returns the viewer's message badge count across all
// conversations.
func (s *ConversationService) UnreadTotal(viewerID string) (int64, error) {
	return s.msgRepo.UnreadTotal(viewerID)
}

// MarkRead raises the viewer's read cursor to now. This is the sole
// mechanism that decreases the unread counter.
func (s *ConversationService) MarkRead(conversationID, viewerID string) error {
	participant, err := s.partRepo.Find(conversationID, viewerID)
	if err != nil {
		return err
	}
	if participant == nil {
		return common.ErrNotParticipant
	}

	if err := s.partRepo.MarkRead(conversationID, viewerID, time.Now()); err != nil {
		return err
	}

	s.publisher.SendToUser(viewerID, &realtime.Event{
		Type:    realtime.EventUnreadCount,
		Payload: realtime.UnreadCountPayload{Scope: "messages", Count: 0},
	})
	return nil
}

// SoftDelete removes a message from the thread view. Only the sender
// may delete; the row is retained for reply/reaction id stability.
func (s *ConversationService) SoftDelete(messageID, actorID string) error {
	msg, err := s.msgRepo.FindByID(messageID)
	if err != nil {
		return err
	}
	if msg == nil || msg.DeletedAt != nil {
		return common.ErrMessageNotFound
	}
	if msg.SenderID != actorID {
		return common.ErrPermission
	}

	if err := s.msgRepo.SoftDelete(messageID, actorID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return common.ErrMessageNotFound
		}
		return err
	}

	s.pushToOthers(msg.ConversationID, actorID, &realtime.Event{
		Type: realtime.EventMessageDeleted,
		Payload: realtime.MessageDeletedPayload{
			MessageID:      messageID,
			ConversationID: msg.ConversationID,
		},
	})
	// An unread message may have just disappeared; refresh badges
	s.pushUnreadCounts(msg.ConversationID, actorID)
	return nil
}

// PublishTyping pushes the current typing set of a conversation to
// every participant, each with themself excluded. Wired as the
// presence coordinator's OnChange hook.
func (s *ConversationService) PublishTyping(conversationID string) {
	participants, err := s.partRepo.OtherParticipants(conversationID, "")
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("conversation_id", conversationID).Msg("typing broadcast failed")
		return
	}
	for _, p := range participants {
		s.publisher.SendToUser(p.UserID, &realtime.Event{
			Type: realtime.EventTyping,
			Payload: realtime.TypingPayload{
				ConversationID: conversationID,
				UserIDs:        s.presence.Typing(conversationID, p.UserID),
			},
		})
	}
}

func (s *ConversationService) pushToOthers(conversationID, actorID string, event *realtime.Event) {
	others, err := s.partRepo.OtherParticipants(conversationID, actorID)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("conversation_id", conversationID).Msg("realtime push failed")
		return
	}
	for _, p := range others {
		s.publisher.SendToUser(p.UserID, event)
	}
}

func (s *ConversationService) pushUnreadCounts(conversationID, senderID string) {
	others, err := s.partRepo.OtherParticipants(conversationID, senderID)
	if err != nil {
		return
	}
	for _, p := range others {
		var lastReadAt *time.Time
		if participant, err := s.partRepo.Find(conversationID, p.UserID); err == nil && participant != nil {
			lastReadAt = participant.LastReadAt
		}
		count, err := s.msgRepo.UnreadCount(conversationID, p.UserID, lastReadAt)
		if err != nil {
			continue
		}
		s.publisher.SendToUser(p.UserID, &realtime.Event{
			Type:    realtime.EventUnreadCount,
			Payload: realtime.UnreadCountPayload{Scope: "messages", Count: count},
		})
	}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}
	return page, perPage
}
