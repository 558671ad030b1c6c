package service

import (
	"testing"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/flocknet/flock-backend/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(n *domain.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockNotificationRepository) Exists(recipientID, actorID, ntype string, contentID *string) (bool, error) {
	args := m.Called(recipientID, actorID, ntype, contentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) FindByID(id string) (*domain.Notification, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) List(recipientID string, mentionsOnly bool, offset, limit int) ([]domain.Notification, int64, error) {
	args := m.Called(recipientID, mentionsOnly, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) UnreadCount(recipientID string) (int64, error) {
	args := m.Called(recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(recipientID string) error {
	args := m.Called(recipientID)
	return args.Error(0)
}

// MockMentionRepository is a mock implementation of MentionRepository
type MockMentionRepository struct {
	mock.Mock
}

func (m *MockMentionRepository) ReplaceForPost(postID string, userIDs []string) ([]string, error) {
	args := m.Called(postID, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}


func TestEmit(t *testing.T) {
	t.Run("self action emits nothing", func(t *testing.T) {
		notifRepo := new(MockNotificationRepository)
		svc := NewNotificationService(notifRepo, nil, nil, nil, nil)

		err := svc.Emit("user-1", "user-1", domain.NotificationLike, nil)
		assert.NoError(t, err)
		notifRepo.AssertNotCalled(t, "Create", mock.Anything)
		notifRepo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate tuple emits nothing", func(t *testing.T) {
		postID := "post-1"
		notifRepo := new(MockNotificationRepository)
		notifRepo.On("Exists", "user-2", "user-1", domain.NotificationLike, &postID).Return(true, nil)

		svc := NewNotificationService(notifRepo, nil, nil, nil, nil)

		err := svc.Emit("user-2", "user-1", domain.NotificationLike, &postID)
		assert.NoError(t, err)
		notifRepo.AssertNotCalled(t, "Create", mock.Anything)
	})

	t.Run("creates and pushes", func(t *testing.T) {
		postID := "post-1"
		notifRepo := new(MockNotificationRepository)
		notifRepo.On("Exists", "user-2", "user-1", domain.NotificationLike, &postID).Return(false, nil)
		notifRepo.On("Create", mock.AnythingOfType("*domain.Notification")).Return(nil)
		notifRepo.On("UnreadCount", "user-2").Return(int64(5), nil)

		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", "user-1").Return(&domain.User{ID: "user-1", Username: "alice"}, nil)

		pub := newRecordingPublisher()
		svc := NewNotificationService(notifRepo, userRepo, nil, nil, pub)

		err := svc.Emit("user-2", "user-1", domain.NotificationLike, &postID)
		assert.NoError(t, err)
		assert.Equal(t, []string{realtime.EventNotificationNew, realtime.EventUnreadCount}, pub.eventTypes("user-2"))
		notifRepo.AssertExpectations(t)
	})
}

func TestFanOutPost(t *testing.T) {
	t.Run("reply notifies parent author on create only", func(t *testing.T) {
		parentAuthor := "user-2"
		post := domain.PostRef{
			ID:              "post-1",
			AuthorID:        "user-1",
			Text:            "no mentions here",
			ReplyToAuthorID: &parentAuthor,
		}

		notifRepo := new(MockNotificationRepository)
		notifRepo.On("Exists", "user-2", "user-1", domain.NotificationReply, &post.ID).Return(false, nil)
		notifRepo.On("Create", mock.AnythingOfType("*domain.Notification")).Return(nil)
		notifRepo.On("UnreadCount", "user-2").Return(int64(1), nil)

		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", "user-1").Return(&domain.User{ID: "user-1"}, nil)
		userRepo.On("FindByUsernames", mock.Anything).Return(nil, nil)

		mentionRepo := new(MockMentionRepository)
		mentionRepo.On("ReplaceForPost", "post-1", mock.Anything).Return([]string{}, nil)

		svc := NewNotificationService(notifRepo, userRepo, mentionRepo, nil, nil)

		assert.NoError(t, svc.FanOutPost(post, false))
		notifRepo.AssertNumberOfCalls(t, "Create", 1)

		// Editing the reply afterwards must not re-notify
		assert.NoError(t, svc.FanOutPost(post, true))
		notifRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("only newly added mentions are notified", func(t *testing.T) {
		post := domain.PostRef{
			ID:       "post-1",
			AuthorID: "user-1",
			Text:     "hey @bob and @carol",
		}

		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsernames", []string{"bob", "carol"}).
			Return([]domain.User{
				{ID: "user-2", Username: "bob"},
				{ID: "user-3", Username: "carol"},
			}, nil)
		userRepo.On("FindByID", "user-1").Return(&domain.User{ID: "user-1"}, nil)

		// bob was already mentioned before this edit
		mentionRepo := new(MockMentionRepository)
		mentionRepo.On("ReplaceForPost", "post-1", []string{"user-2", "user-3"}).
			Return([]string{"user-3"}, nil)

		notifRepo := new(MockNotificationRepository)
		notifRepo.On("Exists", "user-3", "user-1", domain.NotificationMention, &post.ID).Return(false, nil)
		notifRepo.On("Create", mock.AnythingOfType("*domain.Notification")).Return(nil)
		notifRepo.On("UnreadCount", "user-3").Return(int64(1), nil)

		svc := NewNotificationService(notifRepo, userRepo, mentionRepo, nil, nil)

		assert.NoError(t, svc.FanOutPost(post, true))
		notifRepo.AssertNumberOfCalls(t, "Create", 1)
		notifRepo.AssertNotCalled(t, "Exists", "user-2", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("self mention is suppressed", func(t *testing.T) {
		post := domain.PostRef{
			ID:       "post-1",
			AuthorID: "user-1",
			Text:     "note to self @alice",
		}

		userRepo := new(MockUserRepository)
		userRepo.On("FindByUsernames", []string{"alice"}).
			Return([]domain.User{{ID: "user-1", Username: "alice"}}, nil)

		mentionRepo := new(MockMentionRepository)
		mentionRepo.On("ReplaceForPost", "post-1", []string{"user-1"}).
			Return([]string{"user-1"}, nil)

		notifRepo := new(MockNotificationRepository)

		svc := NewNotificationService(notifRepo, userRepo, mentionRepo, nil, nil)

		assert.NoError(t, svc.FanOutPost(post, false))
		notifRepo.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestNotificationMarkRead(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		notifRepo := new(MockNotificationRepository)
		notifRepo.On("FindByID", "missing").Return(nil, nil)

		svc := NewNotificationService(notifRepo, nil, nil, nil, nil)

		err := svc.MarkRead("user-1", "missing")
		assert.ErrorIs(t, err, common.ErrNotificationNotFound)
	})

	t.Run("someone else's notification", func(t *testing.T) {
		notifRepo := new(MockNotificationRepository)
		notifRepo.On("FindByID", "notif-1").
			Return(&domain.Notification{ID: "notif-1", RecipientID: "user-2"}, nil)

		svc := NewNotificationService(notifRepo, nil, nil, nil, nil)

		err := svc.MarkRead("user-1", "notif-1")
		assert.ErrorIs(t, err, common.ErrPermission)
		notifRepo.AssertNotCalled(t, "MarkRead", mock.Anything)
	})

	t.Run("own notification", func(t *testing.T) {
		notifRepo := new(MockNotificationRepository)
		notifRepo.On("FindByID", "notif-1").
			Return(&domain.Notification{ID: "notif-1", RecipientID: "user-1"}, nil)
		notifRepo.On("MarkRead", "notif-1").Return(nil)

		svc := NewNotificationService(notifRepo, nil, nil, nil, nil)

		assert.NoError(t, svc.MarkRead("user-1", "notif-1"))
		notifRepo.AssertExpectations(t)
	})
}
