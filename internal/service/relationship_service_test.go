package service

import (
	"context"
	"testing"

	"github.com/flocknet/flock-backend/internal/common"
	"github.com/flocknet/flock-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRelationshipRepository is a mock implementation of RelationshipRepository
type MockRelationshipRepository struct {
	mock.Mock
}

func (m *MockRelationshipRepository) Follow(followerID, followeeID string) (bool, error) {
	args := m.Called(followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) Unfollow(followerID, followeeID string) error {
	args := m.Called(followerID, followeeID)
	return args.Error(0)
}

func (m *MockRelationshipRepository) CreateBlock(blockerID, blockedID string) (bool, error) {
	args := m.Called(blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) DeleteBlock(blockerID, blockedID string) error {
	args := m.Called(blockerID, blockedID)
	return args.Error(0)
}

func (m *MockRelationshipRepository) IsBlocked(blockerID, blockedID string) (bool, error) {
	args := m.Called(blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) CreateMute(muterID, mutedID string) (bool, error) {
	args := m.Called(muterID, mutedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRelationshipRepository) DeleteMute(muterID, mutedID string) error {
	args := m.Called(muterID, mutedID)
	return args.Error(0)
}

func (m *MockRelationshipRepository) BlockedIDs(viewerID string) ([]string, error) {
	args := m.Called(viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRelationshipRepository) MutedIDs(viewerID string) ([]string, error) {
	args := m.Called(viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestFollow(t *testing.T) {
	t.Run("self follow rejected", func(t *testing.T) {
		svc := NewRelationshipService(nil, nil, nil, nil)

		err := svc.Follow("user-1", "user-1")
		assert.ErrorIs(t, err, common.ErrSelfTarget)
	})

	t.Run("blocked either way rejected", func(t *testing.T) {
		relRepo := new(MockRelationshipRepository)
		relRepo.On("IsBlocked", "user-1", "user-2").Return(false, nil)
		relRepo.On("IsBlocked", "user-2", "user-1").Return(true, nil)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", "user-2").Return(&domain.User{ID: "user-2"}, nil)

		svc := NewRelationshipService(relRepo, userRepo, nil, nil)

		err := svc.Follow("user-1", "user-2")
		assert.ErrorIs(t, err, common.ErrPermission)
		relRepo.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything)
	})

	t.Run("new edge fans out one notification", func(t *testing.T) {
		relRepo := new(MockRelationshipRepository)
		relRepo.On("IsBlocked", mock.Anything, mock.Anything).Return(false, nil)
		relRepo.On("Follow", "user-1", "user-2").Return(true, nil)

		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", mock.Anything).Return(&domain.User{ID: "user-2"}, nil)

		notifRepo := new(MockNotificationRepository)
		notifRepo.On("Exists", "user-2", "user-1", domain.NotificationFollow, (*string)(nil)).Return(false, nil)
		notifRepo.On("Create", mock.AnythingOfType("*domain.Notification")).Return(nil)
		notifRepo.On("UnreadCount", "user-2").Return(int64(1), nil)

		notifSvc := NewNotificationService(notifRepo, userRepo, nil, nil, nil)
		svc := NewRelationshipService(relRepo, userRepo, notifSvc, nil)

		assert.NoError(t, svc.Follow("user-1", "user-2"))
		notifRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("repeat follow is silent", func(t *testing.T) {
		relRepo := new(MockRelationshipRepository)
		relRepo.On("IsBlocked", mock.Anything, mock.Anything).Return(false, nil)
		relRepo.On("Follow", "user-1", "user-2").Return(false, nil)

		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", "user-2").Return(&domain.User{ID: "user-2"}, nil)

		notifRepo := new(MockNotificationRepository)
		notifSvc := NewNotificationService(notifRepo, userRepo, nil, nil, nil)
		svc := NewRelationshipService(relRepo, userRepo, notifSvc, nil)

		assert.NoError(t, svc.Follow("user-1", "user-2"))
		notifRepo.AssertNotCalled(t, "Create", mock.Anything)
	})
}

func TestBlock(t *testing.T) {
	t.Run("self block rejected", func(t *testing.T) {
		svc := NewRelationshipService(nil, nil, nil, nil)

		err := svc.Block(context.Background(), "user-1", "user-1")
		assert.ErrorIs(t, err, common.ErrSelfTarget)
	})

	t.Run("block delegates to the severing insert", func(t *testing.T) {
		relRepo := new(MockRelationshipRepository)
		relRepo.On("CreateBlock", "user-1", "user-2").Return(true, nil)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByID", "user-2").Return(&domain.User{ID: "user-2"}, nil)

		svc := NewRelationshipService(relRepo, userRepo, nil, nil)

		assert.NoError(t, svc.Block(context.Background(), "user-1", "user-2"))
		relRepo.AssertExpectations(t)
	})

	t.Run("unblock does not restore follows", func(t *testing.T) {
		relRepo := new(MockRelationshipRepository)
		relRepo.On("DeleteBlock", "user-1", "user-2").Return(nil)

		svc := NewRelationshipService(relRepo, nil, nil, nil)

		assert.NoError(t, svc.Unblock(context.Background(), "user-1", "user-2"))
		relRepo.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything)
	})
}

func TestMute(t *testing.T) {
	relRepo := new(MockRelationshipRepository)
	relRepo.On("CreateMute", "user-1", "user-2").Return(true, nil)
	relRepo.On("DeleteMute", "user-1", "user-2").Return(nil)
	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", "user-2").Return(&domain.User{ID: "user-2"}, nil)

	svc := NewRelationshipService(relRepo, userRepo, nil, nil)

	assert.NoError(t, svc.Mute(context.Background(), "user-1", "user-2"))
	assert.NoError(t, svc.Unmute(context.Background(), "user-1", "user-2"))
	assert.ErrorIs(t, svc.Mute(context.Background(), "user-1", "user-1"), common.ErrSelfTarget)
}
