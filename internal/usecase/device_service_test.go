package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/usecase"
)

func TestDeviceService_ValidateDeviceAccess(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: primitive.NewObjectID(), DeviceID: "device-a"}
	other := &model.User{ID: primitive.NewObjectID(), DeviceID: "device-a"}

	tests := []struct {
		name       string
		userID     string
		deviceID   string
		setup      func(users *MockUserRepository)
		wantValid  bool
		wantReason string
	}{
		{
			name:       "missing device",
			userID:     user.ID.Hex(),
			deviceID:   "  ",
			setup:      func(users *MockUserRepository) {},
			wantReason: entity.ReasonMissingCredentials,
		},
		{
			name:       "malformed user id",
			userID:     "nope",
			deviceID:   "device-a",
			setup:      func(users *MockUserRepository) {},
			wantReason: entity.ReasonUserNotFound,
		},
		{
			name:     "unknown user",
			userID:   user.ID.Hex(),
			deviceID: "device-a",
			setup: func(users *MockUserRepository) {
				users.On("FindByID", mock.Anything, user.ID).Return(nil, domainErrors.ErrUserNotFound)
			},
			wantReason: entity.ReasonUserNotFound,
		},
		{
			name:     "no registered device",
			userID:   user.ID.Hex(),
			deviceID: "device-a",
			setup: func(users *MockUserRepository) {
				users.On("FindByID", mock.Anything, user.ID).Return(&model.User{ID: user.ID}, nil)
			},
			wantReason: entity.ReasonNoDeviceRegistered,
		},
		{
			name:     "different device",
			userID:   user.ID.Hex(),
			deviceID: "device-b",
			setup: func(users *MockUserRepository) {
				users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
			},
			wantReason: entity.ReasonDeviceMismatch,
		},
		{
			name:     "device shared with another account",
			userID:   user.ID.Hex(),
			deviceID: "device-a",
			setup: func(users *MockUserRepository) {
				users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
				users.On("FindOtherDeviceHolder", mock.Anything, "device-a", user.ID).Return(other, nil)
			},
			wantReason: entity.ReasonConcurrentSession,
		},
		{
			name:     "registered device",
			userID:   user.ID.Hex(),
			deviceID: "device-a",
			setup: func(users *MockUserRepository) {
				users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
				users.On("FindOtherDeviceHolder", mock.Anything, "device-a", user.ID).Return(nil, nil)
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tt.setup(users)
			metrics := &recordingMetrics{}
			service := usecase.NewDeviceService(users, metrics, zap.NewNop())

			got, err := service.ValidateDeviceAccess(ctx, tt.userID, tt.deviceID)

			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantReason, got.Reason)
			assert.Len(t, metrics.deviceDecisions, 1)
			users.AssertExpectations(t)
		})
	}

	t.Run("store error surfaces", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, user.ID).Return(nil, errors.New("connection reset"))
		service := usecase.NewDeviceService(users, nil, zap.NewNop())

		_, err := service.ValidateDeviceAccess(ctx, user.ID.Hex(), "device-a")
		assert.Error(t, err)
	})
}

func TestDeviceService_SingleOccupancy(t *testing.T) {
	ctx := context.Background()
	userA := &model.User{ID: primitive.NewObjectID()}
	userB := &model.User{ID: primitive.NewObjectID(), DeviceID: "phone-b"}

	users := new(MockUserRepository)
	service := usecase.NewDeviceService(users, nil, zap.NewNop())

	users.On("FindByID", mock.Anything, userA.ID).Return(userA, nil)
	users.On("FindByID", mock.Anything, userB.ID).Return(userB, nil)
	users.On("FindOtherDeviceHolder", mock.Anything, "shared", userA.ID).Return(nil, nil).Once()
	users.On("SetDevice", mock.Anything, userA.ID, "shared", mock.Anything).Return(nil).Once()

	require.NoError(t, service.UpdateUserDevice(ctx, userA.ID.Hex(), "shared"))

	// userA now holds "shared".
	holderA := &model.User{ID: userA.ID, DeviceID: "shared"}
	users.On("FindOtherDeviceHolder", mock.Anything, "shared", userB.ID).Return(holderA, nil)

	decision, err := service.ValidateDeviceAccess(ctx, userB.ID.Hex(), "shared")
	require.NoError(t, err)
	assert.False(t, decision.Valid)
	assert.Equal(t, entity.ReasonDeviceMismatch, decision.Reason)

	err = service.UpdateUserDevice(ctx, userB.ID.Hex(), "shared")
	assert.ErrorIs(t, err, domainErrors.ErrDeviceClaimed)

	users.AssertNumberOfCalls(t, "SetDevice", 1)
}

func TestDeviceService_UpdateUserDevice(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: primitive.NewObjectID()}

	t.Run("empty device rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		service := usecase.NewDeviceService(users, nil, zap.NewNop())

		err := service.UpdateUserDevice(ctx, user.ID.Hex(), "")
		assert.Error(t, err)
		users.AssertNotCalled(t, "SetDevice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost unique index race", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		users.On("FindOtherDeviceHolder", mock.Anything, "tv", user.ID).Return(nil, nil)
		users.On("SetDevice", mock.Anything, user.ID, "tv", mock.Anything).Return(domainErrors.ErrDeviceClaimed)
		service := usecase.NewDeviceService(users, nil, zap.NewNop())

		err := service.UpdateUserDevice(ctx, user.ID.Hex(), "tv")
		assert.ErrorIs(t, err, domainErrors.ErrDeviceClaimed)
	})
}

func TestDeviceService_AuthorizeOrMigrate(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: primitive.NewObjectID(), DeviceID: "old-phone"}

	t.Run("migrates to a free device", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		users.On("FindOtherDeviceHolder", mock.Anything, "new-phone", user.ID).Return(nil, nil)
		users.On("SetDevice", mock.Anything, user.ID, "new-phone", mock.Anything).Return(nil)
		metrics := &recordingMetrics{}
		service := usecase.NewDeviceService(users, metrics, zap.NewNop())

		got, err := service.AuthorizeOrMigrate(ctx, user.ID.Hex(), "new-phone")

		require.NoError(t, err)
		assert.True(t, got.Valid)
		assert.True(t, got.Migrated)
		assert.Equal(t, []string{"migrate:MIGRATED"}, metrics.deviceDecisions)
	})

	t.Run("same device needs no write", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		users.On("FindOtherDeviceHolder", mock.Anything, "old-phone", user.ID).Return(nil, nil)
		service := usecase.NewDeviceService(users, nil, zap.NewNop())

		got, err := service.AuthorizeOrMigrate(ctx, user.ID.Hex(), "old-phone")

		require.NoError(t, err)
		assert.True(t, got.Valid)
		assert.False(t, got.Migrated)
		users.AssertNotCalled(t, "SetDevice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("device owned by someone else", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		users.On("FindOtherDeviceHolder", mock.Anything, "their-phone", user.ID).
			Return(&model.User{ID: primitive.NewObjectID(), DeviceID: "their-phone"}, nil)
		service := usecase.NewDeviceService(users, nil, zap.NewNop())

		got, err := service.AuthorizeOrMigrate(ctx, user.ID.Hex(), "their-phone")

		require.NoError(t, err)
		assert.False(t, got.Valid)
		assert.Equal(t, entity.ReasonDeviceClaimed, got.Reason)
		users.AssertNotCalled(t, "SetDevice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeviceService_CheckDeviceConflict(t *testing.T) {
	ctx := context.Background()
	me := primitive.NewObjectID()

	t.Run("held by another account", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindOtherDeviceHolder", mock.Anything, "tv", me).
			Return(&model.User{ID: primitive.NewObjectID(), DeviceID: "tv"}, nil)
		svc := usecase.NewDeviceService(users, nil, zap.NewNop())

		conflict, err := svc.CheckDeviceConflict(ctx, "tv", me)
		require.NoError(t, err)
		assert.True(t, conflict)
	})

	t.Run("free device", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindOtherDeviceHolder", mock.Anything, "tv", me).Return(nil, nil)
		svc := usecase.NewDeviceService(users, nil, zap.NewNop())

		conflict, err := svc.CheckDeviceConflict(ctx, "tv", me)
		require.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("lookup failure", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("FindOtherDeviceHolder", mock.Anything, "tv", me).Return(nil, errors.New("socket closed"))
		svc := usecase.NewDeviceService(users, nil, zap.NewNop())

		_, err := svc.CheckDeviceConflict(ctx, "tv", me)
		assert.Error(t, err)
	})
}
