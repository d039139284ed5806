package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
	apperrors "github.com/wekeepgrowing/ott-entitlement/pkg/errors"
	"github.com/wekeepgrowing/ott-entitlement/pkg/logger"
)

// DeviceService enforces one live device per account.
//
// Two paths exist on purpose. ValidateDeviceAccess is the strict guard used at login and on
// plain content reads: any mismatch is a denial. AuthorizeOrMigrate is used by playback, where a
// user on a new device takes the session over and the previous device is dropped, unless the
// new device already belongs to somebody else.
type DeviceService struct {
	users   repository.UserRepository
	metrics Metrics
	logger  *zap.Logger
}

func NewDeviceService(users repository.UserRepository, metrics Metrics, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		users:   users,
		metrics: metricsOrNop(metrics),
		logger:  logger,
	}
}

// ValidateDeviceAccess checks that deviceID is the registered device of userID and of nobody else.
func (s *DeviceService) ValidateDeviceAccess(ctx context.Context, userID, deviceID string) (entity.DeviceDecision, error) {
	decision, err := s.validate(ctx, userID, deviceID)
	if err == nil {
		s.observe(ctx, "strict", userID, decision)
	}
	return decision, err
}

func (s *DeviceService) validate(ctx context.Context, userID, deviceID string) (entity.DeviceDecision, error) {
	deviceID = strings.TrimSpace(deviceID)
	if userID == "" || deviceID == "" {
		return denied(entity.ReasonMissingCredentials), nil
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return denied(entity.ReasonUserNotFound), nil
		}
		return entity.DeviceDecision{}, err
	}

	if user.DeviceID == "" {
		return denied(entity.ReasonNoDeviceRegistered), nil
	}
	if user.DeviceID != deviceID {
		return denied(entity.ReasonDeviceMismatch), nil
	}

	holder, err := s.users.FindOtherDeviceHolder(ctx, deviceID, user.ID)
	if err != nil {
		return entity.DeviceDecision{}, apperrors.Wrap(err, "failed to check device occupancy")
	}
	if holder != nil {
		return denied(entity.ReasonConcurrentSession), nil
	}

	return entity.DeviceDecision{Valid: true}, nil
}

// UpdateUserDevice registers newDeviceID as the user's live device. It never takes a device
// away from another account.
func (s *DeviceService) UpdateUserDevice(ctx context.Context, userID, newDeviceID string) error {
	newDeviceID = strings.TrimSpace(newDeviceID)
	if newDeviceID == "" {
		return apperrors.NewAppError(apperrors.ErrInvalidArgument, "device_id is required", nil)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	claimed, err := s.CheckDeviceConflict(ctx, newDeviceID, user.ID)
	if err != nil {
		return err
	}
	if claimed {
		logger.For(ctx, s.logger).Warn("Device already registered to another user",
			zap.String("user_id", userID))
		return domainErrors.ErrDeviceClaimed
	}

	if err := s.users.SetDevice(ctx, user.ID, newDeviceID, time.Now()); err != nil {
		return err
	}

	logger.For(ctx, s.logger).Info("User device updated", zap.String("user_id", userID))
	return nil
}

// CheckDeviceConflict reports whether deviceID is the live device of a user other than exclude.
func (s *DeviceService) CheckDeviceConflict(ctx context.Context, deviceID string, exclude primitive.ObjectID) (bool, error) {
	holder, err := s.users.FindOtherDeviceHolder(ctx, deviceID, exclude)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to check device occupancy")
	}
	return holder != nil, nil
}

// AuthorizeOrMigrate accepts the registered device, or moves the session to a new device when
// no other account holds it.
func (s *DeviceService) AuthorizeOrMigrate(ctx context.Context, userID, deviceID string) (entity.DeviceDecision, error) {
	decision, err := s.authorizeOrMigrate(ctx, userID, deviceID)
	if err == nil {
		s.observe(ctx, "migrate", userID, decision)
	}
	return decision, err
}

func (s *DeviceService) authorizeOrMigrate(ctx context.Context, userID, deviceID string) (entity.DeviceDecision, error) {
	deviceID = strings.TrimSpace(deviceID)
	if userID == "" || deviceID == "" {
		return denied(entity.ReasonMissingCredentials), nil
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return denied(entity.ReasonUserNotFound), nil
		}
		return entity.DeviceDecision{}, err
	}

	claimed, err := s.CheckDeviceConflict(ctx, deviceID, user.ID)
	if err != nil {
		return entity.DeviceDecision{}, err
	}
	if claimed {
		return denied(entity.ReasonDeviceClaimed), nil
	}

	if user.DeviceID == deviceID {
		return entity.DeviceDecision{Valid: true}, nil
	}

	if err := s.users.SetDevice(ctx, user.ID, deviceID, time.Now()); err != nil {
		if errors.Is(err, domainErrors.ErrDeviceClaimed) {
			return denied(entity.ReasonDeviceClaimed), nil
		}
		return entity.DeviceDecision{}, err
	}

	logger.For(ctx, s.logger).Info("Session migrated to new device, previous device blocked",
		zap.String("user_id", userID),
		zap.Bool("had_previous_device", user.DeviceID != ""))
	return entity.DeviceDecision{Valid: true, Migrated: true}, nil
}

func (s *DeviceService) findUser(ctx context.Context, userID string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domainErrors.ErrUserNotFound
	}
	return s.users.FindByID(ctx, oid)
}

func (s *DeviceService) observe(ctx context.Context, path, userID string, d entity.DeviceDecision) {
	reason := d.Reason
	if d.Valid {
		reason = "OK"
		if d.Migrated {
			reason = "MIGRATED"
		}
	} else {
		logger.For(ctx, s.logger).Info("Device access denied",
			zap.String("path", path),
			zap.String("user_id", userID),
			zap.String("reason", d.Reason))
	}
	s.metrics.ObserveDeviceDecision(path, reason)
}

func denied(reason string) entity.DeviceDecision {
	return entity.DeviceDecision{Valid: false, Reason: reason}
}
