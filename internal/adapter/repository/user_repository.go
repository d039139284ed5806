package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

type userRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewUserRepository creates a MongoDB-backed user repository
func NewUserRepository(db *mongo.Database, logger *zap.Logger) repository.UserRepository {
	return &userRepository{
		collection: db.Collection(UsersCollection),
		logger:     logger,
	}
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) FindOtherDeviceHolder(ctx context.Context, deviceID string, exclude primitive.ObjectID) (*model.User, error) {
	filter := bson.M{
		"device_id": deviceID,
		"_id":       bson.M{"$ne": exclude},
	}

	var u model.User
	if err := r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up device holder: %w", err)
	}
	return &u, nil
}

func (r *userRepository) SetDevice(ctx context.Context, userID primitive.ObjectID, deviceID string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"device_id":  deviceID,
			"last_login": at,
			"updated_at": at,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainErrors.ErrDeviceClaimed
		}
		r.logger.Error("Failed to set user device", zap.String("user_id", userID.Hex()), zap.Error(err))
		return fmt.Errorf("failed to set user device: %w", err)
	}
	if result.MatchedCount == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}
