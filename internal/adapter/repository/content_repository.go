package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

const defaultListLimit = 100

type contentRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewContentRepository creates a MongoDB-backed content repository
func NewContentRepository(db *mongo.Database, logger *zap.Logger) repository.ContentRepository {
	return &contentRepository{
		collection: db.Collection(ContentsCollection),
		logger:     logger,
	}
}

func (r *contentRepository) FindByIdentifier(ctx context.Context, id entity.Identifier) (*model.Content, error) {
	filter, err := identifierFilter(id)
	if err != nil {
		return nil, domainErrors.ErrContentNotFound
	}

	var c model.Content
	if err := r.collection.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to find content: %w", err)
	}
	return &c, nil
}

func (r *contentRepository) ListByChannel(ctx context.Context, channel primitive.ObjectID, limit int64) ([]model.Content, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"channel": channel, "status": 1}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}
	defer cursor.Close(ctx)

	contents := []model.Content{}
	if err := cursor.All(ctx, &contents); err != nil {
		return nil, fmt.Errorf("failed to decode contents: %w", err)
	}
	return contents, nil
}

func (r *contentRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, incrementViewsUpdate(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	if result.MatchedCount == 0 {
		return domainErrors.ErrContentNotFound
	}
	return nil
}

func (r *contentRepository) ResetViews(ctx context.Context, period repository.ViewPeriod) (int64, error) {
	field, err := resetViewsField(period)
	if err != nil {
		return 0, domainErrors.ErrInvalidPeriod
	}

	result, err := r.collection.UpdateMany(ctx,
		bson.M{field: bson.M{"$ne": 0}},
		bson.M{"$set": bson.M{field: 0}})
	if err != nil {
		r.logger.Error("Failed to reset view counters", zap.String("period", string(period)), zap.Error(err))
		return 0, fmt.Errorf("failed to reset views: %w", err)
	}
	return result.ModifiedCount, nil
}
