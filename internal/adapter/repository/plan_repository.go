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

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

type planRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewPlanRepository creates a MongoDB-backed plan repository
func NewPlanRepository(db *mongo.Database, logger *zap.Logger) repository.PlanRepository {
	return &planRepository{
		collection: db.Collection(PlansCollection),
		logger:     logger,
	}
}

func (r *planRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Plan, error) {
	var p model.Plan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return &p, nil
}

func (r *planRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Plan, error) {
	plans := make(map[primitive.ObjectID]*model.Plan, len(ids))
	if len(ids) == 0 {
		return plans, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find plans: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var p model.Plan
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode plan: %w", err)
		}
		plans[p.ID] = &p
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plans: %w", err)
	}
	return plans, nil
}

// Upsert matches by ID when set, otherwise by channel and name.
func (r *planRepository) Upsert(ctx context.Context, plan *model.Plan) error {
	filter := bson.M{"_id": plan.ID}
	if plan.ID.IsZero() {
		filter = bson.M{"channel": plan.Channel, "name": plan.Name}
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"channel":       plan.Channel,
			"name":          plan.Name,
			"price":         plan.Price,
			"currency":      plan.Currency,
			"billing_cycle": plan.BillingCycle,
			"custom_days":   plan.CustomDays,
			"for_movies":    plan.ForMovies,
			"for_series":    plan.ForSeries,
			"status":        plan.Status,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert plan", zap.String("name", plan.Name), zap.Error(err))
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		plan.ID = id
	}
	return nil
}
