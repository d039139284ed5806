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

type entitlementRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewEntitlementRepository creates a MongoDB-backed entitlement repository
func NewEntitlementRepository(db *mongo.Database, logger *zap.Logger) repository.EntitlementRepository {
	return &entitlementRepository{
		collection: db.Collection(EntitlementsCollection),
		logger:     logger,
	}
}

func (r *entitlementRepository) Create(ctx context.Context, e *model.Entitlement) error {
	if e.Payments == nil {
		e.Payments = []model.PaymentEvent{}
	}
	result, err := r.collection.InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("entitlement for order %s already exists: %w", e.OrderID, err)
		}
		r.logger.Error("Failed to insert entitlement", zap.String("order_id", e.OrderID), zap.Error(err))
		return fmt.Errorf("failed to insert entitlement: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		e.ID = id
	}
	return nil
}

func (r *entitlementRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Entitlement, error) {
	return r.findOne(ctx, bson.M{"_id": id}, domainErrors.ErrEntitlementNotFound)
}

func (r *entitlementRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Entitlement, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID}, domainErrors.ErrOrderNotFound)
}

func (r *entitlementRepository) findOne(ctx context.Context, filter bson.M, notFound error) (*model.Entitlement, error) {
	var e model.Entitlement
	if err := r.collection.FindOne(ctx, filter).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to find entitlement: %w", err)
	}
	return &e, nil
}

func (r *entitlementRepository) FindLive(ctx context.Context, q repository.LiveQuery) ([]model.Entitlement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "to", Value: -1}}).SetLimit(50)

	cursor, err := r.collection.Find(ctx, liveFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query live entitlements: %w", err)
	}
	defer cursor.Close(ctx)

	var found []model.Entitlement
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode entitlements: %w", err)
	}
	return found, nil
}

func (r *entitlementRepository) ClaimForSettlement(ctx context.Context, orderID, token string, now, staleBefore int64) (*model.Entitlement, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e model.Entitlement
	err := r.collection.FindOneAndUpdate(ctx, claimFilter(orderID, staleBefore), claimUpdate(token, now), opts).Decode(&e)
	if err == nil {
		return &e, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to claim order: %w", err)
	}

	n, cerr := r.collection.CountDocuments(ctx, bson.M{"order_id": orderID})
	if cerr != nil {
		return nil, fmt.Errorf("failed to claim order: %w", cerr)
	}
	if n == 0 {
		return nil, domainErrors.ErrOrderNotFound
	}
	return nil, domainErrors.ErrSettlementInProgress
}

func (r *entitlementRepository) FinalizeSettlement(ctx context.Context, id primitive.ObjectID, token string, update repository.SettlementUpdate) (*model.Entitlement, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e model.Entitlement
	err := r.collection.FindOneAndUpdate(ctx, claimHolderFilter(id, token), finalizeUpdate(update, time.Now().UTC()), opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Settlement claim lost before finalize",
				zap.String("entitlement_id", id.Hex()),
				zap.String("state", string(update.State)))
			return nil, domainErrors.ErrSettlementInProgress
		}
		return nil, fmt.Errorf("failed to finalize settlement: %w", err)
	}
	return &e, nil
}

func (r *entitlementRepository) MarkFailedIfCreated(ctx context.Context, orderID string, event model.PaymentEvent, reason string) (*model.Entitlement, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var e model.Entitlement
	err := r.collection.FindOneAndUpdate(ctx, failIfCreatedFilter(orderID), failUpdate(event, reason, time.Now().UTC()), opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to mark order failed: %w", err)
	}
	return &e, nil
}

func (r *entitlementRepository) MarkRefunded(ctx context.Context, id primitive.ObjectID, refund model.RefundInfo, event model.PaymentEvent) (*model.Entitlement, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id, "settlement_state": model.SettlementCaptured}

	var e model.Entitlement
	err := r.collection.FindOneAndUpdate(ctx, filter, refundUpdate(refund, event, time.Now().UTC()), opts).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrNotRefundable
		}
		return nil, fmt.Errorf("failed to mark entitlement refunded: %w", err)
	}
	return &e, nil
}

func (r *entitlementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete entitlement: %w", err)
	}
	if result.DeletedCount == 0 {
		return domainErrors.ErrEntitlementNotFound
	}
	return nil
}
