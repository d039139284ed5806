package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/ott-entitlement/internal/adapter/repository"
	"github.com/wekeepgrowing/ott-entitlement/internal/config"
)

// NewMongoConnection connects and pings the document store.
func NewMongoConnection(ctx context.Context, cfg *config.MongoConfig, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetTimeout(cfg.QueryTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.Info("Mongo connection established", zap.String("database", cfg.Database))
	return client, client.Database(cfg.Database), nil
}

// Indexes lists the indexes every collection needs. Partial filters keep legacy documents
// without the field out of the unique constraints.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		repository.EntitlementsCollection: {
			{
				Keys: bson.D{{Key: "order_id", Value: 1}},
				Options: options.Index().SetName("uniq_order_id").SetUnique(true).
					SetPartialFilterExpression(bson.M{"order_id": bson.M{"$type": "string"}}),
			},
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "channel", Value: 1}, {Key: "status", Value: 1}, {Key: "to", Value: -1}},
				Options: options.Index().SetName("live_lookup"),
			},
			{
				Keys:    bson.D{{Key: "settlement_state", Value: 1}, {Key: "claimed_at", Value: 1}},
				Options: options.Index().SetName("settlement_claims"),
			},
		},
		repository.UsersCollection: {
			{
				Keys: bson.D{{Key: "device_id", Value: 1}},
				Options: options.Index().SetName("uniq_device_id").SetUnique(true).
					SetPartialFilterExpression(bson.M{"device_id": bson.M{"$gt": ""}}),
			},
		},
		repository.ContentsCollection: {
			{
				Keys: bson.D{{Key: "legacy_id", Value: 1}},
				Options: options.Index().SetName("uniq_legacy_id").SetUnique(true).
					SetPartialFilterExpression(bson.M{"legacy_id": bson.M{"$exists": true}}),
			},
			{
				Keys:    bson.D{{Key: "channel", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("channel_listing"),
			},
		},
		repository.CountriesCollection: {
			{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetName("uniq_code").SetUnique(true),
			},
		},
		repository.PlansCollection: {
			{
				Keys:    bson.D{{Key: "channel", Value: 1}, {Key: "name", Value: 1}},
				Options: options.Index().SetName("channel_plans"),
			},
		},
	}
}

// EnsureIndexes creates missing indexes. Existing ones with the same name are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	for collection, models := range Indexes() {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			log.Error("Failed to create indexes", zap.String("collection", collection), zap.Error(err))
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		log.Info("Indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}

func CloseMongo(client *mongo.Client, log *zap.Logger) error {
	if err := client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("failed to disconnect mongo: %w", err)
	}
	log.Info("Mongo connection closed")
	return nil
}
