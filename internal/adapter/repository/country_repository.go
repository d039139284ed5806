package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	domainErrors "github.com/wekeepgrowing/ott-entitlement/internal/domain/errors"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/model"
	"github.com/wekeepgrowing/ott-entitlement/internal/domain/repository"
)

type countryRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewCountryRepository creates a MongoDB-backed country repository
func NewCountryRepository(db *mongo.Database, logger *zap.Logger) repository.CountryRepository {
	return &countryRepository{
		collection: db.Collection(CountriesCollection),
		logger:     logger,
	}
}

func (r *countryRepository) FindByCode(ctx context.Context, code string) (*model.Country, error) {
	var c model.Country
	if err := r.collection.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainErrors.ErrCountryNotFound
		}
		return nil, fmt.Errorf("failed to find country: %w", err)
	}
	return &c, nil
}

func (r *countryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.Country, error) {
	countries := make(map[primitive.ObjectID]*model.Country, len(ids))
	if len(ids) == 0 {
		return countries, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find countries: %w", err)
	}
	defer cursor.Close(ctx)

	var found []model.Country
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	for i := range found {
		countries[found[i].ID] = &found[i]
	}
	return countries, nil
}

func (r *countryRepository) Upsert(ctx context.Context, country *model.Country) error {
	code := strings.ToUpper(country.Code)
	update := bson.M{
		"$set": bson.M{
			"code":     code,
			"name":     country.Name,
			"currency": strings.ToUpper(country.Currency),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"code": code}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert country", zap.String("code", code), zap.Error(err))
		return fmt.Errorf("failed to upsert country: %w", err)
	}
	if id, ok := result.UpsertedID.(primitive.ObjectID); ok {
		country.ID = id
	}
	return nil
}
