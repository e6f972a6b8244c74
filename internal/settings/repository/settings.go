package repository

import (
	"context"
	"errors"
	"fmt"

	"lodge/pkg/config"
	mongotx "lodge/pkg/db/mongo"
	"lodge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Settings"

type SettingsRepository interface {
	// Get returns the active policy, or nil when none has been configured.
	Get(ctx context.Context) (*model.Settings, error)
}

type mongoSettingsRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSettingsRepository(cfg *config.Config) SettingsRepository {
	return &mongoSettingsRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

// Get reads the oldest settings document; the collection is expected to hold
// exactly one.
func (r *mongoSettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})

	var settings model.Settings
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&settings); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return &settings, nil
}
