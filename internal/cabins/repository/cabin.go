package repository

import (
	"context"
	"errors"
	"fmt"

	"lodge/pkg/config"
	mongotx "lodge/pkg/db/mongo"
	"lodge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Cabins"

// CabinRepository is a read-only view of the cabin directory. Cabins are
// managed elsewhere.
type CabinRepository interface {
	FindByID(ctx context.Context, id string) (*model.Cabin, error)
}

type mongoCabinRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCabinRepository(cfg *config.Config) CabinRepository {
	return &mongoCabinRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoCabinRepository) FindByID(ctx context.Context, id string) (*model.Cabin, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var cabin model.Cabin
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&cabin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cabin: %w", err)
	}

	return &cabin, nil
}
