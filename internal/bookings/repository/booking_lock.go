package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "lodge/internal/bookings/errors"
	"lodge/pkg/config"
	mongotx "lodge/pkg/db/mongo"
	"lodge/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository hands out per-cabin advisory locks. A lock is a
// document whose _id is derived from the cabin, so a second writer for the
// same cabin fails on the primary key.
type BookingLockRepository interface {
	Acquire(ctx context.Context, cabinID string, ttl time.Duration) (*model.BookingLock, error)
	Release(ctx context.Context, lock *model.BookingLock) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	now        func() time.Time
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func LockID(cabinID string) string {
	return "cabin:" + cabinID
}

// Acquire returns ErrLockHeld while another request holds an unexpired lock
// on the cabin. An expired lock the TTL monitor has not yet removed is taken
// over.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, cabinID string, ttl time.Duration) (*model.BookingLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := r.now()
	lock := &model.BookingLock{
		ID:        LockID(cabinID),
		CabinID:   cabinID,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return lock, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return nil, fmt.Errorf("failed to clear expired booking lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, bookingserrors.ErrLockHeld
	}

	if _, err = r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	return lock, nil
}

// Release deletes the lock only if it is still owned by the caller, so a
// request that outlived its TTL cannot free someone else's lock.
func (r *mongoBookingLockRepository) Release(ctx context.Context, lock *model.BookingLock) error {
	if lock == nil {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
