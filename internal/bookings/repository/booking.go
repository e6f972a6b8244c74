package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "lodge/internal/bookings/errors"
	"lodge/pkg/config"
	mongotx "lodge/pkg/db/mongo"
	"lodge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	Update(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	FindOverlapping(ctx context.Context, cabinID string, stay model.DateRange, excludeID string) ([]*model.Booking, error)

	CountCheckedInOn(ctx context.Context, day time.Time) (int64, error)
	FindArrivals(ctx context.Context, day time.Time) ([]*model.Booking, error)
	FindDepartures(ctx context.Context, day time.Time) ([]*model.Booking, error)
	CountByStatus(ctx context.Context) ([]*model.StatusCount, error)
	Revenue(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error)
	CabinPopularity(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error)
	ExtrasAdoption(ctx context.Context) (*model.ExtrasAdoption, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return objectID, nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(buildSort(filter)).
		SetSkip(filter.Offset())
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	return r.find(ctx, buildListFilter(filter), opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

// Update replaces every mutable field of the stored booking with the values
// on booking. createdAt and the id are never rewritten.
func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(booking.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if !now.After(booking.UpdatedAt) {
		// stored dates have millisecond precision; each write must move the
		// version forward
		now = booking.UpdatedAt.Add(time.Millisecond)
	}

	set := bson.M{
		"cabin_id":         booking.CabinID,
		"cabin_name":       booking.CabinName,
		"customer_id":      booking.CustomerID,
		"check_in_date":    booking.CheckInDate,
		"check_out_date":   booking.CheckOutDate,
		"num_nights":       booking.NumNights,
		"num_guests":       booking.NumGuests,
		"status":           booking.Status,
		"cabin_price":      booking.CabinPrice,
		"extras_price":     booking.ExtrasPrice,
		"total_price":      booking.TotalPrice,
		"is_paid":          booking.IsPaid,
		"payment_method":   booking.PaymentMethod,
		"deposit_paid":     booking.DepositPaid,
		"deposit_amount":   booking.DepositAmount,
		"remaining_amount": booking.RemainingAmount,
		"extras":           booking.Extras,
		"observations":     booking.Observations,
		"special_requests": booking.SpecialRequests,
		"updated_at":       now,
	}
	if booking.CheckInTime != nil {
		set["check_in_time"] = *booking.CheckInTime
	}
	if booking.CheckOutTime != nil {
		set["check_out_time"] = *booking.CheckOutTime
	}

	result, err := r.collection.UpdateOne(ctx, buildUpdateFilter(objectID, booking.UpdatedAt), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		if exists > 0 {
			return bookingserrors.ErrStaleUpdate
		}
		return bookingserrors.ErrNotFound
	}

	booking.UpdatedAt = now
	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := parseID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, cabinID string, stay model.DateRange, excludeID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var exclude *primitive.ObjectID
	if excludeID != "" {
		objectID, err := parseID(excludeID)
		if err != nil {
			return nil, err
		}
		exclude = &objectID
	}

	opts := options.Find().SetSort(bson.D{{Key: "check_in_date", Value: 1}})
	return r.find(ctx, buildOverlapFilter(cabinID, stay, exclude), opts)
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
