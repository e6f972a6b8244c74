package repository

import (
	"context"
	"fmt"
	"time"

	mongotx "lodge/pkg/db/mongo"
	"lodge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := model.StartOfDay(day)
	return start, start.AddDate(0, 0, 1)
}

// CountCheckedInOn counts bookings currently checked in whose guests arrived
// on day.
func (r *mongoBookingRepository) CountCheckedInOn(ctx context.Context, day time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	start, end := dayBounds(day)
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"status":        model.StatusCheckedIn,
		"check_in_time": bson.M{"$gte": start, "$lt": end},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count checked-in bookings: %w", err)
	}
	return count, nil
}

// FindArrivals lists bookings due to check in on day that have not yet done so.
func (r *mongoBookingRepository) FindArrivals(ctx context.Context, day time.Time) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	start, end := dayBounds(day)
	filter := bson.M{
		"status":        bson.M{"$in": bson.A{model.StatusUnconfirmed, model.StatusConfirmed}},
		"check_in_date": bson.M{"$gte": start, "$lt": end},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "cabin_name", Value: 1}}))
}

// FindDepartures lists checked-in bookings due to leave on day.
func (r *mongoBookingRepository) FindDepartures(ctx context.Context, day time.Time) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	start, end := dayBounds(day)
	filter := bson.M{
		"status":         model.StatusCheckedIn,
		"check_out_date": bson.M{"$gte": start, "$lt": end},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "cabin_name", Value: 1}}))
}

func (r *mongoBookingRepository) CountByStatus(ctx context.Context) ([]*model.StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	counts := make([]*model.StatusCount, 0)
	if err := r.aggregate(ctx, pipeline, &counts); err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	return counts, nil
}

// Revenue sums non-cancelled bookings checking in within [from, to).
func (r *mongoBookingRepository) Revenue(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: liveInRange(from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"bookings":       bson.M{"$sum": 1},
			"total_revenue":  bson.M{"$sum": "$total_price"},
			"cabin_revenue":  bson.M{"$sum": "$cabin_price"},
			"extras_revenue": bson.M{"$sum": "$extras_price"},
			"collected":      bson.M{"$sum": bson.M{"$min": bson.A{"$deposit_amount", "$total_price"}}},
			"outstanding":    bson.M{"$sum": "$remaining_amount"},
		}}},
	}

	rows := make([]*model.RevenueSummary, 0, 1)
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}

	summary := &model.RevenueSummary{}
	if len(rows) > 0 {
		summary = rows[0]
	}
	summary.From, summary.To = from, to
	return summary, nil
}

func (r *mongoBookingRepository) CabinPopularity(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: liveInRange(from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$cabin_id",
			"cabin_name": bson.M{"$last": "$cabin_name"},
			"bookings":   bson.M{"$sum": 1},
			"nights":     bson.M{"$sum": "$num_nights"},
			"revenue":    bson.M{"$sum": "$total_price"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "bookings", Value: -1}, {Key: "revenue", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	rows := make([]*model.CabinPopularity, 0)
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate cabin popularity: %w", err)
	}
	return rows, nil
}

// ExtrasAdoption reports, for each extra, the share of non-cancelled bookings
// that selected it, as a fraction between 0 and 1.
func (r *mongoBookingRepository) ExtrasAdoption(ctx context.Context) (*model.ExtrasAdoption, error) {
	rate := func(field string) bson.M {
		return bson.M{"$avg": bson.M{"$cond": bson.A{"$extras." + field, 1, 0}}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": model.StatusCancelled}}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"bookings":       bson.M{"$sum": 1},
			"breakfast":      rate("has_breakfast"),
			"pets":           rate("has_pets"),
			"parking":        rate("has_parking"),
			"early_check_in": rate("has_early_check_in"),
			"late_check_out": rate("has_late_check_out"),
		}}},
	}

	rows := make([]*model.ExtrasAdoption, 0, 1)
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("failed to aggregate extras adoption: %w", err)
	}
	if len(rows) == 0 {
		return &model.ExtrasAdoption{}, nil
	}
	return rows[0], nil
}

func (r *mongoBookingRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}
