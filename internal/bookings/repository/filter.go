package repository

import (
	"regexp"
	"strings"
	"time"

	"lodge/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultSortField = "created_at"

// sortFields maps the public sortBy values onto stored field names. Anything
// else falls back to creation time.
var sortFields = map[string]string{
	"checkInDate":  "check_in_date",
	"checkOutDate": "check_out_date",
	"createdAt":    "created_at",
	"totalPrice":   "total_price",
	"numGuests":    "num_guests",
	"status":       "status",
}

func IsSortField(sortBy string) bool {
	_, ok := sortFields[sortBy]
	return ok
}

// buildUpdateFilter matches the booking only while it still carries the
// updated_at it was read with, so concurrent read-modify-write cycles cannot
// silently overwrite each other. A zero read timestamp also matches documents
// stored without updated_at.
func buildUpdateFilter(id primitive.ObjectID, readAt time.Time) bson.M {
	if readAt.IsZero() {
		return bson.M{"_id": id, "updated_at": bson.M{"$in": bson.A{nil, readAt}}}
	}
	return bson.M{"_id": id, "updated_at": readAt}
}

func buildListFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}

	if status := strings.TrimSpace(f.Status); status != "" && status != "all" {
		filter["status"] = status
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"cabin_name": pattern},
			bson.M{"customer_id": pattern},
			bson.M{"observations": pattern},
		}
	}

	return filter
}

// buildSort orders by the requested field and breaks ties on _id so paging is
// stable.
func buildSort(f model.BookingFilter) bson.D {
	field, ok := sortFields[f.SortBy]
	if !ok {
		field = defaultSortField
	}

	direction := -1
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = 1
	}

	return bson.D{
		{Key: field, Value: direction},
		{Key: "_id", Value: direction},
	}
}

// buildOverlapFilter matches live bookings of the cabin whose stay intersects
// [checkIn, checkOut). excludeID, when set, removes the booking being updated.
func buildOverlapFilter(cabinID string, stay model.DateRange, excludeID *primitive.ObjectID) bson.M {
	filter := bson.M{
		"cabin_id":       cabinID,
		"status":         bson.M{"$ne": model.StatusCancelled},
		"check_in_date":  bson.M{"$lt": stay.CheckOut},
		"check_out_date": bson.M{"$gt": stay.CheckIn},
	}

	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	return filter
}

func liveInRange(from, to time.Time) bson.M {
	return bson.M{
		"status":        bson.M{"$ne": model.StatusCancelled},
		"check_in_date": bson.M{"$gte": from, "$lt": to},
	}
}
