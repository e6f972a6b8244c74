package repository

import (
	"testing"
	"time"

	"lodge/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildListFilter(t *testing.T) {
	t.Run("empty filter matches everything", func(t *testing.T) {
		assert.Equal(t, bson.M{}, buildListFilter(model.BookingFilter{}))
	})

	t.Run("status all is ignored", func(t *testing.T) {
		assert.Equal(t, bson.M{}, buildListFilter(model.BookingFilter{Status: "all"}))
	})

	t.Run("status", func(t *testing.T) {
		f := buildListFilter(model.BookingFilter{Status: model.StatusConfirmed})
		assert.Equal(t, model.StatusConfirmed, f["status"])
	})

	t.Run("search is escaped and case-insensitive", func(t *testing.T) {
		f := buildListFilter(model.BookingFilter{Search: "  a+b  "})
		or, ok := f["$or"].(bson.A)
		require.True(t, ok)
		require.Len(t, or, 3)

		first := or[0].(bson.M)["cabin_name"].(primitive.Regex)
		assert.Equal(t, `a\+b`, first.Pattern)
		assert.Equal(t, "i", first.Options)
	})
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		name   string
		filter model.BookingFilter
		want   bson.D
	}{
		{
			name:   "default is newest first",
			filter: model.BookingFilter{},
			want:   bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			name:   "known field ascending",
			filter: model.BookingFilter{SortBy: "checkInDate", SortOrder: "asc"},
			want:   bson.D{{Key: "check_in_date", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name:   "unknown field falls back",
			filter: model.BookingFilter{SortBy: "password", SortOrder: "ASC"},
			want:   bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSort(tt.filter))
		})
	}
}

func TestBuildOverlapFilter(t *testing.T) {
	stay := model.DateRange{
		CheckIn:  time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2027, 6, 5, 0, 0, 0, 0, time.UTC),
	}

	f := buildOverlapFilter("cabin-a", stay, nil)
	assert.Equal(t, "cabin-a", f["cabin_id"])
	assert.Equal(t, bson.M{"$ne": model.StatusCancelled}, f["status"])
	assert.Equal(t, bson.M{"$lt": stay.CheckOut}, f["check_in_date"])
	assert.Equal(t, bson.M{"$gt": stay.CheckIn}, f["check_out_date"])
	assert.NotContains(t, f, "_id")

	self := primitive.NewObjectID()
	f = buildOverlapFilter("cabin-a", stay, &self)
	assert.Equal(t, bson.M{"$ne": self}, f["_id"])
}

func TestBuildUpdateFilter(t *testing.T) {
	id := primitive.NewObjectID()
	readAt := time.Date(2027, 6, 1, 9, 30, 0, 123000000, time.UTC)

	assert.Equal(t, bson.M{"_id": id, "updated_at": readAt}, buildUpdateFilter(id, readAt))
	assert.Equal(t, bson.M{"_id": id, "updated_at": bson.M{"$in": bson.A{nil, time.Time{}}}}, buildUpdateFilter(id, time.Time{}),
		"documents without updated_at are still updatable")
}
