package model

import "time"

// BookingLock serializes writes that could double-book one cabin. The _id is
// derived from the cabin, so concurrent writers collide on insert; Owner
// guards release.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	CabinID   string    `bson:"cabin_id" json:"cabinId"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

func (l *BookingLock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
