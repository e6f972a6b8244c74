package model

import "time"

type StatusCount struct {
	Status string `json:"status" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}

type RevenueSummary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Bookings      int64     `json:"bookings" bson:"bookings"`
	TotalRevenue  float64   `json:"totalRevenue" bson:"total_revenue"`
	CabinRevenue  float64   `json:"cabinRevenue" bson:"cabin_revenue"`
	ExtrasRevenue float64   `json:"extrasRevenue" bson:"extras_revenue"`
	Collected     float64   `json:"collected" bson:"collected"`
	Outstanding   float64   `json:"outstanding" bson:"outstanding"`
}

type CabinPopularity struct {
	CabinID   string  `json:"cabinId" bson:"_id"`
	CabinName string  `json:"cabinName" bson:"cabin_name"`
	Bookings  int64   `json:"bookings" bson:"bookings"`
	Nights    int64   `json:"nights" bson:"nights"`
	Revenue   float64 `json:"revenue" bson:"revenue"`
}

type ExtrasAdoption struct {
	Bookings     int64   `json:"bookings" bson:"bookings"`
	Breakfast    float64 `json:"breakfast" bson:"breakfast"`
	Pets         float64 `json:"pets" bson:"pets"`
	Parking      float64 `json:"parking" bson:"parking"`
	EarlyCheckIn float64 `json:"earlyCheckIn" bson:"early_check_in"`
	LateCheckOut float64 `json:"lateCheckOut" bson:"late_check_out"`
}

type TodayActivity struct {
	Date       time.Time  `json:"date"`
	CheckedIn  int64      `json:"checkedIn"`
	Arrivals   []*Booking `json:"arrivals"`
	Departures []*Booking `json:"departures"`
}
