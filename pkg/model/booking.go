package model

import (
	"time"
)

const (
	StatusUnconfirmed = "unconfirmed"
	StatusConfirmed   = "confirmed"
	StatusCheckedIn   = "checked-in"
	StatusCheckedOut  = "checked-out"
	StatusCancelled   = "cancelled"
)

const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentBankTransfer = "bank-transfer"
	PaymentOnline       = "online"
)

var (
	BookingStatuses = []string{StatusUnconfirmed, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled}
	PaymentMethods  = []string{PaymentCash, PaymentCard, PaymentBankTransfer, PaymentOnline}
)

// Extras holds the five add-on toggles. Fee fields are computed server-side
// and overwrite whatever the client sent.
type Extras struct {
	HasBreakfast    bool    `json:"hasBreakfast" bson:"has_breakfast"`
	BreakfastPrice  float64 `json:"breakfastPrice" bson:"breakfast_price"`
	HasPets         bool    `json:"hasPets" bson:"has_pets"`
	PetFee          float64 `json:"petFee" bson:"pet_fee"`
	HasParking      bool    `json:"hasParking" bson:"has_parking"`
	ParkingFee      float64 `json:"parkingFee" bson:"parking_fee"`
	HasEarlyCheckIn bool    `json:"hasEarlyCheckIn" bson:"has_early_check_in"`
	EarlyCheckInFee float64 `json:"earlyCheckInFee" bson:"early_check_in_fee"`
	HasLateCheckOut bool    `json:"hasLateCheckOut" bson:"has_late_check_out"`
	LateCheckOutFee float64 `json:"lateCheckOutFee" bson:"late_check_out_fee"`
}

type Booking struct {
	ID              string     `json:"id,omitempty" bson:"_id,omitempty"`
	CabinID         string     `json:"cabinId" bson:"cabin_id"`
	CabinName       string     `json:"cabinName,omitempty" bson:"cabin_name,omitempty"`
	CustomerID      string     `json:"customerId" bson:"customer_id"`
	CheckInDate     time.Time  `json:"checkInDate" bson:"check_in_date"`
	CheckOutDate    time.Time  `json:"checkOutDate" bson:"check_out_date"`
	NumNights       int        `json:"numNights" bson:"num_nights"`
	NumGuests       int        `json:"numGuests" bson:"num_guests"`
	Status          string     `json:"status" bson:"status"`
	CabinPrice      float64    `json:"cabinPrice" bson:"cabin_price"`
	ExtrasPrice     float64    `json:"extrasPrice" bson:"extras_price"`
	TotalPrice      float64    `json:"totalPrice" bson:"total_price"`
	IsPaid          bool       `json:"isPaid" bson:"is_paid"`
	PaymentMethod   string     `json:"paymentMethod,omitempty" bson:"payment_method,omitempty"`
	DepositPaid     bool       `json:"depositPaid" bson:"deposit_paid"`
	DepositAmount   float64    `json:"depositAmount" bson:"deposit_amount"`
	RemainingAmount float64    `json:"remainingAmount" bson:"remaining_amount"`
	Extras          Extras     `json:"extras" bson:"extras"`
	Observations    string     `json:"observations,omitempty" bson:"observations,omitempty"`
	SpecialRequests []string   `json:"specialRequests" bson:"special_requests"`
	CheckInTime     *time.Time `json:"checkInTime,omitempty" bson:"check_in_time,omitempty"`
	CheckOutTime    *time.Time `json:"checkOutTime,omitempty" bson:"check_out_time,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updated_at"`
}

func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
}

// Reconcile restores the payment totals after any change to the price or
// the amount paid so far.
func (b *Booking) Reconcile() {
	b.TotalPrice = b.CabinPrice + b.ExtrasPrice
	b.RemainingAmount = max(0, b.TotalPrice-b.DepositAmount)
	b.IsPaid = b.RemainingAmount == 0
}

// ExtrasSelection is the client-facing half of Extras: the toggles only.
type ExtrasSelection struct {
	HasBreakfast    bool `json:"hasBreakfast"`
	HasPets         bool `json:"hasPets"`
	HasParking      bool `json:"hasParking"`
	HasEarlyCheckIn bool `json:"hasEarlyCheckIn"`
	HasLateCheckOut bool `json:"hasLateCheckOut"`
}

func (e Extras) Selection() ExtrasSelection {
	return ExtrasSelection{
		HasBreakfast:    e.HasBreakfast,
		HasPets:         e.HasPets,
		HasParking:      e.HasParking,
		HasEarlyCheckIn: e.HasEarlyCheckIn,
		HasLateCheckOut: e.HasLateCheckOut,
	}
}

// BookingRequest is the create payload. Pricing and numNights may be sent by
// older clients; they are accepted and ignored.
type BookingRequest struct {
	CabinID         string          `json:"cabinId" validate:"required,mongodb"`
	CustomerID      string          `json:"customerId" validate:"required,max=128"`
	CheckInDate     string          `json:"checkInDate" validate:"required,calendar_date"`
	CheckOutDate    string          `json:"checkOutDate" validate:"required,calendar_date"`
	NumNights       int             `json:"numNights,omitempty"`
	NumGuests       int             `json:"numGuests" validate:"required,min=1,max=50"`
	Status          string          `json:"status,omitempty" validate:"omitempty,booking_status"`
	Extras          ExtrasSelection `json:"extras"`
	Observations    string          `json:"observations,omitempty" validate:"max=2000"`
	SpecialRequests []string        `json:"specialRequests,omitempty" validate:"max=20,dive,max=500"`
	CabinPrice      float64         `json:"cabinPrice,omitempty"`
	ExtrasPrice     float64         `json:"extrasPrice,omitempty"`
	TotalPrice      float64         `json:"totalPrice,omitempty"`
}

type PaymentRecord struct {
	PaymentMethod string  `json:"paymentMethod" validate:"required,payment_method"`
	AmountPaid    float64 `json:"amountPaid" validate:"gt=0"`
	Notes         string  `json:"notes,omitempty" validate:"max=1000"`
}

// BookingUpdate carries a partial or full update. A nil field means "not
// present in the payload"; Profile relies on that distinction.
type BookingUpdate struct {
	ID              string           `json:"id,omitempty" validate:"omitempty,mongodb"`
	CabinID         *string          `json:"cabinId,omitempty" validate:"omitempty,mongodb"`
	CustomerID      *string          `json:"customerId,omitempty" validate:"omitempty,min=1,max=128"`
	CheckInDate     *string          `json:"checkInDate,omitempty" validate:"omitempty,calendar_date"`
	CheckOutDate    *string          `json:"checkOutDate,omitempty" validate:"omitempty,calendar_date"`
	NumGuests       *int             `json:"numGuests,omitempty" validate:"omitempty,min=1,max=50"`
	Extras          *ExtrasSelection `json:"extras,omitempty"`
	Observations    *string          `json:"observations,omitempty" validate:"omitempty,max=2000"`
	SpecialRequests *[]string        `json:"specialRequests,omitempty" validate:"omitempty,max=20,dive,max=500"`
	Status          *string          `json:"status,omitempty" validate:"omitempty,booking_status"`
	RecordPayment   *PaymentRecord   `json:"recordPayment,omitempty"`
}

// ValidationProfile selects which rule set an update is checked against.
type ValidationProfile int

const (
	ProfileFull ValidationProfile = iota
	ProfileStatusOnly
)

func (p ValidationProfile) String() string {
	if p == ProfileStatusOnly {
		return "status-only"
	}
	return "full"
}

// Profile is status-only when the payload carries nothing besides a status
// change and/or a payment record. Any stay field forces full validation.
func (u *BookingUpdate) Profile() ValidationProfile {
	if u.touchesStay() || u.CustomerID != nil || u.Observations != nil || u.SpecialRequests != nil {
		return ProfileFull
	}
	return ProfileStatusOnly
}

// AffectsPricing reports whether the update changes an input of the price
// calculation.
func (u *BookingUpdate) AffectsPricing() bool {
	return u.touchesStay()
}

func (u *BookingUpdate) touchesStay() bool {
	return u.CabinID != nil || u.CheckInDate != nil || u.CheckOutDate != nil || u.NumGuests != nil || u.Extras != nil
}

func (u *BookingUpdate) IsEmpty() bool {
	return u.Profile() == ProfileStatusOnly && u.Status == nil && u.RecordPayment == nil
}

// BookingPatch is the body of PATCH /bookings/:id.
type BookingPatch struct {
	Status        *string        `json:"status,omitempty"`
	RecordPayment *PaymentRecord `json:"recordPayment,omitempty"`
}

func (p BookingPatch) ToUpdate(id string) *BookingUpdate {
	return &BookingUpdate{
		ID:            id,
		Status:        p.Status,
		RecordPayment: p.RecordPayment,
	}
}

type BookingFilter struct {
	Status    string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

func (f BookingFilter) Offset() int64 {
	if f.Page <= 1 {
		return 0
	}
	return int64(f.Page-1) * int64(f.Limit)
}

// BookingDetails is a booking plus best-effort enrichment for display.
type BookingDetails struct {
	*Booking
	Cabin    *Cabin        `json:"cabin,omitempty"`
	Customer *GuestProfile `json:"customer"`
	Guest    *GuestProfile `json:"guest"`
}
