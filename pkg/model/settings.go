package model

// Settings is the single active policy document. A nil *Settings means no
// policy has been configured.
type Settings struct {
	ID                  string  `json:"id,omitempty" bson:"_id,omitempty"`
	MinBookingLength    int     `json:"minBookingLength" bson:"min_booking_length"`
	MaxBookingLength    int     `json:"maxBookingLength" bson:"max_booking_length"`
	MaxGuestsPerBooking int     `json:"maxGuestsPerBooking" bson:"max_guests_per_booking"`
	BreakfastPrice      float64 `json:"breakfastPrice" bson:"breakfast_price"`
	PetFee              float64 `json:"petFee" bson:"pet_fee"`
	ParkingFee          float64 `json:"parkingFee" bson:"parking_fee"`
	ParkingIncluded     bool    `json:"parkingIncluded" bson:"parking_included"`
	EarlyCheckInFee     float64 `json:"earlyCheckInFee" bson:"early_check_in_fee"`
	LateCheckOutFee     float64 `json:"lateCheckOutFee" bson:"late_check_out_fee"`
	RequireDeposit      bool    `json:"requireDeposit" bson:"require_deposit"`
	DepositPercentage   float64 `json:"depositPercentage" bson:"deposit_percentage"`
}
