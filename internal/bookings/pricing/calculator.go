// Package pricing turns a cabin rate, the active policy and a stay into a
// price breakdown. It performs no I/O.
package pricing

import (
	"math"

	"lodge/pkg/model"
)

type Input struct {
	Cabin     *model.Cabin
	Policy    *model.Settings
	NumNights int
	NumGuests int
	Extras    model.ExtrasSelection
}

type Quote struct {
	CabinPrice    float64      `json:"cabinPrice"`
	ExtrasPrice   float64      `json:"extrasPrice"`
	TotalPrice    float64      `json:"totalPrice"`
	DepositAmount float64      `json:"depositAmount"`
	Extras        model.Extras `json:"extras"`
}

// Calculate prices a stay. A nil policy charges nothing for extras and
// requires no deposit.
func Calculate(in Input) Quote {
	nights := float64(in.NumNights)
	guests := float64(in.NumGuests)

	q := Quote{
		CabinPrice: in.Cabin.EffectiveRate() * nights,
		Extras: model.Extras{
			HasBreakfast:    in.Extras.HasBreakfast,
			HasPets:         in.Extras.HasPets,
			HasParking:      in.Extras.HasParking,
			HasEarlyCheckIn: in.Extras.HasEarlyCheckIn,
			HasLateCheckOut: in.Extras.HasLateCheckOut,
		},
	}

	if p := in.Policy; p != nil {
		if in.Extras.HasBreakfast {
			q.Extras.BreakfastPrice = p.BreakfastPrice * guests * nights
		}
		if in.Extras.HasPets {
			q.Extras.PetFee = p.PetFee * nights
		}
		if in.Extras.HasParking && !p.ParkingIncluded {
			q.Extras.ParkingFee = p.ParkingFee * nights
		}
		// flat fees
		if in.Extras.HasEarlyCheckIn {
			q.Extras.EarlyCheckInFee = p.EarlyCheckInFee
		}
		if in.Extras.HasLateCheckOut {
			q.Extras.LateCheckOutFee = p.LateCheckOutFee
		}
	}

	q.ExtrasPrice = q.Extras.BreakfastPrice + q.Extras.PetFee + q.Extras.ParkingFee +
		q.Extras.EarlyCheckInFee + q.Extras.LateCheckOutFee
	q.TotalPrice = q.CabinPrice + q.ExtrasPrice

	if in.Policy != nil && in.Policy.RequireDeposit {
		q.DepositAmount = RoundHalfUp(q.TotalPrice * in.Policy.DepositPercentage / 100)
	}
	return q
}

// Apply writes the breakdown onto b. The deposit is only taken when nothing
// has been paid yet; recorded payments are never rewritten by a re-price.
func (q Quote) Apply(b *model.Booking) {
	b.CabinPrice = q.CabinPrice
	b.ExtrasPrice = q.ExtrasPrice
	b.Extras = q.Extras
	if !b.DepositPaid {
		b.DepositAmount = q.DepositAmount
	}
	b.Reconcile()
}

// RoundHalfUp rounds to the nearest whole currency unit, halves going up.
// Amounts are never negative, so rounding half away from zero is the same.
func RoundHalfUp(v float64) float64 {
	return math.Round(v)
}
