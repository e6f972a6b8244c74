package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "lodge/internal/bookings/errors"
	"lodge/internal/bookings/events"
	"lodge/internal/bookings/lifecycle"
	"lodge/internal/bookings/validator"
	cabinsrepo "lodge/internal/cabins/repository"
	"lodge/internal/guests"
	apperrors "lodge/pkg/errors"
	"lodge/pkg/model"
	"lodge/pkg/sanitizer"
)

const overlapMessage = "Cabin is already booked for the selected dates"

func newBookingFromRequest(req *model.BookingRequest) (*model.Booking, error) {
	checkIn, err := model.ParseCalendarDate(req.CheckInDate)
	if err != nil {
		return nil, validator.ValidationErrors{{Field: "checkInDate", Message: err.Error()}}
	}
	checkOut, err := model.ParseCalendarDate(req.CheckOutDate)
	if err != nil {
		return nil, validator.ValidationErrors{{Field: "checkOutDate", Message: err.Error()}}
	}

	b := &model.Booking{
		CabinID:         sanitizer.SanitizeIdentifier(req.CabinID),
		CustomerID:      sanitizer.SanitizeIdentifier(req.CustomerID),
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumNights:       model.Nights(checkIn, checkOut),
		NumGuests:       req.NumGuests,
		Status:          model.StatusUnconfirmed,
		Observations:    sanitizer.SanitizeNote(req.Observations),
		SpecialRequests: sanitizer.SanitizeRequests(req.SpecialRequests),
		Extras: model.Extras{
			HasBreakfast:    req.Extras.HasBreakfast,
			HasPets:         req.Extras.HasPets,
			HasParking:      req.Extras.HasParking,
			HasEarlyCheckIn: req.Extras.HasEarlyCheckIn,
			HasLateCheckOut: req.Extras.HasLateCheckOut,
		},
	}
	return b, nil
}

// mergeBookingUpdate copies the present fields of u onto a copy of existing.
// numNights is always recomputed from the merged dates.
func mergeBookingUpdate(existing *model.Booking, u *model.BookingUpdate) (*model.Booking, error) {
	merged := *existing
	merged.SpecialRequests = append([]string(nil), existing.SpecialRequests...)

	if u.CabinID != nil {
		merged.CabinID = sanitizer.SanitizeIdentifier(*u.CabinID)
	}
	if u.CustomerID != nil {
		merged.CustomerID = sanitizer.SanitizeIdentifier(*u.CustomerID)
	}
	if u.CheckInDate != nil {
		t, err := model.ParseCalendarDate(*u.CheckInDate)
		if err != nil {
			return nil, validator.ValidationErrors{{Field: "checkInDate", Message: err.Error()}}
		}
		merged.CheckInDate = t
	}
	if u.CheckOutDate != nil {
		t, err := model.ParseCalendarDate(*u.CheckOutDate)
		if err != nil {
			return nil, validator.ValidationErrors{{Field: "checkOutDate", Message: err.Error()}}
		}
		merged.CheckOutDate = t
	}
	if u.NumGuests != nil {
		merged.NumGuests = *u.NumGuests
	}
	if u.Extras != nil {
		merged.Extras.HasBreakfast = u.Extras.HasBreakfast
		merged.Extras.HasPets = u.Extras.HasPets
		merged.Extras.HasParking = u.Extras.HasParking
		merged.Extras.HasEarlyCheckIn = u.Extras.HasEarlyCheckIn
		merged.Extras.HasLateCheckOut = u.Extras.HasLateCheckOut
	}
	if u.Observations != nil {
		merged.Observations = sanitizer.SanitizeNote(*u.Observations)
	}
	if u.SpecialRequests != nil {
		merged.SpecialRequests = sanitizer.SanitizeRequests(*u.SpecialRequests)
	}

	merged.NumNights = model.Nights(merged.CheckInDate, merged.CheckOutDate)
	return &merged, nil
}

// needsOverlapCheck is true when a live booking moved to another cabin or
// other dates.
func needsOverlapCheck(before, after *model.Booking) bool {
	if after.Status == model.StatusCancelled {
		return false
	}
	return before.CabinID != after.CabinID ||
		!before.CheckInDate.Equal(after.CheckInDate) ||
		!before.CheckOutDate.Equal(after.CheckOutDate) ||
		before.Status == model.StatusCancelled
}

func (s *bookingService) loadCabin(ctx context.Context, cabinID string) (*model.Cabin, error) {
	cabin, err := s.cabins.FindByID(ctx, cabinID)
	if err != nil {
		switch {
		case errors.Is(err, cabinsrepo.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Cabin", cabinID)
		case errors.Is(err, cabinsrepo.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid cabin ID format")
		}
		s.cfg.Log.Error("Failed to load cabin", "cabin_id", cabinID, "error", err)
		return nil, apperrors.Internal("Failed to load cabin", err)
	}
	return cabin, nil
}

func (s *bookingService) loadPolicy(ctx context.Context) (*model.Settings, error) {
	policy, err := s.settings.Get(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load booking policy", "error", err)
		return nil, apperrors.Internal("Failed to load booking policy", err)
	}
	return policy, nil
}

// withCabinLock runs fn while holding the cabin's advisory lock. The release
// survives cancellation of ctx.
func (s *bookingService) withCabinLock(ctx context.Context, cabinID string, fn func() error) error {
	lock, err := s.lockRepo.Acquire(ctx, cabinID, s.cfg.BookingLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return apperrors.Conflict("Another booking for this cabin is being processed, please retry")
		}
		return apperrors.Internal("Failed to acquire booking lock", err)
	}

	defer func() {
		if lock.Expired(time.Now()) {
			s.cfg.Log.Warn("Booking lock outlived its TTL", "cabin_id", cabinID, "ttl", s.cfg.BookingLockTTL)
		}
		if err := s.lockRepo.Release(context.WithoutCancel(ctx), lock); err != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "cabin_id", cabinID, "error", err)
		}
	}()

	return fn()
}

func (s *bookingService) ensureNoOverlap(ctx context.Context, b *model.Booking, excludeID string) error {
	clashes, err := s.repo.FindOverlapping(ctx, b.CabinID, b.Range(), excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check cabin availability", err)
	}
	if len(clashes) > 0 {
		ids := make([]string, 0, len(clashes))
		for _, c := range clashes {
			ids = append(ids, c.ID)
		}
		s.cfg.Log.Warn("Booking overlaps existing bookings",
			"cabin_id", b.CabinID,
			"check_in", b.CheckInDate,
			"check_out", b.CheckOutDate,
			"conflicts", ids,
		)
		return apperrors.Conflict(overlapMessage).WithDetails(map[string]any{
			"cabinId":     b.CabinID,
			"conflicting": ids,
		})
	}
	return nil
}

// enrich attaches the customer profile and, when known, the cabin. A failed
// profile lookup is reported through the second return value only.
func (s *bookingService) enrich(ctx context.Context, b *model.Booking, cabin *model.Cabin) (*model.BookingDetails, bool) {
	details := &model.BookingDetails{Booking: b, Cabin: cabin}

	profile, err := s.guests.Resolve(ctx, b.CustomerID)
	if err != nil {
		if errors.Is(err, guests.ErrNotFound) {
			s.cfg.Log.Info("Customer profile not found", "customer_id", b.CustomerID)
		} else {
			s.cfg.Log.Warn("Customer lookup failed", "customer_id", b.CustomerID, "error", err)
		}
		return details, true
	}

	details.Customer = profile
	details.Guest = profile
	return details, false
}

func updateEvents(b *model.Booking, outcome lifecycle.Outcome) []events.Event {
	evts := []events.Event{events.NewEvent(events.TypeUpdated, b)}
	if outcome.StatusChanged {
		e := events.NewEvent(events.TypeStatusChanged, b)
		e.PreviousStatus = outcome.PreviousStatus
		evts = append(evts, e)
	}
	if outcome.PaymentRecorded {
		e := events.NewEvent(events.TypePaymentRecorded, b)
		e.AmountPaid = outcome.AmountPaid
		evts = append(evts, e)
	}
	return evts
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.AppError()
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Validation(err.Error(), nil)
}

func lifecycleError(err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrInvalidTransition):
		return apperrors.InvalidState(trimSentinel(err, bookingserrors.ErrInvalidTransition))
	case errors.Is(err, bookingserrors.ErrInvalidPayment):
		return apperrors.Validation(trimSentinel(err, bookingserrors.ErrInvalidPayment), nil)
	}
	return apperrors.Internal("Failed to apply booking change", err)
}

// trimSentinel drops the "<sentinel>: " prefix added by fmt.Errorf wrapping.
func trimSentinel(err, sentinel error) string {
	msg := err.Error()
	prefix := fmt.Sprintf("%s: ", sentinel)
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func mapRepoError(err error, id, internalMsg string) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrStaleUpdate):
		return apperrors.Conflict("Booking was modified by another request, please reload and retry")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("Database operation timed out")
	}
	return apperrors.Internal(internalMsg, err)
}
