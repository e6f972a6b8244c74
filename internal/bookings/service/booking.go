package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"lodge/internal/bookings/events"
	"lodge/internal/bookings/lifecycle"
	"lodge/internal/bookings/pricing"
	"lodge/internal/bookings/repository"
	"lodge/internal/bookings/validator"
	cabinsrepo "lodge/internal/cabins/repository"
	"lodge/internal/guests"
	settingsrepo "lodge/internal/settings/repository"
	"lodge/pkg/config"
	apperrors "lodge/pkg/errors"
	"lodge/pkg/model"
	"lodge/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingService orchestrates validation, conflict detection, pricing and the
// status machine. Detail-returning operations also report whether the
// customer profile lookup failed; that failure never fails the call.
type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingDetails, bool, error)
	GetByID(ctx context.Context, id string) (*model.BookingDetails, bool, error)
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, int64, error)
	Update(ctx context.Context, update *model.BookingUpdate) (*model.BookingDetails, bool, error)
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	cabins    cabinsrepo.CabinRepository
	settings  settingsrepo.SettingsRepository
	guests    guests.Resolver
	publisher events.Publisher
	validator *validator.BookingValidator
	lifecycle *lifecycle.Manager
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	cabins cabinsrepo.CabinRepository,
	settings settingsrepo.SettingsRepository,
	resolver guests.Resolver,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	manager *lifecycle.Manager,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		cabins:    cabins,
		settings:  settings,
		guests:    resolver,
		publisher: publisher,
		validator: validator,
		lifecycle: manager,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingDetails, bool, error) {
	if req == nil {
		return nil, false, apperrors.InvalidInput("Request body is required")
	}

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, false, validationError(err)
	}

	booking, err := newBookingFromRequest(req)
	if err != nil {
		return nil, false, validationError(err)
	}

	cabin, err := s.loadCabin(ctx, booking.CabinID)
	if err != nil {
		return nil, false, err
	}
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.validator.CheckBusinessRules(booking, cabin, policy, model.ProfileFull); err != nil {
		s.cfg.Log.Warn("Booking rejected by business rules",
			"cabin_id", booking.CabinID,
			"num_guests", booking.NumGuests,
			"num_nights", booking.NumNights,
			"error", err,
		)
		return nil, false, err
	}

	booking.CabinName = cabin.Name
	s.price(booking, cabin, policy)

	err = s.withCabinLock(ctx, booking.CabinID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if err := s.ensureNoOverlap(sessCtx, booking, ""); err != nil {
				return err
			}
			if err := s.repo.Create(sessCtx, booking); err != nil {
				return apperrors.Internal("Failed to create booking", err)
			}
			return nil
		})
	})
	if err != nil {
		s.logWriteFailure("Failed to create booking", err, "cabin_id", booking.CabinID)
		return nil, false, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"cabin_id", booking.CabinID,
		"check_in", booking.CheckInDate,
		"check_out", booking.CheckOutDate,
		"total_price", booking.TotalPrice,
	)
	s.publisher.Publish(ctx, events.NewEvent(events.TypeCreated, booking))

	details, lookupFailed := s.enrich(ctx, booking, cabin)
	return details, lookupFailed, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.BookingDetails, bool, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, false, err
	}

	cabin, err := s.cabins.FindByID(ctx, booking.CabinID)
	if err != nil {
		s.cfg.Log.Warn("Cabin lookup for booking details failed", "id", id, "cabin_id", booking.CabinID, "error", err)
		cabin = nil
	}

	details, lookupFailed := s.enrich(ctx, booking, cabin)
	return details, lookupFailed, nil
}

func (s *bookingService) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	if filter.Status != "" && filter.Status != "all" && !slices.Contains(model.BookingStatuses, filter.Status) {
		return nil, 0, apperrors.InvalidInput("status must be one of: all, " + strings.Join(model.BookingStatuses, ", "))
	}
	if filter.SortBy != "" && !repository.IsSortField(filter.SortBy) {
		s.cfg.Log.Debug("Ignoring unknown sort field", "sort_by", filter.SortBy)
		filter.SortBy = ""
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Update(ctx context.Context, update *model.BookingUpdate) (*model.BookingDetails, bool, error) {
	if update == nil || strings.TrimSpace(update.ID) == "" {
		return nil, false, apperrors.InvalidInput("Booking ID is required")
	}
	id := strings.TrimSpace(update.ID)

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, false, validationError(err)
	}
	if update.IsEmpty() {
		return nil, false, apperrors.Validation("No fields to update", nil)
	}

	existing, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, false, err
	}

	profile := update.Profile()
	merged, err := mergeBookingUpdate(existing, update)
	if err != nil {
		return nil, false, validationError(err)
	}

	var cabin *model.Cabin
	if profile == model.ProfileFull {
		cabin, err = s.loadCabin(ctx, merged.CabinID)
		if err != nil {
			return nil, false, err
		}
		policy, err := s.loadPolicy(ctx)
		if err != nil {
			return nil, false, err
		}

		if err := s.validator.CheckBusinessRules(merged, cabin, policy, profile); err != nil {
			s.cfg.Log.Warn("Booking update rejected by business rules", "id", id, "error", err)
			return nil, false, err
		}

		merged.CabinName = cabin.Name
		if update.AffectsPricing() {
			s.price(merged, cabin, policy)
		}
	}

	payment := update.RecordPayment
	if payment != nil {
		sanitized := *payment
		sanitized.Notes = sanitizer.SanitizeNote(sanitized.Notes)
		payment = &sanitized
	}

	outcome, err := s.lifecycle.Apply(merged, update.Status, payment)
	if err != nil {
		s.cfg.Log.Warn("Booking lifecycle change rejected", "id", id, "status", existing.Status, "error", err)
		return nil, false, lifecycleError(err)
	}

	persist := func(ctx context.Context) error {
		if err := s.repo.Update(ctx, merged); err != nil {
			return mapRepoError(err, id, "Failed to update booking")
		}
		return nil
	}

	if needsOverlapCheck(existing, merged) {
		err = s.withCabinLock(ctx, merged.CabinID, func() error {
			return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
				if err := s.ensureNoOverlap(sessCtx, merged, id); err != nil {
					return err
				}
				return persist(sessCtx)
			})
		})
	} else {
		err = persist(ctx)
	}
	if err != nil {
		s.logWriteFailure("Failed to update booking", err, "id", id)
		return nil, false, err
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"profile", profile.String(),
		"status", merged.Status,
		"status_changed", outcome.StatusChanged,
		"payment_recorded", outcome.PaymentRecorded,
	)
	s.publisher.Publish(ctx, updateEvents(merged, outcome)...)

	details, lookupFailed := s.enrich(ctx, merged, cabin)
	return details, lookupFailed, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.InvalidInput("Booking ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		appErr := mapRepoError(err, id, "Failed to delete booking")
		if appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		}
		return appErr
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	s.publisher.Publish(ctx, events.NewEvent(events.TypeDeleted, &model.Booking{ID: id}))
	return nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID is required")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		appErr := mapRepoError(err, id, "Failed to retrieve booking")
		if appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		}
		return nil, appErr
	}
	return booking, nil
}

func (s *bookingService) logWriteFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code != apperrors.CodeInternal {
		s.cfg.Log.Warn(msg, args...)
		return
	}
	s.cfg.Log.Error(msg, args...)
}

func (s *bookingService) price(b *model.Booking, cabin *model.Cabin, policy *model.Settings) {
	quote := pricing.Calculate(pricing.Input{
		Cabin:     cabin,
		Policy:    policy,
		NumNights: b.NumNights,
		NumGuests: b.NumGuests,
		Extras:    b.Extras.Selection(),
	})
	quote.Apply(b)
}
