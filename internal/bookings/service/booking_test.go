package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "lodge/internal/bookings/errors"
	"lodge/internal/bookings/events"
	"lodge/internal/guests"
	apperrors "lodge/pkg/errors"
	"lodge/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func requireAppError(t *testing.T, err error, code string, status int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.StatusCode())
	return appErr
}

// ──────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────

func TestCreate_PricesStayWithoutPolicy(t *testing.T) {
	f := newFixture()

	details, lookupFailed, err := f.service.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.False(t, lookupFailed)

	b := details.Booking
	assert.Equal(t, 3, b.NumNights)
	assert.Equal(t, 600.0, b.CabinPrice)
	assert.Equal(t, 0.0, b.ExtrasPrice)
	assert.Equal(t, 600.0, b.TotalPrice)
	assert.Equal(t, 600.0, b.RemainingAmount)
	assert.False(t, b.IsPaid)
	assert.Equal(t, "Cabin 001", b.CabinName)
	assert.Equal(t, model.StatusUnconfirmed, b.Status)
	assert.NotEmpty(t, b.ID)

	require.NotNil(t, details.Customer)
	assert.Equal(t, "Ada Lovelace", details.Customer.FullName)
	assert.Same(t, details.Customer, details.Guest)
	assert.Equal(t, "Cabin 001", details.Cabin.Name)

	assert.Equal(t, []string{cabinID}, f.locks.acquired)
	assert.Equal(t, 1, f.locks.released)
	assert.Equal(t, 1, f.repo.transactions)
	assert.Equal(t, []string{events.TypeCreated}, f.publisher.types())
}

func TestCreate_IgnoresClientComputedFields(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.Status = model.StatusConfirmed
	req.NumNights = 9
	req.CabinPrice = 1
	req.ExtrasPrice = 1
	req.TotalPrice = 2

	details, _, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnconfirmed, details.Status)
	assert.Equal(t, 3, details.NumNights)
	assert.Equal(t, 600.0, details.TotalPrice)
}

func TestCreate_AppliesPolicyFeesAndDeposit(t *testing.T) {
	f := newFixture()
	f.settings.policy = &model.Settings{
		MinBookingLength:    1,
		MaxBookingLength:    30,
		MaxGuestsPerBooking: 8,
		BreakfastPrice:      15,
		ParkingFee:          10,
		ParkingIncluded:     true,
		RequireDeposit:      true,
		DepositPercentage:   30,
	}

	req := validRequest()
	req.Extras = model.ExtrasSelection{HasBreakfast: true, HasParking: true}

	details, _, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	b := details.Booking
	assert.Equal(t, 90.0, b.Extras.BreakfastPrice)
	assert.Equal(t, 0.0, b.Extras.ParkingFee)
	assert.Equal(t, 90.0, b.ExtrasPrice)
	assert.Equal(t, 690.0, b.TotalPrice)
	assert.Equal(t, 207.0, b.DepositAmount)
	assert.False(t, b.DepositPaid)
	assert.Equal(t, 483.0, b.RemainingAmount)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.BookingRequest)
		setup   func(*fixture)
		code    string
		status  int
		message string
	}{
		{
			name:    "guests over cabin capacity",
			mutate:  func(r *model.BookingRequest) { r.NumGuests = 3 },
			code:    apperrors.CodePolicyViolation,
			status:  http.StatusBadRequest,
			message: "cannot exceed 2",
		},
		{
			name:   "guests over policy maximum",
			mutate: func(r *model.BookingRequest) { r.NumGuests = 2 },
			setup: func(f *fixture) {
				f.settings.policy = &model.Settings{MaxGuestsPerBooking: 1}
			},
			code:    apperrors.CodePolicyViolation,
			status:  http.StatusBadRequest,
			message: "numGuests cannot exceed 1",
		},
		{
			name:   "stay shorter than minimum",
			mutate: func(r *model.BookingRequest) { r.CheckOutDate = "2025-06-02" },
			setup: func(f *fixture) {
				f.settings.policy = &model.Settings{MinBookingLength: 2}
			},
			code:    apperrors.CodePolicyViolation,
			status:  http.StatusBadRequest,
			message: "numNights must be at least 2",
		},
		{
			name:   "stay longer than maximum",
			mutate: func(r *model.BookingRequest) { r.CheckOutDate = "2025-07-01" },
			setup: func(f *fixture) {
				f.settings.policy = &model.Settings{MaxBookingLength: 14}
			},
			code:    apperrors.CodePolicyViolation,
			status:  http.StatusBadRequest,
			message: "numNights cannot exceed 14",
		},
		{
			name: "inactive cabin",
			setup: func(f *fixture) {
				f.cabins.cabins[cabinID].Status = model.CabinInactive
			},
			code:    apperrors.CodeInvalidState,
			status:  http.StatusBadRequest,
			message: "inactive",
		},
		{
			name:   "unknown cabin",
			mutate: func(r *model.BookingRequest) { r.CabinID = "65f0c1a2b3c4d5e6f7a8b9aa" },
			code:   apperrors.CodeNotFound,
			status: http.StatusNotFound,
		},
		{
			name:    "check-out before check-in",
			mutate:  func(r *model.BookingRequest) { r.CheckOutDate = "2025-05-30" },
			code:    apperrors.CodeValidation,
			status:  http.StatusBadRequest,
			message: "checkOutDate must be after checkInDate",
		},
		{
			name:   "malformed date",
			mutate: func(r *model.BookingRequest) { r.CheckInDate = "01/06/2025" },
			code:   apperrors.CodeValidation,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing customer",
			mutate: func(r *model.BookingRequest) { r.CustomerID = "" },
			code:   apperrors.CodeValidation,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			_, _, err := f.service.Create(context.Background(), req)
			appErr := requireAppError(t, err, tt.code, tt.status)
			if tt.message != "" {
				assert.Contains(t, appErr.Message, tt.message)
			}
			assert.Empty(t, f.locks.acquired)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestCreate_OverlapIsConflict(t *testing.T) {
	f := newFixture()
	created := false
	f.repo.createFunc = func(context.Context, *model.Booking) error {
		created = true
		return nil
	}
	f.repo.findOverlappingFunc = func(_ context.Context, gotCabin string, stay model.DateRange, excludeID string) ([]*model.Booking, error) {
		assert.Equal(t, cabinID, gotCabin)
		assert.Empty(t, excludeID)
		assert.Equal(t, 3, stay.Nights())
		return []*model.Booking{{ID: "65f0c1a2b3c4d5e6f7a8b9c9"}}, nil
	}

	_, _, err := f.service.Create(context.Background(), validRequest())
	appErr := requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, overlapMessage, appErr.Message)
	assert.False(t, created)
	assert.Equal(t, 1, f.locks.released)
	assert.Empty(t, f.publisher.events)
}

func TestCreate_LockHeldIsConflict(t *testing.T) {
	f := newFixture()
	f.locks.acquireFunc = func(context.Context, string, time.Duration) (*model.BookingLock, error) {
		return nil, bookingserrors.ErrLockHeld
	}

	_, _, err := f.service.Create(context.Background(), validRequest())
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, 0, f.repo.transactions)
}

func TestCreate_CustomerLookupFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.resolver.profile = nil
	f.resolver.err = guests.ErrUnavailable

	details, lookupFailed, err := f.service.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, lookupFailed)
	assert.Nil(t, details.Customer)
	assert.Nil(t, details.Guest)
	assert.Equal(t, 600.0, details.TotalPrice)
}

func TestCreate_SanitizesFreeText(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.CustomerID = "  cust-1 "
	req.Observations = "  late   arrival \r\n\r\n\r\n\r\nquiet room  "
	req.SpecialRequests = []string{" crib ", "", "crib", "extra towels"}

	details, _, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cust-1", details.CustomerID)
	assert.Equal(t, "late arrival\n\nquiet room", details.Observations)
	assert.Equal(t, []string{"crib", "extra towels"}, details.SpecialRequests)
}

// ──────────────────────────────────────────────────────────────
// Read
// ──────────────────────────────────────────────────────────────

func TestGetByID(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())

	details, lookupFailed, err := f.service.GetByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.False(t, lookupFailed)
	assert.Equal(t, bookingID, details.ID)
	assert.Equal(t, "Cabin 001", details.Cabin.Name)
	assert.Equal(t, "cust-1", details.Guest.ID)
}

func TestGetByID_Errors(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(_ context.Context, id string) (*model.Booking, error) {
		switch id {
		case "bad":
			return nil, bookingserrors.ErrInvalidID
		case "boom":
			return nil, errors.New("connection reset")
		case "slow":
			return nil, context.DeadlineExceeded
		}
		return nil, bookingserrors.ErrNotFound
	}

	tests := []struct {
		id     string
		code   string
		status int
	}{
		{"", apperrors.CodeInvalidInput, http.StatusBadRequest},
		{"bad", apperrors.CodeInvalidInput, http.StatusBadRequest},
		{bookingID, apperrors.CodeNotFound, http.StatusNotFound},
		{"boom", apperrors.CodeInternal, http.StatusInternalServerError},
		{"slow", apperrors.CodeTimeout, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, _, err := f.service.GetByID(context.Background(), tt.id)
			requireAppError(t, err, tt.code, tt.status)
		})
	}
}

func TestGetByID_MissingCabinStillReturnsBooking(t *testing.T) {
	f := newFixture()
	b := storedBooking()
	b.CabinID = "65f0c1a2b3c4d5e6f7a8b9aa"
	f.withStored(b)

	details, _, err := f.service.GetByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.Nil(t, details.Cabin)
}

func TestList_RunsCountAndFindConcurrently(t *testing.T) {
	f := newFixture()
	var inFlight, peak int32
	track := func() func() {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return func() { atomic.AddInt32(&inFlight, -1) }
	}
	f.repo.countFunc = func(context.Context, model.BookingFilter) (int64, error) {
		defer track()()
		return 42, nil
	}
	f.repo.findAllFunc = func(_ context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
		defer track()()
		assert.Equal(t, model.StatusConfirmed, filter.Status)
		return []*model.Booking{storedBooking()}, nil
	}

	bookings, total, err := f.service.List(context.Background(), model.BookingFilter{Status: model.StatusConfirmed, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	assert.Len(t, bookings, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestList_StatusFilter(t *testing.T) {
	f := newFixture()

	for _, status := range []string{"", "all", model.StatusCheckedIn} {
		_, _, err := f.service.List(context.Background(), model.BookingFilter{Status: status})
		assert.NoError(t, err, "status %q", status)
	}

	_, _, err := f.service.List(context.Background(), model.BookingFilter{Status: "pending"})
	requireAppError(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestList_DropsUnknownSortField(t *testing.T) {
	f := newFixture()
	f.repo.findAllFunc = func(_ context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
		assert.Empty(t, filter.SortBy)
		return nil, nil
	}

	_, _, err := f.service.List(context.Background(), model.BookingFilter{SortBy: "password"})
	require.NoError(t, err)
}

func TestList_RepositoryFailure(t *testing.T) {
	f := newFixture()
	f.repo.countFunc = func(context.Context, model.BookingFilter) (int64, error) {
		return 0, errors.New("boom")
	}

	_, _, err := f.service.List(context.Background(), model.BookingFilter{})
	requireAppError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
}

// ──────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────

func TestUpdate_StatusOnlySkipsPolicyForLegacyBookings(t *testing.T) {
	f := newFixture()
	legacy := storedBooking()
	legacy.NumGuests = 6
	legacy.Status = model.StatusConfirmed
	f.withStored(legacy)
	f.settings.policy = &model.Settings{MaxGuestsPerBooking: 4, MinBookingLength: 5}

	details, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:     bookingID,
		Status: strPtr(model.StatusCheckedIn),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCheckedIn, details.Status)
	require.NotNil(t, details.CheckInTime)
	assert.True(t, fixedNow.Equal(*details.CheckInTime))
	assert.Empty(t, f.locks.acquired)
	assert.Equal(t, []string{events.TypeUpdated, events.TypeStatusChanged}, f.publisher.types())
	assert.Equal(t, model.StatusConfirmed, f.publisher.events[1].PreviousStatus)
}

func TestUpdate_FullProfileEnforcesPolicy(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())

	_, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:        bookingID,
		NumGuests: intPtr(3),
		Status:    strPtr(model.StatusConfirmed),
	})
	appErr := requireAppError(t, err, apperrors.CodePolicyViolation, http.StatusBadRequest)
	assert.Contains(t, appErr.Message, "cannot exceed 2")
}

func TestUpdate_DateChangeRepricesAndChecksOverlap(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())

	var excluded string
	f.repo.findOverlappingFunc = func(_ context.Context, _ string, _ model.DateRange, excludeID string) ([]*model.Booking, error) {
		excluded = excludeID
		return nil, nil
	}
	var saved *model.Booking
	f.repo.updateFunc = func(_ context.Context, b *model.Booking) error {
		saved = b
		return nil
	}

	details, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:           bookingID,
		CheckOutDate: strPtr("2025-06-06"),
	})
	require.NoError(t, err)
	assert.Equal(t, bookingID, excluded)
	assert.Equal(t, 5, details.NumNights)
	assert.Equal(t, 1000.0, details.TotalPrice)
	assert.Equal(t, 1000.0, details.RemainingAmount)
	require.NotNil(t, saved)
	assert.Equal(t, 5, saved.NumNights)
	assert.Equal(t, 1, f.locks.released)
}

func TestUpdate_OverlapIsConflict(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())
	f.repo.findOverlappingFunc = func(context.Context, string, model.DateRange, string) ([]*model.Booking, error) {
		return []*model.Booking{{ID: "65f0c1a2b3c4d5e6f7a8b9c9"}}, nil
	}
	f.repo.updateFunc = func(context.Context, *model.Booking) error {
		t.Fatal("update must not run when dates overlap")
		return nil
	}

	_, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:          bookingID,
		CheckInDate: strPtr("2025-05-30"),
	})
	requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
}

func TestUpdate_RepricingKeepsRecordedPayments(t *testing.T) {
	f := newFixture()
	paid := storedBooking()
	paid.DepositPaid = true
	paid.DepositAmount = 250
	paid.RemainingAmount = 350
	f.withStored(paid)

	details, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:     bookingID,
		Extras: &model.ExtrasSelection{HasPets: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, details.DepositAmount)
	assert.Equal(t, 350.0, details.RemainingAmount)
	assert.Empty(t, f.locks.acquired)
}

func TestUpdate_RecordPayment(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())

	details, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID: bookingID,
		RecordPayment: &model.PaymentRecord{
			PaymentMethod: model.PaymentCard,
			AmountPaid:    200,
			Notes:         "  paid at desk ",
		},
	})
	require.NoError(t, err)
	assert.True(t, details.DepositPaid)
	assert.Equal(t, 200.0, details.DepositAmount)
	assert.Equal(t, 400.0, details.RemainingAmount)
	assert.False(t, details.IsPaid)
	assert.Equal(t, model.PaymentCard, details.PaymentMethod)
	assert.Equal(t, "paid at desk", details.Observations)
	assert.Equal(t, []string{events.TypeUpdated, events.TypePaymentRecorded}, f.publisher.types())
	assert.Equal(t, 200.0, f.publisher.events[1].AmountPaid)
}

func TestUpdate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		stored func(*model.Booking)
		update *model.BookingUpdate
		code   string
	}{
		{
			name:   "missing id",
			update: &model.BookingUpdate{Status: strPtr(model.StatusConfirmed)},
			code:   apperrors.CodeInvalidInput,
		},
		{
			name:   "no fields",
			update: &model.BookingUpdate{ID: bookingID},
			code:   apperrors.CodeValidation,
		},
		{
			name:   "skipping a status",
			update: &model.BookingUpdate{ID: bookingID, Status: strPtr(model.StatusCheckedOut)},
			code:   apperrors.CodeInvalidState,
		},
		{
			name:   "leaving a terminal status",
			stored: func(b *model.Booking) { b.Status = model.StatusCheckedOut },
			update: &model.BookingUpdate{ID: bookingID, Status: strPtr(model.StatusConfirmed)},
			code:   apperrors.CodeInvalidState,
		},
		{
			name:   "unknown status",
			update: &model.BookingUpdate{ID: bookingID, Status: strPtr("pending")},
			code:   apperrors.CodeValidation,
		},
		{
			name: "non-positive payment",
			update: &model.BookingUpdate{ID: bookingID, RecordPayment: &model.PaymentRecord{
				PaymentMethod: model.PaymentCash,
				AmountPaid:    0,
			}},
			code: apperrors.CodeValidation,
		},
		{
			name: "unknown payment method",
			update: &model.BookingUpdate{ID: bookingID, RecordPayment: &model.PaymentRecord{
				PaymentMethod: "barter",
				AmountPaid:    10,
			}},
			code: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			b := storedBooking()
			if tt.stored != nil {
				tt.stored(b)
			}
			f.withStored(b)
			f.repo.updateFunc = func(context.Context, *model.Booking) error {
				t.Fatal("update must not be persisted")
				return nil
			}

			_, _, err := f.service.Update(context.Background(), tt.update)
			requireAppError(t, err, tt.code, http.StatusBadRequest)
			assert.Empty(t, f.publisher.events)
		})
	}
}

func TestUpdate_RepeatedStatusIsNoop(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())

	details, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:     bookingID,
		Status: strPtr(model.StatusUnconfirmed),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnconfirmed, details.Status)
	assert.Equal(t, []string{events.TypeUpdated}, f.publisher.types())
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture()

	_, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID:     bookingID,
		Status: strPtr(model.StatusConfirmed),
	})
	requireAppError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
}

func TestUpdate_ConcurrentPaymentIsConflict(t *testing.T) {
	f := newFixture()
	f.withStored(storedBooking())
	f.repo.updateFunc = func(context.Context, *model.Booking) error {
		return bookingserrors.ErrStaleUpdate
	}

	_, _, err := f.service.Update(context.Background(), &model.BookingUpdate{
		ID: bookingID,
		RecordPayment: &model.PaymentRecord{
			PaymentMethod: model.PaymentCash,
			AmountPaid:    100,
		},
	})
	appErr := requireAppError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Contains(t, appErr.Message, "modified by another request")
	assert.Empty(t, f.publisher.types(), "nothing is published for a rejected write")
}

// ──────────────────────────────────────────────────────────────
// Delete
// ──────────────────────────────────────────────────────────────

func TestDelete(t *testing.T) {
	f := newFixture()
	var deleted string
	f.repo.deleteFunc = func(_ context.Context, id string) error {
		deleted = id
		return nil
	}

	require.NoError(t, f.service.Delete(context.Background(), " "+bookingID+" "))
	assert.Equal(t, bookingID, deleted)
	assert.Equal(t, []string{events.TypeDeleted}, f.publisher.types())
	assert.Equal(t, bookingID, f.publisher.events[0].BookingID)
}

func TestDelete_Errors(t *testing.T) {
	f := newFixture()
	f.repo.deleteFunc = func(context.Context, string) error {
		return bookingserrors.ErrNotFound
	}

	requireAppError(t, f.service.Delete(context.Background(), ""), apperrors.CodeInvalidInput, http.StatusBadRequest)
	requireAppError(t, f.service.Delete(context.Background(), bookingID), apperrors.CodeNotFound, http.StatusNotFound)
	assert.Empty(t, f.publisher.events)
}
