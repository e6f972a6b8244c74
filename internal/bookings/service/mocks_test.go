package service

import (
	"context"
	"io"
	"time"

	bookingserrors "lodge/internal/bookings/errors"
	"lodge/internal/bookings/events"
	"lodge/internal/bookings/lifecycle"
	"lodge/internal/bookings/validator"
	cabinsrepo "lodge/internal/cabins/repository"
	"lodge/pkg/config"
	mongotx "lodge/pkg/db/mongo"
	"lodge/pkg/logger"
	"lodge/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ──────────────────────────────────────────────────────────────
// Booking repository
// ──────────────────────────────────────────────────────────────

type mockBookingRepository struct {
	createFunc          func(ctx context.Context, booking *model.Booking) error
	findByIDFunc        func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc         func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	countFunc           func(ctx context.Context, filter model.BookingFilter) (int64, error)
	updateFunc          func(ctx context.Context, booking *model.Booking) error
	deleteFunc          func(ctx context.Context, id string) error
	findOverlappingFunc func(ctx context.Context, cabinID string, stay model.DateRange, excludeID string) ([]*model.Booking, error)
	transactions        int
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "65f0c1a2b3c4d5e6f7a8b9ff"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) FindOverlapping(ctx context.Context, cabinID string, stay model.DateRange, excludeID string) ([]*model.Booking, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, cabinID, stay, excludeID)
	}
	return nil, nil
}

func (m *mockBookingRepository) CountCheckedInOn(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindArrivals(context.Context, time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) FindDepartures(context.Context, time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) CountByStatus(context.Context) ([]*model.StatusCount, error) {
	return nil, nil
}

func (m *mockBookingRepository) Revenue(context.Context, time.Time, time.Time) (*model.RevenueSummary, error) {
	return &model.RevenueSummary{}, nil
}

func (m *mockBookingRepository) CabinPopularity(context.Context, time.Time, time.Time) ([]*model.CabinPopularity, error) {
	return nil, nil
}

func (m *mockBookingRepository) ExtrasAdoption(context.Context) (*model.ExtrasAdoption, error) {
	return &model.ExtrasAdoption{}, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.transactions++
	return fn(mongo.NewSessionContext(ctx, nil))
}

// ──────────────────────────────────────────────────────────────
// Lock, cabin and policy repositories
// ──────────────────────────────────────────────────────────────

type mockLockRepository struct {
	acquireFunc func(ctx context.Context, cabinID string, ttl time.Duration) (*model.BookingLock, error)
	acquired    []string
	released    int
}

func (m *mockLockRepository) Acquire(ctx context.Context, cabinID string, ttl time.Duration) (*model.BookingLock, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, cabinID, ttl)
	}
	m.acquired = append(m.acquired, cabinID)
	return &model.BookingLock{ID: "cabin:" + cabinID, CabinID: cabinID, Owner: "test", ExpiresAt: time.Now().Add(ttl)}, nil
}

func (m *mockLockRepository) Release(context.Context, *model.BookingLock) error {
	m.released++
	return nil
}

type mockCabinRepository struct {
	cabins map[string]*model.Cabin
	err    error
}

func (m *mockCabinRepository) FindByID(_ context.Context, id string) (*model.Cabin, error) {
	if m.err != nil {
		return nil, m.err
	}
	cabin, ok := m.cabins[id]
	if !ok {
		return nil, cabinsrepo.ErrNotFound
	}
	return cabin, nil
}

type mockSettingsRepository struct {
	policy *model.Settings
	err    error
}

func (m *mockSettingsRepository) Get(context.Context) (*model.Settings, error) {
	return m.policy, m.err
}

// ──────────────────────────────────────────────────────────────
// Customer resolver and publisher
// ──────────────────────────────────────────────────────────────

type mockResolver struct {
	profile *model.GuestProfile
	err     error
}

func (m *mockResolver) Resolve(context.Context, string) (*model.GuestProfile, error) {
	return m.profile, m.err
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) {
	p.events = append(p.events, evts...)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ──────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────

const (
	cabinID   = "65f0c1a2b3c4d5e6f7a8b9c0"
	bookingID = "65f0c1a2b3c4d5e6f7a8b9c1"
)

var fixedNow = time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *mockBookingRepository
	locks     *mockLockRepository
	cabins    *mockCabinRepository
	settings  *mockSettingsRepository
	resolver  *mockResolver
	publisher *recordingPublisher
	service   *bookingService
}

func newFixture() *fixture {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		Output:    io.Discard,
		AddSource: false,
		Service:   "test",
	})

	cfg := &config.Config{
		Log:            log,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		BookingLockTTL: 10 * time.Second,
	}

	f := &fixture{
		repo:  &mockBookingRepository{},
		locks: &mockLockRepository{},
		cabins: &mockCabinRepository{cabins: map[string]*model.Cabin{
			cabinID: {ID: cabinID, Name: "Cabin 001", MaxCapacity: 2, RegularPrice: 200, Status: model.CabinActive},
		}},
		settings:  &mockSettingsRepository{},
		resolver:  &mockResolver{profile: &model.GuestProfile{ID: "cust-1", FullName: "Ada Lovelace", Email: "ada@example.com"}},
		publisher: &recordingPublisher{},
	}

	f.service = &bookingService{
		repo:      f.repo,
		lockRepo:  f.locks,
		cabins:    f.cabins,
		settings:  f.settings,
		guests:    f.resolver,
		publisher: f.publisher,
		validator: validator.NewBookingValidator(log),
		lifecycle: lifecycle.NewManagerWithClock(func() time.Time { return fixedNow }),
		cfg:       cfg,
	}
	return f
}

func (f *fixture) withStored(b *model.Booking) {
	f.repo.findByIDFunc = func(_ context.Context, id string) (*model.Booking, error) {
		if id != b.ID {
			return nil, bookingserrors.ErrNotFound
		}
		copied := *b
		return &copied, nil
	}
}

func storedBooking() *model.Booking {
	return &model.Booking{
		ID:              bookingID,
		CabinID:         cabinID,
		CabinName:       "Cabin 001",
		CustomerID:      "cust-1",
		CheckInDate:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:    time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		NumNights:       3,
		NumGuests:       2,
		Status:          model.StatusUnconfirmed,
		CabinPrice:      600,
		TotalPrice:      600,
		RemainingAmount: 600,
		SpecialRequests: []string{},
	}
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		CabinID:      cabinID,
		CustomerID:   "cust-1",
		CheckInDate:  "2025-06-01",
		CheckOutDate: "2025-06-04",
		NumGuests:    2,
	}
}
