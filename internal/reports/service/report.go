// Package service answers the dashboard questions over stored bookings:
// today's movements, status counts, revenue, cabin popularity and extras.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"lodge/pkg/config"
	apperrors "lodge/pkg/errors"
	"lodge/pkg/model"
)

// MaxRange bounds the window accepted by range reports.
const MaxRange = 366 * 24 * time.Hour

// ReportRepository is the read-only slice of the booking store the reports
// need.
type ReportRepository interface {
	CountCheckedInOn(ctx context.Context, day time.Time) (int64, error)
	FindArrivals(ctx context.Context, day time.Time) ([]*model.Booking, error)
	FindDepartures(ctx context.Context, day time.Time) ([]*model.Booking, error)
	CountByStatus(ctx context.Context) ([]*model.StatusCount, error)
	Revenue(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error)
	CabinPopularity(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error)
	ExtrasAdoption(ctx context.Context) (*model.ExtrasAdoption, error)
}

type ReportService interface {
	Today(ctx context.Context) (*model.TodayActivity, error)
	StatusCounts(ctx context.Context) ([]*model.StatusCount, error)
	Revenue(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error)
	CabinPopularity(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error)
	ExtrasAdoption(ctx context.Context) (*model.ExtrasAdoption, error)
}

type reportService struct {
	repo ReportRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewReportService(repo ReportRepository, cfg *config.Config) ReportService {
	return &reportService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) Today(ctx context.Context) (*model.TodayActivity, error) {
	day := model.StartOfDay(s.now())
	activity := &model.TodayActivity{Date: day}

	var errCheckedIn, errArrivals, errDepartures error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		activity.CheckedIn, errCheckedIn = s.repo.CountCheckedInOn(ctx, day)
	}()

	go func() {
		defer wg.Done()
		activity.Arrivals, errArrivals = s.repo.FindArrivals(ctx, day)
	}()

	go func() {
		defer wg.Done()
		activity.Departures, errDepartures = s.repo.FindDepartures(ctx, day)
	}()

	wg.Wait()
	if err := errors.Join(errCheckedIn, errArrivals, errDepartures); err != nil {
		return nil, s.readError("today's activity", err)
	}

	if activity.Arrivals == nil {
		activity.Arrivals = []*model.Booking{}
	}
	if activity.Departures == nil {
		activity.Departures = []*model.Booking{}
	}
	return activity, nil
}

// StatusCounts always reports every status, zero-filled, in lifecycle order.
func (s *reportService) StatusCounts(ctx context.Context) ([]*model.StatusCount, error) {
	rows, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, s.readError("status counts", err)
	}

	byStatus := make(map[string]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] += row.Count
	}

	counts := make([]*model.StatusCount, 0, len(model.BookingStatuses))
	for _, status := range model.BookingStatuses {
		counts = append(counts, &model.StatusCount{Status: status, Count: byStatus[status]})
	}
	return counts, nil
}

func (s *reportService) Revenue(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	summary, err := s.repo.Revenue(ctx, from, to)
	if err != nil {
		return nil, s.readError("revenue", err)
	}
	return summary, nil
}

func (s *reportService) CabinPopularity(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	rows, err := s.repo.CabinPopularity(ctx, from, to)
	if err != nil {
		return nil, s.readError("cabin popularity", err)
	}
	if rows == nil {
		rows = []*model.CabinPopularity{}
	}
	return rows, nil
}

func (s *reportService) ExtrasAdoption(ctx context.Context) (*model.ExtrasAdoption, error) {
	adoption, err := s.repo.ExtrasAdoption(ctx)
	if err != nil {
		return nil, s.readError("extras adoption", err)
	}
	return adoption, nil
}

func (s *reportService) readError(report string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		s.cfg.Log.Warn("Report timed out", "report", report, "error", err)
		return apperrors.Timeout("Report generation timed out")
	}
	s.cfg.Log.Error("Failed to build report", "report", report, "error", err)
	return apperrors.Internal("Failed to build "+report+" report", err)
}

func checkRange(from, to time.Time) error {
	if !to.After(from) {
		return apperrors.Validation("to must be after from", map[string]any{
			"from": from.Format(model.DateLayout),
			"to":   to.Format(model.DateLayout),
		})
	}
	if to.Sub(from) > MaxRange {
		return apperrors.Validation("Date range cannot exceed 366 days", nil)
	}
	return nil
}
