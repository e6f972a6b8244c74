package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "lodge/pkg/errors"
	"lodge/pkg/logger"
	"lodge/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReportService struct {
	todayFunc      func(ctx context.Context) (*model.TodayActivity, error)
	revenueFunc    func(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error)
	popularityFunc func(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error)
}

func (m *mockReportService) Today(ctx context.Context) (*model.TodayActivity, error) {
	if m.todayFunc != nil {
		return m.todayFunc(ctx)
	}
	return &model.TodayActivity{}, nil
}

func (m *mockReportService) StatusCounts(context.Context) ([]*model.StatusCount, error) {
	return []*model.StatusCount{{Status: model.StatusConfirmed, Count: 3}}, nil
}

func (m *mockReportService) Revenue(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error) {
	if m.revenueFunc != nil {
		return m.revenueFunc(ctx, from, to)
	}
	return &model.RevenueSummary{From: from, To: to}, nil
}

func (m *mockReportService) CabinPopularity(ctx context.Context, from, to time.Time) ([]*model.CabinPopularity, error) {
	if m.popularityFunc != nil {
		return m.popularityFunc(ctx, from, to)
	}
	return []*model.CabinPopularity{}, nil
}

func (m *mockReportService) ExtrasAdoption(context.Context) (*model.ExtrasAdoption, error) {
	return &model.ExtrasAdoption{Bookings: 10, Breakfast: 0.4}, nil
}

func newRouter(svc *mockReportService) *httprouter.Router {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Output: io.Discard, Service: "test"})
	h := NewReportHandler(svc, log)
	h.now = func() time.Time { return time.Date(2025, 6, 17, 9, 0, 0, 0, time.UTC) }

	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func get(t *testing.T, router http.Handler, target string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestRevenue_DefaultsToCurrentMonth(t *testing.T) {
	var gotFrom, gotTo time.Time
	svc := &mockReportService{
		revenueFunc: func(_ context.Context, from, to time.Time) (*model.RevenueSummary, error) {
			gotFrom, gotTo = from, to
			return &model.RevenueSummary{TotalRevenue: 1200}, nil
		},
	}

	status, body := get(t, newRouter(svc), "/api/v1/reports/revenue")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), gotTo)
	assert.Equal(t, 1200.0, body["data"].(map[string]any)["totalRevenue"])
}

func TestCabinPopularity_ExplicitRange(t *testing.T) {
	var gotFrom, gotTo time.Time
	svc := &mockReportService{
		popularityFunc: func(_ context.Context, from, to time.Time) ([]*model.CabinPopularity, error) {
			gotFrom, gotTo = from, to
			return []*model.CabinPopularity{{CabinID: "c1", Bookings: 3}}, nil
		},
	}

	status, body := get(t, newRouter(svc), "/api/v1/reports/cabin-popularity?from=2025-01-01&to=2025-04-01")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), gotTo)
	assert.Len(t, body["data"], 1)
}

func TestRange_InvalidDate(t *testing.T) {
	status, body := get(t, newRouter(&mockReportService{}), "/api/v1/reports/revenue?from=June")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{}, body["data"])
}

func TestToday_FailureReturnsEmptyData(t *testing.T) {
	svc := &mockReportService{
		todayFunc: func(context.Context) (*model.TodayActivity, error) {
			return nil, apperrors.Internal("Failed to build today's activity report", errors.New("boom"))
		},
	}

	status, body := get(t, newRouter(svc), "/api/v1/reports/today")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{}, body["data"])
	assert.NotContains(t, body["error"], "boom")
}

func TestSimpleReports(t *testing.T) {
	router := newRouter(&mockReportService{})

	status, body := get(t, router, "/api/v1/reports/status-counts")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)

	status, body = get(t, router, "/api/v1/reports/extras-adoption")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.4, body["data"].(map[string]any)["breakfast"])
}
