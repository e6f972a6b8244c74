package handler

import (
	"net/http"
	"time"

	"lodge/internal/reports/service"
	apperrors "lodge/pkg/errors"
	httputil "lodge/pkg/http"
	"lodge/pkg/logger"
	"lodge/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReportHandler struct {
	service service.ReportService
	log     *logger.Logger
	now     func() time.Time
}

func NewReportHandler(service service.ReportService, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (h *ReportHandler) Today(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	activity, err := h.service.Today(r.Context())
	h.respond(w, "Today", activity, err)
}

func (h *ReportHandler) StatusCounts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	counts, err := h.service.StatusCounts(r.Context())
	h.respond(w, "StatusCounts", counts, err)
}

func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, to, err := h.extractRange(r)
	if err != nil {
		h.respond(w, "Revenue", nil, err)
		return
	}

	summary, err := h.service.Revenue(r.Context(), from, to)
	h.respond(w, "Revenue", summary, err)
}

func (h *ReportHandler) CabinPopularity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	from, to, err := h.extractRange(r)
	if err != nil {
		h.respond(w, "CabinPopularity", nil, err)
		return
	}

	rows, err := h.service.CabinPopularity(r.Context(), from, to)
	h.respond(w, "CabinPopularity", rows, err)
}

func (h *ReportHandler) ExtrasAdoption(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	adoption, err := h.service.ExtrasAdoption(r.Context())
	h.respond(w, "ExtrasAdoption", adoption, err)
}

func (h *ReportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/reports/today", h.Today)
	router.GET("/api/v1/reports/status-counts", h.StatusCounts)
	router.GET("/api/v1/reports/revenue", h.Revenue)
	router.GET("/api/v1/reports/cabin-popularity", h.CabinPopularity)
	router.GET("/api/v1/reports/extras-adoption", h.ExtrasAdoption)
}

// extractRange reads from/to as calendar dates. A missing from defaults to
// the first day of the current month, a missing to to one month after from.
func (h *ReportHandler) extractRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if s := query.Get("from"); s != "" {
		t, err := model.ParseCalendarDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid from parameter: expected YYYY-MM-DD")
		}
		from = t
	}

	to := from.AddDate(0, 1, 0)
	if s := query.Get("to"); s != "" {
		t, err := model.ParseCalendarDate(s)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.InvalidInput("invalid to parameter: expected YYYY-MM-DD")
		}
		to = t
	}

	return from, to, nil
}

// respond writes aggregate results; failures carry an empty data array.
func (h *ReportHandler) respond(w http.ResponseWriter, op string, data any, err error) {
	if err != nil {
		if writeErr := httputil.WriteListError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", op, "operation", "WriteListError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}
