package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"lodge/internal/bookings/service"
	apperrors "lodge/pkg/errors"
	httputil "lodge/pkg/http"
	"lodge/pkg/logger"
	"lodge/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	details, lookupFailed, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteEnriched(w, http.StatusCreated, details, lookupFailed); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteEnriched", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	details, lookupFailed, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteEnriched(w, http.StatusOK, details, lookupFailed); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteEnriched", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, limit, err := httputil.ExtractPageLimit(r)
	if err != nil {
		h.writeListError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		Status:    query.Get("status"),
		Search:    strings.TrimSpace(query.Get("search")),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
		Page:      page,
		Limit:     limit,
	}

	bookings, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeListError(w, "GetAll", err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	if err := httputil.WritePaginated(w, bookings, httputil.NewPagination(page, limit, total)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

// Update handles PUT /bookings with the booking id in the body.
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var update model.BookingUpdate
	if err := decodeBody(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	h.applyUpdate(w, r, "Update", &update)
}

// Patch handles PATCH /bookings/:id, which only carries a status change
// and/or a payment.
func (h *BookingHandler) Patch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var patch model.BookingPatch
	if err := decodeBody(r, &patch); err != nil {
		h.writeError(w, "Patch", err)
		return
	}

	h.applyUpdate(w, r, "Patch", patch.ToUpdate(ps.ByName("id")))
}

func (h *BookingHandler) applyUpdate(w http.ResponseWriter, r *http.Request, op string, update *model.BookingUpdate) {
	details, lookupFailed, err := h.service.Update(r.Context(), update)
	if err != nil {
		h.writeError(w, op, err)
		return
	}

	if err := httputil.WriteEnriched(w, http.StatusOK, details, lookupFailed); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteEnriched", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		h.writeError(w, "Delete", apperrors.InvalidInput("Booking ID is required"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"id": id}); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.GetAll)
	router.POST("/api/v1/bookings", h.Create)
	router.PUT("/api/v1/bookings", h.Update)
	router.DELETE("/api/v1/bookings", h.Delete)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.PATCH("/api/v1/bookings/:id", h.Patch)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeListError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteListError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteListError", "error", writeErr)
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytes):
			return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is required")
		}
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
