package http

import (
	"encoding/json"
	"math"
	"net/http"

	apperrors "lodge/pkg/errors"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success              bool           `json:"success"`
	Data                 any            `json:"data,omitempty"`
	Error                string         `json:"error,omitempty"`
	Code                 string         `json:"code,omitempty"`
	Details              map[string]any `json:"details,omitempty"`
	Pagination           *Pagination    `json:"pagination,omitempty"`
	CustomerLookupFailed bool           `json:"customerLookupFailed,omitempty"`
}

type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalBookings int64 `json:"totalBookings"`
	Limit         int   `json:"limit"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalBookings: total,
		Limit:         limit,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
	}
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as {success:false, error}. Internal causes are never
// written to the client.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), Envelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// WriteListError is WriteError for list and aggregate endpoints: the body
// still carries an empty data array.
func WriteListError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), Envelope{
		Success: false,
		Data:    []any{},
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// WriteEnriched reports a success whose best-effort enrichment may have
// failed on the side.
func WriteEnriched(w http.ResponseWriter, statusCode int, data any, lookupFailed bool) error {
	return WriteJSON(w, statusCode, Envelope{
		Success:              true,
		Data:                 data,
		CustomerLookupFailed: lookupFailed,
	})
}

func WritePaginated(w http.ResponseWriter, data any, pagination *Pagination) error {
	return WriteJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Pagination: pagination,
	})
}
