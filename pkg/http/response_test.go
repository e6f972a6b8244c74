package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "lodge/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	assert.Equal(t, 4, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)

	p = NewPagination(4, 10, 35)
	assert.False(t, p.HasNextPage)
}

func TestWriteError_AppError(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteError(w, apperrors.PolicyViolation("numGuests cannot exceed 2")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "numGuests cannot exceed 2", body["error"])
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteError(w, errors.New("connection reset by peer")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestWriteListError_EmptyData(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteListError(w, apperrors.Internal("Failed to retrieve bookings", errors.New("db down"))))

	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, []any{}, body["data"])
}

func TestWriteEnriched(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteEnriched(w, http.StatusCreated, map[string]string{"id": "1"}, true))

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["customerLookupFailed"])
}

func TestExtractPageLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?page=3&limit=500", nil)
	page, limit, err := ExtractPageLimit(r)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	page, limit, err = ExtractPageLimit(r)
	require.NoError(t, err)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/bookings?page=abc", nil)
	_, _, err = ExtractPageLimit(r)
	assert.Error(t, err)
}
