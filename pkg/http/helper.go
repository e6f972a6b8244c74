package http

import (
	"net/http"
	"strconv"

	"lodge/pkg/config"
	apperrors "lodge/pkg/errors"
)

// ExtractPageLimit reads page/limit query parameters. Missing values take
// defaults; non-numeric values are rejected.
func ExtractPageLimit(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := 0
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	return config.NormalizePage(page), config.NormalizePaginationLimit(limit), nil
}
