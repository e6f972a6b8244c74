package middleware

import (
	"context"
	"net/http"

	apperrors "lodge/pkg/errors"
	httputil "lodge/pkg/http"
	"lodge/pkg/logger"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

const RequestIDHeader = "X-Request-ID"

func RequestIDFromContext(ctx context.Context) string {
	if rid := ctx.Value(RequestIDKey); rid != nil {
		if id, ok := rid.(string); ok {
			return id
		}
	}
	return ""
}

func reject(w http.ResponseWriter, log *logger.Logger, appErr *apperrors.AppError) {
	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response", "code", appErr.Code, "error", err)
	}
}
