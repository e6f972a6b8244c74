package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "lodge/pkg/errors"
	"lodge/pkg/logger"
)

// Recovery turns a handler panic into a 500 envelope. When the handler had
// already started the response nothing more is written.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("Panic recovered",
					"request_id", RequestIDFromContext(r.Context()),
					"panic", fmt.Sprint(rec),
					"method", r.Method,
					"path", r.URL.Path,
					"response_started", rw.written,
					"stack", string(debug.Stack()),
				)
				if !rw.written {
					reject(rw, log, apperrors.Internal("Internal server error", nil))
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
