package middleware

import (
	"net/http"

	"github.com/benvon/ordia/internal/apperr"
	logpkg "github.com/benvon/ordia/internal/logger"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics and answers with a generic 500
func ErrorHandler(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					// Log panic details server-side but don't expose to client
					logger.Error("panic_recovered",
						zap.Any("error", err),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
					)
					writeError(w, http.StatusInternalServerError,
						apperr.Plain(http.StatusInternalServerError, "An unexpected error occurred"), logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
