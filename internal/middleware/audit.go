package middleware

import (
	"net/http"

	logpkg "github.com/benvon/ordia/internal/logger"
	"github.com/benvon/ordia/internal/request"
	"go.uber.org/zap"
)

// Audit logs security-related events for monitoring
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.Int("status_code", wrapped.statusCode),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if forwarded := request.ForwardedFor(r); forwarded != "" {
				fields = append(fields, zap.String("forwarded_for", logpkg.SanitizeString(forwarded, logpkg.MaxGeneralStringLength)))
			}

			switch wrapped.statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				// Failed authentication or authorization
				logger.Warn("security_event", fields...)
			case http.StatusRequestEntityTooLarge:
				logger.Warn("oversized_request", fields...)
			}
		})
	}
}
