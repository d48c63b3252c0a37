package middleware

import (
	"context"
	"net/http"

	"github.com/benvon/ordia/internal/apperr"
	logpkg "github.com/benvon/ordia/internal/logger"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/request"
	"go.uber.org/zap"
)

// IdentityResolver maps a bearer token to an active user
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Auth rejects requests without a valid bearer token and stores the caller in
// the request context
func Auth(resolver IdentityResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := request.BearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				status, body := apperr.NewResponse(apperr.Unauthorized("Not authenticated"))
				writeError(w, status, body, logger)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				kind := apperr.KindOf(err)
				if kind == apperr.KindUnauthorized {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				if kind == apperr.KindInternal {
					logger.Error("identity_resolution_failed",
						zap.String("error", logpkg.SanitizeError(err)),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					)
				}
				status, body := apperr.NewResponse(err)
				writeError(w, status, body, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}
