package middleware

import (
	"mime"
	"net/http"

	"github.com/benvon/ordia/internal/apperr"
)

var allowedContentTypes = map[string]bool{
	"application/json":                  true,
	"application/x-www-form-urlencoded": true,
}

// ContentType validates the Content-Type of requests that carry a body.
// Body-less POSTs such as the habit toggle pass through.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) && (r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut) {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				writeError(w, http.StatusBadRequest, apperr.Plain(http.StatusBadRequest, "Content-Type header is required"), nil)
				return
			}

			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || !allowedContentTypes[mediaType] {
				writeError(w, http.StatusUnsupportedMediaType,
					apperr.Plain(http.StatusUnsupportedMediaType, "Content-Type must be application/json or application/x-www-form-urlencoded"), nil)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	return r.ContentLength > 0 || (r.ContentLength < 0 && r.Body != nil && r.Body != http.NoBody)
}
