package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	logpkg "github.com/benvon/ordia/internal/logger"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/request"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// respondJSON sends data as the JSON response body
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError maps err to its status and writes the error body. Internal
// failures are logged and answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondJSON(w, http.StatusRequestEntityTooLarge, apperr.Plain(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit)))
		return
	}

	status, body := apperr.NewResponse(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request_failed",
			zap.String("method", r.Method),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	respondJSON(w, status, body)
}

// decodeJSON reads a single JSON document from the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return apperr.Validation("Invalid request body", apperr.FieldError{
			Field:   "body",
			Message: decodeMessage(err),
		})
	}
	return nil
}

func decodeMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type)
	}
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	return logpkg.SanitizeString(err.Error(), 200)
}

// currentUser returns the authenticated caller. The auth middleware
// guarantees a user on protected routes.
func currentUser(r *http.Request) (*models.User, error) {
	user := request.UserFromContext(r)
	if user == nil {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	return user, nil
}

// pathID parses the {id} route variable
func pathID(r *http.Request, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid "+resource+" ID", apperr.FieldError{
			Field:   "id",
			Message: "value is not a valid uuid",
		})
	}
	return id, nil
}

// parseDay parses a YYYY-MM-DD value named field in loc
func parseDay(field, value string, loc *time.Location) (time.Time, error) {
	day, err := models.ParseDate(value, loc)
	if err != nil {
		return time.Time{}, apperr.Validation("Invalid date", apperr.FieldError{
			Field:   field,
			Message: "invalid date format, expected YYYY-MM-DD",
		})
	}
	return day, nil
}

// handle registers fn for path with and without a trailing slash
func handle(r *mux.Router, path string, fn http.HandlerFunc, methods ...string) {
	r.HandleFunc(path, fn).Methods(methods...)
	if !strings.HasSuffix(path, "/") {
		r.HandleFunc(path+"/", fn).Methods(methods...)
	}
}
