package apperr

import (
	"errors"
	"net/http"
	"time"
)

// Response is the JSON body of every error reply
type Response struct {
	Detail    string       `json:"detail"`
	Error     string       `json:"error"`
	Fields    []FieldError `json:"fields,omitempty"`
	Timestamp string       `json:"timestamp"`
}

// NewResponse builds the status and body for err. Internal failures never
// expose the wrapped cause.
func NewResponse(err error) (int, Response) {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return http.StatusInternalServerError, Plain(http.StatusInternalServerError, "An unexpected error occurred")
	}
	return HTTPStatus(appErr.Kind), Response{
		Detail:    appErr.Message,
		Error:     appErr.Kind.String(),
		Fields:    appErr.Fields,
		Timestamp: now(),
	}
}

// Plain builds an error body for a status outside the domain taxonomy
func Plain(status int, detail string) Response {
	return Response{
		Detail:    detail,
		Error:     http.StatusText(status),
		Timestamp: now(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
