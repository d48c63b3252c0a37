package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/benvon/ordia/internal/apperr"
	"go.uber.org/zap"
)

func writeError(w http.ResponseWriter, status int, body apperr.Response, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
		)
	}
}
