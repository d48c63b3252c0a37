package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/benvon/ordia/internal/metrics"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/services/tracker"
	"github.com/benvon/ordia/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// LogService is the daily log logic used by LogHandler
type LogService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.DailyLog, error)
	GetByDate(ctx context.Context, userID uuid.UUID, day time.Time) (*models.DailyLog, error)
	Upsert(ctx context.Context, userID uuid.UUID, in tracker.LogInput) (*models.DailyLog, error)
}

// LogHandler handles daily log requests
type LogHandler struct {
	logs     LogService
	location *time.Location
	logger   *zap.Logger
}

// NewLogHandler creates a new daily log handler. Path dates are read in loc.
func NewLogHandler(logs LogService, loc *time.Location, logger *zap.Logger) *LogHandler {
	if loc == nil {
		loc = time.Local
	}
	return &LogHandler{logs: logs, location: loc, logger: logger}
}

// RegisterRoutes registers daily log routes on the given router.
// The router should already have the /logs prefix.
func (h *LogHandler) RegisterRoutes(r *mux.Router) {
	handle(r, "", h.ListLogs, http.MethodGet)
	handle(r, "", h.UpsertLog, http.MethodPost)
	handle(r, "/{date}", h.GetLog, http.MethodGet)
}

// UpsertLogRequest represents a daily log write. Content may be empty but
// must be present.
type UpsertLogRequest struct {
	Date    *models.Timestamp `json:"date" validate:"required"`
	Content *string           `json:"content" validate:"required,max=20000"`
	Mood    *string           `json:"mood" validate:"omitnil,max=100"`
}

// ListLogs lists the caller's daily logs
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	logs, err := h.logs.List(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, logs)
}

// GetLog returns the caller's log for /logs/{YYYY-MM-DD}, or null
func (h *LogHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	day, err := parseDay("date", mux.Vars(r)["date"], h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	log, err := h.logs.GetByDate(r.Context(), user.ID, day)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, log)
}

// UpsertLog creates the caller's log for the given date or overwrites it
func (h *LogHandler) UpsertLog(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req UpsertLogRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	log, err := h.logs.Upsert(r.Context(), user.ID, tracker.LogInput{
		Date:    req.Date.At(h.location),
		Content: *req.Content,
		Mood:    req.Mood,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	metrics.RecordLogUpsert()

	respondJSON(w, http.StatusOK, log)
}
