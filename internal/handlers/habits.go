package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/metrics"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// DefaultHabitLimit is the default page size for habit listings
	DefaultHabitLimit = 100
)

// HabitService is the habit and completion logic used by HabitHandler
type HabitService interface {
	List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*models.Habit, error)
	Create(ctx context.Context, userID uuid.UUID, name string, description *string) (*models.Habit, error)
	Delete(ctx context.Context, userID, habitID uuid.UUID) (*models.Habit, error)
	Completions(ctx context.Context, userID uuid.UUID) ([]*models.HabitCompletion, error)
	Toggle(ctx context.Context, userID, habitID uuid.UUID, day time.Time) ([]*models.HabitCompletion, error)
}

// HabitHandler handles habit-related requests
type HabitHandler struct {
	habits   HabitService
	location *time.Location
	logger   *zap.Logger
}

// NewHabitHandler creates a new habit handler. Toggle dates are read in loc.
func NewHabitHandler(habits HabitService, loc *time.Location, logger *zap.Logger) *HabitHandler {
	if loc == nil {
		loc = time.Local
	}
	return &HabitHandler{habits: habits, location: loc, logger: logger}
}

// RegisterRoutes registers habit routes on the given router.
// The router should already have the /habits prefix.
func (h *HabitHandler) RegisterRoutes(r *mux.Router) {
	handle(r, "", h.ListHabits, http.MethodGet)
	handle(r, "", h.CreateHabit, http.MethodPost)
	// Must precede /{id} so "completions" is not read as an ID
	handle(r, "/completions", h.ListCompletions, http.MethodGet)
	handle(r, "/{id}", h.DeleteHabit, http.MethodDelete)
	handle(r, "/{id}/toggle", h.ToggleCompletion, http.MethodPost)
}

// CreateHabitRequest represents a create habit request
type CreateHabitRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitnil,max=2000"`
}

// ListHabits lists a window of the caller's habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	limit, err := queryInt(r, "limit", DefaultHabitLimit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	habits, err := h.habits.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, habits)
}

// CreateHabit creates a new habit
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req CreateHabitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.Struct(req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	habit, err := h.habits.Create(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, habit)
}

// DeleteHabit deletes a habit with its completions and returns it
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	id, err := pathID(r, "habit")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	habit, err := h.habits.Delete(r.Context(), user.ID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, habit)
}

// ToggleCompletion flips the habit's completion for ?date=YYYY-MM-DD and
// returns the habit's completion list
func (h *HabitHandler) ToggleCompletion(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	id, err := pathID(r, "habit")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		respondError(w, r, h.logger, apperr.Validation("Request validation failed", apperr.FieldError{
			Field:   "date",
			Message: "field required",
		}))
		return
	}
	day, err := parseDay("date", raw, h.location)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	completions, err := h.habits.Toggle(r.Context(), user.ID, id, day)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	metrics.RecordHabitToggle(completedOn(completions, day, h.location))

	respondJSON(w, http.StatusOK, completions)
}

// ListCompletions returns the completions of all the caller's habits
func (h *HabitHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	completions, err := h.habits.Completions(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, completions)
}

// completedOn reports whether any completion falls on the calendar day of day
func completedOn(completions []*models.HabitCompletion, day time.Time, loc *time.Location) bool {
	y, m, d := day.In(loc).Date()
	for _, c := range completions {
		cy, cm, cd := c.CompletedAt.In(loc).Date()
		if cy == y && cm == m && cd == d {
			return true
		}
	}
	return false
}

// queryInt reads a non-negative integer query parameter
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Request validation failed", apperr.FieldError{
			Field:   name,
			Message: "must be a non-negative integer",
		})
	}
	return n, nil
}
