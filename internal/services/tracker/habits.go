package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/ordia/internal/database"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// HabitService manages habits and their per-day completions
type HabitService struct {
	habits      database.HabitRepositoryInterface
	completions database.HabitCompletionRepositoryInterface
	clock
}

// NewHabitService creates a new habit service
func NewHabitService(habits database.HabitRepositoryInterface, completions database.HabitCompletionRepositoryInterface, opts ...Option) *HabitService {
	return &HabitService{habits: habits, completions: completions, clock: newClock(opts)}
}

// List returns a window of the user's habits
func (s *HabitService) List(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*models.Habit, error) {
	return s.habits.ListByUser(ctx, userID, skip, limit)
}

// Create stores a new habit owned by userID
func (s *HabitService) Create(ctx context.Context, userID uuid.UUID, name string, description *string) (*models.Habit, error) {
	habit := &models.Habit{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
	}
	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete removes a habit and its completions
func (s *HabitService) Delete(ctx context.Context, userID, habitID uuid.UUID) (*models.Habit, error) {
	return s.habits.DeleteForUser(ctx, userID, habitID)
}

// Completions returns the completions of every habit the user owns
func (s *HabitService) Completions(ctx context.Context, userID uuid.UUID) ([]*models.HabitCompletion, error) {
	return s.completions.ListByUser(ctx, userID)
}

// Toggle flips whether the habit is completed on the calendar day of day and
// returns the habit's full completion list afterwards. A new completion is
// stamped with that day and the current time of day.
func (s *HabitService) Toggle(ctx context.Context, userID, habitID uuid.UUID, day time.Time) ([]*models.HabitCompletion, error) {
	ctx, span := telemetry.StartSpan(ctx, "tracker.habit_toggle", attribute.String("habit_id", habitID.String()))
	defer span.End()

	if _, err := s.habits.GetByIDForUser(ctx, userID, habitID); err != nil {
		return nil, err
	}

	from, to := s.dayRange(day)
	existing, err := s.completions.FindInRange(ctx, habitID, from, to)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.completions.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to clear habit completion: %w", err)
		}
	} else {
		completion := &models.HabitCompletion{
			ID:          uuid.New(),
			HabitID:     habitID,
			CompletedAt: s.onDay(day, s.now()),
		}
		if err := s.completions.Create(ctx, completion); err != nil {
			return nil, fmt.Errorf("failed to record habit completion: %w", err)
		}
	}

	return s.completions.ListByHabit(ctx, habitID)
}
