package models

import (
	"time"

	"github.com/google/uuid"
)

// Habit is a recurring activity a user checks off per calendar day
type Habit struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// HabitCompletion marks a habit as done on the calendar day of CompletedAt.
// Ownership is reached through HabitID.
type HabitCompletion struct {
	ID          uuid.UUID `json:"id"`
	HabitID     uuid.UUID `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
}
