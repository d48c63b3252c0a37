package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyLog is a journal entry. A user has at most one per calendar day.
type DailyLog struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
	Mood    *string   `json:"mood"`
}
