package database

import (
	"context"
	"time"

	"github.com/benvon/ordia/internal/models"
	"github.com/google/uuid"
)

// UserRepositoryInterface defines the user operations used by handlers and the CLI
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TodoRepositoryInterface defines the owner-scoped todo operations
type TodoRepositoryInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error)
	GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Update(ctx context.Context, todo *models.Todo) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) (*models.Todo, error)
}

// HabitRepositoryInterface defines the owner-scoped habit operations
type HabitRepositoryInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*models.Habit, error)
	GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Habit, error)
	Create(ctx context.Context, habit *models.Habit) error
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) (*models.Habit, error)
}

// HabitCompletionRepositoryInterface defines the habit completion operations
type HabitCompletionRepositoryInterface interface {
	FindInRange(ctx context.Context, habitID uuid.UUID, from, to time.Time) (*models.HabitCompletion, error)
	Create(ctx context.Context, c *models.HabitCompletion) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByHabit(ctx context.Context, habitID uuid.UUID) ([]*models.HabitCompletion, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.HabitCompletion, error)
}

// DailyLogRepositoryInterface defines the owner-scoped daily log operations
type DailyLogRepositoryInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.DailyLog, error)
	FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (*models.DailyLog, error)
	Create(ctx context.Context, log *models.DailyLog) error
	Update(ctx context.Context, log *models.DailyLog) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface            = (*UserRepository)(nil)
	_ TodoRepositoryInterface            = (*TodoRepository)(nil)
	_ HabitRepositoryInterface           = (*HabitRepository)(nil)
	_ HabitCompletionRepositoryInterface = (*HabitCompletionRepository)(nil)
	_ DailyLogRepositoryInterface        = (*DailyLogRepository)(nil)
)
