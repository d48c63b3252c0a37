package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/models"
	"github.com/google/uuid"
)

const completionColumns = `id, habit_id, completed_at`

// HabitCompletionRepository handles habit completion database operations.
// Callers verify habit ownership before touching completions.
type HabitCompletionRepository struct {
	db *DB
}

// NewHabitCompletionRepository creates a new habit completion repository
func NewHabitCompletionRepository(db *DB) *HabitCompletionRepository {
	return &HabitCompletionRepository{db: db}
}

func scanCompletion(row rowScanner) (*models.HabitCompletion, error) {
	c := &models.HabitCompletion{}
	if err := row.Scan(&c.ID, &c.HabitID, &c.CompletedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func collectCompletions(rows *sql.Rows) ([]*models.HabitCompletion, error) {
	defer rows.Close()

	completions := []*models.HabitCompletion{}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habit completions: %w", err)
	}
	return completions, nil
}

// FindInRange returns the first completion of habitID with from <= completed_at <= to,
// or nil when there is none
func (r *HabitCompletionRepository) FindInRange(ctx context.Context, habitID uuid.UUID, from, to time.Time) (*models.HabitCompletion, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE habit_id = $1 AND completed_at >= $2 AND completed_at <= $3
		ORDER BY completed_at
		LIMIT 1
	`

	c, err := scanCompletion(r.db.QueryRowContext(ctx, query, habitID, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find habit completion: %w", err)
	}

	return c, nil
}

// Create records a completion
func (r *HabitCompletionRepository) Create(ctx context.Context, c *models.HabitCompletion) error {
	query := `
		INSERT INTO habit_completions (id, habit_id, completed_at)
		VALUES ($1, $2, $3)
	`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.HabitID, c.CompletedAt); err != nil {
		return fmt.Errorf("failed to create habit completion: %w", err)
	}

	return nil
}

// Delete removes a completion by ID
func (r *HabitCompletionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM habit_completions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit completion: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("Habit completion")
	}

	return nil
}

// ListByHabit returns every completion of a habit, oldest first
func (r *HabitCompletionRepository) ListByHabit(ctx context.Context, habitID uuid.UUID) ([]*models.HabitCompletion, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM habit_completions
		WHERE habit_id = $1
		ORDER BY completed_at
	`

	rows, err := r.db.QueryContext(ctx, query, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit completions: %w", err)
	}
	return collectCompletions(rows)
}

// ListByUser returns the completions of every habit owned by userID
func (r *HabitCompletionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.HabitCompletion, error) {
	query := `
		SELECT c.id, c.habit_id, c.completed_at
		FROM habit_completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id = $1
		ORDER BY c.completed_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit completions: %w", err)
	}
	return collectCompletions(rows)
}
