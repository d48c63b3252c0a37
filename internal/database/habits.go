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

const habitColumns = `id, user_id, name, description, created_at`

// HabitRepository handles habit database operations
type HabitRepository struct {
	db *DB
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func scanHabit(row rowScanner) (*models.Habit, error) {
	habit := &models.Habit{}
	var description sql.NullString

	err := row.Scan(
		&habit.ID,
		&habit.UserID,
		&habit.Name,
		&description,
		&habit.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	habit.Description = stringPtr(description)
	return habit, nil
}

// Create creates a new habit
func (r *HabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	query := `
		INSERT INTO habits (id, user_id, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if habit.ID == uuid.Nil {
		habit.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		habit.ID,
		habit.UserID,
		habit.Name,
		nullString(habit.Description),
		time.Now(),
	).Scan(&habit.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}

	return nil
}

// GetByIDForUser retrieves a habit owned by userID
func (r *HabitRepository) GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	habit, err := scanHabit(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Habit")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	return habit, nil
}

// ListByUser retrieves a window of a user's habits in creation order
func (r *HabitRepository) ListByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*models.Habit, error) {
	query := `
		SELECT ` + habitColumns + `
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	habits := []*models.Habit{}
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}

	return habits, nil
}

// DeleteForUser removes a habit owned by userID together with all of its
// completions and returns the deleted habit
func (r *HabitRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) (*models.Habit, error) {
	var deleted *models.Habit

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		lockQuery := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2 FOR UPDATE`
		habit, err := scanHabit(tx.QueryRowContext(ctx, lockQuery, id, userID))
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Habit")
		}
		if err != nil {
			return fmt.Errorf("failed to lock habit: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete habit completions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}

		deleted = habit
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}
