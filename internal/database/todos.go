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

const todoColumns = `id, user_id, title, is_completed, priority, status, due_date, created_at`

// TodoRepository handles todo database operations
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	todo := &models.Todo{}
	var dueDate sql.NullTime

	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.IsCompleted,
		&todo.Priority,
		&todo.Status,
		&dueDate,
		&todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	todo.DueDate = timePtr(dueDate)
	return todo, nil
}

// Create creates a new todo
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	query := `
		INSERT INTO todos (id, user_id, title, is_completed, priority, status, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	if todo.ID == uuid.Nil {
		todo.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.IsCompleted,
		todo.Priority,
		todo.Status,
		nullTime(todo.DueDate),
		time.Now(),
	).Scan(&todo.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetByIDForUser retrieves a todo owned by userID
func (r *TodoRepository) GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Todo")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// ListByUser retrieves all todos for a user, newest first
func (r *TodoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	todos := []*models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// Update writes every mutable column of todo. The row must belong to todo.UserID.
func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	query := `
		UPDATE todos
		SET title = $3, is_completed = $4, priority = $5, status = $6, due_date = $7
		WHERE id = $1 AND user_id = $2
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.IsCompleted,
		todo.Priority,
		todo.Status,
		nullTime(todo.DueDate),
	).Scan(&todo.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Todo")
	}
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

// DeleteForUser removes a todo owned by userID and returns the deleted row
func (r *TodoRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) (*models.Todo, error) {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2 RETURNING ` + todoColumns

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Todo")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete todo: %w", err)
	}

	return todo, nil
}
