package models

import (
	"time"

	"github.com/google/uuid"
)

// TodoPriority represents how urgent a todo is
type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
)

// Valid reports whether p is one of the known priorities
func (p TodoPriority) Valid() bool {
	switch p {
	case TodoPriorityLow, TodoPriorityMedium, TodoPriorityHigh:
		return true
	default:
		return false
	}
}

// TodoStatus represents the workflow state of a todo
type TodoStatus string

const (
	TodoStatusTodo       TodoStatus = "todo"
	TodoStatusInProgress TodoStatus = "in-progress"
	TodoStatusDone       TodoStatus = "done"
)

// Valid reports whether s is one of the known statuses
func (s TodoStatus) Valid() bool {
	switch s {
	case TodoStatusTodo, TodoStatusInProgress, TodoStatusDone:
		return true
	default:
		return false
	}
}

// Todo represents a todo item
type Todo struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"user_id"`
	Title       string       `json:"title"`
	IsCompleted bool         `json:"is_completed"`
	Priority    TodoPriority `json:"priority"`
	Status      TodoStatus   `json:"status"`
	DueDate     *time.Time   `json:"due_date"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TodoPatch holds the fields of a partial todo update. Nil pointers and an
// unset DueDate leave the stored value untouched.
type TodoPatch struct {
	Title       *string
	IsCompleted *bool
	Priority    *TodoPriority
	Status      *TodoStatus
	DueDate     Optional[Timestamp]
}

// Apply copies the supplied fields onto todo
func (p TodoPatch) Apply(todo *Todo) {
	if p.Title != nil {
		todo.Title = *p.Title
	}
	if p.IsCompleted != nil {
		todo.IsCompleted = *p.IsCompleted
	}
	if p.Priority != nil {
		todo.Priority = *p.Priority
	}
	if p.Status != nil {
		todo.Status = *p.Status
	}
	if p.DueDate.Set {
		if p.DueDate.Value == nil {
			todo.DueDate = nil
		} else {
			due := p.DueDate.Value.Time
			todo.DueDate = &due
		}
	}
}
