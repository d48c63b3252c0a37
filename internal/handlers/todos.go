package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/ordia/internal/database"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	todoRepo database.TodoRepositoryInterface
	location *time.Location
	logger   *zap.Logger
}

// NewTodoHandler creates a new todo handler. Due dates without an offset are
// read in loc.
func NewTodoHandler(todoRepo database.TodoRepositoryInterface, loc *time.Location, logger *zap.Logger) *TodoHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TodoHandler{todoRepo: todoRepo, location: loc, logger: logger}
}

// RegisterRoutes registers todo routes on the given router.
// The router should already have the /todos prefix.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	handle(r, "", h.ListTodos, http.MethodGet)
	handle(r, "", h.CreateTodo, http.MethodPost)
	handle(r, "/{id}", h.UpdateTodo, http.MethodPatch)
	handle(r, "/{id}", h.DeleteTodo, http.MethodDelete)
}

// CreateTodoRequest represents a create todo request
type CreateTodoRequest struct {
	Title       string               `json:"title" validate:"required,max=500"`
	IsCompleted *bool                `json:"is_completed"`
	Priority    *models.TodoPriority `json:"priority" validate:"omitnil,todo_priority"`
	Status      *models.TodoStatus   `json:"status" validate:"omitnil,todo_status"`
	DueDate     *models.Timestamp    `json:"due_date"`
}

// UpdateTodoRequest represents a partial todo update. Omitted fields are
// left unchanged; due_date may be cleared with an explicit null.
type UpdateTodoRequest struct {
	Title       *string                           `json:"title" validate:"omitnil,min=1,max=500"`
	IsCompleted *bool                             `json:"is_completed"`
	Priority    *models.TodoPriority              `json:"priority" validate:"omitnil,todo_priority"`
	Status      *models.TodoStatus                `json:"status" validate:"omitnil,todo_status"`
	DueDate     models.Optional[models.Timestamp] `json:"due_date"`
}

func (req UpdateTodoRequest) patch(loc *time.Location) models.TodoPatch {
	due := req.DueDate
	if due.Value != nil {
		due.Value = &models.Timestamp{Time: due.Value.At(loc)}
	}
	return models.TodoPatch{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     due,
	}
}

// ListTodos lists the authenticated user's todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	todos, err := h.todoRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todos)
}

// CreateTodo creates a new todo
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	// Sanitize before validating so whitespace-only titles are rejected
	req.Title = validation.SanitizeText(req.Title)
	if err := validation.Struct(req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	todo := &models.Todo{
		ID:       uuid.New(),
		UserID:   user.ID,
		Title:    req.Title,
		Priority: models.TodoPriorityMedium,
		Status:   models.TodoStatusTodo,
	}
	if req.IsCompleted != nil {
		todo.IsCompleted = *req.IsCompleted
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.Status != nil {
		todo.Status = *req.Status
	}
	if req.DueDate != nil {
		due := req.DueDate.At(h.location)
		todo.DueDate = &due
	}

	if err := h.todoRepo.Create(r.Context(), todo); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

// UpdateTodo applies a partial update to a todo owned by the caller
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	id, err := pathID(r, "todo")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.Title != nil {
		sanitized := validation.SanitizeText(*req.Title)
		req.Title = &sanitized
	}
	if err := validation.Struct(req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	ctx := r.Context()
	todo, err := h.todoRepo.GetByIDForUser(ctx, user.ID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	req.patch(h.location).Apply(todo)

	if err := h.todoRepo.Update(ctx, todo); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

// DeleteTodo deletes a todo owned by the caller and returns it
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	id, err := pathID(r, "todo")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	todo, err := h.todoRepo.DeleteForUser(r.Context(), user.ID, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}
