package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/auth"
	"github.com/benvon/ordia/internal/middleware"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/services/tracker"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[uuid.UUID]*models.User{}}
}

func (m *memoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperr.Conflict("A user with this email already exists.")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) setActive(email string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u.IsActive = active
		}
	}
}

type memoryTodos struct {
	mu    sync.Mutex
	todos []*models.Todo
}

func (m *memoryTodos) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Todo{}
	for i := len(m.todos) - 1; i >= 0; i-- {
		if m.todos[i].UserID == userID {
			copied := *m.todos[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryTodos) GetByIDForUser(_ context.Context, userID, id uuid.UUID) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.todos {
		if t.ID == id && t.UserID == userID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Todo")
}

func (m *memoryTodos) Create(_ context.Context, todo *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	todo.CreatedAt = time.Now()
	copied := *todo
	m.todos = append(m.todos, &copied)
	return nil
}

func (m *memoryTodos) Update(_ context.Context, todo *models.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.todos {
		if t.ID == todo.ID && t.UserID == todo.UserID {
			todo.CreatedAt = t.CreatedAt
			copied := *todo
			m.todos[i] = &copied
			return nil
		}
	}
	return apperr.NotFound("Todo")
}

func (m *memoryTodos) DeleteForUser(_ context.Context, userID, id uuid.UUID) (*models.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.todos {
		if t.ID == id && t.UserID == userID {
			m.todos = append(m.todos[:i], m.todos[i+1:]...)
			return t, nil
		}
	}
	return nil, apperr.NotFound("Todo")
}

type memoryHabits struct {
	mu          sync.Mutex
	habits      []*models.Habit
	completions []*models.HabitCompletion
}

func (m *memoryHabits) ListByUser(_ context.Context, userID uuid.UUID, skip, limit int) ([]*models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Habit{}
	for _, h := range m.habits {
		if h.UserID == userID {
			copied := *h
			out = append(out, &copied)
		}
	}
	if skip > len(out) {
		skip = len(out)
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryHabits) GetByIDForUser(_ context.Context, userID, id uuid.UUID) (*models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.habits {
		if h.ID == id && h.UserID == userID {
			copied := *h
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Habit")
}

func (m *memoryHabits) Create(_ context.Context, habit *models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	habit.CreatedAt = time.Now()
	copied := *habit
	m.habits = append(m.habits, &copied)
	return nil
}

func (m *memoryHabits) DeleteForUser(_ context.Context, userID, id uuid.UUID) (*models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, h := range m.habits {
		if h.ID == id && h.UserID == userID {
			m.habits = append(m.habits[:i], m.habits[i+1:]...)
			kept := m.completions[:0]
			for _, c := range m.completions {
				if c.HabitID != id {
					kept = append(kept, c)
				}
			}
			m.completions = kept
			return h, nil
		}
	}
	return nil, apperr.NotFound("Habit")
}

// memoryCompletions shares storage with memoryHabits so deletes cascade
type memoryCompletions struct {
	*memoryHabits
}

func (m memoryCompletions) FindInRange(_ context.Context, habitID uuid.UUID, from, to time.Time) (*models.HabitCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.completions {
		if c.HabitID == habitID && !c.CompletedAt.Before(from) && !c.CompletedAt.After(to) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m memoryCompletions) Create(_ context.Context, c *models.HabitCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *c
	m.completions = append(m.completions, &copied)
	return nil
}

func (m memoryCompletions) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.completions {
		if c.ID == id {
			m.completions = append(m.completions[:i], m.completions[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Habit completion")
}

func (m memoryCompletions) ListByHabit(_ context.Context, habitID uuid.UUID) ([]*models.HabitCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.HabitCompletion{}
	for _, c := range m.completions {
		if c.HabitID == habitID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}

func (m memoryCompletions) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.HabitCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owned := map[uuid.UUID]bool{}
	for _, h := range m.habits {
		if h.UserID == userID {
			owned[h.ID] = true
		}
	}
	out := []*models.HabitCompletion{}
	for _, c := range m.completions {
		if owned[c.HabitID] {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memoryLogs struct {
	mu   sync.Mutex
	logs []*models.DailyLog
}

func (m *memoryLogs) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.DailyLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.DailyLog{}
	for _, l := range m.logs {
		if l.UserID == userID {
			copied := *l
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memoryLogs) FindInRange(_ context.Context, userID uuid.UUID, from, to time.Time) (*models.DailyLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		if l.UserID == userID && !l.Date.Before(from) && !l.Date.After(to) {
			copied := *l
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryLogs) Create(_ context.Context, log *models.DailyLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *log
	m.logs = append(m.logs, &copied)
	return nil
}

func (m *memoryLogs) Update(_ context.Context, log *models.DailyLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.logs {
		if l.ID == log.ID && l.UserID == log.UserID {
			l.Content = log.Content
			l.Mood = log.Mood
			return nil
		}
	}
	return apperr.NotFound("Daily log")
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error {
	return p.err
}

// testAPI is the full router wired to in-memory storage and real auth
type testAPI struct {
	t        *testing.T
	router   *mux.Router
	location *time.Location
	users    *memoryUsers
	todos    *memoryTodos
	habits   *memoryHabits
	logs     *memoryLogs
}

const testSecret = "test-secret-key"

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIIn(t, time.UTC)
}

// newTestAPIIn builds the test API with loc as the server location
func newTestAPIIn(t *testing.T, loc *time.Location) *testAPI {
	t.Helper()

	logger := zap.NewNop()
	api := &testAPI{
		t:        t,
		router:   mux.NewRouter(),
		location: loc,
		users:    newMemoryUsers(),
		todos:    &memoryTodos{},
		habits:   &memoryHabits{},
		logs:     &memoryLogs{},
	}

	issuer, err := auth.NewTokenIssuer(testSecret)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}
	resolver := auth.NewResolver(issuer, api.users)

	habitService := tracker.NewHabitService(api.habits, memoryCompletions{api.habits}, tracker.WithLocation(loc))
	logService := tracker.NewLogService(api.logs, tracker.WithLocation(loc))

	Routes{
		Auth:    NewAuthHandler(api.users, resolver, issuer, 30*time.Minute, logger),
		Todos:   NewTodoHandler(api.todos, api.location, logger),
		Habits:  NewHabitHandler(habitService, loc, logger),
		Logs:    NewLogHandler(logService, loc, logger),
		Health:  NewHealthChecker(fakePinger{}, "Ordia API"),
		Version: NewVersionHandler(nil, logger),
	}.Register(api.router, middleware.Auth(resolver, logger))

	return api
}

// do sends a JSON request, with a bearer token when token is not empty
func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			if err != nil {
				a.t.Fatalf("failed to encode body: %v", err)
			}
			raw = string(encoded)
		}
		reader = strings.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// signup creates an account and returns a token for it
func (a *testAPI) signup(email string) string {
	a.t.Helper()

	rr := a.do(http.MethodPost, "/auth/signup", "", map[string]string{"email": email, "password": "pw123456"})
	if rr.Code != http.StatusOK {
		a.t.Fatalf("signup status = %d, body = %s", rr.Code, rr.Body.String())
	}
	return a.login(email, "pw123456")
}

// login posts form credentials and returns the access token
func (a *testAPI) login(email, password string) string {
	a.t.Helper()

	rr := a.loginForm(email, password)
	if rr.Code != http.StatusOK {
		a.t.Fatalf("login status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var token models.AccessToken
	decodeBody(a.t, rr, &token)
	return token.AccessToken
}

func (a *testAPI) loginForm(email, password string) *httptest.ResponseRecorder {
	form := "username=" + strings.ReplaceAll(email, "@", "%40") + "&password=" + password
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}
