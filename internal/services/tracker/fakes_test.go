package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/benvon/ordia/internal/models"
	"github.com/google/uuid"
)

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

type memoryHabits struct {
	mu          sync.Mutex
	habits      map[uuid.UUID]*models.Habit
	completions []*models.HabitCompletion
}

func newMemoryHabits() *memoryHabits {
	return &memoryHabits{habits: map[uuid.UUID]*models.Habit{}}
}

func (m *memoryHabits) ListByUser(_ context.Context, userID uuid.UUID, skip, limit int) ([]*models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*models.Habit{}
	for _, h := range m.habits {
		if h.UserID == userID {
			all = append(all, h)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if skip >= len(all) {
		return []*models.Habit{}, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memoryHabits) GetByIDForUser(_ context.Context, userID, id uuid.UUID) (*models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.habits[id]; ok && h.UserID == userID {
		return h, nil
	}
	return nil, apperr.NotFound("Habit")
}

func (m *memoryHabits) Create(_ context.Context, habit *models.Habit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	habit.CreatedAt = time.Now().Add(time.Duration(len(m.habits)) * time.Millisecond)
	m.habits[habit.ID] = habit
	return nil
}

func (m *memoryHabits) DeleteForUser(_ context.Context, userID, id uuid.UUID) (*models.Habit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.habits[id]
	if !ok || h.UserID != userID {
		return nil, apperr.NotFound("Habit")
	}
	kept := m.completions[:0]
	for _, c := range m.completions {
		if c.HabitID != id {
			kept = append(kept, c)
		}
	}
	m.completions = kept
	delete(m.habits, id)
	return h, nil
}

// memoryCompletions shares storage with memoryHabits so cascades are visible.
type memoryCompletions struct {
	store *memoryHabits
}

func (m memoryCompletions) FindInRange(_ context.Context, habitID uuid.UUID, from, to time.Time) (*models.HabitCompletion, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for _, c := range m.store.completions {
		if c.HabitID == habitID && !c.CompletedAt.Before(from) && !c.CompletedAt.After(to) {
			return c, nil
		}
	}
	return nil, nil
}

func (m memoryCompletions) Create(_ context.Context, c *models.HabitCompletion) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.completions = append(m.store.completions, c)
	return nil
}

func (m memoryCompletions) Delete(_ context.Context, id uuid.UUID) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	for i, c := range m.store.completions {
		if c.ID == id {
			m.store.completions = append(m.store.completions[:i], m.store.completions[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Habit completion")
}

func (m memoryCompletions) ListByHabit(_ context.Context, habitID uuid.UUID) ([]*models.HabitCompletion, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := []*models.HabitCompletion{}
	for _, c := range m.store.completions {
		if c.HabitID == habitID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memoryCompletions) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.HabitCompletion, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := []*models.HabitCompletion{}
	for _, c := range m.store.completions {
		if h, ok := m.store.habits[c.HabitID]; ok && h.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}
