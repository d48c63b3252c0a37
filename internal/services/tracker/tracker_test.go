package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/benvon/ordia/internal/apperr"
	"github.com/google/uuid"
)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func strPtr(s string) *string { return &s }

func TestLogService_UpsertLastWriteWins(t *testing.T) {
	t.Parallel()

	store := &memoryLogs{}
	svc := NewLogService(store, WithLocation(time.UTC))
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Upsert(ctx, userID, LogInput{
		Date:    time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC),
		Content: "A",
		Mood:    strPtr("good"),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	second, err := svc.Upsert(ctx, userID, LogInput{
		Date:    time.Date(2026, 2, 16, 21, 30, 0, 0, time.UTC),
		Content: "B",
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second upsert created a new log %s, want overwrite of %s", second.ID, first.ID)
	}
	if second.Content != "B" || second.Mood != nil {
		t.Errorf("Upsert() = %q/%v, want B/nil", second.Content, second.Mood)
	}

	logs, _ := svc.List(ctx, userID)
	if len(logs) != 1 {
		t.Fatalf("List() returned %d logs, want 1", len(logs))
	}

	got, err := svc.GetByDate(ctx, userID, time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetByDate() error = %v", err)
	}
	if got == nil || got.Content != "B" {
		t.Errorf("GetByDate() = %+v, want content B", got)
	}
}

func TestLogService_SeparateDaysAndUsers(t *testing.T) {
	t.Parallel()

	store := &memoryLogs{}
	svc := NewLogService(store, WithLocation(time.UTC))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	inputs := []struct {
		user uuid.UUID
		date time.Time
	}{
		{alice, time.Date(2026, 2, 16, 23, 59, 59, 0, time.UTC)},
		{alice, time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)},
		{bob, time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)},
	}
	for _, in := range inputs {
		if _, err := svc.Upsert(ctx, in.user, LogInput{Date: in.date, Content: "x"}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	if logs, _ := svc.List(ctx, alice); len(logs) != 2 {
		t.Errorf("alice has %d logs, want 2", len(logs))
	}
	if logs, _ := svc.List(ctx, bob); len(logs) != 1 {
		t.Errorf("bob has %d logs, want 1", len(logs))
	}

	got, err := svc.GetByDate(ctx, bob, time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetByDate() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetByDate() for an empty day = %+v, want nil", got)
	}
}

func TestLogService_StoresSubmittedWallClock(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*3600)
	store := &memoryLogs{}
	svc := NewLogService(store, WithLocation(time.UTC))
	userID := uuid.New()

	// 2026-02-16T08:00+09:00 is still the 15th in UTC; the log belongs to the
	// 16th and keeps its 08:00 reading.
	in := time.Date(2026, 2, 16, 8, 0, 0, 0, tokyo)
	log, err := svc.Upsert(context.Background(), userID, LogInput{Date: in, Content: "x"})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	want := time.Date(2026, 2, 16, 8, 0, 0, 0, time.UTC)
	if !log.Date.Equal(want) {
		t.Errorf("stored date = %v, want %v", log.Date, want)
	}

	got, _ := svc.GetByDate(context.Background(), userID, time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC))
	if got == nil {
		t.Fatal("GetByDate() = nil, want the stored log")
	}
}

func TestHabitService_ToggleIsInvolution(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 20, 14, 30, 15, 0, time.UTC)
	store := newMemoryHabits()
	svc := NewHabitService(store, memoryCompletions{store}, WithLocation(time.UTC), fixedClock(now))
	ctx := context.Background()
	userID := uuid.New()

	habit, err := svc.Create(ctx, userID, "read", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	completions, err := svc.Toggle(ctx, userID, habit.ID, day)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if len(completions) != 1 {
		t.Fatalf("Toggle() returned %d completions, want 1", len(completions))
	}
	want := time.Date(2026, 5, 1, 14, 30, 15, 0, time.UTC)
	if !completions[0].CompletedAt.Equal(want) {
		t.Errorf("completed_at = %v, want %v", completions[0].CompletedAt, want)
	}

	completions, err = svc.Toggle(ctx, userID, habit.ID, day)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if len(completions) != 0 {
		t.Errorf("second Toggle() returned %d completions, want 0", len(completions))
	}
}

func TestHabitService_ToggleReturnsAllDays(t *testing.T) {
	t.Parallel()

	store := newMemoryHabits()
	svc := NewHabitService(store, memoryCompletions{store}, WithLocation(time.UTC))
	ctx := context.Background()
	userID := uuid.New()
	habit, _ := svc.Create(ctx, userID, "run", strPtr("5k"))

	for _, d := range []int{1, 2, 3} {
		if _, err := svc.Toggle(ctx, userID, habit.ID, time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
	}
	completions, err := svc.Toggle(ctx, userID, habit.ID, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if len(completions) != 2 {
		t.Errorf("Toggle() returned %d completions, want 2", len(completions))
	}
}

func TestHabitService_OwnershipIsolation(t *testing.T) {
	t.Parallel()

	store := newMemoryHabits()
	svc := NewHabitService(store, memoryCompletions{store}, WithLocation(time.UTC))
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	habit, _ := svc.Create(ctx, alice, "read", nil)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Toggle(ctx, bob, habit.ID, day); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Toggle() by non-owner error = %v, want NotFound", err)
	}
	if _, err := svc.Delete(ctx, bob, habit.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Delete() by non-owner error = %v, want NotFound", err)
	}
	if _, err := svc.Toggle(ctx, alice, uuid.New(), day); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Toggle() of missing habit error = %v, want NotFound", err)
	}
	if completions, _ := svc.Completions(ctx, bob); len(completions) != 0 {
		t.Errorf("Completions() for bob = %d, want 0", len(completions))
	}
}

func TestHabitService_DeleteCascades(t *testing.T) {
	t.Parallel()

	store := newMemoryHabits()
	svc := NewHabitService(store, memoryCompletions{store}, WithLocation(time.UTC))
	ctx := context.Background()
	userID := uuid.New()
	keep, _ := svc.Create(ctx, userID, "keep", nil)
	drop, _ := svc.Create(ctx, userID, "drop", nil)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, _ = svc.Toggle(ctx, userID, keep.ID, day)
	_, _ = svc.Toggle(ctx, userID, drop.ID, day)

	deleted, err := svc.Delete(ctx, userID, drop.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted.ID != drop.ID {
		t.Errorf("Delete() returned %s, want %s", deleted.ID, drop.ID)
	}

	completions, _ := svc.Completions(ctx, userID)
	if len(completions) != 1 || completions[0].HabitID != keep.ID {
		t.Errorf("Completions() after delete = %+v, want only the kept habit", completions)
	}
	if _, err := svc.Delete(ctx, userID, drop.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("second Delete() error = %v, want NotFound", err)
	}
}

func TestHabitService_ListWindow(t *testing.T) {
	t.Parallel()

	store := newMemoryHabits()
	svc := NewHabitService(store, memoryCompletions{store})
	ctx := context.Background()
	userID := uuid.New()
	for _, name := range []string{"a", "b", "c"} {
		if _, err := svc.Create(ctx, userID, name, nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name        string
		skip, limit int
		want        int
	}{
		{"all", 0, 100, 3},
		{"skip one", 1, 100, 2},
		{"limit zero", 0, 0, 0},
		{"skip past end", 5, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			habits, err := svc.List(ctx, userID, tt.skip, tt.limit)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(habits) != tt.want {
				t.Errorf("List(%d, %d) returned %d, want %d", tt.skip, tt.limit, len(habits), tt.want)
			}
		})
	}
}
