package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/ordia/internal/database"
	"github.com/benvon/ordia/internal/models"
	"github.com/benvon/ordia/internal/telemetry"
	"github.com/google/uuid"
)

// LogInput is the payload of a daily log upsert
type LogInput struct {
	Date    time.Time
	Content string
	Mood    *string
}

// LogService keeps at most one daily log per user per calendar day
type LogService struct {
	logs database.DailyLogRepositoryInterface
	clock
}

// NewLogService creates a new daily log service
func NewLogService(logs database.DailyLogRepositoryInterface, opts ...Option) *LogService {
	return &LogService{logs: logs, clock: newClock(opts)}
}

// List returns every log of the user
func (s *LogService) List(ctx context.Context, userID uuid.UUID) ([]*models.DailyLog, error) {
	return s.logs.ListByUser(ctx, userID)
}

// GetByDate returns the user's log for the calendar day of day, or nil
func (s *LogService) GetByDate(ctx context.Context, userID uuid.UUID, day time.Time) (*models.DailyLog, error) {
	from, to := s.dayRange(day)
	return s.logs.FindInRange(ctx, userID, from, to)
}

// Upsert overwrites the log for the calendar day of in.Date or creates it.
// The last write wins.
func (s *LogService) Upsert(ctx context.Context, userID uuid.UUID, in LogInput) (*models.DailyLog, error) {
	ctx, span := telemetry.StartSpan(ctx, "tracker.log_upsert")
	defer span.End()

	from, to := s.dayRange(in.Date)

	existing, err := s.logs.FindInRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		existing.Content = in.Content
		existing.Mood = in.Mood
		if err := s.logs.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to overwrite daily log: %w", err)
		}
		return existing, nil
	}

	log := &models.DailyLog{
		ID:      uuid.New(),
		UserID:  userID,
		Date:    s.wallClock(in.Date),
		Content: in.Content,
		Mood:    in.Mood,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create daily log: %w", err)
	}
	return log, nil
}
