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

const dailyLogColumns = `id, user_id, date, content, mood`

// DailyLogRepository handles daily log database operations
type DailyLogRepository struct {
	db *DB
}

// NewDailyLogRepository creates a new daily log repository
func NewDailyLogRepository(db *DB) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

func scanDailyLog(row rowScanner) (*models.DailyLog, error) {
	log := &models.DailyLog{}
	var mood sql.NullString

	if err := row.Scan(&log.ID, &log.UserID, &log.Date, &log.Content, &mood); err != nil {
		return nil, err
	}
	log.Mood = stringPtr(mood)
	return log, nil
}

// ListByUser returns a user's logs, most recent day first
func (r *DailyLogRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.DailyLog, error) {
	query := `SELECT ` + dailyLogColumns + ` FROM daily_logs WHERE user_id = $1 ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.DailyLog{}
	for rows.Next() {
		log, err := scanDailyLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily logs: %w", err)
	}

	return logs, nil
}

// FindInRange returns the first log of userID dated within [from, to], or nil
func (r *DailyLogRepository) FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (*models.DailyLog, error) {
	query := `
		SELECT ` + dailyLogColumns + `
		FROM daily_logs
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
		LIMIT 1
	`

	log, err := scanDailyLog(r.db.QueryRowContext(ctx, query, userID, from, to))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find daily log: %w", err)
	}

	return log, nil
}

// Create creates a new daily log
func (r *DailyLogRepository) Create(ctx context.Context, log *models.DailyLog) error {
	query := `
		INSERT INTO daily_logs (id, user_id, date, content, mood)
		VALUES ($1, $2, $3, $4, $5)
	`

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.Date,
		log.Content,
		nullString(log.Mood),
	)
	if err != nil {
		return fmt.Errorf("failed to create daily log: %w", err)
	}

	return nil
}

// Update overwrites the content and mood of a log owned by log.UserID
func (r *DailyLogRepository) Update(ctx context.Context, log *models.DailyLog) error {
	query := `
		UPDATE daily_logs
		SET content = $3, mood = $4
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, log.ID, log.UserID, log.Content, nullString(log.Mood))
	if err != nil {
		return fmt.Errorf("failed to update daily log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("Daily log")
	}

	return nil
}
