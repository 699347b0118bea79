package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/leverage-journal/internal/models"
)

// runTimeFormat keeps a fixed width so started_at sorts as text
const runTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func (s *Store) RecordRun(run models.GenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO generation_runs (id, trigger_name, pages, failures, duration_ms, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Trigger, run.Pages, run.Failures, run.Duration.Milliseconds(), run.Error,
		run.StartedAt.UTC().Format(runTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit below 1 returns all.
func (s *Store) ListRuns(limit int) ([]models.GenerationRun, error) {
	if limit < 1 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, trigger_name, pages, failures, duration_ms, error, started_at
		FROM generation_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.GenerationRun
	for rows.Next() {
		var r models.GenerationRun
		var durationMs int64
		var startedAt string
		if err := rows.Scan(&r.ID, &r.Trigger, &r.Pages, &r.Failures, &durationMs, &r.Error, &startedAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.StartedAt, _ = time.Parse(runTimeFormat, startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
