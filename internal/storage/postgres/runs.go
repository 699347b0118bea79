package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/leverage-journal/internal/models"
)

func (s *Store) RecordRun(run models.GenerationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.db.Exec(`
INSERT INTO generation_runs (id, trigger_name, pages, failures, duration_ms, error, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Trigger, run.Pages, run.Failures, run.Duration.Milliseconds(), run.Error, run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record generation run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit below 1 returns all.
func (s *Store) ListRuns(limit int) ([]models.GenerationRun, error) {
	var limitArg sql.NullInt64
	if limit > 0 {
		limitArg = sql.NullInt64{Int64: int64(limit), Valid: true}
	}
	rows, err := s.db.Query(`
SELECT id, trigger_name, pages, failures, duration_ms, error, started_at
FROM generation_runs ORDER BY started_at DESC LIMIT $1`, limitArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.GenerationRun
	for rows.Next() {
		var r models.GenerationRun
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Trigger, &r.Pages, &r.Failures, &durationMs, &r.Error, &r.StartedAt); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
