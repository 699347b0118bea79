package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

func scanReview(row scanner) (models.WeeklyReview, error) {
	var r models.WeeklyReview
	var createdAt, updatedAt string
	if err := row.Scan(&r.ID, &r.WeekNumber, &r.Wins, &r.Obstacles, &r.Lessons, &r.NextSteps, &createdAt, &updatedAt); err != nil {
		return models.WeeklyReview{}, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

func (s *Store) SaveWeeklyReview(review models.WeeklyReview) (models.WeeklyReview, error) {
	if err := review.Validate(); err != nil {
		return models.WeeklyReview{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO weekly_reviews (id, week_number, wins, obstacles, lessons, next_steps, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(week_number) DO UPDATE SET
			wins = excluded.wins,
			obstacles = excluded.obstacles,
			lessons = excluded.lessons,
			next_steps = excluded.next_steps,
			updated_at = excluded.updated_at,
			deleted_at = NULL`,
		uuid.New().String(), review.WeekNumber, review.Wins, review.Obstacles, review.Lessons, review.NextSteps, now, now,
	)
	if err != nil {
		return models.WeeklyReview{}, fmt.Errorf("failed to save weekly review: %w", err)
	}
	return s.GetWeeklyReview(review.WeekNumber)
}

func (s *Store) GetWeeklyReview(week int) (models.WeeklyReview, error) {
	r, err := scanReview(s.db.QueryRow(`
		SELECT id, week_number, wins, obstacles, lessons, next_steps, created_at, updated_at
		FROM weekly_reviews WHERE week_number = ? AND deleted_at IS NULL`, week))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeeklyReview{}, fmt.Errorf("review for week %d: %w", week, storage.ErrNotFound)
	}
	return r, err
}

func (s *Store) GetReviewsByWeek() (models.ReviewsByWeek, error) {
	rows, err := s.db.Query(`
		SELECT id, week_number, wins, obstacles, lessons, next_steps, created_at, updated_at
		FROM weekly_reviews WHERE deleted_at IS NULL ORDER BY week_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := models.ReviewsByWeek{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews[r.WeekNumber] = r
	}
	return reviews, rows.Err()
}
