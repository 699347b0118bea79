package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

const reviewColumns = `id, week_number, wins, obstacles, lessons, next_steps, created_at, updated_at`

func scanReview(row scanner) (models.WeeklyReview, error) {
	var r models.WeeklyReview
	err := row.Scan(&r.ID, &r.WeekNumber, &r.Wins, &r.Obstacles, &r.Lessons, &r.NextSteps, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *Store) SaveWeeklyReview(review models.WeeklyReview) (models.WeeklyReview, error) {
	if err := review.Validate(); err != nil {
		return models.WeeklyReview{}, err
	}

	_, err := s.db.Exec(`
INSERT INTO weekly_reviews (id, week_number, wins, obstacles, lessons, next_steps, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (week_number) DO UPDATE SET
    wins = EXCLUDED.wins,
    obstacles = EXCLUDED.obstacles,
    lessons = EXCLUDED.lessons,
    next_steps = EXCLUDED.next_steps,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`,
		uuid.New().String(), review.WeekNumber, review.Wins, review.Obstacles, review.Lessons, review.NextSteps, time.Now().UTC(),
	)
	if err != nil {
		return models.WeeklyReview{}, fmt.Errorf("failed to save weekly review: %w", err)
	}
	return s.GetWeeklyReview(review.WeekNumber)
}

func (s *Store) GetWeeklyReview(week int) (models.WeeklyReview, error) {
	r, err := scanReview(s.db.QueryRow(
		"SELECT "+reviewColumns+" FROM weekly_reviews WHERE week_number = $1 AND deleted_at IS NULL", week))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeeklyReview{}, fmt.Errorf("review for week %d: %w", week, storage.ErrNotFound)
	}
	return r, err
}

func (s *Store) GetReviewsByWeek() (models.ReviewsByWeek, error) {
	rows, err := s.db.Query("SELECT " + reviewColumns + " FROM weekly_reviews WHERE deleted_at IS NULL ORDER BY week_number")
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
