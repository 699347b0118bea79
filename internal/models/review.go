package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
)

// WeeklyReview holds the written answers for one weekly review page
type WeeklyReview struct {
	ID         string     `json:"id,omitempty"`
	WeekNumber int        `json:"week_number"`
	Wins       string     `json:"wins,omitempty"`
	Obstacles  string     `json:"obstacles,omitempty"`
	Lessons    string     `json:"lessons,omitempty"`
	NextSteps  string     `json:"next_steps,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitzero"`
	UpdatedAt  time.Time  `json:"updated_at,omitzero"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// MaxReviewWeek is the last week that gets a review page. Day 90 closes the
// program with a checkpoint instead of a thirteenth review.
const MaxReviewWeek = (constants.ProgramDays - 1) / constants.WeekLength

func (r WeeklyReview) Validate() error {
	if r.WeekNumber < 1 || r.WeekNumber > MaxReviewWeek {
		return fmt.Errorf("week_number must be between 1 and %d, got %d", MaxReviewWeek, r.WeekNumber)
	}
	return nil
}

// ReviewsByWeek maps a review week (1..12) to its answers
type ReviewsByWeek map[int]WeeklyReview

// Get returns the review for week, or nil when none was written
func (m ReviewsByWeek) Get(week int) *WeeklyReview {
	r, ok := m[week]
	if !ok {
		return nil
	}
	return &r
}

func (m *ReviewsByWeek) UnmarshalJSON(data []byte) error {
	decoded, err := decodeIndexed[WeeklyReview](data, MaxReviewWeek)
	if err != nil {
		return fmt.Errorf("reviewsByWeek: %w", err)
	}
	*m = decoded
	return nil
}
