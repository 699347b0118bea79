package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// ErrNotFound is returned when a requested entry, review or run does not exist
var ErrNotFound = errors.New("not found")

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Journal entries
	// SaveEntry upserts the entry for its entry_date. The day number is
	// derived from the earliest stored entry date and the stored entry,
	// with id and timestamps filled in, is returned.
	SaveEntry(models.JournalEntry) (models.JournalEntry, error)
	GetEntry(date string) (models.JournalEntry, error)
	GetEntriesByDay() (models.EntriesByDay, error)
	ListEntries(includeDeleted bool) ([]models.JournalEntry, error)
	DeleteEntry(date string) error
	RestoreEntry(date string) error

	// Weekly reviews
	SaveWeeklyReview(models.WeeklyReview) (models.WeeklyReview, error)
	GetWeeklyReview(week int) (models.WeeklyReview, error)
	GetReviewsByWeek() (models.ReviewsByWeek, error)

	// Generation history
	RecordRun(models.GenerationRun) error
	ListRuns(limit int) ([]models.GenerationRun, error)

	GetConfigPath() string
}

// DayNumber returns the program day an entry dated date falls on when the
// program started on start. Both dates are YYYY-MM-DD. An empty start means
// date opens the program. The result is clamped to 1..90.
func DayNumber(start, date string) (int, error) {
	d, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return 0, fmt.Errorf("invalid entry date %q: %w", date, err)
	}
	if start == "" {
		return 1, nil
	}
	s, err := time.Parse(constants.DateFormat, start)
	if err != nil {
		return 0, fmt.Errorf("invalid program start date %q: %w", start, err)
	}

	day := int(d.Sub(s).Hours()/24) + 1
	return min(constants.ProgramDays, max(1, day)), nil
}
