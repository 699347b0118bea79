package journal

import (
	"fmt"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// Slot is one scheduled page of the 90-day program
type Slot struct {
	Kind models.PageKind
	// Day is set for daily and checkpoint pages
	Day int
	// Week is set for weekly review pages
	Week int
}

// Anchor is the page map key of the slot
func (s Slot) Anchor() string {
	switch s.Kind {
	case models.KindWeeklyReview:
		return fmt.Sprintf("week-%d", s.Week)
	case models.KindRewardCheckpoint:
		return fmt.Sprintf("checkpoint-%d", s.Day)
	default:
		return fmt.Sprintf("day-%d", s.Day)
	}
}

// ElementID is the id attribute a slot carries. Only the first daily page
// and the first weekly review have one; they are link targets from outside
// the document.
func (s Slot) ElementID() string {
	switch {
	case s.Kind == models.KindDailyEntry && s.Day == 1:
		return "chapter-3-daily"
	case s.Kind == models.KindWeeklyReview && s.Week == 1:
		return "chapter-3-weekly"
	case s.Kind == models.KindRewardCheckpoint:
		return s.Anchor()
	}
	return ""
}

// Title names the slot in page listings
func (s Slot) Title() string {
	switch s.Kind {
	case models.KindWeeklyReview:
		return fmt.Sprintf("Week %d Review", s.Week)
	case models.KindRewardCheckpoint:
		return fmt.Sprintf("%d-Day Checkpoint", s.Day)
	default:
		return fmt.Sprintf("Day %d", s.Day)
	}
}

// Sequence lays out the daily program: a page per day, a weekly review
// after every seventh day except the last, and a reward checkpoint after
// every thirtieth day
func Sequence() []Slot {
	slots := make([]Slot, 0, constants.ProgramDays+constants.ProgramDays/constants.WeekLength+constants.ProgramDays/constants.CheckpointInterval)
	for day := 1; day <= constants.ProgramDays; day++ {
		slots = append(slots, Slot{Kind: models.KindDailyEntry, Day: day})
		if day%constants.WeekLength == 0 && day < constants.ProgramDays {
			slots = append(slots, Slot{Kind: models.KindWeeklyReview, Week: day / constants.WeekLength})
		}
		if day%constants.CheckpointInterval == 0 {
			slots = append(slots, Slot{Kind: models.KindRewardCheckpoint, Day: day})
		}
	}
	return slots
}
