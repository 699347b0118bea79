package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/logger"
)

// Task is one row of a daily page's task list
type Task struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// JournalEntry is a single day's journal content. Every text field is optional;
// a missing field renders as a blank line on the page.
type JournalEntry struct {
	ID         string     `json:"id,omitempty"`
	EntryDate  string     `json:"entry_date,omitempty"` // YYYY-MM-DD format
	DayNumber  int        `json:"day_number,omitempty"`
	Gratitude  string     `json:"gratitude,omitempty"`
	Priority1  string     `json:"priority_1,omitempty"`
	Priority2  string     `json:"priority_2,omitempty"`
	Priority3  string     `json:"priority_3,omitempty"`
	Tasks      []Task     `json:"tasks,omitempty"`
	Reflection string     `json:"reflection,omitempty"`
	Mood       string     `json:"mood,omitempty"`
	Completed  bool       `json:"completed,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitzero"`
	UpdatedAt  time.Time  `json:"updated_at,omitzero"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Priorities returns the three priority fields in page order
func (e JournalEntry) Priorities() [3]string {
	return [3]string{e.Priority1, e.Priority2, e.Priority3}
}

// Validate checks the fields required to persist an entry
func (e JournalEntry) Validate() error {
	if strings.TrimSpace(e.EntryDate) == "" {
		return errors.New("entry_date is required")
	}
	if _, err := time.Parse(constants.DateFormat, e.EntryDate); err != nil {
		return fmt.Errorf("invalid entry_date %q: expected YYYY-MM-DD", e.EntryDate)
	}
	if e.DayNumber < 0 || e.DayNumber > constants.ProgramDays {
		return fmt.Errorf("day_number must be between 1 and %d, got %d", constants.ProgramDays, e.DayNumber)
	}
	return nil
}

// EntriesByDay maps a program day (1..90) to that day's entry.
// Its JSON form is an object keyed by the day number as a string.
type EntriesByDay map[int]JournalEntry

// Get returns the entry for day, or nil when the day has none
func (m EntriesByDay) Get(day int) *JournalEntry {
	e, ok := m[day]
	if !ok {
		return nil
	}
	return &e
}

// Days returns the populated day numbers in ascending order
func (m EntriesByDay) Days() []int {
	days := make([]int, 0, len(m))
	for d := range m {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// UnmarshalJSON accepts string day keys and drops keys that are not
// integers in 1..90, null values and entries that fail to decode.
func (m *EntriesByDay) UnmarshalJSON(data []byte) error {
	decoded, err := decodeIndexed[JournalEntry](data, constants.ProgramDays)
	if err != nil {
		return fmt.Errorf("entriesByDay: %w", err)
	}
	*m = decoded
	return nil
}

// decodeIndexed decodes a JSON object keyed by 1-based integer strings.
// Keys outside 1..limit, non-integer keys, null values and values that do
// not decode as T are skipped. Only a malformed outer object is an error.
func decodeIndexed[T any](data []byte, limit int) (map[int]T, error) {
	if string(data) == "null" {
		return map[int]T{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[int]T, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || n < 1 || n > limit {
			continue
		}
		if string(v) == "null" {
			continue
		}
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			// a malformed day renders blank like a missing one
			logger.Warn("skipping malformed indexed value", "key", k, "err", err)
			continue
		}
		out[n] = item
	}
	return out, nil
}
