package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

const entryColumns = `id, to_char(entry_date, 'YYYY-MM-DD'), day_number, gratitude, priority_1, priority_2, priority_3,
       tasks::text, reflection, mood, completed, created_at, updated_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (models.JournalEntry, error) {
	var e models.JournalEntry
	var tasks string
	var deletedAt sql.NullTime

	err := row.Scan(
		&e.ID, &e.EntryDate, &e.DayNumber, &e.Gratitude, &e.Priority1, &e.Priority2, &e.Priority3,
		&tasks, &e.Reflection, &e.Mood, &e.Completed, &e.CreatedAt, &e.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return models.JournalEntry{}, err
	}

	if tasks != "" {
		if err := json.Unmarshal([]byte(tasks), &e.Tasks); err != nil {
			return models.JournalEntry{}, fmt.Errorf("entry %s has malformed tasks: %w", e.EntryDate, err)
		}
	}
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Time
	}
	return e, nil
}

func (s *Store) SaveEntry(entry models.JournalEntry) (models.JournalEntry, error) {
	if err := entry.Validate(); err != nil {
		return models.JournalEntry{}, err
	}

	tasks := entry.Tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to marshal tasks: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var first sql.NullString
	err = tx.QueryRow("SELECT to_char(MIN(entry_date), 'YYYY-MM-DD') FROM journal_entries WHERE deleted_at IS NULL").Scan(&first)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to find program start: %w", err)
	}
	day, err := storage.DayNumber(first.String, entry.EntryDate)
	if err != nil {
		return models.JournalEntry{}, err
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
INSERT INTO journal_entries (
    id, entry_date, day_number, gratitude, priority_1, priority_2, priority_3,
    tasks, reflection, mood, completed, created_at, updated_at, deleted_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, $10, $11, $12, $12, NULL)
ON CONFLICT (entry_date) DO UPDATE SET
    day_number = EXCLUDED.day_number,
    gratitude = EXCLUDED.gratitude,
    priority_1 = EXCLUDED.priority_1,
    priority_2 = EXCLUDED.priority_2,
    priority_3 = EXCLUDED.priority_3,
    tasks = EXCLUDED.tasks,
    reflection = EXCLUDED.reflection,
    mood = EXCLUDED.mood,
    completed = EXCLUDED.completed,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`,
		uuid.New().String(), entry.EntryDate, day, entry.Gratitude, entry.Priority1, entry.Priority2, entry.Priority3,
		string(tasksJSON), entry.Reflection, entry.Mood, entry.Completed, now,
	)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to save entry: %w", err)
	}

	saved, err := scanEntry(tx.QueryRow("SELECT "+entryColumns+" FROM journal_entries WHERE entry_date = $1", entry.EntryDate))
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to read saved entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.JournalEntry{}, fmt.Errorf("failed to commit entry: %w", err)
	}
	return saved, nil
}

func (s *Store) GetEntry(date string) (models.JournalEntry, error) {
	e, err := scanEntry(s.db.QueryRow(
		"SELECT "+entryColumns+" FROM journal_entries WHERE entry_date = $1 AND deleted_at IS NULL", date))
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, fmt.Errorf("entry for %s: %w", date, storage.ErrNotFound)
	}
	return e, err
}

// GetEntriesByDay keys live entries by day number. When two dates share a
// day the later date wins.
func (s *Store) GetEntriesByDay() (models.EntriesByDay, error) {
	entries, err := s.ListEntries(false)
	if err != nil {
		return nil, err
	}
	byDay := make(models.EntriesByDay, len(entries))
	for _, e := range entries {
		byDay[e.DayNumber] = e
	}
	return byDay, nil
}

func (s *Store) ListEntries(includeDeleted bool) ([]models.JournalEntry, error) {
	query := "SELECT " + entryColumns + " FROM journal_entries"
	if !includeDeleted {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY entry_date"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteEntry(date string) error {
	var deletedAt sql.NullTime
	err := s.db.QueryRow("SELECT deleted_at FROM journal_entries WHERE entry_date = $1", date).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("entry for %s: %w", date, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to check entry existence: %w", err)
	}

	if deletedAt.Valid {
		return fmt.Errorf("entry for %s is already deleted", date)
	}

	_, err = s.db.Exec("UPDATE journal_entries SET deleted_at = $1 WHERE entry_date = $2", time.Now().UTC(), date)
	return err
}

func (s *Store) RestoreEntry(date string) error {
	var deletedAt sql.NullTime
	err := s.db.QueryRow("SELECT deleted_at FROM journal_entries WHERE entry_date = $1", date).Scan(&deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("entry for %s: %w", date, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to check entry existence: %w", err)
	}

	if !deletedAt.Valid {
		return fmt.Errorf("cannot restore an entry that is not deleted: %s", date)
	}

	_, err = s.db.Exec("UPDATE journal_entries SET deleted_at = NULL WHERE entry_date = $1", date)
	return err
}
