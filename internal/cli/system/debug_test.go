package system

import (
	"testing"

	"github.com/julianstephens/leverage-journal/internal/models"
)

func TestDebugDBPathCmd(t *testing.T) {
	ctx, _, cleanup := setupTestStore(t)
	defer cleanup()

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Errorf("debug db-path command failed: %v", err)
	}
}

func TestDebugDumpEntryCmd(t *testing.T) {
	ctx, _, cleanup := setupTestStore(t)
	defer cleanup()

	today := getCurrentDate()
	if _, err := ctx.Store.SaveEntry(models.JournalEntry{EntryDate: today, Gratitude: "Tea"}); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}

	tests := []struct {
		date    string
		wantErr bool
	}{
		{today, false},
		{"today", false},
		{"1999-01-01", true},
		{"01/02/2026", true},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			err := (&DebugDumpEntryCmd{Date: tt.date}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("dump-entry %s error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
		})
	}
}

func TestDebugDumpReviewCmd(t *testing.T) {
	ctx, _, cleanup := setupTestStore(t)
	defer cleanup()

	if err := (&DebugDumpReviewCmd{Week: 2}).Run(ctx); err == nil {
		t.Error("dump-review of a missing week should fail")
	}
	if _, err := ctx.Store.SaveWeeklyReview(models.WeeklyReview{WeekNumber: 2, Lessons: "Sleep"}); err != nil {
		t.Fatalf("failed to save review: %v", err)
	}
	if err := (&DebugDumpReviewCmd{Week: 2}).Run(ctx); err != nil {
		t.Errorf("dump-review error = %v", err)
	}
}

func TestDebugDumpPageCmd(t *testing.T) {
	ctx, _, cleanup := setupTestStore(t)
	defer cleanup()

	if err := (&DebugDumpPageCmd{Anchor: "day-1"}).Run(ctx); err != nil {
		t.Errorf("dump-page day-1 error = %v", err)
	}
	if err := (&DebugDumpPageCmd{Anchor: "day-91"}).Run(ctx); err == nil {
		t.Error("dump-page of an unknown anchor should fail")
	}
	if err := (&DebugDumpPageMapCmd{}).Run(ctx); err != nil {
		t.Errorf("dump-page-map error = %v", err)
	}
}

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		date  string
		valid bool
	}{
		{"2026-01-01", true},
		{"2026-12-31", true},
		{"2026-13-01", false},
		{"2026-01-32", false},
		{"invalid", false},
		{"2026/01/01", false},
	}
	for _, tt := range tests {
		if got := isValidDate(tt.date); got != tt.valid {
			t.Errorf("isValidDate(%s) = %v, want %v", tt.date, got, tt.valid)
		}
	}
}
