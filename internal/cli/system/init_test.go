package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage/sqlite"
)

func setupTestInitDB(t *testing.T) (*cli.Context, string, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)

	ctx := &cli.Context{Store: store}
	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return ctx, dbPath, cleanup
}

// setupTestStore returns a context over an initialized store
func setupTestStore(t *testing.T) (*cli.Context, *sqlite.Store, func()) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return &cli.Context{Store: store}, store, func() { store.Close() }
}

func TestInitCmd_Success(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Errorf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("initial init failed: %v", err)
	}
	if _, err := ctx.Store.SaveEntry(models.JournalEntry{EntryDate: "2026-01-10", Gratitude: "Rain"}); err != nil {
		t.Fatalf("failed to save entry: %v", err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force failed: %v", err)
	}

	list, err := ctx.Store.ListEntries(true)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("ListEntries() after force = %d entries, want 0", len(list))
	}
}

func TestInitCmd_ForceWithNonExistentDatabase(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("init with force on non-existent database failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created")
	}
}

func TestInitCmd_ForceRejectsSameSource(t *testing.T) {
	ctx, dbPath, cleanup := setupTestInitDB(t)
	defer cleanup()

	if err := (&InitCmd{Force: true, Source: dbPath}).Run(ctx); err == nil {
		t.Error("init --force with itself as source should fail")
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	srcCtx, srcStore, srcCleanup := setupTestStore(t)
	defer srcCleanup()

	for _, e := range []models.JournalEntry{
		{EntryDate: "2026-01-10", Gratitude: "Rain"},
		{EntryDate: "2026-01-12", Reflection: "Long day"},
		{EntryDate: "2026-01-13", Mood: "😐 Neutral"},
	} {
		if _, err := srcCtx.Store.SaveEntry(e); err != nil {
			t.Fatalf("failed to save source entry: %v", err)
		}
	}
	if err := srcCtx.Store.DeleteEntry("2026-01-13"); err != nil {
		t.Fatalf("failed to delete source entry: %v", err)
	}
	if _, err := srcCtx.Store.SaveWeeklyReview(models.WeeklyReview{WeekNumber: 1, Wins: "Shipped"}); err != nil {
		t.Fatalf("failed to save source review: %v", err)
	}
	if err := srcCtx.Store.RecordRun(models.GenerationRun{Trigger: "cli", Pages: 134}); err != nil {
		t.Fatalf("failed to record source run: %v", err)
	}
	srcPath := srcStore.GetConfigPath()
	srcStore.Close()

	ctx, _, cleanup := setupTestInitDB(t)
	defer cleanup()
	if err := (&InitCmd{Source: srcPath}).Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	byDay, err := ctx.Store.GetEntriesByDay()
	if err != nil {
		t.Fatalf("GetEntriesByDay() error = %v", err)
	}
	if len(byDay) != 2 || byDay[1].Gratitude != "Rain" || byDay[3].Reflection != "Long day" {
		t.Errorf("copied entries by day = %+v, want days 1 and 3", byDay)
	}
	all, err := ctx.Store.ListEntries(true)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListEntries(true) = %d entries, want 3 including the deleted one", len(all))
	}
	if r, err := ctx.Store.GetWeeklyReview(1); err != nil || r.Wins != "Shipped" {
		t.Errorf("GetWeeklyReview(1) = %+v, %v, want the copied review", r, err)
	}
	if runs, err := ctx.Store.ListRuns(0); err != nil || len(runs) != 1 {
		t.Errorf("ListRuns() = %d runs, %v, want 1", len(runs), err)
	}
}
