package backups

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/leverage-journal/internal/backup"
	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage/postgres"
	"github.com/julianstephens/leverage-journal/internal/storage/sqlite"
)

func setupTestBackupDB(t *testing.T) (*cli.Context, func()) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "leverage.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	return &cli.Context{Store: store}, func() { store.Close() }
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, cleanup := setupTestBackupDB(t)
	defer cleanup()

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("backup list on an empty directory failed: %v", err)
	}
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Errorf("backup list failed: %v", err)
	}

	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("found %d backups, want 1", len(backups))
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, cleanup := setupTestBackupDB(t)
	defer cleanup()

	if _, err := ctx.Store.SaveEntry(models.JournalEntry{EntryDate: "2026-02-01", Gratitude: "Snow"}); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	snap, err := backup.NewManager(ctx.Store.GetConfigPath()).Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := ctx.Store.DeleteEntry("2026-02-01"); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}

	if err := (&BackupRestoreCmd{BackupFile: filepath.Base(snap), Yes: true}).Run(ctx); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}

	if err := ctx.Store.Load(); err != nil {
		t.Fatalf("Load() after restore error = %v", err)
	}
	e, err := ctx.Store.GetEntry("2026-02-01")
	if err != nil {
		t.Fatalf("GetEntry() after restore error = %v", err)
	}
	if e.DeletedAt != nil || e.Gratitude != "Snow" {
		t.Errorf("restored entry = %+v, want the live entry", e)
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, cleanup := setupTestBackupDB(t)
	defer cleanup()

	if err := (&BackupRestoreCmd{BackupFile: "leverage-20000101-000000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("restore of a missing backup should fail")
	}
}

func TestBackupRejectsPostgres(t *testing.T) {
	ctx := &cli.Context{Store: postgres.New("postgres://user@localhost:5432/leverage")}
	if err := (&BackupCreateCmd{}).Run(ctx); err == nil {
		t.Error("backup create on PostgreSQL storage should fail")
	}
}
