package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/storage"
	"github.com/julianstephens/leverage-journal/internal/storage/postgres"
	"github.com/julianstephens/leverage-journal/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy journal data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if cli.IsFileStore(dbPath) {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized leverage storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying journal data from: %s\n", c.Source)
		if err := c.copyData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) copyData(ctx *cli.Context, sourcePath string) error {
	var src storage.Provider
	if cli.IsPostgres(sourcePath) {
		if valid, err := postgres.ValidateConnString(sourcePath); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
		src = postgres.New(sourcePath)
	} else {
		src = sqlite.NewStore(cli.ExpandHome(sourcePath))
	}

	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	return CopyJournal(src, ctx.Store)
}

// CopyJournal copies every entry, review and run from src into dst. Entries
// are copied oldest first so dst derives the same day numbers; soft-deleted
// entries stay deleted.
func CopyJournal(src, dst storage.Provider) error {
	fmt.Println("  Copying entries...")
	list, err := src.ListEntries(true)
	if err != nil {
		return fmt.Errorf("failed to get entries from source: %w", err)
	}
	for _, e := range list {
		deleted := e.DeletedAt != nil
		e.ID, e.DeletedAt = "", nil
		if _, err := dst.SaveEntry(e); err != nil {
			return fmt.Errorf("failed to save entry %s: %w", e.EntryDate, err)
		}
		if deleted {
			if err := dst.DeleteEntry(e.EntryDate); err != nil {
				return fmt.Errorf("failed to mark entry %s deleted: %w", e.EntryDate, err)
			}
		}
	}
	fmt.Printf("    Copied %d entries\n", len(list))

	fmt.Println("  Copying weekly reviews...")
	reviews, err := src.GetReviewsByWeek()
	if err != nil {
		return fmt.Errorf("failed to get weekly reviews from source: %w", err)
	}
	for _, r := range reviews {
		r.ID = ""
		if _, err := dst.SaveWeeklyReview(r); err != nil {
			return fmt.Errorf("failed to save review for week %d: %w", r.WeekNumber, err)
		}
	}
	fmt.Printf("    Copied %d weekly reviews\n", len(reviews))

	fmt.Println("  Copying generation history...")
	runs, err := src.ListRuns(0)
	if err != nil {
		return fmt.Errorf("failed to get generation runs from source: %w", err)
	}
	for i := len(runs) - 1; i >= 0; i-- {
		if err := dst.RecordRun(runs[i]); err != nil {
			return fmt.Errorf("failed to record run %s: %w", runs[i].ID, err)
		}
	}
	fmt.Printf("    Copied %d generation runs\n", len(runs))
	return nil
}
