package system

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/leverage-journal/internal/backup"
	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/keyring"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

type DoctorCmd struct {
	Out string `help:"Journal output file to check." default:"${output}" env:"LEVERAGE_OUTPUT" type:"path"`
}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly failures are reported but do not fail the run
	warnOnly bool
	run      func() error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Schema version", needsDB: true, run: func() error { return checkSchemaVersion(ctx) }},
		{name: "Migrations complete", needsDB: true, run: func() error { return checkMigrationsComplete(ctx) }},
		{name: "Backups present", warnOnly: true, run: func() error { return checkBackupsPresent(ctx) }},
		{name: "Entry integrity", needsDB: true, run: func() error { return checkEntries(ctx.Store) }},
		{name: "Day numbering", needsDB: true, warnOnly: true, run: func() error { return checkDayCollisions(ctx.Store) }},
		{name: "Weekly reviews", needsDB: true, run: func() error { return checkReviews(ctx.Store) }},
		{name: "Page plan", run: checkPagePlan},
		{name: "Output directory", warnOnly: true, run: func() error { return checkOutputDir(cmd.Out) }},
		{name: "OS keyring", warnOnly: true, run: checkKeyring},
		{name: "Clock/timezone", run: checkClockTimezone},
	}

	hasError := false
	dbReachable := true
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run()
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.ListRuns(1); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	st, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return nil
	}
	st, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Current < st.Latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d. Run 'leverage migrate'", st.Current, st.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()
	if !cli.IsFileStore(path) {
		return nil
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'leverage backup create'")
	}
	return nil
}

func checkEntries(store storage.Provider) error {
	list, err := store.ListEntries(false)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	seen := make(map[string]bool, len(list))
	for _, e := range list {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %s: %w", e.EntryDate, err)
		}
		if e.DayNumber < 1 {
			return fmt.Errorf("entry %s has no day number", e.EntryDate)
		}
		if seen[e.EntryDate] {
			return fmt.Errorf("duplicate entry for date %s", e.EntryDate)
		}
		seen[e.EntryDate] = true
	}
	return nil
}

// checkDayCollisions warns when several dates land on one program day.
// Only the latest date is printed on that day's page.
func checkDayCollisions(store storage.Provider) error {
	list, err := store.ListEntries(false)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	byDay := make(map[int][]string)
	for _, e := range list {
		byDay[e.DayNumber] = append(byDay[e.DayNumber], e.EntryDate)
	}
	collisions := 0
	first := 0
	for day, dates := range byDay {
		if len(dates) > 1 {
			collisions++
			if first == 0 || day < first {
				first = day
			}
		}
	}
	if collisions > 0 {
		return fmt.Errorf("%d program day(s) have more than one entry (first: day %d); only the latest date is printed", collisions, first)
	}
	return nil
}

func checkReviews(store storage.Provider) error {
	reviews, err := store.GetReviewsByWeek()
	if err != nil {
		return fmt.Errorf("failed to get weekly reviews: %w", err)
	}
	for week, r := range reviews {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("review for week %d: %w", week, err)
		}
	}
	return nil
}

func checkPagePlan() error {
	pages, pm := journal.Outline()
	for i, p := range pages {
		if p.Number != i+1 {
			return fmt.Errorf("page %d is numbered %d", i+1, p.Number)
		}
		if n, ok := pm[p.Anchor]; !ok || n != p.Number {
			return fmt.Errorf("anchor %s does not resolve to page %d", p.Anchor, p.Number)
		}
	}
	if len(pm) != len(pages) {
		return fmt.Errorf("page map has %d anchors for %d pages", len(pm), len(pages))
	}
	return nil
}

func checkOutputDir(out string) error {
	if out == "" {
		return nil
	}
	dir := filepath.Dir(out)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s does not exist; generate will not write", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available; use %s and %s instead", constants.EnvDBConnection, constants.EnvAPIToken)
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
