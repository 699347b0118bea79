package system

import (
	"fmt"

	"github.com/julianstephens/leverage-journal/internal/cli"
)

type MigrateCmd struct {
	Status bool `help:"Only show applied and pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(cli.Migrator)
	if !ok {
		return fmt.Errorf("storage backend does not support migrations")
	}

	if c.Status {
		st, err := m.MigrationStatus()
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		fmt.Printf("Schema version: %d (latest %d)\n", st.Current, st.Latest)
		for _, p := range st.Pending {
			fmt.Printf("  pending: %03d_%s\n", p.Version, p.Name)
		}
		if st.UpToDate() {
			fmt.Println("Database is up to date.")
		}
		return nil
	}

	ctx.PerformAutomaticBackup()
	count, err := m.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
