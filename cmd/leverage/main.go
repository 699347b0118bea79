package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/cli/backups"
	"github.com/julianstephens/leverage-journal/internal/cli/book"
	"github.com/julianstephens/leverage-journal/internal/cli/days"
	"github.com/julianstephens/leverage-journal/internal/cli/system"
	"github.com/julianstephens/leverage-journal/internal/constants"
	errs "github.com/julianstephens/leverage-journal/internal/errors"
	"github.com/julianstephens/leverage-journal/internal/keyring"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/storage"
	"github.com/julianstephens/leverage-journal/internal/storage/postgres"
	"github.com/julianstephens/leverage-journal/internal/storage/sqlite"
)

var CLI struct {
	Version      kong.VersionFlag
	Config       string `help:"Database file path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the keyring, LEVERAGE_DB_CONNECTION or .pgpass." type:"string" default:"${config}" env:"LEVERAGE_CONFIG"`
	Debug        bool   `help:"Log debug output to stderr." env:"LEVERAGE_DEBUG"`
	BaseURL      string `name:"base-url" help:"Base URL chapter QR codes link to." default:"${base_url}" env:"LEVERAGE_BASE_URL"`
	NotifyURL    string `name:"notify-url" help:"Webhook posted after every generation run." env:"LEVERAGE_NOTIFY_URL"`
	NotifySecret string `name:"notify-secret" help:"Shared secret sent with run notifications." env:"LEVERAGE_NOTIFY_SECRET"`

	Init     system.InitCmd    `cmd:"" help:"Initialize journal storage."`
	Migrate  system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	DebugCmd system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Show keyring availability and stored secrets." default:"1"`
		Token  struct {
			Set    system.TokenSetCmd    `cmd:"" help:"Store (or generate) the journal server API token."`
			Delete system.TokenDeleteCmd `cmd:"" help:"Remove the stored API token."`
		} `cmd:"" help:"Manage the journal server API token."`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Entry struct {
		Add     days.EntryAddCmd     `cmd:"" help:"Write or update a daily entry."`
		List    days.EntryListCmd    `cmd:"" help:"List journal entries."`
		Show    days.EntryShowCmd    `cmd:"" help:"Show one daily entry."`
		Delete  days.EntryDeleteCmd  `cmd:"" help:"Delete a daily entry."`
		Restore days.EntryRestoreCmd `cmd:"" help:"Restore a deleted entry."`
		Import  days.EntryImportCmd  `cmd:"" help:"Import entries and reviews from JSON."`
		Export  days.EntryExportCmd  `cmd:"" help:"Export entries and reviews as a JOURNAL_ENTRIES message."`
	} `cmd:"" help:"Manage daily entries."`
	Review struct {
		Set  days.ReviewSetCmd  `cmd:"" help:"Write or update a weekly review."`
		List days.ReviewListCmd `cmd:"" help:"List weekly reviews."`
	} `cmd:"" help:"Manage weekly reviews."`
	Generate book.GenerateCmd `cmd:"" help:"Generate the journal document."`
	Serve    book.ServeCmd    `cmd:"" help:"Serve the journal over HTTP and websocket."`
	Watch    book.WatchCmd    `cmd:"" help:"Regenerate the journal when entry files land in a directory."`
	Browse   book.BrowseCmd   `cmd:"" help:"Browse the generated journal in the terminal." default:"1"`
	Pages    book.PagesCmd    `cmd:"" help:"List the journal's page plan."`
	Runs     book.RunsCmd     `cmd:"" help:"Show generation run history."`
	Qr       struct {
		Export book.QrExportCmd `cmd:"" help:"Export chapter QR codes as PNG files."`
	} `cmd:"" name:"qr" help:"QR code utilities."`
}

// storeOptional lists commands that still work when storage cannot be
// loaded; they fall back to file, remote or blank entries
var storeOptional = map[string]bool{
	"generate": true,
	"serve":    true,
	"watch":    true,
	"browse":   true,
	"pages":    true,
	"qr":       true,
}

// noLoad lists commands that open storage themselves or never touch it
var noLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("The Leverage Journal: a 90-day printable journal generator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":  constants.Version,
			"config":   constants.DefaultConfigPath,
			"output":   constants.DefaultOutputFile,
			"base_url": constants.DefaultBaseURL,
		},
	)

	configDir, err := configDir(CLI.Config)
	if err != nil {
		errs.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    command(ctx) == "serve" || command(ctx) == "watch",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := openStore(CLI.Config)
	if err != nil {
		errs.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:        store,
		ConfigDir:    configDir,
		BaseURL:      CLI.BaseURL,
		NotifyURL:    CLI.NotifyURL,
		NotifySecret: CLI.NotifySecret,
	}

	name := command(ctx)
	if !noLoad[name] {
		if err := store.Load(); err != nil {
			if !storeOptional[name] {
				errs.Fatal(errs.WithHint(err, "run 'leverage init' to create the journal database"))
			}
			logger.Debug("storage unavailable, continuing without it", "command", name, "err", err)
			appCtx.Store = nil
		}
	}
	if appCtx.Store != nil {
		defer appCtx.Store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
		errs.Fatal(err)
	}
}

// command returns the top-level command name
func command(ctx *kong.Context) string {
	name, _, _ := strings.Cut(ctx.Command(), " ")
	return name
}

// configDir is where logs live: next to the database file, or the default
// config directory for PostgreSQL
func configDir(config string) (string, error) {
	if cli.IsPostgres(config) {
		return cli.ExpandHome(filepath.Dir(constants.DefaultConfigPath)), nil
	}
	path, err := filepath.Abs(cli.ExpandHome(config))
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

func openStore(config string) (storage.Provider, error) {
	if !cli.IsPostgres(config) {
		return sqlite.NewStore(cli.ExpandHome(config)), nil
	}

	// a bare scheme means the full connection string lives outside the flag
	if config == "postgres://" || config == "postgresql://" {
		if connStr := os.Getenv(constants.EnvDBConnection); connStr != "" {
			return postgres.New(connStr), nil
		}
		stored, err := keyring.GetConnectionString()
		if err != nil {
			return nil, errs.WithHint(
				fmt.Errorf("no PostgreSQL connection string configured: %w", err),
				"run 'leverage keyring set CONNECTION_STRING' or export LEVERAGE_DB_CONNECTION")
		}
		return postgres.New(stored), nil
	}

	if _, err := postgres.ValidateConnString(config); err != nil {
		if errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, errs.WithHint(err,
				"store it with 'leverage keyring set', export LEVERAGE_DB_CONNECTION, or use .pgpass")
		}
		return nil, err
	}
	return postgres.New(config), nil
}
