package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/leverage-journal/internal/backup"
	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/keyring"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/migration"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/notifier"
	"github.com/julianstephens/leverage-journal/internal/qr"
	"github.com/julianstephens/leverage-journal/internal/server/metrics"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

type Context struct {
	Store storage.Provider
	// ConfigDir holds logs and backups
	ConfigDir string
	BaseURL   string

	NotifyURL    string
	NotifySecret string
}

// Migrator is implemented by stores that track a schema version
type Migrator interface {
	MigrationStatus() (migration.Status, error)
	Migrate(logFn func(string)) (int, error)
}

// PerformAutomaticBackup snapshots a file-backed store and only logs failures
func (c *Context) PerformAutomaticBackup() {
	path := c.Store.GetConfigPath()
	if !IsFileStore(path) {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// IsFileStore reports whether path names a SQLite file rather than a server
func IsFileStore(path string) bool {
	if path == "postgresql" || IsPostgres(path) {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// IsPostgres reports whether config is a PostgreSQL connection string
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") ||
		strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=")
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// APIToken returns the bearer token for journal server APIs: the explicit
// value, then the keyring. Empty means no authentication.
func APIToken(explicit string) string {
	if explicit != "" {
		return explicit
	}
	token, err := keyring.GetAPIToken()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("keyring lookup for API token failed", "err", err)
		}
		return ""
	}
	return token
}

// NewEnhancer builds the QR enhancer for chapter links under baseURL,
// reporting each outcome to metrics
func NewEnhancer(baseURL string) *qr.Enhancer {
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}
	resolver := qr.NewResolver()
	resolver.OnResult = func(id string, outcome qr.Outcome) {
		metrics.RecordQR(string(outcome))
		logger.Debug("qr resolved", "anchor", id, "outcome", outcome)
	}
	return qr.NewEnhancer(resolver, qr.ChapterLinks(baseURL))
}

// RunObserver records every run in generation history and, when a notify
// URL is configured, posts it to the webhook
func (c *Context) RunObserver() journal.Observer {
	obs := []journal.Observer{c.recordRun}
	if c.NotifyURL != "" {
		n, err := notifier.New(c.NotifyURL, c.NotifySecret)
		if err != nil {
			logger.Warn("run notifications disabled", "err", err)
		} else {
			obs = append(obs, n.Observer())
		}
	}
	return journal.Observers(obs...)
}

func (c *Context) recordRun(trigger string, res journal.Result, elapsed time.Duration, err error) {
	if c.Store == nil {
		return
	}
	run := models.GenerationRun{
		Trigger:   trigger,
		Pages:     len(res.Pages),
		Failures:  len(res.Failures),
		Duration:  elapsed,
		StartedAt: time.Now().Add(-elapsed),
	}
	if err != nil {
		run.Error = err.Error()
	}
	if rerr := c.Store.RecordRun(run); rerr != nil {
		logger.Warn("failed to record generation run", "trigger", trigger, "err", rerr)
	}
}
