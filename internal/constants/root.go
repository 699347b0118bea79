package constants

import "time"

// SessionState represents the current view of the page browser
type SessionState int

const (
	StateList SessionState = iota
	StatePage
)

const (
	AppName            = "leverage"
	DefaultKeyringUser = "database-connection"
	APITokenKeyringKey = "api-token"
	DefaultConfigPath  = "~/.config/leverage/leverage.db"
	Version            = "v0.3.0"

	// DateFormat is the storage and wire format for entry dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DisplayDateFormat is how entry dates print on daily pages (MM/DD/YYYY)
	DisplayDateFormat = "01/02/2006"

	// Blank is printed wherever a value is absent and the reader fills it in by hand
	Blank = "_______________"

	// Program shape
	ProgramDays        = 90
	WeekLength         = 7
	CheckpointInterval = 30
	LinesPerSection    = 3
	TaskRows           = 3
	ReviewLines        = 5
	QuoteDisplayLimit  = 80

	// Message type accepted by every entry-map trigger
	MessageTypeJournalEntries = "JOURNAL_ENTRIES"

	// QR constants
	QRMaxRetries     = 5
	QRRetryDelay     = 300 * time.Millisecond
	QRSmallSize      = 100
	QRLargeSize      = 150
	QRExportSize     = 300
	QRRemoteEndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultBaseURL   = "https://leveragejournel.vercel.app"

	// Output defaults
	DefaultOutputFile = "journal.html"
	ContainerID       = "journal-content"

	// HTTP server defaults
	DefaultListenAddr   = ":8080"
	ServerRateLimit     = 5
	ServerRateBurst     = 10
	ServerReadTimeout   = 15 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerShutdownGrace = 5 * time.Second
	MaxMessageBytes     = 4 << 20

	// Inbox watcher
	WatchDebounce = 500 * time.Millisecond
	WatchTick     = 100 * time.Millisecond

	// Run notifications
	NotificationDurationMs = 5000
	NotifyTimeout          = 5 * time.Second
	NotifySecretHeader     = "X-Leverage-Secret"
)

// Environment variables read through kong env tags
const (
	EnvConfig       = "LEVERAGE_CONFIG"
	EnvDebug        = "LEVERAGE_DEBUG"
	EnvOutput       = "LEVERAGE_OUTPUT"
	EnvBaseURL      = "LEVERAGE_BASE_URL"
	EnvAPIToken     = "LEVERAGE_API_TOKEN"
	EnvRemoteURL    = "LEVERAGE_REMOTE_URL"
	EnvDBConnection = "LEVERAGE_DB_CONNECTION"
	EnvListenAddr   = "LEVERAGE_ADDR"
	EnvNotifyURL    = "LEVERAGE_NOTIFY_URL"
	EnvNotifySecret = "LEVERAGE_NOTIFY_SECRET"
)
