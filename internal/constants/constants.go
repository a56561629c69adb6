package constants

import "time"

const (
	AppName            = "mellow"
	Version            = "v0.3.0"
	DefaultKeyringUser = "bot-token"

	// DateFormat is the calendar date format used for check-ins (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DateParseLayout also accepts unpadded months and days (2025-6-9)
	DateParseLayout = "2006-1-2"

	// TimestampFormat is the journal entry timestamp format (UTC)
	TimestampFormat = "2006-01-02 15:04:05"

	// DMTenant is the tenant used for commands invoked outside a server
	DMTenant = "DM"

	// Storage defaults
	DefaultDataDir    = "Data"
	CheckInsDirName   = "CheckIns"
	JournalsDirName   = "Journals"
	JournalFileSuffix = "_journal.json"
	DefaultCopingMap  = "Maps/Coping.json"
	DefaultLogDir     = "Logs"
	LogFileName       = "Mellow.log"
	DefaultOpsAddr    = ":9090"
	LockfileName      = "mellow.lock"

	// Report constants
	MinHistoryDays     = 1
	MaxHistoryDays     = 30
	ReportInlineLimit  = 3500
	ReportSeparatorLen = 40
	StatsBarWidth      = 15
	MaxSuggestions     = 25

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "mellow-"

	// Rate limit for slash commands, per member
	CommandRatePerSecond = 0.5
	CommandBurst         = 5
	LimiterCleanup       = 5 * time.Minute
	LimiterTTL           = 30 * time.Minute
)
