package constants

const (
	AppName            = "habits"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habits/habits.db"
	Version            = "v0.2.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habits-"
	BackupFileSuffix = ".db"

	// MaxTasksPerSeries caps how many tasks a single habit occurrence may spawn.
	MaxTasksPerSeries = 10

	// Field length caps for habit input
	MaxNameLen         = 50
	MaxCategoryLen     = 30
	MaxDescriptionLen  = 200
	MaxTaskTemplateLen = 50
)
