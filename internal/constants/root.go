package constants

import "time"

const (
	AppName            = "rizq"
	DefaultKeyringUser = "database-connection"
	KeyringIdentity    = "user-identity"
	DefaultConfigPath  = "~/.config/rizq/rizq.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar-day key format used by the completion ledger (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Storage keys
	HabitsStorageKey  = "user_habits"
	ProfileStorageKey = "user_profile"

	// Habit store defaults
	DefaultRetentionDays = 30

	// Aggregation defaults
	DefaultLoadTimeout = 8 * time.Second
	DefaultConcurrency = 4

	// Content sources
	ContentBuiltin  = "builtin"
	ContentDatabase = "db"
)
