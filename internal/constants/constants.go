package constants

const (
	AppName            = "caretrack"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/caretrack/caretrack.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Daemon constants
	ReminderDaemonProcess = "caretrack-remindd"
)

// Canonical clock times for the coarse times-of-day. An item without a
// custom time inherits these from its bucket's time-of-day list.
const (
	MorningTime   = "08:00"
	AfternoonTime = "13:00"
	EveningTime   = "18:00"
	NightTime     = "21:30"
)

// Window boundaries. A scheduled time t falls in the morning window when
// t < noon, afternoon when t < 17:00, evening when t < 21:00, night
// otherwise.
const (
	MorningEnd   = "12:00"
	AfternoonEnd = "17:00"
	EveningEnd   = "21:00"
)

// StreakThresholds are the consecutive-day counts that award a one-time
// achievement when first reached.
var StreakThresholds = []int{3, 7, 14, 30}
