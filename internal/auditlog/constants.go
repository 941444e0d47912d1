package auditlog

// File naming and batching limits for the audit trail.
const (
	// DailyFilePattern is the time layout for daily log file names.
	DailyFilePattern = "audit-2006-01-02.log"

	// MasterFileName is the consolidated log every event is mirrored to.
	MasterFileName = "audit-master.log"

	// EmergencyFileName receives events whose primary write failed.
	EmergencyFileName = "emergency.log"

	// CompressedSuffix marks daily files already archived by cleanup.
	CompressedSuffix = ".br"

	// BatchFlushThreshold is the number of events that triggers an immediate
	// flush. When the batch reaches this size, it's written to storage
	// without waiting for the timer.
	BatchFlushThreshold = 100

	// CompressAfterDays is the age at which a daily file is rewritten as a
	// brotli archive by the cleanup loop.
	CompressAfterDays = 7
)
