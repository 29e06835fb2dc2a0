package messages

// Configuration and state messages.
const (
	ConfigParseFmt       = "parse %s: %w"
	ConfigResolveHomeFmt = "resolve home dir: %w"

	StateCreateDirFmt = "create state dir %s: %w"
	StateOpenLockFmt  = "open lock file %s: %w"
	StateLockFmt      = "another airlock run holds the lock on %s"
	StateWriteFmt     = "write state file %s: %w"
	StateReadFmt      = "read state file %s: %w"

	WarnEventLogFmt   = "warning: event log %s unavailable, continuing without structured logging: %v\n"
	WarnTranscriptFmt = "warning: transcript %s unavailable, continuing without one: %v\n"
)
