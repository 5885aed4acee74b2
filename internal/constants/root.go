package constants

const (
	AppName            = "memosphere"
	DefaultKeyringUser = "api-token"

	// DateFormat is the timestamp format persisted on entries (RFC 3339, UTC).
	// It sorts lexicographically, which newest-first ordering relies on.
	DateFormat = "2006-01-02T15:04:05Z07:00"

	// Default MIME types when a capture surface doesn't report one
	DefaultAudioMIME = "audio/webm"
	DefaultImageMIME = "image/png"

	// UntitledTitle is the fallback assigned to entries saved with a blank title
	UntitledTitle = "Untitled"

	// Feeling intensity bounds (1-5 scale)
	MinFeelingIntensity = 1
	MaxFeelingIntensity = 5

	// Remote API paths
	RemoteEntriesPath = "/api/entries"
	RemoteSearchPath  = "/api/entries/search"
)
