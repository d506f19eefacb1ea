package domain

import "go.trai.ch/zerr"

var (
	// ErrNoCommand is returned when no command is given to run.
	ErrNoCommand = zerr.New("no command specified")

	// ErrExcludedAssignment is returned when an excluded env spec carries an assignment.
	ErrExcludedAssignment = zerr.New("excluded environment variables cannot carry assignments")

	// ErrInvalidEnvSpec is returned when an env spec cannot be parsed.
	ErrInvalidEnvSpec = zerr.New("invalid environment variable spec")

	// ErrWildcardNotAllowed is returned when a wildcard appears outside the include set.
	ErrWildcardNotAllowed = zerr.New("wildcards are only allowed in included environment variables")

	// ErrInvalidStdinMode is returned when a stdin mode string is not recognized.
	ErrInvalidStdinMode = zerr.New("invalid stdin mode, expected 'include', 'exclude' or 'auto'")

	// ErrInvalidColorMode is returned when a color mode string is not recognized.
	ErrInvalidColorMode = zerr.New("invalid color mode, expected 'always', 'never' or 'auto'")

	// ErrInvalidTTL is returned when the configured TTL is not positive.
	ErrInvalidTTL = zerr.New("ttl must be positive")

	// ErrStdinReadFailed is returned when stdin cannot be drained for key derivation.
	ErrStdinReadFailed = zerr.New("failed to read stdin")

	// ErrExecStartFailed is returned when the child process could not be started at all.
	ErrExecStartFailed = zerr.New("failed to start command")

	// ErrCustomKeyFailed is returned when the custom cache key pre-pass fails.
	ErrCustomKeyFailed = zerr.New("failed to compute custom cache key")

	// ErrStoreCreateFailed is returned when the cache store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create cache store directory")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreUnmarshalFailed is returned when a cache entry cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal cache entry")

	// ErrStoreMarshalFailed is returned when a cache entry cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be durably written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrEntryCorrupt is returned when a stored entry fails its checksum or key check.
	ErrEntryCorrupt = zerr.New("cache entry is corrupt")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")
)
