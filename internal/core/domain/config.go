package domain

import "time"

// StdinMode controls whether stdin participates in the cache key.
type StdinMode string

const (
	// StdinAuto includes stdin when it is not a TTY.
	StdinAuto StdinMode = "auto"
	// StdinInclude always includes stdin.
	StdinInclude StdinMode = "include"
	// StdinExclude never includes stdin.
	StdinExclude StdinMode = "exclude"
)

// ParseStdinMode parses a stdin mode string.
func ParseStdinMode(s string) (StdinMode, error) {
	switch StdinMode(s) {
	case StdinAuto, StdinInclude, StdinExclude:
		return StdinMode(s), nil
	default:
		return "", ErrInvalidStdinMode
	}
}

// Included resolves the mode against whether stdin is a TTY.
func (m StdinMode) Included(stdinTTY bool) bool {
	switch m {
	case StdinInclude:
		return true
	case StdinExclude:
		return false
	default:
		return !stdinTTY
	}
}

// ColorMode controls ANSI escape stripping of replayed or fresh output.
type ColorMode string

const (
	// ColorAuto strips escapes when stdout is not a TTY.
	ColorAuto ColorMode = "auto"
	// ColorAlways never strips escapes.
	ColorAlways ColorMode = "always"
	// ColorNever always strips escapes.
	ColorNever ColorMode = "never"
)

// ParseColorMode parses a color mode string.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case ColorAuto, ColorAlways, ColorNever:
		return ColorMode(s), nil
	default:
		return "", ErrInvalidColorMode
	}
}

// Strip resolves the mode against whether stdout is a TTY.
func (m ColorMode) Strip(stdoutTTY bool) bool {
	switch m {
	case ColorAlways:
		return false
	case ColorNever:
		return true
	default:
		return !stdoutTTY
	}
}

// DefaultTTL is the cache lifetime applied when none is configured.
const DefaultTTL = 24 * time.Hour

// Config is the parsed invocation configuration handed in by the CLI layer.
type Config struct {
	TTL          time.Duration
	KeepFailures bool
	Stdin        StdinMode
	Env          EnvSelection
	Shell        bool
	Requote      bool
	CustomKey    bool
	Colors       ColorMode
	CacheDir     string
	LogLevel     string
}

// DefaultConfig returns the built-in configuration defaults. HOME is
// key-relevant by default so results do not leak across users.
func DefaultConfig() Config {
	return Config{
		TTL:      DefaultTTL,
		Stdin:    StdinAuto,
		Colors:   ColorAuto,
		CacheDir: DefaultCachePath(),
		LogLevel: "info",
		Env: EnvSelection{
			Include: []EnvSpec{{Name: "HOME"}},
		},
	}
}

// Validate checks option combinations that must fail before anything runs.
func (c *Config) Validate() error {
	if c.TTL <= 0 {
		return ErrInvalidTTL
	}
	for _, spec := range c.Env.Exclude {
		if spec.HasValue {
			return ErrExcludedAssignment
		}
		if spec.IsPattern() {
			return ErrWildcardNotAllowed
		}
	}
	for _, spec := range c.Env.Passthru {
		if spec.IsPattern() {
			return ErrWildcardNotAllowed
		}
	}
	return nil
}

// RunRequest is one memoized invocation: the configuration, the command, and
// the TTY facts the auto modes resolve against.
type RunRequest struct {
	Config    Config
	Argv      []string
	StdinTTY  bool
	StdoutTTY bool
}

// CommandLine builds the CommandLine for this request.
func (r *RunRequest) CommandLine() CommandLine {
	return CommandLine{
		Argv:    r.Argv,
		Shell:   r.Config.Shell,
		Requote: r.Config.Requote,
	}
}
