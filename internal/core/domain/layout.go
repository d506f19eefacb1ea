package domain

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppDirName is the directory name used under the XDG cache and config roots.
	AppDirName = "runcached"

	// StoreDirName is the name of the entry store directory inside the cache dir.
	StoreDirName = "store"

	// ConfigFileName is the name of the optional defaults file.
	ConfigFileName = "runcached.yaml"

	// EnvPrefix is the prefix for environment variables that seed option defaults.
	EnvPrefix = "RUNCACHED_"

	// CustomKeyEnvVar marks the custom-key pre-pass in the child environment.
	CustomKeyEnvVar = "RUNCACHED_KEY"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ToolFailureExitCode is the reserved exit code for tool-level failures,
	// kept distinct from any child exit code the tool mirrors.
	ToolFailureExitCode = 125
)

// DefaultCachePath returns the default cache root, e.g. ~/.cache/runcached.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, AppDirName)
}

// DefaultConfigPath returns the default defaults-file location,
// e.g. ~/.config/runcached/runcached.yaml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppDirName, ConfigFileName)
}

// StorePath returns the entry store directory under the given cache root.
func StorePath(cacheDir string) string {
	return filepath.Join(cacheDir, StoreDirName)
}
