// Package config loads invocation defaults from the runcached.yaml file and
// the RUNCACHED_* environment variables. Command line flags are applied on
// top by the CLI layer, so the precedence is flags over environment over file
// over built-in defaults.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader resolves the effective defaults for a run.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load returns the built-in defaults overlaid with the defaults file at path
// (if it exists) and the RUNCACHED_* variables found in environ. A missing
// file is not an error.
func (l *Loader) Load(path string, environ []string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if err := l.applyFile(&cfg, path); err != nil {
		return domain.Config{}, err
	}
	if err := applyEnviron(&cfg, environ); err != nil {
		return domain.Config{}, err
	}

	return cfg, nil
}

func (l *Loader) applyFile(cfg *domain.Config, path string) error {
	// #nosec G304 -- path is the well-known defaults file location
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Join(domain.ErrConfigReadFailed, zerr.With(err, "path", path))
	}

	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return errors.Join(domain.ErrConfigParseFailed, zerr.With(err, "path", path))
	}

	if file.TTL != "" {
		ttl, err := time.ParseDuration(file.TTL)
		if err != nil {
			return errors.Join(domain.ErrInvalidTTL, zerr.With(err, "path", path))
		}
		cfg.TTL = ttl
	}
	if file.KeepFailures != nil {
		cfg.KeepFailures = *file.KeepFailures
	}
	if file.Stdin != "" {
		mode, err := domain.ParseStdinMode(file.Stdin)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "stdin mode"), "path", path)
		}
		cfg.Stdin = mode
	}
	if file.Shell != nil {
		cfg.Shell = *file.Shell
	}
	if file.Requote != nil {
		cfg.Requote = *file.Requote
	}
	if file.CustomKey != nil {
		cfg.CustomKey = *file.CustomKey
	}
	if file.Colors != "" {
		mode, err := domain.ParseColorMode(file.Colors)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "color mode"), "path", path)
		}
		cfg.Colors = mode
	}
	if file.CacheDir != "" {
		cfg.CacheDir = file.CacheDir
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}

	return l.applyEnvFile(cfg, file.Env, path)
}

// applyEnvFile merges the file's environment selection. A non-empty include
// list replaces the built-in default so the file can drop HOME deliberately.
func (l *Loader) applyEnvFile(cfg *domain.Config, env EnvFile, path string) error {
	parse := func(entries []string) ([]domain.EnvSpec, error) {
		var specs []domain.EnvSpec
		for _, entry := range entries {
			parsed, err := domain.ParseEnvSpecs(entry)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "path", path), "entry", entry)
			}
			specs = append(specs, parsed...)
		}
		return specs, nil
	}

	include, err := parse(env.Include)
	if err != nil {
		return err
	}
	if include != nil {
		cfg.Env.Include = include
	}

	passthru, err := parse(env.Passthru)
	if err != nil {
		return err
	}
	cfg.Env.Passthru = append(cfg.Env.Passthru, passthru...)

	exclude, err := parse(env.Exclude)
	if err != nil {
		return err
	}
	cfg.Env.Exclude = append(cfg.Env.Exclude, exclude...)

	return nil
}

func applyEnviron(cfg *domain.Config, environ []string) error {
	vars := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, domain.EnvPrefix) {
			continue
		}
		// RUNCACHED_KEY is the custom-key marker, never a default.
		if name == domain.CustomKeyEnvVar {
			continue
		}
		vars[strings.TrimPrefix(name, domain.EnvPrefix)] = value
	}
	if len(vars) == 0 {
		return nil
	}

	if raw, ok := vars["TTL"]; ok {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return errors.Join(domain.ErrInvalidTTL, zerr.With(err, "var", "TTL"))
		}
		cfg.TTL = ttl
	}
	if raw, ok := vars["KEEP_FAILURES"]; ok {
		v, err := parseBool(raw)
		if err != nil {
			return err
		}
		cfg.KeepFailures = v
	}
	if raw, ok := vars["STDIN"]; ok {
		mode, err := domain.ParseStdinMode(raw)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "stdin mode"), "var", "STDIN")
		}
		cfg.Stdin = mode
	}
	if raw, ok := vars["SHELL"]; ok {
		v, err := parseBool(raw)
		if err != nil {
			return err
		}
		cfg.Shell = v
	}
	if raw, ok := vars["REQUOTE"]; ok {
		v, err := parseBool(raw)
		if err != nil {
			return err
		}
		cfg.Requote = v
	}
	if raw, ok := vars["CUSTOM_KEY"]; ok {
		v, err := parseBool(raw)
		if err != nil {
			return err
		}
		cfg.CustomKey = v
	}
	if raw, ok := vars["COLORS"]; ok {
		mode, err := domain.ParseColorMode(raw)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "color mode"), "var", "COLORS")
		}
		cfg.Colors = mode
	}
	if raw, ok := vars["CACHE_DIR"]; ok && raw != "" {
		cfg.CacheDir = raw
	}
	if raw, ok := vars["LOG_LEVEL"]; ok && raw != "" {
		cfg.LogLevel = raw
	}

	if raw, ok := vars["INCLUDE_ENV"]; ok {
		specs, err := domain.ParseEnvSpecs(raw)
		if err != nil {
			return zerr.With(err, "var", "INCLUDE_ENV")
		}
		cfg.Env.Include = specs
	}
	if raw, ok := vars["PASSTHRU_ENV"]; ok {
		specs, err := domain.ParseEnvSpecs(raw)
		if err != nil {
			return zerr.With(err, "var", "PASSTHRU_ENV")
		}
		cfg.Env.Passthru = append(cfg.Env.Passthru, specs...)
	}
	if raw, ok := vars["EXCLUDE_ENV"]; ok {
		specs, err := domain.ParseEnvSpecs(raw)
		if err != nil {
			return zerr.With(err, "var", "EXCLUDE_ENV")
		}
		cfg.Env.Exclude = append(cfg.Env.Exclude, specs...)
	}

	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Join(domain.ErrConfigParseFailed,
			zerr.With(errors.New("invalid boolean"), "value", raw))
	}
	return v, nil
}
