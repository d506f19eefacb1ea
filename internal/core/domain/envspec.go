package domain

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"go.trai.ch/zerr"
)

// EnvSpec selects a single environment variable, optionally assigning it a
// value ("NAME=value") or matching several by wildcard ("AWS_*").
type EnvSpec struct {
	Name     string
	Value    string
	HasValue bool
}

// IsPattern reports whether the spec name contains wildcard metacharacters.
func (s EnvSpec) IsPattern() bool {
	return strings.ContainsAny(s.Name, "*?[")
}

// EnvSelection holds the three-tier env var selection. Exclude always wins;
// passthru assignments override include assignments for the process env.
type EnvSelection struct {
	Include  []EnvSpec
	Passthru []EnvSpec
	Exclude  []EnvSpec
}

// ParseEnvSpecs splits a spec list into individual specs. Specs are separated
// by commas or whitespace; shell-style quoting protects separators inside an
// assigned value.
func ParseEnvSpecs(raw string) ([]EnvSpec, error) {
	var specs []EnvSpec
	for _, segment := range splitUnquotedCommas(raw) {
		words, err := shellquote.Split(segment)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(ErrInvalidEnvSpec, err.Error()), "spec", raw)
		}
		for _, word := range words {
			spec, err := parseEnvSpec(word)
			if err != nil {
				return nil, err
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// splitUnquotedCommas splits on commas that sit outside quotes. Quoting, not
// position, protects a comma: "A=1,B=2" is two specs while "A='1,2'" is one.
func splitUnquotedCommas(raw string) []string {
	var parts []string
	var cur strings.Builder
	var quote byte
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case escaped:
			cur.WriteByte(ch)
			escaped = false
		case quote == 0 && ch == '\\':
			cur.WriteByte(ch)
			escaped = true
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			cur.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			cur.WriteByte(ch)
		case ch == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(parts, cur.String())
}

func parseEnvSpec(token string) (EnvSpec, error) {
	name, value, assigned := strings.Cut(token, "=")
	if name == "" {
		return EnvSpec{}, zerr.With(zerr.Wrap(ErrInvalidEnvSpec, "missing variable name"), "spec", token)
	}
	return EnvSpec{Name: name, Value: value, HasValue: assigned}, nil
}

// ResolvedEnv is the output of environment resolution.
type ResolvedEnv struct {
	// KeyRelevant holds the resolved include names and values, post-exclusion.
	// Only these participate in cache key derivation.
	KeyRelevant map[string]string

	// Process is the full child process environment in "KEY=VALUE" form:
	// key-relevant plus passthru, minus excluded.
	Process []string
}
