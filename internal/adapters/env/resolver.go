// Package env implements the environment resolver adapter.
package env

import (
	"path"
	"sort"
	"strings"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EnvResolver = (*Resolver)(nil)

// Resolver implements ports.EnvResolver.
//
// Resolution is an ordered rule application rather than ad hoc branching:
// include forwards/assignments first (wildcards expanded against the
// snapshot), then passthru on top, then a final exclusion pass over both maps.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve applies the selection against the given environment snapshot.
func (r *Resolver) Resolve(sel domain.EnvSelection, current []string) (*domain.ResolvedEnv, error) {
	currentMap := environToMap(current)

	keyRelevant := make(map[string]string)
	for _, spec := range sel.Include {
		switch {
		case spec.IsPattern():
			if spec.HasValue {
				return nil, zerr.With(zerr.Wrap(domain.ErrInvalidEnvSpec, "wildcard cannot carry an assignment"), "spec", spec.Name)
			}
			for _, name := range matchNames(currentMap, spec.Name) {
				keyRelevant[name] = currentMap[name]
			}
		case spec.HasValue:
			keyRelevant[spec.Name] = spec.Value
		default:
			if v, ok := currentMap[spec.Name]; ok {
				keyRelevant[spec.Name] = v
			}
		}
	}

	process := make(map[string]string, len(keyRelevant))
	for k, v := range keyRelevant {
		process[k] = v
	}
	for _, spec := range sel.Passthru {
		if spec.IsPattern() {
			return nil, zerr.With(zerr.Wrap(domain.ErrWildcardNotAllowed, "passthru spec"), "spec", spec.Name)
		}
		if spec.HasValue {
			process[spec.Name] = spec.Value
		} else if v, ok := currentMap[spec.Name]; ok {
			process[spec.Name] = v
		}
	}

	// Exclusion always wins, regardless of where the name appeared.
	for _, spec := range sel.Exclude {
		if spec.HasValue {
			return nil, zerr.With(zerr.Wrap(domain.ErrExcludedAssignment, "exclude spec"), "spec", spec.Name)
		}
		if spec.IsPattern() {
			return nil, zerr.With(zerr.Wrap(domain.ErrWildcardNotAllowed, "exclude spec"), "spec", spec.Name)
		}
		delete(keyRelevant, spec.Name)
		delete(process, spec.Name)
	}

	return &domain.ResolvedEnv{
		KeyRelevant: keyRelevant,
		Process:     mapToEnviron(process),
	}, nil
}

func environToMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, entry := range environ {
		if k, v, ok := strings.Cut(entry, "="); ok {
			m[k] = v
		}
	}
	return m
}

func mapToEnviron(m map[string]string) []string {
	environ := make([]string, 0, len(m))
	for k, v := range m {
		environ = append(environ, k+"="+v)
	}
	sort.Strings(environ)
	return environ
}

// matchNames returns the snapshot names matching the wildcard pattern, in
// sorted order so expansion is deterministic.
func matchNames(current map[string]string, pattern string) []string {
	var names []string
	for name := range current {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
