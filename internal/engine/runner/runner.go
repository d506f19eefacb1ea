// Package runner implements the memoizing execution engine: derive the
// fingerprint for an invocation, replay a fresh entry when the store has one,
// otherwise run the command once and publish the captured result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner orchestrates one memoized invocation end to end.
type Runner struct {
	env      ports.EnvResolver
	keyer    ports.KeyDeriver
	store    ports.ResultStore
	executor ports.Executor
	logger   ports.Logger
	tracer   ports.Tracer

	// group serializes concurrent in-process invocations per key, so two
	// goroutines racing on a cold key run the command once. Cross-process
	// races stay benign through the store's atomic publish.
	group singleflight.Group

	stdin   io.Reader
	environ func() []string
	now     func() time.Time
}

// New creates a Runner reading stdin and the environment from the process.
func New(env ports.EnvResolver, keyer ports.KeyDeriver, store ports.ResultStore,
	executor ports.Executor, logger ports.Logger, tracer ports.Tracer) *Runner {
	return &Runner{
		env:      env,
		keyer:    keyer,
		store:    store,
		executor: executor,
		logger:   logger,
		tracer:   tracer,
		stdin:    os.Stdin,
		environ:  os.Environ,
		now:      time.Now,
	}
}

// Run executes the request, serving the result from the store when a fresh
// entry exists. The returned Result carries the child's streams and exit code
// whether replayed or fresh; an error means the tool itself failed.
func (r *Runner) Run(ctx context.Context, req domain.RunRequest) (*domain.Result, error) {
	if len(req.Argv) == 0 {
		return nil, domain.ErrNoCommand
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}

	ambient := r.environ()
	resolved, err := r.env.Resolve(req.Config.Env, ambient)
	if err != nil {
		return nil, err
	}

	var stdin []byte
	stdinIncluded := req.Config.Stdin.Included(req.StdinTTY)
	if stdinIncluded {
		// Drain to EOF before any cache decision, so hit and miss behave the
		// same towards the producer feeding the pipe.
		stdin, err = io.ReadAll(r.stdin)
		if err != nil {
			return nil, errors.Join(domain.ErrStdinReadFailed, err)
		}
	}

	inv := domain.Invocation{
		Command: req.CommandLine(),
		Env:     resolved.Process,
		// The interpreter comes from the user's own environment; the child env
		// stays restricted to the resolved selection.
		Shell: ambientValue(ambient, "SHELL"),
		Stdin: stdin,
	}

	var customKey []byte
	if req.Config.CustomKey {
		customKey, err = r.customKey(ctx, inv)
		if err != nil {
			return nil, err
		}
	}

	key := r.derive(ctx, domain.KeyInputs{
		Command:       inv.Command,
		Env:           resolved.KeyRelevant,
		Stdin:         stdin,
		StdinIncluded: stdinIncluded,
		CustomKey:     customKey,
	})

	v, err, _ := r.group.Do(key.String(), func() (any, error) {
		return r.runKeyed(ctx, req, inv, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Result), nil
}

func ambientValue(environ []string, name string) string {
	prefix := name + "="
	for _, entry := range environ {
		if strings.HasPrefix(entry, prefix) {
			return strings.TrimPrefix(entry, prefix)
		}
	}
	return ""
}

func (r *Runner) derive(ctx context.Context, in domain.KeyInputs) domain.Key {
	_, span := r.tracer.Start(ctx, "derive")
	key := r.keyer.Derive(in)
	span.SetAttribute("key", key.String())
	span.End(nil)
	r.logger.Debug("cache key " + key.String())
	return key
}

// customKey runs the command once with the marker variable set and returns
// its stdout as additional key material.
func (r *Runner) customKey(ctx context.Context, inv domain.Invocation) ([]byte, error) {
	pre := inv
	pre.Env = append(append([]string{}, inv.Env...), domain.CustomKeyEnvVar+"=1")

	_, span := r.tracer.Start(ctx, "custom-key")
	res, err := r.executor.Execute(ctx, pre)
	if err != nil {
		span.End(err)
		return nil, errors.Join(domain.ErrCustomKeyFailed, err)
	}
	if res.ExitCode != 0 {
		keyErr := errors.Join(domain.ErrCustomKeyFailed,
			zerr.With(zerr.New("key pass exited non-zero"), "exit_code", res.ExitCode))
		span.End(keyErr)
		return nil, keyErr
	}
	span.End(nil)
	return res.Stdout, nil
}

func (r *Runner) runKeyed(ctx context.Context, req domain.RunRequest, inv domain.Invocation, key domain.Key) (*domain.Result, error) {
	_, span := r.tracer.Start(ctx, "lookup")
	entry, err := r.store.Lookup(req.Config.CacheDir, key)
	switch {
	case err != nil:
		// Fail open. An unreadable or corrupt entry must never block the
		// command; the run below overwrites it.
		r.logger.Warn(fmt.Sprintf("cache lookup failed, running uncached: %v", err))
		span.End(err)
	case entry != nil:
		span.SetAttribute("cached", true)
		span.End(nil)
		r.logger.Debug("cache hit")
		return entry.Result(), nil
	default:
		span.End(nil)
	}

	_, execSpan := r.tracer.Start(ctx, "execute")
	res, err := r.executor.Execute(ctx, inv)
	if err != nil {
		execSpan.End(err)
		return nil, err
	}
	_, _ = execSpan.Write(res.Stdout)
	execSpan.SetAttribute("exit_code", res.ExitCode)
	execSpan.End(nil)

	if res.ExitCode == 0 || req.Config.KeepFailures {
		entry := domain.Entry{
			Stdout:    res.Stdout,
			Stderr:    res.Stderr,
			ExitCode:  res.ExitCode,
			CreatedAt: r.now(),
			TTL:       req.Config.TTL,
		}
		if err := r.store.Put(req.Config.CacheDir, key, entry); err != nil {
			// The run already succeeded; a failed write only costs the next hit.
			r.logger.Warn(fmt.Sprintf("cache write failed: %v", err))
		}
	}

	return res, nil
}
