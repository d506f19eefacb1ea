// Package shell provides the command executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// DefaultShell is used in shell mode when the environment carries no SHELL.
const DefaultShell = "/bin/sh"

// Executor implements ports.Executor using os/exec. The child runs with
// exactly the invocation's environment and its streams are captured in full,
// because the result has to be persisted and replayed byte for byte.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the invocation to completion and captures its streams.
func (e *Executor) Execute(ctx context.Context, inv domain.Invocation) (*domain.Result, error) {
	if len(inv.Command.Argv) == 0 {
		return nil, domain.ErrNoCommand
	}

	cmd, err := e.buildCmd(ctx, inv)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if inv.Stdin != nil {
		// Stdin was drained during key derivation; replay the buffered bytes.
		cmd.Stdin = bytes.NewReader(inv.Stdin)
	}

	e.logger.Debug("executing: " + strings.Join(cmd.Args, " "))

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// The child never ran; distinct from a non-zero exit.
			return nil, errors.Join(domain.ErrExecStartFailed, zerr.With(runErr, "command", inv.Command.Argv[0]))
		}
		return &domain.Result{
			Stdout:   stdout.Bytes(),
			Stderr:   stderr.Bytes(),
			ExitCode: exitErr.ExitCode(),
		}, nil
	}

	return &domain.Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: 0,
	}, nil
}

func (e *Executor) buildCmd(ctx context.Context, inv domain.Invocation) (*exec.Cmd, error) {
	if inv.Command.Shell {
		sh := inv.Shell
		if sh == "" {
			sh = DefaultShell
		}
		cmd := exec.CommandContext(ctx, sh, "-c", inv.Command.ShellString()) //nolint:gosec // user provided command
		cmd.Env = inv.Env
		return cmd, nil
	}

	name := inv.Command.Argv[0]
	executable := name
	if !strings.ContainsRune(name, '/') {
		// Resolve against the invocation's PATH, not the tool's own.
		if lp, err := lookPath(name, inv.Env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, inv.Command.Argv[1:]...) //nolint:gosec // user provided command
	// exec.CommandContext sets Args[0] to the executable path; preserve the
	// name as invoked.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Env = inv.Env
	return cmd, nil
}
