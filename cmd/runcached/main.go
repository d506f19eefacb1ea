// Package main is the entry point for the runcached command memoizer.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/runcached/cmd/runcached/commands"
	"go.trai.ch/runcached/internal/app"
	"go.trai.ch/runcached/internal/core/domain"
	_ "go.trai.ch/runcached/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A signal cancels the in-flight child run through the context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return domain.ToolFailureExitCode
	}
	defer func() {
		_ = components.App.Close()
	}()

	cli := commands.New(components)

	code, err := cli.Execute(ctx)
	if err != nil {
		components.Logger.Error(err)
		return domain.ToolFailureExitCode
	}
	return code
}
