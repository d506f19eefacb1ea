package domain

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// CommandLine captures the command to run and how it should be interpreted.
type CommandLine struct {
	// Argv is the raw command tokens as given on the command line.
	Argv []string

	// Shell runs the command through $SHELL -c instead of exec'ing Argv directly.
	Shell bool

	// Requote re-quotes Argv before joining into the shell string.
	// Only meaningful when Shell is true.
	Requote bool
}

// ShellString returns the single string handed to the shell. With Requote set,
// tokens are shell-quoted so that two invocations that re-quote to the same
// string share a cache key; without it, tokens are joined verbatim.
func (c CommandLine) ShellString() string {
	if c.Requote {
		return shellquote.Join(c.Argv...)
	}
	return strings.Join(c.Argv, " ")
}

// Invocation is everything the executor needs to run the command once.
type Invocation struct {
	Command CommandLine
	// Env is the full child process environment in "KEY=VALUE" form.
	Env []string
	// Shell is the interpreter for shell mode, taken from the invoking user's
	// environment rather than the restricted child Env. Empty means the
	// executor's default.
	Shell string
	// Stdin holds the drained stdin bytes to replay to the child, or nil when
	// stdin is excluded.
	Stdin []byte
}

// KeyInputs are the exact inputs to cache key derivation. The working
// directory and wall clock are deliberately absent.
type KeyInputs struct {
	Command CommandLine
	// Env is the key-relevant environment subset.
	Env map[string]string
	// Stdin holds the drained stdin bytes; StdinIncluded distinguishes an
	// empty stdin from an excluded one.
	Stdin         []byte
	StdinIncluded bool
	// CustomKey holds the stdout of the custom-key pre-pass, or nil.
	CustomKey []byte
}
