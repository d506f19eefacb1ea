// Package commands implements the CLI commands for runcached.
package commands

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"go.trai.ch/runcached/internal/app"
	"go.trai.ch/runcached/internal/build"
	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/ui/output"
)

// CLI represents the command line interface for runcached.
type CLI struct {
	components *app.Components
	rootCmd    *cobra.Command
	flags      runFlags

	configPath string
	environ    func() []string
	stdout     io.Writer
	stderr     io.Writer
	stdinTTY   func() bool
	stdoutTTY  func() bool

	exitCode int
}

type runFlags struct {
	ttl          time.Duration
	keepFailures bool
	includeStdin bool
	excludeStdin bool
	includeEnv   []string
	passthruEnv  []string
	excludeEnv   []string
	shell        bool
	noShell      bool
	requote      bool
	noRequote    bool
	customKey    bool
	colors       string
	cacheDir     string
	logLevel     string
	quiet        bool
	verbose      bool
}

// Option customizes a CLI, primarily for testing.
type Option func(*CLI)

// WithOutput redirects the replayed command streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *CLI) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithConfigPath overrides the defaults file location.
func WithConfigPath(path string) Option {
	return func(c *CLI) { c.configPath = path }
}

// WithEnviron overrides the environment snapshot used for option defaults.
func WithEnviron(fn func() []string) Option {
	return func(c *CLI) { c.environ = fn }
}

// WithTTY overrides the TTY probes for stdin and stdout.
func WithTTY(stdin, stdout bool) Option {
	return func(c *CLI) {
		c.stdinTTY = func() bool { return stdin }
		c.stdoutTTY = func() bool { return stdout }
	}
}

// New creates a new CLI instance with the given components.
func New(components *app.Components, opts ...Option) *CLI {
	c := &CLI{
		components: components,
		configPath: defaultConfigPath(),
		environ:    os.Environ,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		stdinTTY:   func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		stdoutTTY:  func() bool { return term.IsTerminal(int(os.Stdout.Fd())) },
	}

	rootCmd := &cobra.Command{
		Use:   "runcached [flags] -- command [args...]",
		Short: "Run a command and memoize its output",
		Long: `Runcached runs a command and caches its stdout, stderr and exit status.
A later identical invocation replays the cached result instead of running
the command again, until the entry's time-to-live expires.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE:          c.runRoot,
	}

	// The command's own flags must survive untouched.
	rootCmd.Flags().SetInterspersed(false)

	fl := rootCmd.Flags()
	fl.DurationVarP(&c.flags.ttl, "ttl", "t", domain.DefaultTTL, "Maximum age of a cache entry before it expires")
	fl.BoolVarP(&c.flags.keepFailures, "keep-failures", "F", false, "Cache results of commands that exit non-zero")
	fl.BoolVarP(&c.flags.includeStdin, "include-stdin", "i", false, "Include stdin in the cache key (default when stdin is not a TTY)")
	fl.BoolVarP(&c.flags.excludeStdin, "exclude-stdin", "I", false, "Exclude stdin from the cache key")
	fl.StringArrayVarP(&c.flags.includeEnv, "include-env", "e", nil, "Env vars to include in the cache key (NAME, NAME=VALUE or glob)")
	fl.StringArrayVarP(&c.flags.passthruEnv, "passthru-env", "p", nil, "Env vars the command sees without affecting the cache key")
	fl.StringArrayVarP(&c.flags.excludeEnv, "exclude-env", "E", nil, "Env vars to drop from both the cache key and the command")
	fl.BoolVarP(&c.flags.shell, "shell", "s", false, "Run the command through $SHELL -c")
	fl.BoolVarP(&c.flags.noShell, "no-shell", "S", false, "Run the command directly, without a shell")
	fl.BoolVarP(&c.flags.requote, "requote", "l", false, "Re-quote the command when building the shell string")
	fl.BoolVarP(&c.flags.noRequote, "no-requote", "L", false, "Join the command verbatim when building the shell string")
	fl.BoolVarP(&c.flags.customKey, "custom-key", "k", false, "Run the command once with "+domain.CustomKeyEnvVar+"=1 and mix its output into the cache key")
	fl.StringVar(&c.flags.colors, "colors", string(domain.ColorAuto), "Color handling for replayed output (auto, always, never)")
	fl.StringVar(&c.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fl.BoolVarP(&c.flags.quiet, "quiet", "q", false, "Only log warnings and errors")
	fl.BoolVarP(&c.flags.verbose, "verbose", "v", false, "Log debug detail")

	rootCmd.PersistentFlags().StringVar(&c.flags.cacheDir, "cache-dir", "", "Cache directory (default "+domain.DefaultCachePath()+")")

	// After the run flags, so --version keeps its long form only; -v belongs
	// to --verbose.
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Execute runs the root command with the given context and returns the exit
// code to mirror: the child's own code, or zero for the subcommands.
func (c *CLI) Execute(ctx context.Context) (int, error) {
	c.rootCmd.SetContext(ctx)
	if err := c.rootCmd.Execute(); err != nil {
		return 0, err
	}
	return c.exitCode, nil
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return domain.ErrNoCommand
	}

	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return err
	}

	if leveled, ok := c.components.Logger.(interface{ SetLevel(string) }); ok {
		leveled.SetLevel(cfg.LogLevel)
	}

	stdoutTTY := c.stdoutTTY()
	res, err := c.components.App.Run(cmd.Context(), domain.RunRequest{
		Config:    cfg,
		Argv:      args,
		StdinTTY:  c.stdinTTY(),
		StdoutTTY: stdoutTTY,
	})
	if err != nil {
		return err
	}

	if err := output.Write(c.stdout, c.stderr, res, cfg.Colors.Strip(stdoutTTY)); err != nil {
		return err
	}

	c.exitCode = res.ExitCode
	return nil
}

// resolveConfig layers the defaults file, the RUNCACHED_* environment and the
// given command's flags, in that order.
func (c *CLI) resolveConfig(cmd *cobra.Command) (domain.Config, error) {
	cfg, err := c.components.ConfigLoader.Load(c.configPath, c.environ())
	if err != nil {
		return domain.Config{}, err
	}
	if err := c.applyFlags(&cfg, cmd.Flags()); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func (c *CLI) applyFlags(cfg *domain.Config, fl *pflag.FlagSet) error {
	if fl.Changed("ttl") {
		cfg.TTL = c.flags.ttl
	}
	if fl.Changed("keep-failures") {
		cfg.KeepFailures = c.flags.keepFailures
	}
	if fl.Changed("include-stdin") {
		cfg.Stdin = domain.StdinInclude
	}
	if fl.Changed("exclude-stdin") {
		cfg.Stdin = domain.StdinExclude
	}
	if fl.Changed("shell") {
		cfg.Shell = true
	}
	if fl.Changed("no-shell") {
		cfg.Shell = false
	}
	if fl.Changed("requote") {
		cfg.Requote = true
	}
	if fl.Changed("no-requote") {
		cfg.Requote = false
	}
	if fl.Changed("custom-key") {
		cfg.CustomKey = c.flags.customKey
	}
	if fl.Changed("colors") {
		mode, err := domain.ParseColorMode(c.flags.colors)
		if err != nil {
			return err
		}
		cfg.Colors = mode
	}
	if fl.Changed("cache-dir") {
		cfg.CacheDir = c.flags.cacheDir
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}
	if c.flags.quiet {
		cfg.LogLevel = "warn"
	}
	if c.flags.verbose {
		cfg.LogLevel = "debug"
	}

	if fl.Changed("include-env") {
		specs, err := parseSpecFlags(c.flags.includeEnv)
		if err != nil {
			return err
		}
		cfg.Env.Include = append(cfg.Env.Include, specs...)
	}
	if fl.Changed("passthru-env") {
		specs, err := parseSpecFlags(c.flags.passthruEnv)
		if err != nil {
			return err
		}
		cfg.Env.Passthru = append(cfg.Env.Passthru, specs...)
	}
	if fl.Changed("exclude-env") {
		specs, err := parseSpecFlags(c.flags.excludeEnv)
		if err != nil {
			return err
		}
		cfg.Env.Exclude = append(cfg.Env.Exclude, specs...)
	}

	return nil
}

// defaultConfigPath prefers a defaults file in the working directory over the
// user-wide one.
func defaultConfigPath() string {
	if _, err := os.Stat(domain.ConfigFileName); err == nil {
		return domain.ConfigFileName
	}
	return domain.DefaultConfigPath()
}

func parseSpecFlags(raws []string) ([]domain.EnvSpec, error) {
	var specs []domain.EnvSpec
	for _, raw := range raws {
		parsed, err := domain.ParseEnvSpecs(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, parsed...)
	}
	return specs, nil
}
