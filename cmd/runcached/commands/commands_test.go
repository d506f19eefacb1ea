package commands_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/runcached/cmd/runcached/commands"
	"go.trai.ch/runcached/internal/adapters/config"
	"go.trai.ch/runcached/internal/adapters/telemetry"
	"go.trai.ch/runcached/internal/app"
	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports/mocks"
	"go.trai.ch/runcached/internal/engine/runner"
)

type cliFixture struct {
	cli      *commands.CLI
	env      *mocks.MockEnvResolver
	keyer    *mocks.MockKeyDeriver
	store    *mocks.MockResultStore
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger
	stdout   bytes.Buffer
	stderr   bytes.Buffer
}

func newFixture(t *testing.T, opts ...commands.Option) *cliFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &cliFixture{
		env:      mocks.NewMockEnvResolver(ctrl),
		keyer:    mocks.NewMockKeyDeriver(ctrl),
		store:    mocks.NewMockResultStore(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	tracer := telemetry.NewNoOpTracer()
	run := runner.New(f.env, f.keyer, f.store, f.executor, f.logger, tracer)
	a := app.New(run, f.store, tracer)
	components := &app.Components{
		App:          a,
		Logger:       f.logger,
		ConfigLoader: config.NewLoader(f.logger),
	}

	opts = append([]commands.Option{
		commands.WithOutput(&f.stdout, &f.stderr),
		commands.WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")),
		commands.WithEnviron(func() []string { return nil }),
		commands.WithTTY(true, false),
	}, opts...)
	f.cli = commands.New(components, opts...)
	return f
}

func (f *cliFixture) expectResolve() {
	f.env.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(&domain.ResolvedEnv{
		KeyRelevant: map[string]string{},
		Process:     []string{},
	}, nil)
}

func testKey() domain.Key {
	var sum [domain.KeySize]byte
	sum[0] = 0xAB
	return domain.KeyFromSum(sum)
}

func TestRoot_RunsAndReplaysOutput(t *testing.T) {
	f := newFixture(t)
	key := testKey()

	f.expectResolve()
	f.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	f.store.EXPECT().Lookup(gomock.Any(), key).Return(nil, nil)
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{Stdout: []byte("hi\n"), ExitCode: 0}, nil)
	f.store.EXPECT().Put(gomock.Any(), key, gomock.Any()).
		DoAndReturn(func(_ string, _ domain.Key, entry domain.Entry) error {
			assert.Equal(t, time.Hour, entry.TTL)
			return nil
		})

	f.cli.SetArgs([]string{"--ttl", "1h", "echo", "hi"})
	code, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi\n", f.stdout.String())
}

func TestRoot_MirrorsCachedExitCode(t *testing.T) {
	f := newFixture(t)
	key := testKey()

	f.expectResolve()
	f.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	f.store.EXPECT().Lookup(gomock.Any(), key).Return(&domain.Entry{
		Key:      key.String(),
		Stderr:   []byte("bad input\n"),
		ExitCode: 2,
	}, nil)

	f.cli.SetArgs([]string{"false"})
	code, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, "bad input\n", f.stderr.String())
}

func TestRoot_StripsColorsForNonTTY(t *testing.T) {
	f := newFixture(t)
	key := testKey()

	f.expectResolve()
	f.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	f.store.EXPECT().Lookup(gomock.Any(), key).Return(&domain.Entry{
		Key:    key.String(),
		Stdout: []byte("\x1b[31mred\x1b[0m\n"),
	}, nil)

	f.cli.SetArgs([]string{"ls"})
	_, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "red\n", f.stdout.String())
}

func TestRoot_ColorsAlwaysKeepsEscapes(t *testing.T) {
	f := newFixture(t)
	key := testKey()

	f.expectResolve()
	f.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	f.store.EXPECT().Lookup(gomock.Any(), key).Return(&domain.Entry{
		Key:    key.String(),
		Stdout: []byte("\x1b[31mred\x1b[0m\n"),
	}, nil)

	f.cli.SetArgs([]string{"--colors", "always", "ls"})
	_, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "\x1b[31mred\x1b[0m\n", f.stdout.String())
}

func TestRoot_EnvFlagsReachResolver(t *testing.T) {
	f := newFixture(t)
	key := testKey()

	f.env.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(sel domain.EnvSelection, _ []string) (*domain.ResolvedEnv, error) {
			assert.Contains(t, sel.Include, domain.EnvSpec{Name: "LANG"})
			assert.Contains(t, sel.Passthru, domain.EnvSpec{Name: "TERM"})
			return &domain.ResolvedEnv{KeyRelevant: map[string]string{}}, nil
		})
	f.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	f.store.EXPECT().Lookup(gomock.Any(), key).Return(&domain.Entry{Key: key.String()}, nil)

	f.cli.SetArgs([]string{"-e", "LANG", "-p", "TERM", "env"})
	_, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
}

func TestRoot_NoCommand(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{})
	_, err := f.cli.Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrNoCommand)
}

func TestRoot_CommandFlagsNotParsed(t *testing.T) {
	f := newFixture(t)
	key := testKey()

	f.expectResolve()
	f.keyer.EXPECT().Derive(gomock.Any()).
		DoAndReturn(func(in domain.KeyInputs) domain.Key {
			assert.Equal(t, []string{"ls", "-la"}, in.Command.Argv)
			return key
		})
	f.store.EXPECT().Lookup(gomock.Any(), key).Return(&domain.Entry{Key: key.String()}, nil)

	f.cli.SetArgs([]string{"ls", "-la"})
	_, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
}

func TestClean_SweepsExpired(t *testing.T) {
	f := newFixture(t)

	f.store.EXPECT().Sweep(gomock.Any(), false).Return(2, nil)
	f.logger.EXPECT().Info("removed 2 cache entries")

	f.cli.SetArgs([]string{"clean"})
	code, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestClean_All(t *testing.T) {
	f := newFixture(t)

	f.store.EXPECT().Sweep("/custom/cache", true).Return(9, nil)
	f.logger.EXPECT().Info("removed 9 cache entries")

	f.cli.SetArgs([]string{"clean", "--all", "--cache-dir", "/custom/cache"})
	_, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	f := newFixture(t)

	f.cli.SetArgs([]string{"version"})
	code, err := f.cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
