package runner

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"go.trai.ch/runcached/internal/adapters/telemetry"
	"go.trai.ch/runcached/internal/core/domain"
	"go.trai.ch/runcached/internal/core/ports/mocks"
)

type testDeps struct {
	env      *mocks.MockEnvResolver
	keyer    *mocks.MockKeyDeriver
	store    *mocks.MockResultStore
	executor *mocks.MockExecutor
	logger   *mocks.MockLogger
}

func newTestRunner(t *testing.T) (*Runner, *testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	deps := &testDeps{
		env:      mocks.NewMockEnvResolver(ctrl),
		keyer:    mocks.NewMockKeyDeriver(ctrl),
		store:    mocks.NewMockResultStore(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	deps.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	r := New(deps.env, deps.keyer, deps.store, deps.executor, deps.logger,
		telemetry.NewNoOpTracer())
	r.stdin = strings.NewReader("")
	r.environ = func() []string { return []string{"HOME=/home/tester", "PATH=/usr/bin"} }
	r.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r, deps
}

func testRequest() domain.RunRequest {
	cfg := domain.DefaultConfig()
	cfg.CacheDir = "/tmp/cache"
	return domain.RunRequest{
		Config:   cfg,
		Argv:     []string{"date", "+%s"},
		StdinTTY: true,
	}
}

func testKey(b byte) domain.Key {
	var sum [domain.KeySize]byte
	sum[0] = b
	return domain.KeyFromSum(sum)
}

func expectResolve(deps *testDeps) {
	deps.env.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(&domain.ResolvedEnv{
		KeyRelevant: map[string]string{"HOME": "/home/tester"},
		Process:     []string{"HOME=/home/tester"},
	}, nil)
}

func TestRunner_MissExecutesAndStores(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(1)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{Stdout: []byte("1717243200\n"), ExitCode: 0}, nil)
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).
		DoAndReturn(func(_ string, _ domain.Key, entry domain.Entry) error {
			assert.Equal(t, []byte("1717243200\n"), entry.Stdout)
			assert.Equal(t, 0, entry.ExitCode)
			assert.Equal(t, r.now(), entry.CreatedAt)
			assert.Equal(t, req.Config.TTL, entry.TTL)
			return nil
		})

	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []byte("1717243200\n"), res.Stdout)
	assert.False(t, res.Cached)
}

func TestRunner_HitReplaysWithoutExecuting(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(2)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(&domain.Entry{
		Key:      key.String(),
		Stdout:   []byte("cached out"),
		Stderr:   []byte("cached err"),
		ExitCode: 3,
	}, nil)

	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, []byte("cached out"), res.Stdout)
	assert.Equal(t, []byte("cached err"), res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunner_FailureNotStoredByDefault(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(3)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{Stderr: []byte("boom"), ExitCode: 2}, nil)

	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
}

func TestRunner_FailureStoredWithKeepFailures(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	req.Config.KeepFailures = true
	key := testKey(4)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{ExitCode: 2}, nil)
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).
		DoAndReturn(func(_ string, _ domain.Key, entry domain.Entry) error {
			assert.Equal(t, 2, entry.ExitCode)
			return nil
		})

	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
}

func TestRunner_LookupErrorFallsThroughToExecution(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(5)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).
		Return(nil, domain.ErrEntryCorrupt)
	deps.logger.EXPECT().Warn(gomock.Any())
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{Stdout: []byte("fresh"), ExitCode: 0}, nil)
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).Return(nil)

	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), res.Stdout)
	assert.False(t, res.Cached)
}

func TestRunner_PutErrorDoesNotFailTheRun(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(6)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{Stdout: []byte("out"), ExitCode: 0}, nil)
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).
		Return(domain.ErrStoreWriteFailed)
	deps.logger.EXPECT().Warn(gomock.Any())

	res, err := r.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []byte("out"), res.Stdout)
}

func TestRunner_EmptyCommand(t *testing.T) {
	r, _ := newTestRunner(t)
	req := testRequest()
	req.Argv = nil

	_, err := r.Run(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrNoCommand)
}

func TestRunner_InvalidConfigRejected(t *testing.T) {
	r, _ := newTestRunner(t)
	req := testRequest()
	req.Config.TTL = 0

	_, err := r.Run(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidTTL)
}

func TestRunner_StdinDrainedIntoKeyAndInvocation(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	req.StdinTTY = false
	key := testKey(7)
	r.stdin = strings.NewReader("piped data")

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).
		DoAndReturn(func(in domain.KeyInputs) domain.Key {
			assert.True(t, in.StdinIncluded)
			assert.Equal(t, []byte("piped data"), in.Stdin)
			return key
		})
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv domain.Invocation) (*domain.Result, error) {
			assert.Equal(t, []byte("piped data"), inv.Stdin)
			return &domain.Result{ExitCode: 0}, nil
		})
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).Return(nil)

	_, err := r.Run(context.Background(), req)
	require.NoError(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestRunner_StdinReadError(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	req.StdinTTY = false
	r.stdin = failingReader{}

	expectResolve(deps)

	_, err := r.Run(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrStdinReadFailed)
}

func TestRunner_CustomKeyPrePass(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	req.Config.CustomKey = true
	key := testKey(8)

	expectResolve(deps)
	prePass := deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv domain.Invocation) (*domain.Result, error) {
			assert.Contains(t, inv.Env, domain.CustomKeyEnvVar+"=1")
			return &domain.Result{Stdout: []byte("v2.1.0\n"), ExitCode: 0}, nil
		})
	deps.keyer.EXPECT().Derive(gomock.Any()).
		DoAndReturn(func(in domain.KeyInputs) domain.Key {
			assert.Equal(t, []byte("v2.1.0\n"), in.CustomKey)
			return key
		})
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).After(prePass).
		DoAndReturn(func(_ context.Context, inv domain.Invocation) (*domain.Result, error) {
			assert.NotContains(t, inv.Env, domain.CustomKeyEnvVar+"=1")
			return &domain.Result{ExitCode: 0}, nil
		})
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).Return(nil)

	_, err := r.Run(context.Background(), req)
	require.NoError(t, err)
}

func TestRunner_CustomKeyPrePassFailure(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	req.Config.CustomKey = true

	expectResolve(deps)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&domain.Result{ExitCode: 1}, nil)

	_, err := r.Run(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrCustomKeyFailed)
}

func TestRunner_ExecStartFailurePropagates(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(9)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrExecStartFailed)

	_, err := r.Run(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrExecStartFailed)
}

func TestRunner_ColdKeyRacesRunOnce(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()
	key := testKey(10)

	deps.env.EXPECT().Resolve(gomock.Any(), gomock.Any()).Times(2).
		Return(&domain.ResolvedEnv{
			KeyRelevant: map[string]string{},
			Process:     []string{},
		}, nil)
	deps.keyer.EXPECT().Derive(gomock.Any()).Times(2).Return(key)

	entered := make(chan struct{})
	release := make(chan struct{})
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Times(1).
		DoAndReturn(func(string, domain.Key) (*domain.Entry, error) {
			close(entered)
			<-release
			return nil, nil
		})
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(1).
		Return(&domain.Result{Stdout: []byte("once"), ExitCode: 0}, nil)
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).Times(1).Return(nil)

	results := make(chan *domain.Result, 2)
	errs := make(chan error, 2)
	run := func() {
		res, err := r.Run(context.Background(), req)
		results <- res
		errs <- err
	}

	go run()
	<-entered
	go run()
	// Give the second invocation time to join the in-flight key.
	time.Sleep(50 * time.Millisecond)
	close(release)

	for range 2 {
		require.NoError(t, <-errs)
		res := <-results
		assert.Equal(t, []byte("once"), res.Stdout)
	}
}

func TestRunner_AmbientShellReachesInvocation(t *testing.T) {
	r, deps := newTestRunner(t)
	r.environ = func() []string {
		return []string{"HOME=/home/tester", "PATH=/usr/bin", "SHELL=/bin/zsh"}
	}
	req := testRequest()
	req.Config.Shell = true
	key := testKey(9)

	expectResolve(deps)
	deps.keyer.EXPECT().Derive(gomock.Any()).Return(key)
	deps.store.EXPECT().Lookup(req.Config.CacheDir, key).Return(nil, nil)
	deps.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, inv domain.Invocation) (*domain.Result, error) {
			assert.Equal(t, "/bin/zsh", inv.Shell)
			// The interpreter travels outside the child env, which stays
			// restricted to the resolved selection.
			assert.Equal(t, []string{"HOME=/home/tester"}, inv.Env)
			return &domain.Result{ExitCode: 0}, nil
		})
	deps.store.EXPECT().Put(req.Config.CacheDir, key, gomock.Any()).Return(nil)

	_, err := r.Run(context.Background(), req)
	require.NoError(t, err)
}

func TestRunner_EnvResolutionErrorPropagates(t *testing.T) {
	r, deps := newTestRunner(t)
	req := testRequest()

	deps.env.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrExcludedAssignment)

	_, err := r.Run(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrExcludedAssignment)
}
