package launcher

import (
	"context"
	"errors"
	"testing"
	"time"

	appcfg "git.home.luguber.info/inful/launchpad/internal/config"
	"git.home.luguber.info/inful/launchpad/internal/git"
	"git.home.luguber.info/inful/launchpad/internal/launch"
	"git.home.luguber.info/inful/launchpad/internal/preflight"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	plan   git.Action
	result git.SyncResult
	err    error
	calls  int
	events *[]string
}

func (f *fakeEngine) Plan() git.Action { return f.plan }

func (f *fakeEngine) Sync(_ appcfg.Repository) (git.SyncResult, error) {
	f.calls++
	if f.events != nil {
		*f.events = append(*f.events, "sync")
	}
	return f.result, f.err
}

type fakeRunner struct {
	code   int
	err    error
	calls  int
	events *[]string
}

func (f *fakeRunner) Run(_ context.Context) (int, error) {
	f.calls++
	if f.events != nil {
		*f.events = append(*f.events, "launch")
	}
	return f.code, f.err
}

func testConfig() *appcfg.Config {
	return &appcfg.Config{
		Repository:    appcfg.Repository{URL: "https://example.com/app.git", Branch: "main", Remote: "origin"},
		Launch:        appcfg.LaunchConfig{Binary: "dist/app", Script: "app.py", Interpreter: "python3", Delay: "1ms"},
		RequiredTools: []string{"git"},
	}
}

func TestRunHappyPathOrdering(t *testing.T) {
	var events []string
	engine := &fakeEngine{plan: git.ActionPull, result: git.SyncResult{Action: git.ActionPull, Commit: "abcd1234"}, events: &events}
	runner := &fakeRunner{code: 0, events: &events}

	l := New(t.TempDir(), testConfig()).
		WithProber(func(tools []string) error { events = append(events, "probe"); return nil }).
		WithSyncEngine(engine).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return runner, launch.DecisionBinary
		}).
		WithSleep(func(time.Duration) { events = append(events, "sleep") })

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"probe", "sync", "sleep", "launch"}, events)
	require.Equal(t, git.ActionPull, result.Sync.Action)
	require.Equal(t, launch.DecisionBinary, result.Decision)
	require.Equal(t, 0, result.ExitCode)
	require.NotEmpty(t, result.RunID)
}

func TestRunMissingToolAbortsBeforeSyncAndLaunch(t *testing.T) {
	engine := &fakeEngine{plan: git.ActionClone}
	runner := &fakeRunner{}

	l := New(t.TempDir(), testConfig()).
		WithProber(func(tools []string) error {
			return &preflight.ToolNotFoundError{Tool: tools[0], Err: errors.New("not found")}
		}).
		WithSyncEngine(engine).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return runner, launch.DecisionBinary
		})

	_, err := l.Run(context.Background())
	var toolErr *preflight.ToolNotFoundError
	require.ErrorAs(t, err, &toolErr)
	require.Equal(t, "git", toolErr.Tool)
	require.Zero(t, engine.calls, "sync must not run when a tool is missing")
	require.Zero(t, runner.calls, "launch must not run when a tool is missing")
}

func TestRunSyncFailureAbortsBeforeLaunch(t *testing.T) {
	engine := &fakeEngine{plan: git.ActionClone, err: errors.New("clone failed")}
	runner := &fakeRunner{}

	l := New(t.TempDir(), testConfig()).
		WithProber(func([]string) error { return nil }).
		WithSyncEngine(engine).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return runner, launch.DecisionBinary
		}).
		WithSleep(func(time.Duration) {})

	_, err := l.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "sync")
	require.Equal(t, 1, engine.calls)
	require.Zero(t, runner.calls, "launch must not run after a sync failure")
}

func TestRunMirrorsRunnerExitCode(t *testing.T) {
	engine := &fakeEngine{plan: git.ActionPull, result: git.SyncResult{Action: git.ActionPull, UpToDate: true}}
	runner := &fakeRunner{code: 42}

	l := New(t.TempDir(), testConfig()).
		WithProber(func([]string) error { return nil }).
		WithSyncEngine(engine).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return runner, launch.DecisionInterpreter
		}).
		WithSleep(func(time.Duration) {})

	result, err := l.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, result.ExitCode)
	require.Equal(t, launch.DecisionInterpreter, result.Decision)
}

func TestRunIdempotentWithRepoAndBinaryPresent(t *testing.T) {
	engine := &fakeEngine{plan: git.ActionPull, result: git.SyncResult{Action: git.ActionPull, UpToDate: true}}
	runner := &fakeRunner{}

	l := New(t.TempDir(), testConfig()).
		WithProber(func([]string) error { return nil }).
		WithSyncEngine(engine).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return runner, launch.DecisionBinary
		}).
		WithSleep(func(time.Duration) {})

	for i := 0; i < 2; i++ {
		result, err := l.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, git.ActionPull, result.Sync.Action, "run %d must pull, never clone", i)
		require.Equal(t, launch.DecisionBinary, result.Decision, "run %d must pick the binary", i)
	}
	require.Equal(t, 2, engine.calls)
	require.Equal(t, 2, runner.calls)
}

func TestLaunchDelay(t *testing.T) {
	var slept time.Duration
	cfg := testConfig()
	cfg.Launch.Delay = "250ms"

	l := New(t.TempDir(), cfg).
		WithProber(func([]string) error { return nil }).
		WithSyncEngine(&fakeEngine{plan: git.ActionPull}).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return &fakeRunner{}, launch.DecisionBinary
		}).
		WithSleep(func(d time.Duration) { slept = d })

	_, err := l.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, slept)
}

func TestLaunchDelayMalformedDisablesSleep(t *testing.T) {
	slept := false
	cfg := testConfig()
	cfg.Launch.Delay = "soon"

	l := New(t.TempDir(), cfg).
		WithProber(func([]string) error { return nil }).
		WithSyncEngine(&fakeEngine{plan: git.ActionPull}).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return &fakeRunner{}, launch.DecisionBinary
		}).
		WithSleep(func(time.Duration) { slept = true })

	_, err := l.Run(context.Background())
	require.NoError(t, err)
	require.False(t, slept)
}

func TestSyncOnlySkipsLaunch(t *testing.T) {
	engine := &fakeEngine{plan: git.ActionClone, result: git.SyncResult{Action: git.ActionClone, Commit: "abcd1234"}}
	runner := &fakeRunner{}

	l := New(t.TempDir(), testConfig()).
		WithProber(func([]string) error { return nil }).
		WithSyncEngine(engine).
		WithSelector(func(string, appcfg.LaunchConfig) (launch.Runner, launch.Decision) {
			return runner, launch.DecisionBinary
		})

	result, err := l.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, git.ActionClone, result.Action)
	require.Zero(t, runner.calls)
}

func TestSyncOnlyHonorsPreflight(t *testing.T) {
	engine := &fakeEngine{plan: git.ActionClone}

	l := New(t.TempDir(), testConfig()).
		WithProber(func([]string) error {
			return &preflight.ToolNotFoundError{Tool: "git", Err: errors.New("not found")}
		}).
		WithSyncEngine(engine)

	_, err := l.Sync(context.Background())
	var toolErr *preflight.ToolNotFoundError
	require.ErrorAs(t, err, &toolErr)
	require.Zero(t, engine.calls)
}
