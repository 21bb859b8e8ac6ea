// Package launcher orchestrates the run flow: preflight, sync, delay, launch.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	appcfg "git.home.luguber.info/inful/launchpad/internal/config"
	"git.home.luguber.info/inful/launchpad/internal/git"
	"git.home.luguber.info/inful/launchpad/internal/launch"
	"git.home.luguber.info/inful/launchpad/internal/logfields"
	"git.home.luguber.info/inful/launchpad/internal/preflight"
	"github.com/google/uuid"
)

// SyncEngine is the subset of the git client the launcher depends on.
type SyncEngine interface {
	Plan() git.Action
	Sync(repo appcfg.Repository) (git.SyncResult, error)
}

// Prober checks required external tools before anything else runs.
type Prober func(tools []string) error

// Selector picks the launch strategy for the current filesystem state.
type Selector func(root string, cfg appcfg.LaunchConfig) (launch.Runner, launch.Decision)

// Launcher wires the run flow together. Collaborators are injectable so the
// ordering guarantees can be tested without a network or child processes.
type Launcher struct {
	root         string
	cfg          *appcfg.Config
	probe        Prober
	engine       SyncEngine
	selectRunner Selector
	sleep        func(time.Duration)
}

// New creates a launcher with the default collaborators.
func New(root string, cfg *appcfg.Config) *Launcher {
	return &Launcher{
		root:         root,
		cfg:          cfg,
		probe:        preflight.Check,
		engine:       git.NewClient(root).WithSyncConfig(&cfg.Sync),
		selectRunner: launch.Select,
		sleep:        time.Sleep,
	}
}

// WithProber injects a custom preflight probe (for testing).
func (l *Launcher) WithProber(p Prober) *Launcher { l.probe = p; return l }

// WithSyncEngine injects a custom sync engine (for testing).
func (l *Launcher) WithSyncEngine(e SyncEngine) *Launcher { l.engine = e; return l }

// WithSelector injects a custom runner selector (for testing).
func (l *Launcher) WithSelector(s Selector) *Launcher { l.selectRunner = s; return l }

// WithSleep injects a custom sleep function (for testing).
func (l *Launcher) WithSleep(fn func(time.Duration)) *Launcher { l.sleep = fn; return l }

// RunResult reports what a full run did.
type RunResult struct {
	RunID    string
	Sync     git.SyncResult
	Decision launch.Decision
	ExitCode int
}

// Run executes the full flow. A preflight failure aborts before any sync; a
// sync failure aborts before any launch.
func (l *Launcher) Run(ctx context.Context) (RunResult, error) {
	runID := uuid.NewString()
	logger := slog.With(logfields.RunID(runID))

	if err := l.probe(l.cfg.RequiredTools); err != nil {
		return RunResult{RunID: runID}, err
	}

	logger.Info("Syncing application root", logfields.Path(l.root), logfields.URL(l.cfg.Repository.URL), logfields.Action(string(l.engine.Plan())))
	syncResult, err := l.engine.Sync(l.cfg.Repository)
	if err != nil {
		return RunResult{RunID: runID}, fmt.Errorf("sync: %w", err)
	}

	if delay := l.launchDelay(); delay > 0 {
		logger.Debug("Waiting before launch", slog.Duration("delay", delay))
		l.sleep(delay)
	}

	runner, decision := l.selectRunner(l.root, l.cfg.Launch)
	logger.Info("Launching application", logfields.Action(string(decision)))
	code, err := runner.Run(ctx)
	if err != nil {
		return RunResult{RunID: runID, Sync: syncResult, Decision: decision}, fmt.Errorf("launch: %w", err)
	}

	return RunResult{RunID: runID, Sync: syncResult, Decision: decision, ExitCode: code}, nil
}

// Sync executes preflight and sync without launching.
func (l *Launcher) Sync(_ context.Context) (git.SyncResult, error) {
	if err := l.probe(l.cfg.RequiredTools); err != nil {
		return git.SyncResult{}, err
	}
	result, err := l.engine.Sync(l.cfg.Repository)
	if err != nil {
		return git.SyncResult{}, fmt.Errorf("sync: %w", err)
	}
	return result, nil
}

// launchDelay parses the configured launch delay; malformed values disable it.
func (l *Launcher) launchDelay() time.Duration {
	d, err := time.ParseDuration(l.cfg.Launch.Delay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ResolveRoot returns the application root: the override when given,
// otherwise the directory containing the launcher executable.
func ResolveRoot(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
