// Package launch starts the application once the root is in sync.
//
// Two strategies exist, mirroring the two wait semantics the launcher
// guarantees: a prebuilt binary is started detached (the launcher does not
// wait), while the interpreter fallback runs in the foreground and its exit
// code is mirrored. The asymmetry is deliberate.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	appcfg "git.home.luguber.info/inful/launchpad/internal/config"
	"git.home.luguber.info/inful/launchpad/internal/logfields"
)

// Decision is which launch path was selected for the current filesystem state.
type Decision string

const (
	DecisionBinary      Decision = "binary"
	DecisionInterpreter Decision = "interpreter"
)

// Runner abstracts how the application is started. Implementations return the
// exit code the launcher should report; a non-nil error means the child could
// not be started at all.
type Runner interface {
	Run(ctx context.Context) (int, error)
}

// Select picks the launch strategy: the prebuilt binary when it exists at its
// configured path under root, the interpreter fallback otherwise.
func Select(root string, cfg appcfg.LaunchConfig) (Runner, Decision) {
	if cfg.Binary != "" {
		binPath := filepath.Join(root, cfg.Binary)
		if _, err := os.Stat(binPath); err == nil {
			return &BinaryRunner{Root: root, Path: binPath}, DecisionBinary
		}
	}
	return &InterpreterRunner{Root: root, Interpreter: cfg.Interpreter, Script: cfg.Script}, DecisionInterpreter
}

// BinaryRunner starts the prebuilt binary detached: the process is released
// immediately and outlives the launcher.
type BinaryRunner struct {
	Root string
	Path string
}

func (b *BinaryRunner) Run(_ context.Context) (int, error) {
	cmd := exec.Command(b.Path)
	cmd.Dir = b.Root
	slog.Debug("Starting prebuilt binary detached", logfields.Path(b.Path))
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start binary %s: %w", b.Path, err)
	}
	if err := cmd.Process.Release(); err != nil {
		return -1, fmt.Errorf("release binary process: %w", err)
	}
	return 0, nil
}

// InterpreterRunner runs the interpreter against the fallback script in the
// foreground with inherited stdio and waits for it to finish.
type InterpreterRunner struct {
	Root        string
	Interpreter string
	Script      string
}

func (r *InterpreterRunner) Run(ctx context.Context) (int, error) {
	cmd := exec.CommandContext(ctx, r.Interpreter, r.Script)
	cmd.Dir = r.Root
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Debug("Running interpreter fallback", logfields.Tool(r.Interpreter), logfields.Path(r.Script))

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("run %s %s: %w", r.Interpreter, r.Script, err)
}

// NoopRunner performs no launch; useful in tests or when only syncing is desired.
type NoopRunner struct {
	Code int
}

func (n *NoopRunner) Run(_ context.Context) (int, error) {
	slog.Debug("NoopRunner skipping launch")
	return n.Code, nil
}
