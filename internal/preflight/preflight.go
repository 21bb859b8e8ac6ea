// Package preflight verifies that external tools the launched application
// depends on can be resolved on the search path before any sync or launch
// happens.
package preflight

import (
	"fmt"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/launchpad/internal/logfields"
)

// ToolNotFoundError reports a required executable missing from PATH.
type ToolNotFoundError struct {
	Tool string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("required tool %q not found on PATH: %v", e.Tool, e.Err)
}
func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// Check probes PATH for each tool in order and fails on the first miss.
// An empty list disables the probe.
func Check(tools []string) error {
	for _, tool := range tools {
		path, err := exec.LookPath(tool)
		if err != nil {
			return &ToolNotFoundError{Tool: tool, Err: err}
		}
		slog.Debug("Preflight tool resolved", logfields.Tool(tool), logfields.Path(path))
	}
	return nil
}
