package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyURL        = "url"
	KeyPath       = "path"
	KeyBranch     = "branch"
	KeyCommit     = "commit"
	KeyTool       = "tool"
	KeyRunID      = "run_id"
	KeyAction     = "action"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Tool(t string) slog.Attr         { return slog.String(KeyTool, t) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Action(a string) slog.Attr       { return slog.String(KeyAction, a) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
