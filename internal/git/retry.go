package git

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"git.home.luguber.info/inful/launchpad/internal/retry"
)

const (
	transientTypeRateLimit      = "rate_limit"
	transientTypeNetworkTimeout = "network_timeout"
)

// withRetry wraps a sync operation with retry logic based on sync configuration.
func (c *Client) withRetry(op string, fn func() (SyncResult, error)) (SyncResult, error) {
	if c.syncCfg == nil || c.syncCfg.MaxRetries <= 0 {
		return fn()
	}
	pol := retry.FromSyncConfig(*c.syncCfg)

	// Adaptive delay multipliers keyed by transient error type.
	const (
		multRateLimit      = 3.0
		multNetworkTimeout = 1.0
	)
	var lastErr error
	for attempt := 0; attempt <= pol.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying sync operation", slog.String("operation", op), slog.Int("attempt", attempt))
		}
		c.inRetry = true
		result, err := fn()
		c.inRetry = false
		if err == nil {
			return result, nil
		}
		lastErr = err
		if isPermanentSyncError(err) {
			slog.Error("permanent sync error", slog.String("operation", op), slog.String("error", err.Error()))
			return SyncResult{}, err
		}
		if attempt == pol.MaxRetries {
			break
		}
		delay := pol.Delay(attempt + 1)
		switch classifyTransientType(err) {
		case transientTypeRateLimit:
			delay = time.Duration(float64(delay) * multRateLimit)
		case transientTypeNetworkTimeout:
			delay = time.Duration(float64(delay) * multNetworkTimeout)
		}
		time.Sleep(delay)
	}
	return SyncResult{}, fmt.Errorf("sync %s failed after retries: %w", op, lastErr)
}

func isPermanentSyncError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.As(err, new(*AuthError)),
		errors.As(err, new(*NotFoundError)),
		errors.As(err, new(*UnsupportedProtocolError)):
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		return true
	}
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no such remote") || strings.Contains(msg, "invalid reference") {
		return true
	}
	if strings.Contains(msg, "unsupported protocol") {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	return false
}

// expose IsPermanentSyncError for tests within package.
var IsPermanentSyncError = isPermanentSyncError

// classifyTransientType returns a short string key for known transient typed errors; empty if unknown.
func classifyTransientType(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.As(err, new(*RateLimitError)):
		return transientTypeRateLimit
	case errors.As(err, new(*NetworkTimeoutError)):
		return transientTypeNetworkTimeout
	}
	return ""
}
