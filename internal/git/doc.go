// Package git keeps the application root in sync with its remote repository.
//
// The engine performs exactly one of two actions per run:
//   - clone: the root has no .git metadata directory yet
//   - pull: the root is already a repository
//
// Transient failures (network timeouts, rate limits) are retried per the
// configured backoff policy; permanent failures (auth, not found,
// unsupported protocol) surface immediately as typed errors.
package git
