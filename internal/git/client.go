package git

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	appcfg "git.home.luguber.info/inful/launchpad/internal/config"
	"git.home.luguber.info/inful/launchpad/internal/logfields"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// Action is the sync operation chosen for the current filesystem state.
type Action string

const (
	ActionClone Action = "clone"
	ActionPull  Action = "pull"
)

// SyncResult reports what Sync did.
type SyncResult struct {
	Action   Action
	Commit   string // short HEAD hash after the operation, empty if unresolvable
	UpToDate bool   // pull found nothing new
}

// Client performs sync operations against a single application root.
type Client struct {
	rootDir string
	syncCfg *appcfg.SyncConfig // optional retry tuning
	inRetry bool               // internal guard to avoid nested retry wrapping
}

// NewClient creates a sync client rooted at the given directory.
func NewClient(rootDir string) *Client { return &Client{rootDir: rootDir} }

// WithSyncConfig attaches retry configuration to the client (fluent helper).
func (c *Client) WithSyncConfig(cfg *appcfg.SyncConfig) *Client { c.syncCfg = cfg; return c }

// Root returns the directory the client syncs.
func (c *Client) Root() string { return c.rootDir }

// Plan returns the action Sync would take: clone when the metadata directory
// is absent, pull when it is present.
func (c *Client) Plan() Action {
	if _, err := os.Stat(filepath.Join(c.rootDir, git.GitDirName)); err != nil {
		return ActionClone
	}
	return ActionPull
}

// Sync brings the root up to date with the remote (with retry wrapper if enabled).
func (c *Client) Sync(repo appcfg.Repository) (SyncResult, error) {
	if c.inRetry {
		return c.syncOnce(repo)
	}
	return c.withRetry(string(c.Plan()), func() (SyncResult, error) { return c.syncOnce(repo) })
}

func (c *Client) syncOnce(repo appcfg.Repository) (SyncResult, error) {
	if c.Plan() == ActionClone {
		return c.cloneOnce(repo)
	}
	return c.pullOnce(repo)
}

func (c *Client) cloneOnce(repo appcfg.Repository) (SyncResult, error) {
	slog.Debug("Cloning repository", logfields.URL(repo.URL), logfields.Branch(repo.Branch), logfields.Path(c.rootDir))

	cloneOptions := &git.CloneOptions{URL: repo.URL, Progress: os.Stdout}
	if repo.Branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		cloneOptions.SingleBranch = true
	}
	if repo.Auth != nil {
		auth, err := c.getAuthentication(repo.Auth)
		if err != nil {
			return SyncResult{}, fmt.Errorf("failed to setup authentication: %w", err)
		}
		cloneOptions.Auth = auth
	}

	repository, err := git.PlainClone(c.rootDir, false, cloneOptions)
	if err != nil {
		return SyncResult{}, classifySyncError("clone", repo.URL, err)
	}

	result := SyncResult{Action: ActionClone}
	if ref, herr := repository.Head(); herr == nil {
		result.Commit = shortHash(ref.Hash().String())
		slog.Info("Repository cloned successfully", logfields.URL(repo.URL), logfields.Commit(result.Commit), logfields.Path(c.rootDir))
	} else {
		slog.Info("Repository cloned successfully", logfields.URL(repo.URL), logfields.Path(c.rootDir))
	}
	return result, nil
}

func (c *Client) pullOnce(repo appcfg.Repository) (SyncResult, error) {
	repository, err := git.PlainOpen(c.rootDir)
	if err != nil {
		return SyncResult{}, fmt.Errorf("open repo: %w", err)
	}
	worktree, err := repository.Worktree()
	if err != nil {
		return SyncResult{}, fmt.Errorf("worktree: %w", err)
	}

	pullOptions := &git.PullOptions{RemoteName: repo.Remote}
	if pullOptions.RemoteName == "" {
		pullOptions.RemoteName = "origin"
	}
	if repo.Branch != "" {
		pullOptions.ReferenceName = plumbing.NewBranchReferenceName(repo.Branch)
		pullOptions.SingleBranch = true
	}
	if repo.Auth != nil {
		auth, err := c.getAuthentication(repo.Auth)
		if err != nil {
			return SyncResult{}, fmt.Errorf("failed to setup authentication: %w", err)
		}
		pullOptions.Auth = auth
	}

	err = worktree.Pull(pullOptions)
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return SyncResult{}, classifySyncError("pull", repo.URL, err)
	}

	result := SyncResult{Action: ActionPull, UpToDate: err == git.NoErrAlreadyUpToDate}
	if ref, herr := repository.Head(); herr == nil {
		result.Commit = shortHash(ref.Hash().String())
	}
	if result.UpToDate {
		slog.Info("Repository already up to date", logfields.Path(c.rootDir), logfields.Commit(result.Commit))
	} else {
		slog.Info("Repository updated successfully", logfields.Path(c.rootDir), logfields.Commit(result.Commit))
	}
	return result, nil
}

// getAuthentication creates authentication based on config
func (c *Client) getAuthentication(auth *appcfg.AuthConfig) (transport.AuthMethod, error) {
	switch auth.Type {
	case "none", "":
		return nil, nil // No authentication needed for public repositories

	case "ssh":
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
		}
		return publicKeys, nil

	case "token":
		if auth.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		return &http.BasicAuth{
			Username: "token", // GitHub/GitLab use "token" as username
			Password: auth.Token,
		}, nil

	case "basic":
		if auth.Username == "" || auth.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", auth.Type)
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
