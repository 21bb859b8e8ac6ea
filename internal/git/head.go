package git

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// HeadInfo describes the current checkout of the root repository.
type HeadInfo struct {
	Branch string // empty when HEAD is detached
	Commit string // short hash
}

// Head reports the current branch and commit of the root. It fails when the
// root is not a repository yet.
func (c *Client) Head() (HeadInfo, error) {
	repository, err := git.PlainOpen(c.rootDir)
	if err != nil {
		return HeadInfo{}, fmt.Errorf("open repo: %w", err)
	}
	ref, err := repository.Head()
	if err != nil {
		return HeadInfo{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	info := HeadInfo{Commit: shortHash(ref.Hash().String())}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}
