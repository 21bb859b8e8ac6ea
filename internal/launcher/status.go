package launcher

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/launchpad/internal/git"
	"git.home.luguber.info/inful/launchpad/internal/launch"
)

// Status is a side-effect-free report of what a run would do.
type Status struct {
	Root          string
	Action        git.Action // clone or pull
	Head          *git.HeadInfo
	BinaryPresent bool
	Decision      launch.Decision
}

// Status inspects the filesystem without syncing or launching anything.
func (l *Launcher) Status() Status {
	client := git.NewClient(l.root)
	st := Status{Root: l.root, Action: client.Plan()}
	if st.Action == git.ActionPull {
		if head, err := client.Head(); err == nil {
			st.Head = &head
		}
	}
	if l.cfg.Launch.Binary != "" {
		if _, err := os.Stat(filepath.Join(l.root, l.cfg.Launch.Binary)); err == nil {
			st.BinaryPresent = true
		}
	}
	_, st.Decision = launch.Select(l.root, l.cfg.Launch)
	return st
}
