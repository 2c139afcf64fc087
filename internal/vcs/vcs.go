// Package vcs reports which packages of a git worktree have uncommitted
// changes, so that only those are regenerated.
package vcs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Changes lists the directories with changed Go sources.
type Changes struct {
	Root string
	Dirs map[string]bool
	// Config is set when an assocgen configuration file changed, which
	// affects every package.
	Config bool
}

// Changed inspects the status of the worktree containing dir. configName
// is the base name of the configuration file.
func Changed(dir, configName string) (*Changes, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	changes := &Changes{
		Root: wt.Filesystem.Root(),
		Dirs: make(map[string]bool),
	}
	for file, st := range status {
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		path := filepath.FromSlash(file)
		if filepath.Base(path) == configName {
			changes.Config = true
			continue
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			continue
		}
		changes.Dirs[filepath.Join(changes.Root, filepath.Dir(path))] = true
	}
	return changes, nil
}

// Includes reports whether the package in dir needs regenerating.
func (c *Changes) Includes(dir string) bool {
	if c.Config {
		return true
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return true
	}
	return c.Dirs[abs]
}
