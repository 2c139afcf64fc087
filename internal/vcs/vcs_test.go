package vcs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/assocgen/internal/vcs"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func initRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	write(t, filepath.Join(dir, "kinds", "kind.go"), "package kinds\n")
	write(t, filepath.Join(dir, "shapes", "shape.go"), "package shapes\n")
	write(t, filepath.Join(dir, "docs", "README.md"), "docs\n")
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Unix(0, 0)},
	})
	require.NoError(t, err)
	return dir, wt
}

func TestChanged(t *testing.T) {
	dir, _ := initRepo(t)

	changes, err := vcs.Changed(dir, "assocgen.yaml")
	require.NoError(t, err)
	assert.Empty(t, changes.Dirs)
	assert.False(t, changes.Includes(filepath.Join(dir, "kinds")))

	write(t, filepath.Join(dir, "kinds", "kind.go"), "package kinds\n\ntype Kind int\n")
	write(t, filepath.Join(dir, "fresh", "fresh.go"), "package fresh\n")
	write(t, filepath.Join(dir, "shapes", "shape_test.go"), "package shapes\n")
	write(t, filepath.Join(dir, "docs", "README.md"), "more docs\n")

	changes, err = vcs.Changed(filepath.Join(dir, "kinds"), "assocgen.yaml")
	require.NoError(t, err)
	assert.False(t, changes.Config)
	assert.True(t, changes.Includes(filepath.Join(dir, "kinds")))
	assert.True(t, changes.Includes(filepath.Join(dir, "fresh")))
	assert.False(t, changes.Includes(filepath.Join(dir, "shapes")))
	assert.False(t, changes.Includes(filepath.Join(dir, "docs")))
}

func TestChangedConfig(t *testing.T) {
	dir, _ := initRepo(t)
	write(t, filepath.Join(dir, "assocgen.yaml"), "strict: true\n")

	changes, err := vcs.Changed(dir, "assocgen.yaml")
	require.NoError(t, err)
	assert.True(t, changes.Config)
	assert.True(t, changes.Includes(filepath.Join(dir, "shapes")))
}

func TestChangedOutsideRepository(t *testing.T) {
	_, err := vcs.Changed(t.TempDir(), "assocgen.yaml")
	assert.ErrorContains(t, err, "failed to open git repository")
}
