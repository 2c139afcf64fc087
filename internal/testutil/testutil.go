// Package testutil locates repository files from tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// ModuleRoot returns the directory holding go.mod, walking up from the
// working directory.
func ModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// Path resolves rel, a slash-separated path from the module root. In Bazel
// tests it uses runfiles; outside of Bazel it falls back to finding go.mod.
func Path(t testing.TB, rel string) string {
	t.Helper()
	if p, err := bazel.Runfile(rel); err == nil {
		return p
	}
	root, err := ModuleRoot()
	if err != nil {
		t.Fatalf("cannot locate %s: module root not found", rel)
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}
