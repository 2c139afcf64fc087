package loader

import (
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
)

// PackageInfo identifies a package and its non-test Go files.
type PackageInfo struct {
	Path  string
	Name  string
	Dir   string
	Files []string
}

// Discover resolves package patterns, relative to dir, with the go tool.
// No pattern means the package in dir.
func Discover(dir string, patterns ...string) ([]*PackageInfo, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages %v: %w", patterns, err)
	}

	var infos []*PackageInfo
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("failed to load package %q: %v", pkg.PkgPath, pkg.Errors[0])
		}
		if len(pkg.GoFiles) == 0 {
			continue
		}
		infos = append(infos, &PackageInfo{
			Path:  pkg.PkgPath,
			Name:  pkg.Name,
			Dir:   filepath.Dir(pkg.GoFiles[0]),
			Files: pkg.GoFiles,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Path < infos[j].Path
	})
	return infos, nil
}
