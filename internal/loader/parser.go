// Package loader reads Go packages and recognizes the tagged unions
// declared in them.
package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"martianoff/assocgen/assocerr"
	"martianoff/assocgen/internal/assoc"
)

const (
	directivePrefix = "//assoc:"
	funcDirective   = "func"
	bindDirective   = "bind"
)

// SourceFile is one parsed file of a package.
type SourceFile struct {
	Path string
	AST  *ast.File
}

// Package holds the parsed, hand-written files of one package, sorted by
// file name.
type Package struct {
	Name  string
	Dir   string
	Fset  *token.FileSet
	Files []*SourceFile
}

// ParseFiles parses the named files. Test files and generated files are
// skipped.
func ParseFiles(filenames []string) (*Package, error) {
	sorted := append([]string(nil), filenames...)
	sort.Strings(sorted)

	pkg := &Package{Fset: token.NewFileSet()}
	for _, name := range sorted {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(pkg.Fset, name, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse file %q: %w", name, err)
		}
		if err := pkg.add(name, f); err != nil {
			return nil, err
		}
	}
	if len(sorted) > 0 {
		pkg.Dir = filepath.Dir(sorted[0])
	}
	return pkg, nil
}

// ParseSources parses in-memory files keyed by file name.
func ParseSources(sources map[string]string) (*Package, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	pkg := &Package{Fset: token.NewFileSet(), Dir: "."}
	for _, name := range names {
		f, err := parser.ParseFile(pkg.Fset, name, sources[name], parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse file %q: %w", name, err)
		}
		if err := pkg.add(name, f); err != nil {
			return nil, err
		}
	}
	return pkg, nil
}

func (p *Package) add(name string, f *ast.File) error {
	if ast.IsGenerated(f) {
		return nil
	}
	if p.Name == "" {
		p.Name = f.Name.Name
	} else if p.Name != f.Name.Name {
		return fmt.Errorf("file %q declares package %s, expected %s", name, f.Name.Name, p.Name)
	}
	p.Files = append(p.Files, &SourceFile{Path: name, AST: f})
	return nil
}

// ExtractImports maps the qualifiers of a file to import paths. Blank and
// dot imports introduce no qualifier and are left out.
func ExtractImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, "\"`")
		name := defaultImportName(path)
		if imp.Name != nil {
			name = imp.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = path
	}
	return imports
}

// defaultImportName guesses the package name of an unnamed import from
// its path, skipping major version suffixes such as /v5 and .v3.
func defaultImportName(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 && isMajorVersion(name) {
		name = parts[len(parts)-2]
	}
	if i := strings.LastIndex(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	return strings.ReplaceAll(name, "-", "_")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// directives returns the //assoc:<want> lines of doc. Any other //assoc:
// directive is reported with errType.
func directives(fset *token.FileSet, doc *ast.CommentGroup, want string, errType assocerr.ErrorType) ([]assoc.Annotation, error) {
	if doc == nil {
		return nil, nil
	}
	var out []assoc.Annotation
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		name, text := splitDirective(rest)
		pos := fset.Position(c.Slash)
		switch name {
		case want:
			out = append(out, assoc.Annotation{Text: text, Pos: pos})
		case funcDirective, bindDirective:
		default:
			return nil, assocerr.NewAt(errType, pos, fmt.Sprintf("unknown directive %s%s", directivePrefix, name))
		}
	}
	return out, nil
}

// declaresUnion reports whether doc carries a directive that only a union
// may carry, which is anything but //assoc:bind.
func declaresUnion(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if rest, ok := strings.CutPrefix(c.Text, directivePrefix); ok {
			if name, _ := splitDirective(rest); name != bindDirective {
				return true
			}
		}
	}
	return false
}

// splitDirective splits "func (k Kind) Level() int" into its name and text.
func splitDirective(rest string) (string, string) {
	i := strings.IndexAny(rest, " \t")
	if i < 0 {
		return rest, ""
	}
	return rest[:i], strings.TrimSpace(rest[i+1:])
}
