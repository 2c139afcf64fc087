// Package generator renders synthesized association functions as Go
// source files.
package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"path"
	"sort"
	"strings"

	"golang.org/x/tools/imports"

	"martianoff/assocgen/internal/assoc"
)

// Header marks every file written by assocgen.
const Header = "// Code generated by assocgen. DO NOT EDIT."

// DefaultOptionPath is imported for option.Option results when the
// declaring file does not import an "option" package itself.
const DefaultOptionPath = "martianoff/assocgen/option"

// CodeGenerator generates Go source code for the functions of one union.
type CodeGenerator interface {
	Generate(pkgName string, block *assoc.ImplBlock) ([]byte, error)
}

type goCodeGenerator struct {
	suffix string
}

// NewGoCodeGenerator creates a new instance of CodeGenerator that generates Go code.
// suffix names the generated files in diagnostics, see Filename.
func NewGoCodeGenerator(suffix string) CodeGenerator {
	return &goCodeGenerator{suffix: suffix}
}

// Generate implements the CodeGenerator interface.
func (g *goCodeGenerator) Generate(pkgName string, block *assoc.ImplBlock) ([]byte, error) {
	filename := Filename(block.Union.Name, g.suffix)
	imps, err := usedImports(block)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	var buf bytes.Buffer
	buf.WriteString(Header + "\n\n")
	fmt.Fprintf(&buf, "package %s\n", pkgName)
	switch len(imps) {
	case 0:
	case 1:
		fmt.Fprintf(&buf, "\nimport %s\n", imps[0])
	default:
		buf.WriteString("\nimport (\n")
		for _, imp := range imps {
			fmt.Fprintf(&buf, "\t%s\n", imp)
		}
		buf.WriteString(")\n")
	}

	fset := token.NewFileSet()
	for _, decl := range block.Decls() {
		buf.WriteString("\n")
		if err := format.Node(&buf, fset, decl); err != nil {
			return nil, fmt.Errorf("failed to print %s: %w", decl.Name.Name, err)
		}
		buf.WriteString("\n")
	}

	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format generated code for %s: %w", block.Union.Name, err)
	}
	return out, nil
}

type importSpec struct {
	name string
	path string
}

func (s importSpec) String() string {
	if s.name == path.Base(s.path) {
		return fmt.Sprintf("%q", s.path)
	}
	return fmt.Sprintf("%s %q", s.name, s.path)
}

// usedImports returns the imports the generated functions refer to,
// sorted by path. Qualifiers in a variant's associations resolve against
// the file declaring the variant first; everything else resolves against
// the file declaring the union.
func usedImports(block *assoc.ImplBlock) ([]importSpec, error) {
	u := block.Union
	used := make(map[string]string)
	var clash error
	collect := func(node ast.Node, scopes ...map[string]string) {
		if node == nil {
			return
		}
		ast.Inspect(node, func(n ast.Node) bool {
			sel, ok := n.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			id, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}
			for _, scope := range scopes {
				p, ok := scope[id.Name]
				if !ok {
					continue
				}
				if prev, seen := used[id.Name]; seen && prev != p && clash == nil {
					clash = fmt.Errorf("qualifier %s in the functions of %s refers to both %q and %q", id.Name, u.Name, prev, p)
				}
				used[id.Name] = p
				break
			}
			return true
		})
	}

	for _, tp := range u.TypeParams {
		collect(tp.Constraint, u.Imports)
	}
	for _, f := range block.Functions {
		for _, p := range f.Decl.Params {
			collect(p.TypeExpr, u.Imports)
		}
		collect(f.Decl.ResultExpr, u.Imports)
		for _, arm := range f.Arms {
			for _, c := range arm.Cases {
				collect(c, arm.Imports, u.Imports)
			}
			for _, st := range arm.Body {
				collect(st, arm.Imports, u.Imports)
			}
		}
		for _, st := range f.Tail {
			collect(st, u.Imports)
		}
	}
	if clash != nil {
		return nil, clash
	}

	for _, f := range block.Functions {
		q := f.Optional.Qualifier
		if !f.Optional.Optional || q == "" {
			continue
		}
		if _, ok := used[q]; ok {
			continue
		}
		if q != path.Base(DefaultOptionPath) {
			return nil, fmt.Errorf("%s: result %s uses %s, which the file declaring %s does not import", f.Decl.Name, f.Decl.Results, q, u.Name)
		}
		used[q] = DefaultOptionPath
	}

	specs := make([]importSpec, 0, len(used))
	for name, p := range used {
		specs = append(specs, importSpec{name: name, path: p})
	}
	sort.Slice(specs, func(i, j int) bool {
		if specs[i].path != specs[j].path {
			return specs[i].path < specs[j].path
		}
		return specs[i].name < specs[j].name
	})
	return specs, nil
}

// DefaultSuffix is appended to the lower-cased union name to form the
// generated file name.
const DefaultSuffix = "_assoc.go"

// Filename returns the generated file name for a union.
func Filename(union, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return strings.ToLower(union) + suffix
}

var _ CodeGenerator = (*goCodeGenerator)(nil)
