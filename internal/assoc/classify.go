package assoc

import (
	"go/ast"
	"go/parser"

	"golang.org/x/tools/go/ast/astutil"
)

const (
	optionTypeName = "Option"
	someName       = "Some"
	noneName       = "None"
)

// Classify returns the dispatch direction of f: Forward when its first
// parameter is the receiver, Reverse otherwise.
func Classify(f *DeclaredFunction) Direction {
	if f.Receiver() != nil {
		return Forward
	}
	return Reverse
}

// OptionalReturn describes an Option[T] result type.
type OptionalReturn struct {
	Optional bool
	// Qualifier is the package name in q.Option[T], or empty.
	Qualifier string
	// Inner is the text of T.
	Inner     string
	InnerExpr ast.Expr
}

// DetectOptional inspects the result type text of a declared function.
func DetectOptional(results string) OptionalReturn {
	if results == "" {
		return OptionalReturn{}
	}
	expr, err := parser.ParseExpr(results)
	if err != nil {
		return OptionalReturn{}
	}
	idx, ok := expr.(*ast.IndexExpr)
	if !ok {
		return OptionalReturn{}
	}
	out := OptionalReturn{
		Optional:  true,
		Inner:     results[idx.Index.Pos()-1 : idx.Index.End()-1],
		InnerExpr: idx.Index,
	}
	switch x := idx.X.(type) {
	case *ast.Ident:
		if x.Name != optionTypeName {
			return OptionalReturn{}
		}
	case *ast.SelectorExpr:
		pkg, ok := x.X.(*ast.Ident)
		if !ok || x.Sel.Name != optionTypeName {
			return OptionalReturn{}
		}
		out.Qualifier = pkg.Name
	default:
		return OptionalReturn{}
	}
	return out
}

func (o OptionalReturn) constructor(name string) ast.Expr {
	var fun ast.Expr = ast.NewIdent(name)
	if o.Qualifier != "" {
		fun = &ast.SelectorExpr{X: ast.NewIdent(o.Qualifier), Sel: ast.NewIdent(name)}
	}
	return &ast.IndexExpr{X: fun, Index: o.InnerExpr}
}

// Some wraps value in the optional constructor.
func (o OptionalReturn) Some(value ast.Expr) ast.Expr {
	return &ast.CallExpr{Fun: o.constructor(someName), Args: []ast.Expr{value}}
}

// None is the optional empty value.
func (o OptionalReturn) None() ast.Expr {
	return &ast.CallExpr{Fun: o.constructor(noneName)}
}

// isOptionMarker reports whether e is already written as Some(...) or
// None, in which case it is not wrapped again.
func isOptionMarker(e ast.Expr) bool {
	e = astutil.Unparen(e)
	if call, ok := e.(*ast.CallExpr); ok {
		e = call.Fun
	}
	switch x := e.(type) {
	case *ast.IndexExpr:
		e = x.X
	case *ast.IndexListExpr:
		e = x.X
	}
	switch x := e.(type) {
	case *ast.Ident:
		return x.Name == someName || x.Name == noneName
	case *ast.SelectorExpr:
		return x.Sel.Name == someName || x.Sel.Name == noneName
	}
	return false
}
