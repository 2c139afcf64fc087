package assoc

import (
	"go/ast"
	"go/token"
)

// typeArgs returns the union's type parameters as expressions.
func (u *TaggedUnionDecl) typeArgs() []ast.Expr {
	args := make([]ast.Expr, len(u.TypeParams))
	for i, tp := range u.TypeParams {
		args[i] = ast.NewIdent(tp.Name)
	}
	return args
}

// instantiate applies the union's type parameters to name.
func (u *TaggedUnionDecl) instantiate(name string) ast.Expr {
	args := u.typeArgs()
	switch len(args) {
	case 0:
		return ast.NewIdent(name)
	case 1:
		return &ast.IndexExpr{X: ast.NewIdent(name), Index: args[0]}
	}
	return &ast.IndexListExpr{X: ast.NewIdent(name), Indices: args}
}

// variantType is the Go type a sealed union carries for v.
func (u *TaggedUnionDecl) variantType(v *VariantDecl) ast.Expr {
	var typ ast.Expr = ast.NewIdent(v.Name)
	if v.Generic {
		typ = u.instantiate(v.Name)
	}
	return typ
}

// variantPattern is the case expression selecting v. Sealed unions use a
// type switch, so fields are never bound and the shape only matters for
// construction.
func (u *TaggedUnionDecl) variantPattern(v *VariantDecl) ast.Expr {
	if u.Kind == EnumUnion {
		return ast.NewIdent(v.Name)
	}
	typ := u.variantType(v)
	if v.Pointer {
		return &ast.StarExpr{X: typ}
	}
	return typ
}

// variantValue constructs v. Only unit variants can be constructed.
func (u *TaggedUnionDecl) variantValue(v *VariantDecl) ast.Expr {
	if u.Kind == EnumUnion {
		return ast.NewIdent(v.Name)
	}
	var lit ast.Expr = &ast.CompositeLit{Type: u.variantType(v)}
	if v.Pointer {
		lit = &ast.UnaryExpr{Op: token.AND, X: lit}
	}
	return lit
}
