package assoc

import (
	"fmt"
	"go/ast"

	"martianoff/assocgen/assocerr"
)

// buildForwardArms builds one arm per variant of u for the forward
// function fn.
func buildForwardArms(u *TaggedUnionDecl, fn *DeclaredFunction, opt OptionalReturn) ([]Arm, error) {
	arms := make([]Arm, 0, len(u.Variants))
	for i := range u.Variants {
		v := &u.Variants[i]
		assocs, err := ExtractAssociations(u, v, fn.Name, Forward)
		if err != nil {
			return nil, err
		}

		var body []ast.Stmt
		var imports map[string]string
		switch len(assocs) {
		case 0:
			switch {
			case fn.HasDefault():
				body = fn.DefaultBody.List
			case opt.Optional:
				body = []ast.Stmt{returnStmt(opt.None())}
			default:
				return nil, assocerr.NewAt(assocerr.TypeCompleteness, v.Pos,
					fmt.Sprintf("missing association for function %s on variant %s", fn.Name, v.Name)).In(u.Name, v.Name, fn.Name)
			}
		case 1:
			value := assocs[0].Value
			if opt.Optional && !isOptionMarker(value) {
				value = opt.Some(value)
			}
			body = []ast.Stmt{returnStmt(value)}
			imports = v.Imports
		default:
			return nil, assocerr.NewAt(assocerr.TypeAmbiguity, assocs[1].Pos,
				fmt.Sprintf("too many associations for function %s on variant %s", fn.Name, v.Name)).In(u.Name, v.Name, fn.Name)
		}

		arms = append(arms, Arm{
			Variant:  v.Name,
			Cases:    []ast.Expr{u.variantPattern(v)},
			Body:     body,
			Wildcard: NonWildcard,
			Imports:  imports,
		})
	}
	return arms, nil
}

// forwardTail handles receivers outside the declared variants, such as an
// out-of-range enum value or a nil interface.
func forwardTail(u *TaggedUnionDecl, fn *DeclaredFunction, opt OptionalReturn) []ast.Stmt {
	if opt.Optional {
		return []ast.Stmt{returnStmt(opt.None())}
	}
	return []ast.Stmt{panicStmt(fmt.Sprintf("%s: unknown %s variant", fn.Name, u.Name))}
}
