package assoc

import (
	"fmt"
	"go/ast"
	"go/types"
	"sort"

	"martianoff/assocgen/assocerr"
)

// reverseOptions tunes the reverse builder.
type reverseOptions struct {
	// strict rejects non-optional functions that could fall through
	// without matching.
	strict bool
}

// buildReverseArms builds zero or more arms per variant of u for the
// reverse function fn and returns them wildcard-last, together with the
// statements to run when nothing matches.
func buildReverseArms(u *TaggedUnionDecl, fn *DeclaredFunction, opt OptionalReturn, ro reverseOptions) ([]Arm, []ast.Stmt, error) {
	params := fn.Arguments()
	if len(params) == 0 {
		return nil, nil, assocerr.NewAt(assocerr.TypeArity, fn.Pos,
			fmt.Sprintf("function %s has no receiver and no parameter to dispatch on", fn.Name)).In(u.Name, "", fn.Name)
	}
	for _, p := range params {
		if p.Name == "_" {
			return nil, nil, assocerr.NewAt(assocerr.TypeSignatureParse, fn.Pos,
				fmt.Sprintf("parameter of %s must be named to be dispatched on", fn.Name)).In(u.Name, "", fn.Name)
		}
	}

	var arms []Arm
	wildcardOwner := ""
	// owners maps each rendered case to the variant it selects; a repeat
	// would be a duplicate case in the generated switch.
	owners := make(map[string]string)
	for i := range u.Variants {
		v := &u.Variants[i]
		assocs, err := ExtractAssociations(u, v, fn.Name, Reverse)
		if err != nil {
			return nil, nil, err
		}
		if len(assocs) > 0 && !v.Shape.IsUnit() {
			return nil, nil, assocerr.NewAt(assocerr.TypeShape, assocs[0].Pos,
				fmt.Sprintf("reverse function %s cannot construct %s, which has %s", fn.Name, v.Name, v.Shape)).In(u.Name, v.Name, fn.Name)
		}

		var ctor ast.Expr = u.variantValue(v)
		if opt.Optional {
			ctor = opt.Some(ctor)
		}

		for _, a := range assocs {
			if err := a.Pattern.checkArity(params); err != nil {
				return nil, nil, assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos, err.Error()).In(u.Name, v.Name, fn.Name)
			}
			if a.Pattern.IsWildcard() {
				if wildcardOwner != "" {
					return nil, nil, assocerr.NewAt(assocerr.TypeWildcardConflict, a.Pos,
						fmt.Sprintf("only one wildcard allowed per function: %s already has one on %s", fn.Name, wildcardOwner)).In(u.Name, v.Name, fn.Name)
				}
				wildcardOwner = v.Name
				arms = append(arms, Arm{Variant: v.Name, Body: []ast.Stmt{returnStmt(ctor)}, Wildcard: ReverseWildcard, Imports: v.Imports})
				continue
			}
			cases, err := a.Pattern.caseExprs(params)
			if err != nil {
				return nil, nil, assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos, err.Error()).In(u.Name, v.Name, fn.Name)
			}
			for _, c := range cases {
				key := types.ExprString(c)
				owner, dup := owners[key]
				switch {
				case dup && owner == v.Name:
					return nil, nil, assocerr.NewAt(assocerr.TypeAmbiguity, a.Pos,
						fmt.Sprintf("pattern %s of function %s is repeated on %s", key, fn.Name, v.Name)).In(u.Name, v.Name, fn.Name)
				case dup:
					return nil, nil, assocerr.NewAt(assocerr.TypeAmbiguity, a.Pos,
						fmt.Sprintf("pattern %s of function %s selects both %s and %s", key, fn.Name, owner, v.Name)).In(u.Name, v.Name, fn.Name)
				}
				owners[key] = v.Name
			}
			arms = append(arms, Arm{Variant: v.Name, Cases: cases, Body: []ast.Stmt{returnStmt(ctor)}, Wildcard: ReverseNonWildcard, Imports: v.Imports})
		}
	}

	var tail []ast.Stmt
	switch {
	case wildcardOwner != "" && fn.HasDefault():
		return nil, nil, assocerr.NewAt(assocerr.TypeWildcardConflict, fn.Pos,
			fmt.Sprintf("only one wildcard allowed per function: %s has a default body and a wildcard on %s", fn.Name, wildcardOwner)).In(u.Name, wildcardOwner, fn.Name)
	case wildcardOwner != "":
	case fn.HasDefault():
		arms = append(arms, Arm{Body: fn.DefaultBody.List, Wildcard: ReverseWildcard})
	case opt.Optional:
		arms = append(arms, Arm{Body: []ast.Stmt{returnStmt(opt.None())}, Wildcard: ReverseWildcard})
	case ro.strict:
		return nil, nil, assocerr.NewAt(assocerr.TypeCompleteness, fn.Pos,
			fmt.Sprintf("reverse function %s returns a non-optional %s but no variant supplies a wildcard and there is no default body", fn.Name, fn.Results)).In(u.Name, "", fn.Name)
	default:
		tail = []ast.Stmt{panicStmt(fmt.Sprintf("%s: no %s variant matches", fn.Name, u.Name))}
	}

	sort.SliceStable(arms, func(i, j int) bool {
		return arms[i].Wildcard < arms[j].Wildcard
	})
	return arms, tail, nil
}
