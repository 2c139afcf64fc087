package assoc

import (
	"fmt"
	"go/parser"
	"go/token"
	"strings"

	"martianoff/assocgen/assocerr"
)

// binding is an //assoc:bind directive split at its "=".
type binding struct {
	name string
	rhs  string
	ann  Annotation
}

// splitBinding splits "name = value". The left side must be an identifier.
func splitBinding(a Annotation) (binding, error) {
	src := strings.TrimSpace(a.Text)
	toks, err := tokenize(src)
	if err != nil {
		return binding{}, fmt.Errorf("cannot tokenize %q: %v", src, err)
	}
	if len(toks) == 0 {
		return binding{}, fmt.Errorf("empty association")
	}
	if !toks[0].is(token.IDENT) || toks[0].lit == "_" {
		return binding{}, fmt.Errorf("left side of %q is not a function name", src)
	}
	if len(toks) < 2 || !toks[1].is(token.ASSIGN) {
		return binding{}, fmt.Errorf("association %q is missing \"=\"", src)
	}
	rhs := strings.TrimSpace(src[toks[1].end:])
	if rhs == "" {
		return binding{}, fmt.Errorf("association %q has no value", src)
	}
	return binding{name: toks[0].lit, rhs: rhs, ann: a}, nil
}

// ExtractAssociations returns the associations of v that belong to the
// function fn, parsing each right side as an expression (Forward) or a
// pattern (Reverse).
func ExtractAssociations(u *TaggedUnionDecl, v *VariantDecl, fn string, dir Direction) ([]Association, error) {
	var out []Association
	for _, a := range v.Annotations {
		b, err := splitBinding(a)
		if err != nil {
			return nil, assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos, err.Error()).In(u.Name, v.Name, "")
		}
		if b.name != fn {
			continue
		}
		assoc := Association{Function: fn, Direction: dir, Pos: a.Pos}
		switch dir {
		case Forward:
			expr, err := parser.ParseExpr(b.rhs)
			if err != nil {
				return nil, assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos,
					fmt.Sprintf("value %q of %s on %s is not an expression: %v", b.rhs, fn, v.Name, err)).In(u.Name, v.Name, fn)
			}
			assoc.Value = expr
		case Reverse:
			pat, err := ParsePattern(b.rhs)
			if err != nil {
				return nil, assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos,
					fmt.Sprintf("pattern %q of %s on %s: %v", b.rhs, fn, v.Name, err)).In(u.Name, v.Name, fn)
			}
			assoc.Pattern = pat
		}
		out = append(out, assoc)
	}
	return out, nil
}

// checkBindings validates every //assoc:bind of u once: each must split
// cleanly and name a declared function.
func checkBindings(u *TaggedUnionDecl, declared map[string]bool) error {
	errs := &assocerr.MultiError{}
	for i := range u.Variants {
		v := &u.Variants[i]
		for _, a := range v.Annotations {
			b, err := splitBinding(a)
			if err != nil {
				errs.Add(assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos, err.Error()).In(u.Name, v.Name, ""))
				continue
			}
			if !declared[b.name] {
				errs.Add(assocerr.NewAt(assocerr.TypeAssociationParse, a.Pos,
					fmt.Sprintf("association on %s names %s, which is not declared with //assoc:func on %s", v.Name, b.name, u.Name)).In(u.Name, v.Name, b.name))
			}
		}
	}
	return errs.ErrOrNil()
}
