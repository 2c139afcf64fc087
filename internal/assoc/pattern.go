package assoc

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"golang.org/x/tools/go/ast/astutil"
)

// Pattern is the right side of a reverse association:
//
//	pattern     := alternative {"," alternative}
//	alternative := "_" | "(" element {"," element} ")" | expression
//	element     := "_" | expression
type Pattern struct {
	Text         string
	Alternatives []Alternative
}

// Alternative is one comma-separated choice of a pattern. A nil element is
// the wildcard "_".
type Alternative struct {
	Elements []ast.Expr
	Tuple    bool
}

// IsWildcard reports whether the alternative matches any input.
func (a Alternative) IsWildcard() bool {
	for _, e := range a.Elements {
		if e != nil {
			return false
		}
	}
	return true
}

// IsWildcard reports whether any alternative matches any input, which
// makes the whole pattern a catch-all.
func (p *Pattern) IsWildcard() bool {
	for _, alt := range p.Alternatives {
		if alt.IsWildcard() {
			return true
		}
	}
	return false
}

// ParsePattern parses the text of a reverse association.
func ParsePattern(text string) (*Pattern, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty pattern")
	}
	p := &Pattern{Text: text}
	for _, part := range splitTopLevel(toks) {
		alt, err := parseAlternative(text, part)
		if err != nil {
			return nil, err
		}
		p.Alternatives = append(p.Alternatives, alt)
	}
	return p, nil
}

func parseAlternative(src string, toks []lexeme) (Alternative, error) {
	if len(toks) == 0 {
		return Alternative{}, fmt.Errorf("empty alternative in pattern %q", src)
	}
	if toks[0].is(token.LPAREN) && matching(toks, 0) == len(toks)-1 {
		elems := splitTopLevel(toks[1 : len(toks)-1])
		if len(elems) > 1 {
			alt := Alternative{Tuple: true}
			for _, elem := range elems {
				e, err := parseElement(src, elem)
				if err != nil {
					return Alternative{}, err
				}
				alt.Elements = append(alt.Elements, e)
			}
			return alt, nil
		}
	}
	e, err := parseElement(src, toks)
	if err != nil {
		return Alternative{}, err
	}
	return Alternative{Elements: []ast.Expr{e}}, nil
}

func parseElement(src string, toks []lexeme) (ast.Expr, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty element in pattern %q", src)
	}
	text := span(src, toks)
	expr, err := parser.ParseExpr(text)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q: %v", text, err)
	}
	if id, ok := astutil.Unparen(expr).(*ast.Ident); ok && id.Name == "_" {
		return nil, nil
	}
	return expr, nil
}

// caseExprs renders the pattern's alternatives as the case list of a
// switch over params. A single parameter switches on its value; several
// parameters use a tagless switch whose cases compare each element.
func (p *Pattern) caseExprs(params []Param) ([]ast.Expr, error) {
	var out []ast.Expr
	for _, alt := range p.Alternatives {
		if alt.IsWildcard() {
			continue
		}
		if len(params) == 1 {
			if alt.Tuple {
				return nil, fmt.Errorf("pattern %q has %d elements but dispatches on 1 parameter", p.Text, len(alt.Elements))
			}
			out = append(out, alt.Elements[0])
			continue
		}
		if !alt.Tuple || len(alt.Elements) != len(params) {
			return nil, fmt.Errorf("pattern %q must be a tuple of %d elements", p.Text, len(params))
		}
		var cond ast.Expr
		for i, elem := range alt.Elements {
			if elem == nil {
				continue
			}
			cmp := &ast.BinaryExpr{X: ast.NewIdent(params[i].Name), Op: token.EQL, Y: operand(elem)}
			if cond == nil {
				cond = cmp
			} else {
				cond = &ast.BinaryExpr{X: cond, Op: token.LAND, Y: cmp}
			}
		}
		out = append(out, cond)
	}
	return out, nil
}

// checkArity validates the pattern shape against the dispatch parameters
// without rendering it.
func (p *Pattern) checkArity(params []Param) error {
	for _, alt := range p.Alternatives {
		switch {
		case len(params) == 1 && alt.Tuple:
			return fmt.Errorf("pattern %q has %d elements but dispatches on 1 parameter", p.Text, len(alt.Elements))
		case len(params) > 1 && alt.Tuple && len(alt.Elements) != len(params):
			return fmt.Errorf("pattern %q must be a tuple of %d elements", p.Text, len(params))
		case len(params) > 1 && !alt.Tuple && !alt.IsWildcard():
			return fmt.Errorf("pattern %q must be a tuple of %d elements", p.Text, len(params))
		}
	}
	return nil
}

// operand parenthesizes e when it would bind looser than ==.
func operand(e ast.Expr) ast.Expr {
	if b, ok := e.(*ast.BinaryExpr); ok && b.Op.Precedence() <= token.EQL.Precedence() {
		return &ast.ParenExpr{X: e}
	}
	return e
}
