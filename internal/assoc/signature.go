package assoc

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"martianoff/assocgen/assocerr"
)

// selfName is replaced by the union's instantiated type in declared types.
const selfName = "Self"

// signatureParser is a recursive-descent parser for one //assoc:func
// directive:
//
//	signature := [receiver] IDENT params [result] [body]
//	receiver  := "(" [IDENT] type ")"
//	params    := "(" [param {"," param} [","]] ")"
//	result    := type | "(" type ")"
//	body      := "{" ... "}"
type signatureParser struct {
	union *TaggedUnionDecl
	ann   Annotation
	src   string
	toks  []lexeme
	pos   int
	// implicitRecv is set when the receiver name was not written.
	implicitRecv bool
}

// ParseSignature parses the //assoc:func directive a declared on u.
func ParseSignature(u *TaggedUnionDecl, a Annotation) (*DeclaredFunction, error) {
	src := strings.TrimSpace(a.Text)
	if src == "" {
		return nil, assocerr.NewAt(assocerr.TypeSignatureParse, a.Pos, "missing function signature").In(u.Name, "", "")
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, assocerr.NewAt(assocerr.TypeSignatureParse, a.Pos,
			fmt.Sprintf("cannot tokenize signature %q: %v", src, err)).In(u.Name, "", "")
	}
	p := &signatureParser{union: u, ann: a, src: src, toks: toks}
	return p.parse()
}

func (p *signatureParser) fail(format string, args ...any) *assocerr.Error {
	return assocerr.NewAt(assocerr.TypeSignatureParse, p.ann.Pos, fmt.Sprintf(format, args...)).In(p.union.Name, "", "")
}

func (p *signatureParser) peek() (lexeme, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return lexeme{tok: token.EOF}, false
}

func (p *signatureParser) parse() (*DeclaredFunction, error) {
	fn := &DeclaredFunction{Pos: p.ann.Pos}

	// A leading "func" keyword is tolerated.
	if t, ok := p.peek(); ok && t.is(token.FUNC) {
		p.pos++
	}

	if t, ok := p.peek(); ok && t.is(token.LPAREN) {
		recv, err := p.parseReceiver()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, recv)
	}

	name, ok := p.peek()
	if !ok || !name.is(token.IDENT) {
		return nil, p.fail("expected function name in %q", p.src)
	}
	fn.Name = name.lit
	p.pos++

	params, err := p.parseParams(fn.Name)
	if err != nil {
		return nil, err
	}
	fn.Params = append(fn.Params, params...)
	if err := p.uniqueNames(fn); err != nil {
		return nil, err
	}

	if err := p.parseResult(fn); err != nil {
		return nil, err
	}

	if t, ok := p.peek(); ok && t.is(token.LBRACE) {
		if err := p.parseBody(fn); err != nil {
			return nil, err
		}
	}

	if t, ok := p.peek(); ok {
		return nil, p.fail("unexpected %q after signature of %s", p.src[t.start:], fn.Name)
	}
	return fn, nil
}

func (p *signatureParser) parseReceiver() (Param, error) {
	open := p.pos
	closing := matching(p.toks, open)
	if closing < 0 {
		return Param{}, p.fail("unbalanced receiver in %q", p.src)
	}
	inner := p.toks[open+1 : closing]
	p.pos = closing + 1

	if len(inner) == 0 {
		return Param{}, p.fail("empty receiver in %q", p.src)
	}

	recv := Param{Receiver: true}
	typeToks := inner
	if len(inner) > 1 && inner[0].is(token.IDENT) && !inner[1].is(token.LBRACK) && !inner[1].is(token.PERIOD) {
		recv.Name = inner[0].lit
		typeToks = inner[1:]
	}
	if recv.Name == "" || recv.Name == "_" {
		recv.Name = receiverName(p.union.Name)
		p.implicitRecv = true
	}

	if typeToks[0].is(token.MUL) {
		return Param{}, p.fail("receiver of %q must be a %s value, not a pointer", p.src, p.union.Name)
	}
	typeText := span(p.src, typeToks)
	if !p.isUnionType(typeText) {
		return Param{}, p.fail("receiver type %s is not %s", typeText, p.union.Name)
	}
	recv.Type = p.union.Instance()
	expr, err := parser.ParseExpr(recv.Type)
	if err != nil {
		return Param{}, p.fail("cannot parse receiver type %s: %v", recv.Type, err)
	}
	recv.TypeExpr = expr
	return recv, nil
}

// isUnionType is the lexical receiver test.
func (p *signatureParser) isUnionType(text string) bool {
	compact := strings.Join(strings.Fields(text), "")
	instance := strings.Join(strings.Fields(p.union.Instance()), "")
	return compact == selfName || compact == p.union.Name || compact == instance
}

func (p *signatureParser) parseParams(fnName string) ([]Param, error) {
	t, ok := p.peek()
	if !ok || !t.is(token.LPAREN) {
		return nil, p.fail("expected parameter list after %s", fnName)
	}
	closing := matching(p.toks, p.pos)
	if closing < 0 {
		return nil, p.fail("unbalanced parameter list of %s", fnName)
	}
	inner := p.toks[p.pos+1 : closing]
	p.pos = closing + 1
	if len(inner) == 0 {
		return nil, nil
	}

	entries := splitTopLevel(inner)
	if len(entries[len(entries)-1]) == 0 {
		entries = entries[:len(entries)-1]
	}

	var params []Param
	var pending []string
	group := 0
	for _, entry := range entries {
		switch {
		case len(entry) == 0:
			return nil, p.fail("empty parameter in %s", fnName)
		case len(entry) == 1 && entry[0].is(token.IDENT):
			pending = append(pending, entry[0].lit)
		case entry[0].is(token.IDENT):
			names := append(pending, entry[0].lit)
			pending = nil
			typeText, typeExpr, err := p.parseType(span(p.src, entry[1:]))
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				params = append(params, Param{Name: name, Type: typeText, TypeExpr: typeExpr, Group: group})
			}
			group++
		default:
			return nil, p.fail("parameters of %s must be named, got %q", fnName, span(p.src, entry))
		}
	}
	if len(pending) > 0 {
		return nil, p.fail("parameters of %s must be named, got %q", fnName, strings.Join(pending, ", "))
	}
	// Receivers occupy group numbers too; shift so groups stay distinct.
	for i := range params {
		params[i].Group++
	}
	return params, nil
}

// uniqueNames rejects parameters declared twice and moves an implicit
// receiver name out of the way of the declared parameters.
func (p *signatureParser) uniqueNames(fn *DeclaredFunction) error {
	seen := make(map[string]bool)
	for _, param := range fn.Params {
		if (param.Receiver && p.implicitRecv) || param.Name == "_" {
			continue
		}
		if seen[param.Name] {
			return p.fail("parameter %s of %s is declared more than once", param.Name, fn.Name)
		}
		seen[param.Name] = true
	}
	if recv := fn.Receiver(); recv != nil && p.implicitRecv {
		base := recv.Name
		for n := 1; seen[recv.Name]; n++ {
			recv.Name = fmt.Sprintf("%s%d", base, n)
		}
	}
	return nil
}

func (p *signatureParser) parseResult(fn *DeclaredFunction) error {
	start := p.pos
	for p.pos < len(p.toks) && !p.toks[p.pos].is(token.LBRACE) {
		t := p.toks[p.pos]
		if t.is(token.LPAREN) || t.is(token.LBRACK) {
			closing := matching(p.toks, p.pos)
			if closing < 0 {
				return p.fail("unbalanced result type of %s", fn.Name)
			}
			p.pos = closing + 1
			continue
		}
		// Composite types such as struct{} and interface{} contain braces.
		if (t.is(token.STRUCT) || t.is(token.INTERFACE)) && p.pos+1 < len(p.toks) && p.toks[p.pos+1].is(token.LBRACE) {
			closing := matching(p.toks, p.pos+1)
			if closing < 0 {
				return p.fail("unbalanced result type of %s", fn.Name)
			}
			p.pos = closing + 1
			continue
		}
		p.pos++
	}
	toks := p.toks[start:p.pos]
	if len(toks) == 0 {
		return nil
	}
	if toks[0].is(token.LPAREN) && matching(toks, 0) == len(toks)-1 {
		inner := toks[1 : len(toks)-1]
		if len(splitTopLevel(inner)) > 1 {
			return p.fail("%s declares several results; association functions return one value", fn.Name)
		}
		if len(inner) > 1 && inner[0].is(token.IDENT) && inner[1].is(token.IDENT) {
			return p.fail("%s declares a named result; association functions return one unnamed value", fn.Name)
		}
		toks = inner
	}
	text, expr, err := p.parseType(span(p.src, toks))
	if err != nil {
		return err
	}
	fn.Results = text
	fn.ResultExpr = expr
	return nil
}

func (p *signatureParser) parseBody(fn *DeclaredFunction) error {
	closing := matching(p.toks, p.pos)
	if closing < 0 {
		return p.fail("unbalanced default body of %s", fn.Name)
	}
	fn.Default = p.src[p.toks[p.pos].start:p.toks[closing].end]
	p.pos = closing + 1

	lit, err := parser.ParseExpr("func()" + fn.Default)
	if err != nil {
		return p.fail("cannot parse default body of %s: %v", fn.Name, err)
	}
	funcLit, ok := lit.(*ast.FuncLit)
	if !ok {
		return p.fail("cannot parse default body of %s", fn.Name)
	}
	fn.DefaultBody = funcLit.Body
	return nil
}

// parseType substitutes Self and checks that text is a Go type.
func (p *signatureParser) parseType(text string) (string, ast.Expr, error) {
	substituted, err := replaceIdent(text, selfName, p.union.Instance())
	if err != nil {
		return "", nil, p.fail("cannot tokenize type %q: %v", text, err)
	}
	if rest, ok := strings.CutPrefix(substituted, "..."); ok {
		elt, err := parser.ParseExpr(rest)
		if err != nil {
			return "", nil, p.fail("cannot parse type %q: %v", text, err)
		}
		return substituted, &ast.Ellipsis{Elt: elt}, nil
	}
	expr, err := parser.ParseExpr(substituted)
	if err != nil {
		return "", nil, p.fail("cannot parse type %q: %v", text, err)
	}
	return substituted, expr, nil
}

// receiverName follows the Go convention of a short lower-case receiver.
func receiverName(typeName string) string {
	r, _ := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return "v"
	}
	return string(unicode.ToLower(r))
}
