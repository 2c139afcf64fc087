package assoc

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strings"
)

// lexeme is one Go token of directive text with its byte span.
type lexeme struct {
	tok   token.Token
	lit   string
	start int
	end   int
}

func (l lexeme) text() string {
	if l.lit != "" {
		return l.lit
	}
	return l.tok.String()
}

func (l lexeme) is(tok token.Token) bool {
	return l.tok == tok
}

func (l lexeme) isIdent(name string) bool {
	return l.tok == token.IDENT && l.lit == name
}

// tokenize scans src with the Go scanner. Automatically inserted
// semicolons are dropped; explicit ones are kept.
func tokenize(src string) ([]lexeme, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	var out []lexeme
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		start := file.Offset(pos)
		l := lexeme{tok: tok, lit: lit, start: start}
		l.end = start + len(l.text())
		out = append(out, l)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", errs[0].Msg)
	}
	return out, nil
}

// span returns the source text covered by toks.
func span(src string, toks []lexeme) string {
	if len(toks) == 0 {
		return ""
	}
	return src[toks[0].start:toks[len(toks)-1].end]
}

// matching returns the index of the token closing the bracket opened at
// toks[open], or -1.
func matching(toks []lexeme, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits toks at commas that are not nested in brackets.
func splitTopLevel(toks []lexeme) [][]lexeme {
	var parts [][]lexeme
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		case token.COMMA:
			if depth == 0 {
				parts = append(parts, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, toks[start:])
}

// replaceIdent rewrites every identifier token named from in src to to.
func replaceIdent(src, from, to string) (string, error) {
	toks, err := tokenize(src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	last := 0
	for _, t := range toks {
		if t.isIdent(from) {
			sb.WriteString(src[last:t.start])
			sb.WriteString(to)
			last = t.end
		}
	}
	sb.WriteString(src[last:])
	return sb.String(), nil
}
