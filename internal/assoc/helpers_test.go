package assoc_test

import (
	"bytes"
	"go/format"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"martianoff/assocgen/internal/assoc"
)

func ann(text string) assoc.Annotation {
	return assoc.Annotation{Text: text, Pos: token.Position{Filename: "kind.go", Line: 1, Column: 1}}
}

func enumUnion(name string, variants ...string) *assoc.TaggedUnionDecl {
	u := &assoc.TaggedUnionDecl{Name: name, Kind: assoc.EnumUnion}
	for _, v := range variants {
		u.Variants = append(u.Variants, unitVariant(v))
	}
	return u
}

func sealedUnion(name string, variants ...assoc.VariantDecl) *assoc.TaggedUnionDecl {
	return &assoc.TaggedUnionDecl{Name: name, Kind: assoc.SealedUnion, Variants: variants}
}

func unitVariant(name string, binds ...string) assoc.VariantDecl {
	return variant(name, assoc.UnitShape(), binds...)
}

func variant(name string, shape assoc.FieldShape, binds ...string) assoc.VariantDecl {
	v := assoc.VariantDecl{Name: name, Shape: shape}
	for _, b := range binds {
		v.Annotations = append(v.Annotations, ann(b))
	}
	return v
}

func declare(u *assoc.TaggedUnionDecl, signatures ...string) *assoc.TaggedUnionDecl {
	for _, s := range signatures {
		u.Functions = append(u.Functions, ann(s))
	}
	return u
}

func bind(u *assoc.TaggedUnionDecl, variant string, binds ...string) *assoc.TaggedUnionDecl {
	v := u.Variant(variant)
	for _, b := range binds {
		v.Annotations = append(v.Annotations, ann(b))
	}
	return u
}

// render prints the synthesized declarations the way the generator lays
// them out in a file.
func render(t *testing.T, block *assoc.ImplBlock) string {
	t.Helper()
	var parts []string
	for _, decl := range block.Decls() {
		var buf bytes.Buffer
		require.NoError(t, format.Node(&buf, token.NewFileSet(), decl))
		parts = append(parts, buf.String())
	}
	return strings.Join(parts, "\n\n")
}

func synthesize(t *testing.T, u *assoc.TaggedUnionDecl) string {
	t.Helper()
	block, err := assoc.NewEngine(assoc.Options{}).Synthesize(u)
	require.NoError(t, err)
	return render(t, block)
}
