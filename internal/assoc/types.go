// Package assoc synthesizes forward and reverse dispatch functions for
// tagged unions from //assoc:func signatures and //assoc:bind associations.
package assoc

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// UnionKind is the Go encoding of a tagged union.
type UnionKind int

const (
	// EnumUnion is a defined type whose variants are typed constants.
	EnumUnion UnionKind = iota + 1
	// SealedUnion is an interface with a single marker method whose
	// variants are the types implementing it.
	SealedUnion
)

func (k UnionKind) String() string {
	switch k {
	case EnumUnion:
		return "enum"
	case SealedUnion:
		return "sealed interface"
	}
	return "unknown"
}

// ShapeKind classifies the fields carried by a variant.
type ShapeKind int

const (
	Unit ShapeKind = iota
	NamedFields
	PositionalFields
)

// FieldShape is the closed set {Unit, Named(names), Positional(count)}.
type FieldShape struct {
	Kind  ShapeKind
	Names []string
	Count int
}

func UnitShape() FieldShape { return FieldShape{Kind: Unit} }

func NamedShape(names ...string) FieldShape {
	return FieldShape{Kind: NamedFields, Names: names, Count: len(names)}
}

func PositionalShape(count int) FieldShape {
	return FieldShape{Kind: PositionalFields, Count: count}
}

func (s FieldShape) IsUnit() bool {
	return s.Kind == Unit
}

func (s FieldShape) String() string {
	switch s.Kind {
	case NamedFields:
		return "named fields {" + strings.Join(s.Names, ", ") + "}"
	case PositionalFields:
		if s.Count == 1 {
			return "1 positional field"
		}
		return strconv.Itoa(s.Count) + " positional fields"
	}
	return "unit"
}

// Annotation is the raw text of one directive and where it was written.
type Annotation struct {
	Text string
	Pos  token.Position
}

// TypeParam is one type parameter of a generic union.
type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// VariantDecl is one variant of a tagged union.
type VariantDecl struct {
	Name  string
	Shape FieldShape
	// Pointer is set when the variant implements the marker method on a
	// pointer receiver, so the union carries *Name.
	Pointer bool
	// Generic is set when the variant is instantiated with the union's
	// type parameters.
	Generic     bool
	Annotations []Annotation
	// Imports maps the qualifiers of the file declaring the variant, which
	// its associations are written against.
	Imports map[string]string
	Pos     token.Position
}

// TaggedUnionDecl is the read-only input of one synthesis.
type TaggedUnionDecl struct {
	Name       string
	Kind       UnionKind
	TypeParams []TypeParam
	Variants   []VariantDecl
	// Functions holds the raw //assoc:func signatures in source order.
	Functions []Annotation
	// Imports maps the qualifiers of the declaring file to import paths.
	Imports map[string]string
	Pos     token.Position
}

// Instance returns the union type as written inside generated code, with
// its type parameters applied.
func (u *TaggedUnionDecl) Instance() string {
	if len(u.TypeParams) == 0 {
		return u.Name
	}
	names := make([]string, len(u.TypeParams))
	for i, tp := range u.TypeParams {
		names[i] = tp.Name
	}
	return u.Name + "[" + strings.Join(names, ", ") + "]"
}

// Variant looks up a variant by name.
func (u *TaggedUnionDecl) Variant(name string) *VariantDecl {
	for i := range u.Variants {
		if u.Variants[i].Name == name {
			return &u.Variants[i]
		}
	}
	return nil
}

// Param is one declared parameter. The receiver, when present, is the
// first parameter.
type Param struct {
	Name     string
	Type     string
	TypeExpr ast.Expr
	Receiver bool
	// Group numbers parameters declared together, as in "a, b int".
	Group int
}

// DeclaredFunction is one parsed //assoc:func signature.
type DeclaredFunction struct {
	Name       string
	Params     []Param
	Results    string
	ResultExpr ast.Expr
	// Default is the verbatim default body including braces, or empty.
	Default     string
	DefaultBody *ast.BlockStmt
	Pos         token.Position
}

// Exported reports the function's visibility.
func (f *DeclaredFunction) Exported() bool {
	return token.IsExported(f.Name)
}

// Receiver returns the receiver parameter or nil.
func (f *DeclaredFunction) Receiver() *Param {
	if len(f.Params) > 0 && f.Params[0].Receiver {
		return &f.Params[0]
	}
	return nil
}

// Arguments returns the non-receiver parameters.
func (f *DeclaredFunction) Arguments() []Param {
	if f.Receiver() != nil {
		return f.Params[1:]
	}
	return f.Params
}

// HasDefault reports whether a default body was declared.
func (f *DeclaredFunction) HasDefault() bool {
	return f.DefaultBody != nil
}

// Direction tells whether a function dispatches on a variant or into one.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Association is one //assoc:bind entry relevant to a function.
type Association struct {
	Function  string
	Direction Direction
	// Value is set for forward associations.
	Value ast.Expr
	// Pattern is set for reverse associations.
	Pattern *Pattern
	Pos     token.Position
}

// Wildcard orders reverse arms so that a catch-all is tried last.
type Wildcard int

const (
	NonWildcard Wildcard = iota
	ReverseNonWildcard
	ReverseWildcard
)

// Arm is one case clause of a synthesized switch. A nil Cases list is the
// default clause.
type Arm struct {
	Variant  string
	Cases    []ast.Expr
	Body     []ast.Stmt
	Wildcard Wildcard
	// Imports resolves the qualifiers of Cases and Body when they come
	// from a variant's associations. Nil means the union's file.
	Imports map[string]string
}

// IsDefault reports whether the arm renders as the default clause.
func (a Arm) IsDefault() bool {
	return a.Wildcard == ReverseWildcard
}

// Function is one synthesized function, ready to be assembled.
type Function struct {
	Decl      *DeclaredFunction
	Direction Direction
	Optional  OptionalReturn
	Arms      []Arm
	// Tail runs after the switch when no arm matched.
	Tail []ast.Stmt
}

// ImplBlock collects every function synthesized for one union, in
// declaration order.
type ImplBlock struct {
	Union     *TaggedUnionDecl
	Functions []*Function
}
