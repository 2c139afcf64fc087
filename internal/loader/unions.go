package loader

import (
	"fmt"
	"go/ast"
	"go/token"

	"martianoff/assocgen/assocerr"
	"martianoff/assocgen/internal/assoc"
)

type typeDecl struct {
	spec *ast.TypeSpec
	doc  *ast.CommentGroup
	file *SourceFile
}

type constDecl struct {
	name string
	// typ is the name of the constant's type, or empty when untyped.
	typ string
	// value is the expression the constant is set to, after implicit
	// repetition.
	value ast.Expr
	doc   *ast.CommentGroup
	pos   token.Pos
	file  *SourceFile
}

type markerImpl struct {
	typeName string
	pointer  bool
}

// index is everything the union finder needs from one package.
type index struct {
	pkg       *Package
	types     map[string]*typeDecl
	order     []*typeDecl
	constants []constDecl
	// markers maps a method name to the types declaring it without
	// parameters and results.
	markers map[string]map[string]markerImpl
}

func newIndex(pkg *Package) *index {
	idx := &index{
		pkg:     pkg,
		types:   make(map[string]*typeDecl),
		markers: make(map[string]map[string]markerImpl),
	}
	for _, sf := range pkg.Files {
		for _, decl := range sf.AST.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				switch d.Tok {
				case token.TYPE:
					idx.addTypes(sf, d)
				case token.CONST:
					idx.addConstants(sf, d)
				}
			case *ast.FuncDecl:
				idx.addMarker(d)
			}
		}
	}
	return idx
}

// specDoc returns the doc comment of a spec, falling back to the
// declaration's when it is not parenthesized.
func specDoc(d *ast.GenDecl, doc *ast.CommentGroup) *ast.CommentGroup {
	if doc == nil && !d.Lparen.IsValid() {
		return d.Doc
	}
	return doc
}

func (idx *index) addTypes(sf *SourceFile, d *ast.GenDecl) {
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		td := &typeDecl{spec: ts, doc: specDoc(d, ts.Doc), file: sf}
		idx.types[ts.Name.Name] = td
		idx.order = append(idx.order, td)
	}
}

// addConstants follows implicit repetition: a spec without type and
// values repeats the previous one.
func (idx *index) addConstants(sf *SourceFile, d *ast.GenDecl) {
	typ := ""
	var values []ast.Expr
	for _, spec := range d.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		switch {
		case vs.Type != nil:
			typ = typeName(vs.Type)
		case len(vs.Values) > 0:
			typ = conversionType(vs.Values)
		}
		if len(vs.Values) > 0 {
			values = vs.Values
		}
		doc := specDoc(d, vs.Doc)
		for i, name := range vs.Names {
			if name.Name == "_" {
				continue
			}
			c := constDecl{name: name.Name, typ: typ, doc: doc, pos: name.Pos(), file: sf}
			if i < len(values) {
				c.value = values[i]
			}
			idx.constants = append(idx.constants, c)
		}
	}
}

// conversionType recognizes constants written as T(x).
func conversionType(values []ast.Expr) string {
	typ := ""
	for i, v := range values {
		call, ok := v.(*ast.CallExpr)
		if !ok || len(call.Args) != 1 {
			return ""
		}
		name := typeName(call.Fun)
		if name == "" || (i > 0 && name != typ) {
			return ""
		}
		typ = name
	}
	return typ
}

func typeName(e ast.Expr) string {
	if id, ok := e.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func (idx *index) addMarker(fd *ast.FuncDecl) {
	if fd.Recv == nil || len(fd.Recv.List) != 1 {
		return
	}
	if fd.Type.Params.NumFields() != 0 || fd.Type.Results.NumFields() != 0 {
		return
	}
	name, pointer, ok := receiverType(fd.Recv.List[0].Type)
	if !ok {
		return
	}
	impls := idx.markers[fd.Name.Name]
	if impls == nil {
		impls = make(map[string]markerImpl)
		idx.markers[fd.Name.Name] = impls
	}
	impls[name] = markerImpl{typeName: name, pointer: pointer}
}

func receiverType(e ast.Expr) (string, bool, bool) {
	pointer := false
	if star, ok := e.(*ast.StarExpr); ok {
		pointer = true
		e = star.X
	}
	switch x := e.(type) {
	case *ast.IndexExpr:
		e = x.X
	case *ast.IndexListExpr:
		e = x.X
	}
	id, ok := e.(*ast.Ident)
	if !ok {
		return "", false, false
	}
	return id.Name, pointer, true
}

// FindUnions builds the tagged unions of pkg. With no names, every type
// carrying a union directive such as //assoc:func is a candidate;
// otherwise exactly the named types are, and each must be a union.
func FindUnions(pkg *Package, names []string) ([]*assoc.TaggedUnionDecl, error) {
	idx := newIndex(pkg)
	errs := &assocerr.MultiError{}

	var candidates []*typeDecl
	if len(names) == 0 {
		for _, td := range idx.order {
			if declaresUnion(td.doc) {
				candidates = append(candidates, td)
			}
		}
	} else {
		for _, name := range names {
			td, ok := idx.types[name]
			if !ok {
				errs.Add(assocerr.Newf(assocerr.TypeStructural, "type %s not found in package %s", name, pkg.Name).In(name, "", ""))
				continue
			}
			candidates = append(candidates, td)
		}
	}

	var unions []*assoc.TaggedUnionDecl
	for _, td := range candidates {
		u, err := idx.union(td)
		if err != nil {
			errs.Add(err)
			continue
		}
		unions = append(unions, u)
	}
	return unions, errs.ErrOrNil()
}

func (idx *index) union(td *typeDecl) (*assoc.TaggedUnionDecl, error) {
	spec := td.spec
	pos := idx.pkg.Fset.Position(spec.Name.Pos())
	name := spec.Name.Name
	structural := func(format string, args ...any) error {
		return assocerr.NewAt(assocerr.TypeStructural, pos, fmt.Sprintf(format, args...)).In(name, "", "")
	}

	u := &assoc.TaggedUnionDecl{
		Name:    name,
		Imports: ExtractImports(td.file.AST),
		Pos:     pos,
	}
	if spec.Assign.IsValid() {
		return nil, structural("%s is an alias, not a tagged union", name)
	}

	var marker string
	switch t := spec.Type.(type) {
	case *ast.InterfaceType:
		m, ok := markerMethod(t)
		if !ok {
			return nil, structural("interface %s is not sealed: it must declare exactly one method without parameters and results", name)
		}
		marker = m
		u.Kind = assoc.SealedUnion
		if other := idx.sharedMarker(name, marker); other != "" {
			return nil, structural("interfaces %s and %s share the marker method %s, so their variants cannot be told apart", name, other, marker)
		}
	case *ast.StructType:
		return nil, structural("struct %s is not a tagged union", name)
	default:
		u.Kind = assoc.EnumUnion
	}

	if spec.TypeParams != nil {
		for _, field := range spec.TypeParams.List {
			for _, n := range field.Names {
				u.TypeParams = append(u.TypeParams, assoc.TypeParam{Name: n.Name, Constraint: field.Type})
			}
		}
	}

	funcs, err := directives(idx.pkg.Fset, td.doc, funcDirective, assocerr.TypeSignatureParse)
	if err != nil {
		return nil, err
	}
	u.Functions = funcs

	switch u.Kind {
	case assoc.EnumUnion:
		err = idx.enumVariants(u)
	case assoc.SealedUnion:
		err = idx.sealedVariants(u, marker)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// markerMethod returns the name of the single method of a sealed
// interface.
func markerMethod(it *ast.InterfaceType) (string, bool) {
	if it.Methods == nil || len(it.Methods.List) != 1 {
		return "", false
	}
	m := it.Methods.List[0]
	ft, ok := m.Type.(*ast.FuncType)
	if !ok || len(m.Names) != 1 {
		return "", false
	}
	if ft.Params.NumFields() != 0 || ft.Results.NumFields() != 0 {
		return "", false
	}
	return m.Names[0].Name, true
}

// sharedMarker returns another interface of the package sealed by the
// same marker method, if any.
func (idx *index) sharedMarker(name, marker string) string {
	for _, td := range idx.order {
		it, ok := td.spec.Type.(*ast.InterfaceType)
		if !ok || td.spec.Name.Name == name {
			continue
		}
		if m, ok := markerMethod(it); ok && m == marker {
			return td.spec.Name.Name
		}
	}
	return ""
}

func (idx *index) enumVariants(u *assoc.TaggedUnionDecl) error {
	members := make(map[string]bool)
	for _, c := range idx.constants {
		if c.typ == u.Name {
			members[c.name] = true
		}
	}
	// An untyped constant set to a member, as in Default = KindA, takes
	// the member's type.
	for grown := true; grown; {
		grown = false
		for _, c := range idx.constants {
			if c.typ == "" && !members[c.name] && aliasTarget(c, u.Name, members) != "" {
				members[c.name] = true
				grown = true
			}
		}
	}

	for _, c := range idx.constants {
		if !members[c.name] {
			continue
		}
		pos := idx.pkg.Fset.Position(c.pos)
		anns, err := directives(idx.pkg.Fset, c.doc, bindDirective, assocerr.TypeAssociationParse)
		if err != nil {
			return err
		}
		// An alias shares its target's value, so a case for it would
		// duplicate the target's.
		if target := aliasTarget(c, u.Name, members); target != "" {
			if len(anns) > 0 {
				return assocerr.NewAt(assocerr.TypeAssociationParse, anns[0].Pos,
					fmt.Sprintf("constant %s is an alias of %s; bind on %s instead", c.name, target, target)).In(u.Name, c.name, "")
			}
			continue
		}
		u.Variants = append(u.Variants, assoc.VariantDecl{
			Name:        c.name,
			Shape:       assoc.UnitShape(),
			Annotations: anns,
			Imports:     ExtractImports(c.file.AST),
			Pos:         pos,
		})
	}
	return nil
}

// aliasTarget returns the constant c is set to when that constant is
// another member of the same enum, as in KindDefault Kind = KindA.
func aliasTarget(c constDecl, typ string, members map[string]bool) string {
	e := c.value
	for {
		switch x := e.(type) {
		case *ast.ParenExpr:
			e = x.X
		case *ast.CallExpr:
			if len(x.Args) != 1 || typeName(x.Fun) != typ {
				return ""
			}
			e = x.Args[0]
		case *ast.Ident:
			if x.Name != c.name && members[x.Name] {
				return x.Name
			}
			return ""
		default:
			return ""
		}
	}
}

func (idx *index) sealedVariants(u *assoc.TaggedUnionDecl, marker string) error {
	impls := idx.markers[marker]
	for _, td := range idx.order {
		impl, ok := impls[td.spec.Name.Name]
		if !ok {
			continue
		}
		pos := idx.pkg.Fset.Position(td.spec.Name.Pos())
		v := assoc.VariantDecl{
			Name:    impl.typeName,
			Shape:   fieldShape(td.spec.Type),
			Pointer: impl.pointer,
			Imports: ExtractImports(td.file.AST),
			Pos:     pos,
		}
		if n := td.spec.TypeParams.NumFields(); n > 0 {
			if n != len(u.TypeParams) {
				return assocerr.NewAt(assocerr.TypeStructural, pos,
					fmt.Sprintf("variant %s declares %d type parameters but %s declares %d", v.Name, n, u.Name, len(u.TypeParams))).In(u.Name, v.Name, "")
			}
			v.Generic = true
		}
		anns, err := directives(idx.pkg.Fset, td.doc, bindDirective, assocerr.TypeAssociationParse)
		if err != nil {
			return err
		}
		v.Annotations = anns
		u.Variants = append(u.Variants, v)
	}
	return nil
}

// fieldShape classifies a variant's underlying type.
func fieldShape(e ast.Expr) assoc.FieldShape {
	st, ok := e.(*ast.StructType)
	if !ok {
		return assoc.PositionalShape(1)
	}
	var names []string
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			names = append(names, embeddedName(f.Type))
			continue
		}
		for _, n := range f.Names {
			names = append(names, n.Name)
		}
	}
	if len(names) == 0 {
		return assoc.UnitShape()
	}
	return assoc.NamedShape(names...)
}

func embeddedName(e ast.Expr) string {
	switch x := e.(type) {
	case *ast.StarExpr:
		return embeddedName(x.X)
	case *ast.SelectorExpr:
		return x.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(x.X)
	case *ast.IndexListExpr:
		return embeddedName(x.X)
	case *ast.Ident:
		return x.Name
	}
	return ""
}
