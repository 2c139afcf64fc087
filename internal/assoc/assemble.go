package assoc

import (
	"go/ast"
	"go/token"
	"strconv"
)

func returnStmt(e ast.Expr) ast.Stmt {
	return &ast.ReturnStmt{Results: []ast.Expr{e}}
}

func panicStmt(msg string) ast.Stmt {
	return &ast.ExprStmt{X: &ast.CallExpr{
		Fun:  ast.NewIdent("panic"),
		Args: []ast.Expr{&ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(msg)}},
	}}
}

// Decls assembles every synthesized function of b, in declaration order.
func (b *ImplBlock) Decls() []*ast.FuncDecl {
	decls := make([]*ast.FuncDecl, 0, len(b.Functions))
	for _, f := range b.Functions {
		decls = append(decls, assemble(b.Union, f))
	}
	return decls
}

// assemble wraps the arms of f into a function declaration. Forward
// functions on enums become methods; forward functions on sealed unions
// take the receiver as their first parameter since Go interfaces cannot
// have methods. Reverse functions are package-level functions.
func assemble(u *TaggedUnionDecl, f *Function) *ast.FuncDecl {
	decl := &ast.FuncDecl{
		Name: ast.NewIdent(f.Decl.Name),
		Type: &ast.FuncType{Params: &ast.FieldList{}},
	}
	if f.Decl.ResultExpr != nil {
		decl.Type.Results = &ast.FieldList{List: []*ast.Field{{Type: f.Decl.ResultExpr}}}
	}

	params := f.Decl.Arguments()
	recv := f.Decl.Receiver()
	switch {
	case recv != nil && u.Kind == EnumUnion:
		decl.Recv = &ast.FieldList{List: []*ast.Field{paramField(*recv)}}
	case recv != nil:
		params = f.Decl.Params
		decl.Type.TypeParams = typeParamList(u)
	default:
		decl.Type.TypeParams = typeParamList(u)
	}
	decl.Type.Params.List = paramFields(params)

	sw := dispatchSwitch(u, f)
	body := &ast.BlockStmt{List: []ast.Stmt{sw}}
	body.List = append(body.List, f.Tail...)
	decl.Body = body
	return decl
}

func dispatchSwitch(u *TaggedUnionDecl, f *Function) ast.Stmt {
	clauses := &ast.BlockStmt{}
	for _, arm := range f.Arms {
		clause := &ast.CaseClause{Body: arm.Body}
		if !arm.IsDefault() {
			clause.List = arm.Cases
		}
		clauses.List = append(clauses.List, clause)
	}

	if f.Direction == Forward {
		scrutinee := ast.NewIdent(f.Decl.Receiver().Name)
		if u.Kind == SealedUnion {
			return &ast.TypeSwitchStmt{
				Assign: &ast.ExprStmt{X: &ast.TypeAssertExpr{X: scrutinee}},
				Body:   clauses,
			}
		}
		return &ast.SwitchStmt{Tag: scrutinee, Body: clauses}
	}

	args := f.Decl.Arguments()
	if len(args) == 1 {
		return &ast.SwitchStmt{Tag: ast.NewIdent(args[0].Name), Body: clauses}
	}
	return &ast.SwitchStmt{Body: clauses}
}

func paramField(p Param) *ast.Field {
	return &ast.Field{Names: []*ast.Ident{ast.NewIdent(p.Name)}, Type: p.TypeExpr}
}

// paramFields keeps parameters declared together in one field.
func paramFields(params []Param) []*ast.Field {
	var fields []*ast.Field
	for i, p := range params {
		if i > 0 && !p.Receiver && !params[i-1].Receiver && params[i-1].Group == p.Group {
			last := fields[len(fields)-1]
			last.Names = append(last.Names, ast.NewIdent(p.Name))
			continue
		}
		fields = append(fields, paramField(p))
	}
	return fields
}

func typeParamList(u *TaggedUnionDecl) *ast.FieldList {
	if len(u.TypeParams) == 0 {
		return nil
	}
	list := &ast.FieldList{}
	for i, tp := range u.TypeParams {
		if i > 0 && sameConstraint(u.TypeParams[i-1].Constraint, tp.Constraint) {
			last := list.List[len(list.List)-1]
			last.Names = append(last.Names, ast.NewIdent(tp.Name))
			continue
		}
		list.List = append(list.List, &ast.Field{Names: []*ast.Ident{ast.NewIdent(tp.Name)}, Type: tp.Constraint})
	}
	return list
}

// sameConstraint reports whether two type parameters were declared in one
// group, as in [K, V any].
func sameConstraint(a, b ast.Expr) bool {
	return a != nil && a == b
}
