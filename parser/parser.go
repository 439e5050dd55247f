// Package parser reads changelog source written by the serializer back into a ChangeLog.
//
// The source is not compiled. Its DSL calls are replayed through the changelog builder,
// so the result is validated like a changelog defined in Go. Values were resolved
// before they were written, so ${name} placeholders are kept as written.
package parser

import (
	"errors"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"os"
	"slices"
	"strconv"

	"github.com/koba/db-changelog/changelog"
)

// SyntaxError reports source outside the subset of Go the parser understands
type SyntaxError struct {
	Pos token.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	if !e.Pos.IsValid() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ParseFile reads and parses the changelog source at path
func ParseFile(path string, opts ...changelog.Option) (*changelog.ChangeLog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read changelog: %w", err)
	}
	return parse(path, src, opts)
}

// Parse parses changelog source
func Parse(src []byte, opts ...changelog.Option) (*changelog.ChangeLog, error) {
	return parse("", src, opts)
}

func parse(filename string, src []byte, opts []changelog.Option) (log *changelog.ChangeLog, err error) {
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, filename, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, syntaxError(err)
	}

	in := &interp{fset: fset}
	defer in.recover(&err)

	in.alias = in.importAlias(file)
	path, body, name := in.define(file)
	def := changelog.Define(path, func(b *changelog.Builder) {
		in.builderBody(body, name, b)
	})
	return def.Build(append(slices.Clip(opts), changelog.WithoutEvaluation())...)
}

// ParseChange parses one change call such as cs.DropTable(changelog.DropTable{TableName: "t"}).
// The changelog package must be referenced as changelog.
func ParseChange(src string) (c changelog.Change, err error) {
	fset := token.NewFileSet()
	e, err := goparser.ParseExprFrom(fset, "", src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, syntaxError(err)
	}
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return nil, &SyntaxError{Pos: fset.Position(e.Pos()), Msg: "expected a change call"}
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return nil, &SyntaxError{Pos: fset.Position(e.Pos()), Msg: "expected a method call"}
	}
	spec, ok := changelog.LookupMethod(sel.Sel.Name)
	if !ok {
		return nil, &SyntaxError{Pos: fset.Position(sel.Sel.Pos()), Msg: "unknown change " + sel.Sel.Name}
	}

	in := &interp{fset: fset, alias: "changelog"}
	defer in.recover(&err)

	change := in.change(spec, call)
	var built *changelog.ChangeLog
	def := changelog.Define("", func(b *changelog.Builder) {
		b.ChangeSet(changelog.ChangeSetArgs{ID: "change", Author: "parser"}, func(cs *changelog.ChangeSetBuilder) {
			cs.Change(change)
		})
	})
	built, err = def.Build(changelog.WithoutEvaluation())
	if err != nil {
		var perr *changelog.ParseError
		if errors.As(err, &perr) {
			return nil, perr.Err
		}
		return nil, err
	}
	return built.ChangeSets[0].Changes[0], nil
}

func syntaxError(err error) error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return &SyntaxError{Pos: list[0].Pos, Msg: list[0].Msg}
	}
	return &SyntaxError{Msg: err.Error()}
}

// bailout carries a SyntaxError out of the interpreter
type bailout struct {
	err *SyntaxError
}

type interp struct {
	fset  *token.FileSet
	alias string
}

func (in *interp) errorf(node ast.Node, format string, args ...any) {
	panic(bailout{&SyntaxError{Pos: in.fset.Position(node.Pos()), Msg: fmt.Sprintf(format, args...)}})
}

func (in *interp) recover(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}

func (in *interp) importAlias(file *ast.File) string {
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil || path != changelog.ImportPath {
			continue
		}
		if imp.Name == nil {
			return "changelog"
		}
		if imp.Name.Name == "." || imp.Name.Name == "_" {
			in.errorf(imp, "unsupported import name %s", imp.Name.Name)
		}
		return imp.Name.Name
	}
	in.errorf(file, "missing import of %s", changelog.ImportPath)
	return ""
}

// define finds the single var x = changelog.Define(path, func(b *changelog.Builder) {...})
func (in *interp) define(file *ast.File) (string, *ast.BlockStmt, string) {
	var found *ast.CallExpr
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for _, v := range vs.Values {
				call, ok := v.(*ast.CallExpr)
				if !ok || !in.isQualified(call.Fun, "Define") {
					continue
				}
				if found != nil {
					in.errorf(call, "more than one Define in file")
				}
				found = call
			}
		}
	}
	if found == nil {
		in.errorf(file, "no %s.Define declaration", in.alias)
	}
	if len(found.Args) != 2 {
		in.errorf(found, "Define takes a path and a body")
	}
	path := in.stringLit(found.Args[0])
	name, body := in.funcLit(found.Args[1], "Builder")
	return path, body, name
}

func (in *interp) isQualified(e ast.Expr, name string) bool {
	sel, ok := e.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != name {
		return false
	}
	id, ok := sel.X.(*ast.Ident)
	return ok && id.Name == in.alias
}

// funcLit checks for func(x *changelog.<typeName>) {...} and returns x and the body
func (in *interp) funcLit(e ast.Expr, typeName string) (string, *ast.BlockStmt) {
	fn, ok := e.(*ast.FuncLit)
	if !ok {
		in.errorf(e, "expected func(*%s.%s)", in.alias, typeName)
	}
	params := fn.Type.Params.List
	if len(params) != 1 || len(params[0].Names) > 1 {
		in.errorf(fn, "expected exactly one parameter of type *%s.%s", in.alias, typeName)
	}
	star, ok := params[0].Type.(*ast.StarExpr)
	if !ok || !in.isQualified(star.X, typeName) {
		in.errorf(params[0].Type, "expected parameter of type *%s.%s", in.alias, typeName)
	}
	if fn.Type.Results != nil && len(fn.Type.Results.List) > 0 {
		in.errorf(fn, "block must not return values")
	}
	name := "_"
	if len(params[0].Names) == 1 {
		name = params[0].Names[0].Name
	}
	return name, fn.Body
}

// calls returns the method calls of body, each on the receiver named recv
func (in *interp) calls(body *ast.BlockStmt, recv string) []*ast.CallExpr {
	out := make([]*ast.CallExpr, 0, len(body.List))
	for _, stmt := range body.List {
		es, ok := stmt.(*ast.ExprStmt)
		if !ok {
			in.errorf(stmt, "expected a call statement")
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok {
			in.errorf(es, "expected a call statement")
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			in.errorf(call, "expected a method call on %s", recv)
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok || id.Name != recv || recv == "_" {
			in.errorf(sel, "expected a method call on %s", recv)
		}
		out = append(out, call)
	}
	return out
}

func method(call *ast.CallExpr) string {
	return call.Fun.(*ast.SelectorExpr).Sel.Name
}

func (in *interp) arity(call *ast.CallExpr, n ...int) {
	for _, want := range n {
		if len(call.Args) == want {
			return
		}
	}
	in.errorf(call, "%s: wrong number of arguments", method(call))
}

func (in *interp) builderBody(body *ast.BlockStmt, recv string, b *changelog.Builder) {
	for _, call := range in.calls(body, recv) {
		switch method(call) {
		case "ChangeSet":
			in.arity(call, 2)
			var args changelog.ChangeSetArgs
			in.structLit(call.Args[0], "ChangeSetArgs", &args)
			name, csBody := in.funcLit(call.Args[1], "ChangeSetBuilder")
			b.ChangeSet(args, func(cs *changelog.ChangeSetBuilder) {
				in.changeSetBody(csBody, name, cs)
			})
		case "Property":
			in.arity(call, 2)
			b.Property(in.stringLit(call.Args[0]), in.stringLit(call.Args[1]))
		default:
			in.errorf(call, "unsupported Builder method %s", method(call))
		}
	}
}

func (in *interp) changeSetBody(body *ast.BlockStmt, recv string, cs *changelog.ChangeSetBuilder) {
	for _, call := range in.calls(body, recv) {
		switch name := method(call); name {
		case "Comment":
			in.arity(call, 1)
			cs.Comment(in.stringLit(call.Args[0]))
		case "ValidCheckSum":
			in.arity(call, 1)
			cs.ValidCheckSum(in.stringLit(call.Args[0]))
		case "Rollback":
			in.arity(call, 1)
			rbName, rbBody := in.funcLit(call.Args[0], "ChangeSetBuilder")
			cs.Rollback(func(rb *changelog.ChangeSetBuilder) {
				in.changeSetBody(rbBody, rbName, rb)
			})
		case "RollbackTo":
			in.arity(call, 3)
			cs.RollbackTo(in.stringLit(call.Args[0]), in.stringLit(call.Args[1]), in.stringLit(call.Args[2]))
		case "PreConditions":
			in.arity(call, 2)
			var args changelog.PreConditionArgs
			in.structLit(call.Args[0], "PreConditionArgs", &args)
			pcName, pcBody := in.funcLit(call.Args[1], "PreconditionBuilder")
			cs.PreConditions(args, func(pc *changelog.PreconditionBuilder) {
				in.preconditionBody(pcBody, pcName, pc)
			})
		case "ModifySql":
			in.arity(call, 2)
			var args changelog.ModifySqlArgs
			in.structLit(call.Args[0], "ModifySqlArgs", &args)
			mName, mBody := in.funcLit(call.Args[1], "ModifySqlBuilder")
			cs.ModifySql(args, func(m *changelog.ModifySqlBuilder) {
				in.modifySqlBody(mBody, mName, m)
			})
		default:
			spec, ok := changelog.LookupMethod(name)
			if !ok {
				in.errorf(call, "unknown change %s", name)
			}
			cs.Change(in.change(spec, call))
		}
	}
}

func (in *interp) preconditionBody(body *ast.BlockStmt, recv string, pc *changelog.PreconditionBuilder) {
	for _, call := range in.calls(body, recv) {
		switch name := method(call); name {
		case "And", "Or", "Not":
			in.arity(call, 1)
			childName, childBody := in.funcLit(call.Args[0], "PreconditionBuilder")
			nested := func(child *changelog.PreconditionBuilder) {
				in.preconditionBody(childBody, childName, child)
			}
			switch name {
			case "And":
				pc.And(nested)
			case "Or":
				pc.Or(nested)
			default:
				pc.Not(nested)
			}
		case "Condition":
			if len(call.Args) == 0 {
				in.errorf(call, "Condition needs a name")
			}
			params := make([]changelog.Param, len(call.Args)-1)
			for i, arg := range call.Args[1:] {
				in.structLit(arg, "Param", &params[i])
			}
			pc.Condition(in.stringLit(call.Args[0]), params...)
		default:
			in.errorf(call, "unsupported precondition method %s", name)
		}
	}
}

func (in *interp) modifySqlBody(body *ast.BlockStmt, recv string, m *changelog.ModifySqlBuilder) {
	for _, call := range in.calls(body, recv) {
		switch name := method(call); name {
		case "Prepend":
			in.arity(call, 1)
			m.Prepend(in.stringLit(call.Args[0]))
		case "Append":
			in.arity(call, 1)
			m.Append(in.stringLit(call.Args[0]))
		case "Replace":
			in.arity(call, 2)
			m.Replace(in.stringLit(call.Args[0]), in.stringLit(call.Args[1]))
		case "RegExpReplace":
			in.arity(call, 2)
			m.RegExpReplace(in.stringLit(call.Args[0]), in.stringLit(call.Args[1]))
		default:
			in.errorf(call, "unsupported modifySql method %s", name)
		}
	}
}
