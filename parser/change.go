package parser

import (
	"go/ast"
	"go/token"
	"strconv"

	"github.com/koba/db-changelog/changelog"
)

// change decodes a change call: the struct literal, then the nested block if the kind has one
func (in *interp) change(spec *changelog.KindSpec, call *ast.CallExpr) changelog.Change {
	switch {
	case spec.Block == changelog.NoBlock:
		in.arity(call, 1)
	case spec.OptionalBlock:
		in.arity(call, 1, 2)
	default:
		in.arity(call, 2)
	}

	c := spec.NewChange()
	in.decode(call.Args[0], spec.Schema, c)
	if len(call.Args) < 2 {
		return c
	}
	block := call.Args[1]

	switch v := c.(type) {
	case *changelog.CreateTable:
		v.Columns = in.columns(block)
	case *changelog.AddColumn:
		v.Columns = in.columns(block)
	case *changelog.DropColumn:
		v.Columns = in.columns(block)
	case *changelog.CreateIndex:
		v.Columns = in.columns(block)
	case *changelog.Insert:
		v.Columns = in.columns(block)
	case *changelog.LoadData:
		v.Columns = in.loadColumns(block)
	case *changelog.LoadUpdateData:
		v.Columns = in.loadColumns(block)
	case *changelog.Update:
		in.modifyData(block, &v.Columns, &v.Where, &v.WhereParams)
	case *changelog.Delete:
		in.modifyData(block, nil, &v.Where, &v.WhereParams)
	case *changelog.CustomChange:
		name, body := in.funcLit(block, "ParamsBuilder")
		v.Params = in.params(body, name)
	case *changelog.ExecuteCommand:
		name, body := in.funcLit(block, "ArgsBuilder")
		for _, arg := range in.calls(body, name) {
			if method(arg) != "Arg" {
				in.errorf(arg, "unsupported args method %s", method(arg))
			}
			in.arity(arg, 1)
			v.Args = append(v.Args, in.stringLit(arg.Args[0]))
		}
	default:
		in.errorf(block, "%s takes no block", spec.Method)
	}
	return c
}

func (in *interp) columns(block ast.Expr) []changelog.Column {
	name, body := in.funcLit(block, "ColumnsBuilder")
	var cols []changelog.Column
	for _, call := range in.calls(body, name) {
		if method(call) != "Column" {
			in.errorf(call, "unsupported columns method %s", method(call))
		}
		in.arity(call, 1, 2)
		var col changelog.Column
		in.structLit(call.Args[0], "Column", &col)
		if len(call.Args) == 2 {
			col.Constraints = in.constraints(call.Args[1])
		}
		cols = append(cols, col)
	}
	return cols
}

func (in *interp) constraints(block ast.Expr) *changelog.Constraints {
	name, body := in.funcLit(block, "ConstraintsBuilder")
	var out *changelog.Constraints
	for _, call := range in.calls(body, name) {
		if method(call) != "Constraints" {
			in.errorf(call, "unsupported constraints method %s", method(call))
		}
		in.arity(call, 1)
		if out != nil {
			in.errorf(call, "constraints already set for column")
		}
		out = &changelog.Constraints{}
		in.structLit(call.Args[0], "Constraints", out)
	}
	return out
}

func (in *interp) loadColumns(block ast.Expr) []changelog.LoadDataColumn {
	name, body := in.funcLit(block, "LoadDataColumnsBuilder")
	var cols []changelog.LoadDataColumn
	for _, call := range in.calls(body, name) {
		if method(call) != "Column" {
			in.errorf(call, "unsupported columns method %s", method(call))
		}
		in.arity(call, 1)
		var col changelog.LoadDataColumn
		in.structLit(call.Args[0], "LoadDataColumn", &col)
		cols = append(cols, col)
	}
	return cols
}

// modifyData decodes an update or delete block. cols is nil for delete.
func (in *interp) modifyData(block ast.Expr, cols *[]changelog.Column, where *string, params *[]changelog.Param) {
	name, body := in.funcLit(block, "ModifyDataBuilder")
	for _, call := range in.calls(body, name) {
		switch method(call) {
		case "Column":
			if cols == nil {
				in.errorf(call, "delete does not accept columns")
			}
			in.arity(call, 1)
			var col changelog.Column
			in.structLit(call.Args[0], "Column", &col)
			*cols = append(*cols, col)
		case "Where":
			in.arity(call, 1)
			if *where != "" {
				in.errorf(call, "where clause already set")
			}
			*where = in.stringLit(call.Args[0])
		case "WhereParams":
			in.arity(call, 1)
			pName, pBody := in.funcLit(call.Args[0], "ParamsBuilder")
			*params = append(*params, in.params(pBody, pName)...)
		default:
			in.errorf(call, "unsupported modify data method %s", method(call))
		}
	}
}

func (in *interp) params(body *ast.BlockStmt, recv string) []changelog.Param {
	var out []changelog.Param
	for _, call := range in.calls(body, recv) {
		if method(call) != "Param" {
			in.errorf(call, "unsupported params method %s", method(call))
		}
		in.arity(call, 1)
		var p changelog.Param
		in.structLit(call.Args[0], "Param", &p)
		out = append(out, p)
	}
	return out
}

func (in *interp) structLit(e ast.Expr, typeName string, v any) {
	schema, ok := changelog.StructSchema(typeName)
	if !ok {
		in.errorf(e, "unknown type %s", typeName)
	}
	in.decode(e, schema, v)
}

// decode fills v from a keyed composite literal of the schema type
func (in *interp) decode(e ast.Expr, schema *changelog.Schema, v any) {
	lit, ok := e.(*ast.CompositeLit)
	if !ok || !in.isQualified(lit.Type, schema.Name) {
		in.errorf(e, "expected a %s.%s literal", in.alias, schema.Name)
	}
	seen := make(map[string]bool, len(lit.Elts))
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			in.errorf(elt, "%s literal must use field names", schema.Name)
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			in.errorf(kv.Key, "expected a field name")
		}
		if seen[key.Name] {
			in.errorf(key, "duplicate field %s", key.Name)
		}
		seen[key.Name] = true

		field, ok := schema.Field(v, key.Name)
		if !ok {
			in.errorf(key, "unknown field %s.%s", schema.Name, key.Name)
		}
		in.assign(field, kv.Value)
	}
}

func (in *interp) assign(f changelog.Field, e ast.Expr) {
	switch p := f.Ptr.(type) {
	case *string:
		*p = in.stringLit(e)
	case **bool:
		arg := in.helperArg(e, "Bool")
		id, ok := arg.(*ast.Ident)
		if !ok || (id.Name != "true" && id.Name != "false") {
			in.errorf(arg, "%s: expected true or false", f.Name)
		}
		b := id.Name == "true"
		*p = &b
	case **int64:
		n := in.intLit(in.helperArg(e, "Int"))
		*p = &n
	default:
		in.errorf(e, "%s: unsupported field type %T", f.Name, f.Ptr)
	}
}

// helperArg returns the argument of a changelog.<helper>(x) call
func (in *interp) helperArg(e ast.Expr, helper string) ast.Expr {
	call, ok := e.(*ast.CallExpr)
	if !ok || !in.isQualified(call.Fun, helper) || len(call.Args) != 1 {
		in.errorf(e, "expected %s.%s(...)", in.alias, helper)
	}
	return call.Args[0]
}

func (in *interp) stringLit(e ast.Expr) string {
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		in.errorf(e, "expected a string literal")
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		in.errorf(e, "invalid string literal: %v", err)
	}
	return s
}

func (in *interp) intLit(e ast.Expr) int64 {
	neg := false
	if u, ok := e.(*ast.UnaryExpr); ok && u.Op == token.SUB {
		neg, e = true, u.X
	}
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		in.errorf(e, "expected an integer literal")
	}
	text := lit.Value
	if neg {
		text = "-" + text
	}
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		in.errorf(e, "invalid integer literal: %v", err)
	}
	return n
}
