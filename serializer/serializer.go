// Package serializer renders changelogs as the Go source of the DSL calls that build them.
package serializer

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/koba/db-changelog/changelog"
)

const qualifier = "changelog."

var (
	// ErrUnsupportedMode is wrapped by the Error returned for non-pretty output.
	ErrUnsupportedMode = errors.New("only pretty output is supported")
	// ErrAppendUnsupported is wrapped by the Error returned by Append.
	ErrAppendUnsupported = errors.New("appending to an existing changelog is not supported")
)

// Error is a serialization failure. No partial output is produced.
type Error struct {
	Type  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("serialize %s.%s: %v", e.Type, e.Field, e.Err)
	case e.Type != "":
		return fmt.Sprintf("serialize %s: %v", e.Type, e.Err)
	default:
		return fmt.Sprintf("serialize: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errorf(typ, field, format string, args ...any) *Error {
	return &Error{Type: typ, Field: field, Err: fmt.Errorf(format, args...)}
}

// Option configures a Serializer
type Option func(*Serializer)

// WithPackage overrides the package name of written files
func WithPackage(name string) Option {
	return func(s *Serializer) { s.pkg = name }
}

// WithVarName overrides the variable name of written files
func WithVarName(name string) Option {
	return func(s *Serializer) { s.varName = name }
}

// WithClock sets the clock used to name changelogs without a usable file name
func WithClock(now func() time.Time) Option {
	return func(s *Serializer) { s.now = now }
}

// Serializer renders changes, changesets and changelogs
type Serializer struct {
	pkg     string
	varName string
	now     func() time.Time
}

// New returns a Serializer
func New(opts ...Option) *Serializer {
	s := &Serializer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serialize renders a changelog.Change, a *changelog.ChangeSet or a *changelog.ChangeLog.
// Only pretty output is supported.
func (s *Serializer) Serialize(v any, pretty bool) (string, error) {
	if !pretty {
		return "", &Error{Err: ErrUnsupportedMode}
	}
	switch v := v.(type) {
	case *changelog.ChangeLog:
		if v == nil {
			return "", errorf("ChangeLog", "", "nil changelog")
		}
		filePath := v.FilePath
		if filePath == "" {
			filePath = definePath(v.ChangeSets, "")
		}
		return s.render(v.ChangeSets, filePath)
	case *changelog.ChangeSet:
		p := &printer{}
		if err := p.changeSet(v); err != nil {
			return "", err
		}
		return p.String(), nil
	case changelog.Change:
		return s.SerializeChange(v, 0)
	default:
		return "", errorf(fmt.Sprintf("%T", v), "", "unsupported value")
	}
}

// SerializeChange renders one change as a call on a ChangeSetBuilder named cs,
// every line indented by indent tabs
func (s *Serializer) SerializeChange(c changelog.Change, indent int) (string, error) {
	p := &printer{indent: indent}
	if err := p.change("cs", c); err != nil {
		return "", err
	}
	return p.String(), nil
}

type printer struct {
	buf    strings.Builder
	indent int
}

func (p *printer) String() string {
	return strings.TrimSuffix(p.buf.String(), "\n")
}

func (p *printer) line(format string, args ...any) {
	p.buf.WriteString(strings.Repeat("\t", p.indent))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

// block writes head, then body one level deeper, then the closing tail.
// An empty body is written as {} on the head line.
func (p *printer) block(head string, empty bool, body func() error) error {
	if empty {
		p.line("%s {})", head)
		return nil
	}
	p.line("%s {", head)
	p.indent++
	err := body()
	p.indent--
	p.line("})")
	return err
}

func (p *printer) changeSet(cs *changelog.ChangeSet) error {
	if cs == nil {
		return errorf("ChangeSet", "", "nil changeset")
	}
	args, err := literal(mustSchema("ChangeSetArgs"), &cs.ChangeSetArgs)
	if err != nil {
		return err
	}

	empty := cs.Comments == "" && len(cs.ValidCheckSums) == 0 && cs.Preconditions == nil &&
		len(cs.Changes) == 0 && len(cs.Rollback) == 0 && len(cs.SQLVisitors) == 0
	head := fmt.Sprintf("b.ChangeSet(%s, func(cs *%sChangeSetBuilder)", args, qualifier)
	return p.block(head, empty, func() error {
		if cs.Comments != "" {
			p.line("cs.Comment(%s)", strconv.Quote(cs.Comments))
		}
		for _, sum := range cs.ValidCheckSums {
			p.line("cs.ValidCheckSum(%s)", strconv.Quote(sum))
		}
		if cs.Preconditions != nil {
			if err := p.preconditions(cs.Preconditions); err != nil {
				return err
			}
		}
		for _, c := range cs.Changes {
			if err := p.change("cs", c); err != nil {
				return err
			}
		}
		if len(cs.Rollback) > 0 {
			head := fmt.Sprintf("cs.Rollback(func(rb *%sChangeSetBuilder)", qualifier)
			err := p.block(head, false, func() error {
				for _, c := range cs.Rollback {
					if err := p.change("rb", c); err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return p.modifySql(cs.SQLVisitors)
	})
}

func (p *printer) change(recv string, c changelog.Change) error {
	if c == nil {
		return errorf("Change", "", "nil change")
	}
	spec, ok := changelog.Lookup(c.Kind())
	if !ok {
		return errorf(fmt.Sprintf("%T", c), "", "unknown change kind")
	}
	if custom, ok := c.(*changelog.CustomChange); ok && custom.Inline() {
		return errorf(spec.Name, "", "inline custom tasks cannot be serialized, register a class instead")
	}
	lit, err := literal(spec.Schema, c)
	if err != nil {
		return err
	}
	call := fmt.Sprintf("%s.%s(%s", recv, spec.Method, lit)

	switch v := c.(type) {
	case *changelog.CreateTable:
		return p.columns(call, v.Columns, false)
	case *changelog.AddColumn:
		return p.columns(call, v.Columns, false)
	case *changelog.DropColumn:
		return p.columns(call, v.Columns, true)
	case *changelog.CreateIndex:
		return p.columns(call, v.Columns, false)
	case *changelog.Insert:
		return p.columns(call, v.Columns, false)
	case *changelog.LoadData:
		return p.loadColumns(call, v.Columns)
	case *changelog.LoadUpdateData:
		return p.loadColumns(call, v.Columns)
	case *changelog.Update:
		return p.modifyData(call, v.Columns, v.WhereParams)
	case *changelog.Delete:
		return p.modifyData(call, nil, v.WhereParams)
	case *changelog.CustomChange:
		if len(v.Params) == 0 {
			p.line("%s)", call)
			return nil
		}
		return p.block(call+", func(p *"+qualifier+"ParamsBuilder)", false, func() error {
			return p.params("p", v.Params)
		})
	case *changelog.ExecuteCommand:
		if len(v.Args) == 0 {
			p.line("%s)", call)
			return nil
		}
		return p.block(call+", func(a *"+qualifier+"ArgsBuilder)", false, func() error {
			for _, arg := range v.Args {
				p.line("a.Arg(%s)", strconv.Quote(arg))
			}
			return nil
		})
	}
	if spec.Block != changelog.NoBlock {
		return errorf(spec.Name, "", "no block writer")
	}
	p.line("%s)", call)
	return nil
}

func (p *printer) columns(call string, cols []changelog.Column, optional bool) error {
	if optional && len(cols) == 0 {
		p.line("%s)", call)
		return nil
	}
	head := call + ", func(t *" + qualifier + "ColumnsBuilder)"
	return p.block(head, len(cols) == 0, func() error {
		for i := range cols {
			if err := p.column("t", &cols[i], true); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *printer) column(recv string, c *changelog.Column, constraints bool) error {
	lit, err := literal(mustSchema("Column"), c)
	if err != nil {
		return err
	}
	if c.Constraints == nil {
		p.line("%s.Column(%s)", recv, lit)
		return nil
	}
	if !constraints {
		return errorf("Column", "Constraints", "constraints are not supported in this block")
	}
	cons, err := literal(mustSchema("Constraints"), c.Constraints)
	if err != nil {
		return err
	}
	head := fmt.Sprintf("%s.Column(%s, func(c *%sConstraintsBuilder)", recv, lit, qualifier)
	return p.block(head, false, func() error {
		p.line("c.Constraints(%s)", cons)
		return nil
	})
}

func (p *printer) loadColumns(call string, cols []changelog.LoadDataColumn) error {
	head := call + ", func(t *" + qualifier + "LoadDataColumnsBuilder)"
	return p.block(head, len(cols) == 0, func() error {
		for i := range cols {
			lit, err := literal(mustSchema("LoadDataColumn"), &cols[i])
			if err != nil {
				return err
			}
			p.line("t.Column(%s)", lit)
		}
		return nil
	})
}

func (p *printer) modifyData(call string, cols []changelog.Column, params []changelog.Param) error {
	head := call + ", func(d *" + qualifier + "ModifyDataBuilder)"
	return p.block(head, len(cols) == 0 && len(params) == 0, func() error {
		for i := range cols {
			if err := p.column("d", &cols[i], false); err != nil {
				return err
			}
		}
		if len(params) == 0 {
			return nil
		}
		return p.block("d.WhereParams(func(w *"+qualifier+"ParamsBuilder)", false, func() error {
			return p.params("w", params)
		})
	})
}

func (p *printer) params(recv string, params []changelog.Param) error {
	for i := range params {
		lit, err := literal(mustSchema("Param"), &params[i])
		if err != nil {
			return err
		}
		p.line("%s.Param(%s)", recv, lit)
	}
	return nil
}

func (p *printer) preconditions(pre *changelog.Preconditions) error {
	args, err := literal(mustSchema("PreConditionArgs"), &pre.PreConditionArgs)
	if err != nil {
		return err
	}
	head := fmt.Sprintf("cs.PreConditions(%s, func(pc *%sPreconditionBuilder)", args, qualifier)
	return p.block(head, len(pre.Nodes) == 0, func() error {
		return p.conditions(pre.Nodes)
	})
}

func (p *printer) conditions(nodes []changelog.Precondition) error {
	for _, node := range nodes {
		var (
			method   string
			children []changelog.Precondition
		)
		switch n := node.(type) {
		case *changelog.AndCondition:
			method, children = "And", n.Nodes
		case *changelog.OrCondition:
			method, children = "Or", n.Nodes
		case *changelog.NotCondition:
			method, children = "Not", n.Nodes
		case *changelog.Condition:
			args := []string{strconv.Quote(n.Name)}
			for i := range n.Params {
				lit, err := literal(mustSchema("Param"), &n.Params[i])
				if err != nil {
					return err
				}
				args = append(args, lit)
			}
			p.line("pc.Condition(%s)", strings.Join(args, ", "))
			continue
		default:
			return errorf(fmt.Sprintf("%T", node), "", "unknown precondition")
		}
		head := fmt.Sprintf("pc.%s(func(pc *%sPreconditionBuilder)", method, qualifier)
		if err := p.block(head, len(children) == 0, func() error { return p.conditions(children) }); err != nil {
			return err
		}
	}
	return nil
}

// modifySql writes consecutive visitors sharing the same filters as one block
func (p *printer) modifySql(visitors []changelog.SQLVisitor) error {
	for start := 0; start < len(visitors); {
		end := start + 1
		for end < len(visitors) && sameFilters(visitors[start], visitors[end]) {
			end++
		}

		first := visitors[start]
		args := changelog.ModifySqlArgs{
			DBMS:            strings.Join(first.DBMS, ","),
			Context:         first.Context,
			Labels:          first.Labels,
			ApplyToRollback: first.ApplyToRollback,
		}
		lit, err := literal(mustSchema("ModifySqlArgs"), &args)
		if err != nil {
			return err
		}
		group := visitors[start:end]
		head := fmt.Sprintf("cs.ModifySql(%s, func(m *%sModifySqlBuilder)", lit, qualifier)
		err = p.block(head, false, func() error {
			for _, v := range group {
				switch v.Kind {
				case changelog.VisitPrepend:
					p.line("m.Prepend(%s)", strconv.Quote(v.Value))
				case changelog.VisitAppend:
					p.line("m.Append(%s)", strconv.Quote(v.Value))
				case changelog.VisitReplace:
					p.line("m.Replace(%s, %s)", strconv.Quote(v.Replace), strconv.Quote(v.With))
				case changelog.VisitRegExpReplace:
					p.line("m.RegExpReplace(%s, %s)", strconv.Quote(v.Replace), strconv.Quote(v.With))
				default:
					return errorf("SQLVisitor", "Kind", "unknown visitor %q", v.Kind)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		start = end
	}
	return nil
}

func sameFilters(a, b changelog.SQLVisitor) bool {
	return slices.Equal(a.DBMS, b.DBMS) && a.Context == b.Context && a.Labels == b.Labels &&
		equalBool(a.ApplyToRollback, b.ApplyToRollback)
}

func equalBool(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// literal renders v as a struct literal listing its non-default fields in schema order
func literal(schema *changelog.Schema, v any) (string, error) {
	var parts []string
	for _, f := range schema.Fields(v) {
		if f.IsDefault() {
			continue
		}
		value, err := formatValue(f.Ptr)
		if err != nil {
			return "", &Error{Type: schema.Name, Field: f.Name, Err: err}
		}
		parts = append(parts, f.Name+": "+value)
	}
	return qualifier + schema.Name + "{" + strings.Join(parts, ", ") + "}", nil
}

func formatValue(ptr any) (string, error) {
	switch p := ptr.(type) {
	case *string:
		return strconv.Quote(*p), nil
	case **bool:
		return qualifier + "Bool(" + strconv.FormatBool(**p) + ")", nil
	case **int64:
		return qualifier + "Int(" + strconv.FormatInt(**p, 10) + ")", nil
	default:
		return "", fmt.Errorf("unsupported field type %T", ptr)
	}
}

func mustSchema(name string) *changelog.Schema {
	s, ok := changelog.StructSchema(name)
	if !ok {
		panic("serializer: no schema for " + name)
	}
	return s
}
