package changelog

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/koba/db-changelog/internal/expr"
)

// scope carries the property table and the sticky error of one build level
type scope struct {
	props   map[string]string
	logger  *slog.Logger
	literal bool
	err     error
}

func (s *scope) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *scope) failed() bool {
	return s.err != nil
}

func (s *scope) eval(text string, strict bool) (string, error) {
	mode := expr.Lenient
	switch {
	case s.literal:
		mode = expr.None
	case strict:
		mode = expr.Strict
	}
	return expr.Evaluate(text, s.props, mode)
}

// resolve evaluates placeholders and checks required and enumerated fields
func (s *scope) resolve(fields []Field) error {
	for _, f := range fields {
		p, ok := f.Ptr.(*string)
		if !ok {
			continue
		}
		v, err := s.eval(*p, f.Strict)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		*p = v
		if f.Required && v == "" {
			return fmt.Errorf("%s is required", f.Name)
		}
		if v != "" && len(f.Enum) > 0 && !slices.Contains(f.Enum, v) {
			return fmt.Errorf("%s: %q is not one of %s", f.Name, v, strings.Join(f.Enum, ", "))
		}
	}
	return nil
}

type columnRules struct {
	typed     bool
	placement bool
	bare      bool
}

func (s *scope) columns(cols []Column, rules columnRules) error {
	for i := range cols {
		c := &cols[i]
		if err := s.resolve(columnSchema.Fields(c)); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		if rules.typed && c.Type == "" {
			return fmt.Errorf("column %s: Type is required", c.Name)
		}
		if !rules.placement && (c.AfterColumn != "" || c.BeforeColumn != "" || c.Position != nil) {
			return fmt.Errorf("column %s: placement is only supported by AddColumn", c.Name)
		}
		if set := c.valueVariants(); len(set) > 1 {
			return fmt.Errorf("column %s: only one value may be set, got %s", c.Name, strings.Join(set, ", "))
		}
		if set := c.defaultVariants(); len(set) > 1 {
			return fmt.Errorf("column %s: only one default value may be set, got %s", c.Name, strings.Join(set, ", "))
		}
		if rules.bare && c.Constraints != nil {
			return fmt.Errorf("column %s: constraints are not supported here", c.Name)
		}
		if c.Constraints != nil {
			if err := s.resolve(constraintsSchema.Fields(c.Constraints)); err != nil {
				return fmt.Errorf("column %s constraints: %w", c.Name, err)
			}
		}
	}
	return nil
}

func (s *scope) loadColumns(cols []LoadDataColumn) error {
	for i := range cols {
		c := &cols[i]
		if err := s.resolve(loadDataColumnSchema.Fields(c)); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
		if c.Name == "" && c.Index == nil && c.Header == "" {
			return fmt.Errorf("column %d: one of Name, Header or Index is required", i)
		}
		if set := c.defaultVariants(); len(set) > 1 {
			return fmt.Errorf("column %s: only one default value may be set, got %s", c.Name, strings.Join(set, ", "))
		}
	}
	return nil
}

func (s *scope) params(params []Param, strict bool) error {
	for i := range params {
		p := &params[i]
		fields := paramSchema.Fields(p)
		for j := range fields {
			fields[j].Strict = strict
		}
		if err := s.resolve(fields); err != nil {
			return fmt.Errorf("param %d: %w", i, err)
		}
	}
	return nil
}

// prepare evaluates and validates a change before it is added to a changeset
func (s *scope) prepare(c Change) error {
	spec, ok := Lookup(c.Kind())
	if !ok {
		return fmt.Errorf("unknown change kind %d", c.Kind())
	}
	if err := s.check(spec, c); err != nil {
		return fmt.Errorf("%s: %w", spec.Method, err)
	}
	return nil
}

func (s *scope) check(spec *KindSpec, c Change) error {
	if o, ok := c.(*Output); ok && o.Target == "" {
		o.Target = "STDERR"
	}
	if err := s.resolve(spec.Fields(c)); err != nil {
		return err
	}

	switch v := c.(type) {
	case *CreateTable:
		return s.columnList(spec, v.Columns, columnRules{typed: true})
	case *AddColumn:
		return s.columnList(spec, v.Columns, columnRules{typed: true, placement: true})
	case *CreateIndex:
		return s.columnList(spec, v.Columns, columnRules{})
	case *Insert:
		return s.columnList(spec, v.Columns, columnRules{})
	case *DropColumn:
		if v.ColumnName == "" && len(v.Columns) == 0 {
			return errors.New("ColumnName or at least one column is required")
		}
		if v.ColumnName != "" && len(v.Columns) > 0 {
			return errors.New("ColumnName and columns are mutually exclusive")
		}
		return s.columns(v.Columns, columnRules{})
	case *Update:
		if err := s.columns(v.Columns, columnRules{bare: true}); err != nil {
			return err
		}
		return s.params(v.WhereParams, true)
	case *Delete:
		return s.params(v.WhereParams, true)
	case *LoadData:
		return s.loadColumns(v.Columns)
	case *LoadUpdateData:
		return s.loadColumns(v.Columns)
	case *CustomChange:
		if v.Class == "" && v.task == nil {
			return errors.New("Class is required")
		}
		return s.params(v.Params, false)
	case *ExecuteCommand:
		for i, arg := range v.Args {
			resolved, err := s.eval(arg, false)
			if err != nil {
				return fmt.Errorf("arg %d: %w", i, err)
			}
			v.Args[i] = resolved
		}
	case *AddForeignKeyConstraint:
		if v.ReferencesUniqueColumn != nil {
			s.logger.Warn("referencesUniqueColumn is deprecated and has no effect",
				"constraint", v.ConstraintName, "table", v.BaseTableName)
		}
	}
	return nil
}

func (s *scope) columnList(spec *KindSpec, cols []Column, rules columnRules) error {
	if spec.NeedsColumns && len(cols) == 0 {
		return errors.New("at least one column is required")
	}
	return s.columns(cols, rules)
}
