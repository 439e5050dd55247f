package changelog

import (
	"errors"
	"slices"
)

// ColumnsBuilder collects the columns of a block
type ColumnsBuilder struct {
	scope   *scope
	columns []Column
}

// Column adds a column, with inline constraints from an optional block
func (b *ColumnsBuilder) Column(c Column, constraints ...func(*ConstraintsBuilder)) {
	if b.scope.failed() {
		return
	}
	cb := &ConstraintsBuilder{scope: b.scope, set: c.Constraints}
	for _, block := range constraints {
		if block != nil {
			block(cb)
		}
	}
	c.Constraints = cb.set
	b.columns = append(b.columns, c)
}

// ConstraintsBuilder sets the constraints of one column
type ConstraintsBuilder struct {
	scope *scope
	set   *Constraints
}

// Constraints sets the column constraints. A column has at most one constraints entry.
func (b *ConstraintsBuilder) Constraints(c Constraints) {
	if b.scope.failed() {
		return
	}
	if b.set != nil {
		b.scope.fail(errors.New("constraints already set for column"))
		return
	}
	b.set = &c
}

// LoadDataColumnsBuilder collects the column mappings of loadData and loadUpdateData
type LoadDataColumnsBuilder struct {
	scope   *scope
	columns []LoadDataColumn
}

// Column adds a column mapping
func (b *LoadDataColumnsBuilder) Column(c LoadDataColumn) {
	if b.scope.failed() {
		return
	}
	b.columns = append(b.columns, c)
}

// ModifyDataBuilder collects the columns and where clause of update and delete
type ModifyDataBuilder struct {
	scope    *scope
	columns  []Column
	where    string
	params   []Param
	noColumn bool
}

// Column adds a column value to set
func (b *ModifyDataBuilder) Column(c Column) {
	if b.scope.failed() {
		return
	}
	if b.noColumn {
		b.scope.fail(errors.New("delete does not accept columns"))
		return
	}
	b.columns = append(b.columns, c)
}

// Where sets the where clause
func (b *ModifyDataBuilder) Where(clause string) {
	if b.scope.failed() {
		return
	}
	if b.where != "" {
		b.scope.fail(errors.New("where clause already set"))
		return
	}
	b.where = clause
}

// WhereParams adds the parameters of the where clause
func (b *ModifyDataBuilder) WhereParams(body func(*ParamsBuilder)) {
	if b.scope.failed() || body == nil {
		return
	}
	pb := &ParamsBuilder{scope: b.scope}
	body(pb)
	b.params = append(b.params, pb.params...)
}

func (b *ModifyDataBuilder) mergeWhere(where *string) {
	if b.where == "" {
		return
	}
	if *where != "" {
		b.scope.fail(errors.New("where clause already set"))
		return
	}
	*where = b.where
}

// ParamsBuilder collects named parameters
type ParamsBuilder struct {
	scope  *scope
	params []Param
}

// Param adds a parameter
func (b *ParamsBuilder) Param(p Param) {
	if b.scope.failed() {
		return
	}
	b.params = append(b.params, p)
}

// ArgsBuilder collects command line arguments
type ArgsBuilder struct {
	scope *scope
	args  []string
}

// Arg adds an argument
func (b *ArgsBuilder) Arg(value string) {
	if b.scope.failed() {
		return
	}
	b.args = append(b.args, value)
}

func (b *ChangeSetBuilder) collectColumns(base []Column, block func(*ColumnsBuilder)) []Column {
	cb := &ColumnsBuilder{scope: b.scope, columns: slices.Clone(base)}
	if block != nil {
		block(cb)
	}
	return cb.columns
}

func (b *ChangeSetBuilder) collectLoadColumns(base []LoadDataColumn, block func(*LoadDataColumnsBuilder)) []LoadDataColumn {
	cb := &LoadDataColumnsBuilder{scope: b.scope, columns: slices.Clone(base)}
	if block != nil {
		block(cb)
	}
	return cb.columns
}

func (b *ChangeSetBuilder) modifyData(block func(*ModifyDataBuilder), noColumn bool) *ModifyDataBuilder {
	mb := &ModifyDataBuilder{scope: b.scope, noColumn: noColumn}
	if block != nil {
		block(mb)
	}
	return mb
}
