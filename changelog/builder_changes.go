package changelog

import "slices"

// CreateTable adds a createTable change with the columns of the block
func (b *ChangeSetBuilder) CreateTable(c CreateTable, columns func(*ColumnsBuilder)) {
	c.Columns = b.collectColumns(c.Columns, columns)
	b.Change(&c)
}

// AddColumn adds an addColumn change with the columns of the block
func (b *ChangeSetBuilder) AddColumn(c AddColumn, columns func(*ColumnsBuilder)) {
	c.Columns = b.collectColumns(c.Columns, columns)
	b.Change(&c)
}

// DropColumn drops c.ColumnName, or the columns of the optional block
func (b *ChangeSetBuilder) DropColumn(c DropColumn, columns ...func(*ColumnsBuilder)) {
	for _, block := range columns {
		c.Columns = b.collectColumns(c.Columns, block)
	}
	b.Change(&c)
}

// CreateIndex adds a createIndex change over the columns of the block
func (b *ChangeSetBuilder) CreateIndex(c CreateIndex, columns func(*ColumnsBuilder)) {
	c.Columns = b.collectColumns(c.Columns, columns)
	b.Change(&c)
}

// Insert adds an insert change with the column values of the block
func (b *ChangeSetBuilder) Insert(c Insert, columns func(*ColumnsBuilder)) {
	c.Columns = b.collectColumns(c.Columns, columns)
	b.Change(&c)
}

// Update adds an update change
func (b *ChangeSetBuilder) Update(c Update, data func(*ModifyDataBuilder)) {
	mb := b.modifyData(data, false)
	c.Columns = append(slices.Clone(c.Columns), mb.columns...)
	c.WhereParams = append(slices.Clone(c.WhereParams), mb.params...)
	mb.mergeWhere(&c.Where)
	b.Change(&c)
}

// Delete adds a delete change. The block may only set the where clause.
func (b *ChangeSetBuilder) Delete(c Delete, where func(*ModifyDataBuilder)) {
	mb := b.modifyData(where, true)
	c.WhereParams = append(slices.Clone(c.WhereParams), mb.params...)
	mb.mergeWhere(&c.Where)
	b.Change(&c)
}

// LoadData adds a loadData change with the column mappings of the block
func (b *ChangeSetBuilder) LoadData(c LoadData, columns func(*LoadDataColumnsBuilder)) {
	c.Columns = b.collectLoadColumns(c.Columns, columns)
	b.Change(&c)
}

// LoadUpdateData adds a loadUpdateData change with the column mappings of the block
func (b *ChangeSetBuilder) LoadUpdateData(c LoadUpdateData, columns func(*LoadDataColumnsBuilder)) {
	c.Columns = b.collectLoadColumns(c.Columns, columns)
	b.Change(&c)
}

// CustomChange adds a change running the registered class c.Class
func (b *ChangeSetBuilder) CustomChange(c CustomChange, params ...func(*ParamsBuilder)) {
	for _, block := range params {
		if block == nil {
			continue
		}
		pb := &ParamsBuilder{scope: b.scope, params: slices.Clone(c.Params)}
		block(pb)
		c.Params = pb.params
	}
	b.Change(&c)
}

// ExecuteCommand adds an executeCommand change with the arguments of the block
func (b *ChangeSetBuilder) ExecuteCommand(c ExecuteCommand, args ...func(*ArgsBuilder)) {
	for _, block := range args {
		if block == nil {
			continue
		}
		ab := &ArgsBuilder{scope: b.scope, args: slices.Clone(c.Args)}
		block(ab)
		c.Args = ab.args
	}
	b.Change(&c)
}

// SQL adds a raw SQL change
func (b *ChangeSetBuilder) SQL(c RawSQL) {
	b.Change(&c)
}

// DropTable drops a table
func (b *ChangeSetBuilder) DropTable(c DropTable) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) SetTableRemarks(c SetTableRemarks) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) RenameTable(c RenameTable) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) RenameColumn(c RenameColumn) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) ModifyDataType(c ModifyDataType) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) SetColumnRemarks(c SetColumnRemarks) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AddAutoIncrement(c AddAutoIncrement) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropIndex(c DropIndex) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) CreateView(c CreateView) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropView(c DropView) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) RenameView(c RenameView) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) CreateProcedure(c CreateProcedure) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropProcedure(c DropProcedure) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) CreateSequence(c CreateSequence) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropSequence(c DropSequence) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) RenameSequence(c RenameSequence) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AlterSequence(c AlterSequence) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AddDefaultValue(c AddDefaultValue) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropDefaultValue(c DropDefaultValue) {
	b.Change(&c)
}

// AddForeignKeyConstraint adds a foreign key constraint
func (b *ChangeSetBuilder) AddForeignKeyConstraint(c AddForeignKeyConstraint) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropForeignKeyConstraint(c DropForeignKeyConstraint) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropAllForeignKeyConstraints(c DropAllForeignKeyConstraints) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AddNotNullConstraint(c AddNotNullConstraint) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropNotNullConstraint(c DropNotNullConstraint) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AddPrimaryKey(c AddPrimaryKey) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropPrimaryKey(c DropPrimaryKey) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AddUniqueConstraint(c AddUniqueConstraint) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) DropUniqueConstraint(c DropUniqueConstraint) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) AddLookupTable(c AddLookupTable) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) MergeColumns(c MergeColumns) {
	b.Change(&c)
}

// Output writes a message when the changeset runs
func (b *ChangeSetBuilder) Output(c Output) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) SQLFile(c SQLFile) {
	b.Change(&c)
}

func (b *ChangeSetBuilder) Stop(c Stop) {
	b.Change(&c)
}

// TagDatabase tags the database
func (b *ChangeSetBuilder) TagDatabase(c TagDatabase) {
	b.Change(&c)
}

// Empty adds a no-op change
func (b *ChangeSetBuilder) Empty(c Empty) {
	b.Change(&c)
}
