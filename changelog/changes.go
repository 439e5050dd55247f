package changelog

import "github.com/koba/db-changelog/custom"

// Entities

// CreateTable creates a table with the columns from its block
type CreateTable struct {
	CatalogName string
	IfNotExists *bool
	Remarks     string
	SchemaName  string
	TableName   string
	Tablespace  string
	Columns     []Column
}

// DropTable drops a table
type DropTable struct {
	CascadeConstraints *bool
	CatalogName        string
	SchemaName         string
	TableName          string
}

// SetTableRemarks sets the comment on a table
type SetTableRemarks struct {
	CatalogName string
	Remarks     string
	SchemaName  string
	TableName   string
}

// RenameTable renames a table
type RenameTable struct {
	CatalogName  string
	NewTableName string
	OldTableName string
	SchemaName   string
}

// AddColumn adds the columns from its block to an existing table
type AddColumn struct {
	CatalogName string
	SchemaName  string
	TableName   string
	Columns     []Column
}

// DropColumn drops a single column by name or several columns from its block
type DropColumn struct {
	CatalogName string
	ColumnName  string
	SchemaName  string
	TableName   string
	Columns     []Column
}

// RenameColumn renames a column
type RenameColumn struct {
	CatalogName    string
	ColumnDataType string
	NewColumnName  string
	OldColumnName  string
	Remarks        string
	SchemaName     string
	TableName      string
}

// ModifyDataType changes the type of a column
type ModifyDataType struct {
	CatalogName string
	ColumnName  string
	NewDataType string
	SchemaName  string
	TableName   string
}

// SetColumnRemarks sets the comment on a column
type SetColumnRemarks struct {
	CatalogName      string
	ColumnName       string
	Remarks          string
	SchemaName       string
	TableName        string
	ColumnDataType   string
	ColumnParentType string
}

// AddAutoIncrement turns an existing column into an auto-increment column
type AddAutoIncrement struct {
	CatalogName    string
	ColumnDataType string
	ColumnName     string
	DefaultOnNull  *bool
	GenerationType string
	IncrementBy    *int64
	SchemaName     string
	StartWith      *int64
	TableName      string
}

// CreateIndex creates an index over the columns from its block
type CreateIndex struct {
	AssociatedWith string
	CatalogName    string
	Clustered      *bool
	IndexName      string
	SchemaName     string
	TableName      string
	Tablespace     string
	Unique         *bool
	Columns        []Column
}

// DropIndex drops an index
type DropIndex struct {
	CatalogName string
	IndexName   string
	SchemaName  string
	TableName   string
}

// CreateView creates a view from a select query
type CreateView struct {
	CatalogName             string
	Encoding                string
	FullDefinition          *bool
	Path                    string
	RelativeToChangelogFile *bool
	Remarks                 string
	ReplaceIfExists         *bool
	SchemaName              string
	SelectQuery             string
	ViewName                string
}

// DropView drops a view
type DropView struct {
	CatalogName string
	IfExists    *bool
	SchemaName  string
	ViewName    string
}

// RenameView renames a view
type RenameView struct {
	CatalogName string
	NewViewName string
	OldViewName string
	SchemaName  string
}

// CreateProcedure creates a stored procedure from inline text or a file
type CreateProcedure struct {
	CatalogName             string
	DBMS                    string
	Encoding                string
	Path                    string
	ProcedureName           string
	ProcedureText           string
	RelativeToChangelogFile *bool
	ReplaceIfExists         *bool
	SchemaName              string
}

// DropProcedure drops a stored procedure
type DropProcedure struct {
	CatalogName   string
	ProcedureName string
	SchemaName    string
}

// CreateSequence creates a sequence
type CreateSequence struct {
	CacheSize    *int64
	CatalogName  string
	Cycle        *bool
	DataType     string
	IncrementBy  *int64
	MaxValue     *int64
	MinValue     *int64
	Ordered      *bool
	SchemaName   string
	SequenceName string
	StartValue   *int64
}

// DropSequence drops a sequence
type DropSequence struct {
	CatalogName  string
	SchemaName   string
	SequenceName string
}

// RenameSequence renames a sequence
type RenameSequence struct {
	CatalogName     string
	NewSequenceName string
	OldSequenceName string
	SchemaName      string
}

// AlterSequence changes the properties of a sequence
type AlterSequence struct {
	CacheSize    *int64
	CatalogName  string
	Cycle        *bool
	DataType     string
	IncrementBy  *int64
	MaxValue     *int64
	MinValue     *int64
	Ordered      *bool
	SchemaName   string
	SequenceName string
}

// Constraints

// AddDefaultValue sets the default value of a column
type AddDefaultValue struct {
	CatalogName                string
	ColumnDataType             string
	ColumnName                 string
	DefaultValue               string
	DefaultValueBoolean        *bool
	DefaultValueComputed       string
	DefaultValueConstraintName string
	DefaultValueDate           string
	DefaultValueNumeric        string
	DefaultValueSequenceNext   string
	SchemaName                 string
	TableName                  string
}

// DropDefaultValue removes the default value of a column
type DropDefaultValue struct {
	CatalogName    string
	ColumnDataType string
	ColumnName     string
	SchemaName     string
	TableName      string
}

// AddForeignKeyConstraint adds a foreign key between two tables
type AddForeignKeyConstraint struct {
	BaseColumnNames            string
	BaseTableCatalogName       string
	BaseTableName              string
	BaseTableSchemaName        string
	ConstraintName             string
	Deferrable                 *bool
	InitiallyDeferred          *bool
	OnDelete                   string
	OnUpdate                   string
	ReferencedColumnNames      string
	ReferencedTableCatalogName string
	ReferencedTableName        string
	ReferencedTableSchemaName  string
	Validate                   *bool
	// Deprecated: kept so that old changelogs still load.
	ReferencesUniqueColumn *bool
}

// DropForeignKeyConstraint drops a foreign key
type DropForeignKeyConstraint struct {
	BaseTableCatalogName string
	BaseTableName        string
	BaseTableSchemaName  string
	ConstraintName       string
}

// DropAllForeignKeyConstraints drops every foreign key declared on a table
type DropAllForeignKeyConstraints struct {
	BaseTableCatalogName string
	BaseTableName        string
	BaseTableSchemaName  string
}

// AddNotNullConstraint makes a column NOT NULL, optionally filling existing nulls
type AddNotNullConstraint struct {
	CatalogName      string
	ColumnDataType   string
	ColumnName       string
	ConstraintName   string
	DefaultNullValue string
	SchemaName       string
	TableName        string
	Validate         *bool
}

// DropNotNullConstraint makes a column nullable
type DropNotNullConstraint struct {
	CatalogName    string
	ColumnDataType string
	ColumnName     string
	ConstraintName string
	SchemaName     string
	TableName      string
}

// AddPrimaryKey adds a primary key over a comma separated column list
type AddPrimaryKey struct {
	CatalogName         string
	Clustered           *bool
	ColumnNames         string
	ConstraintName      string
	ForIndexCatalogName string
	ForIndexName        string
	ForIndexSchemaName  string
	SchemaName          string
	TableName           string
	Tablespace          string
	Validate            *bool
}

// DropPrimaryKey drops the primary key of a table
type DropPrimaryKey struct {
	CatalogName    string
	ConstraintName string
	DropIndex      *bool
	SchemaName     string
	TableName      string
}

// AddUniqueConstraint adds a unique constraint over a comma separated column list
type AddUniqueConstraint struct {
	CatalogName         string
	Clustered           *bool
	ColumnNames         string
	ConstraintName      string
	Deferrable          *bool
	Disabled            *bool
	ForIndexCatalogName string
	ForIndexName        string
	ForIndexSchemaName  string
	InitiallyDeferred   *bool
	SchemaName          string
	TableName           string
	Tablespace          string
	Validate            *bool
}

// DropUniqueConstraint drops a unique constraint
type DropUniqueConstraint struct {
	CatalogName    string
	ConstraintName string
	SchemaName     string
	TableName      string
	UniqueColumns  string
}

// Data

// AddLookupTable moves the distinct values of a column into a new table
type AddLookupTable struct {
	ConstraintName           string
	ExistingColumnName       string
	ExistingTableCatalogName string
	ExistingTableName        string
	ExistingTableSchemaName  string
	NewColumnDataType        string
	NewColumnName            string
	NewTableCatalogName      string
	NewTableName             string
	NewTableSchemaName       string
}

// Delete deletes the rows matching its where clause
type Delete struct {
	CatalogName string
	SchemaName  string
	TableName   string
	Where       string
	WhereParams []Param
}

// Insert inserts one row built from the column values of its block
type Insert struct {
	CatalogName string
	DBMS        string
	SchemaName  string
	TableName   string
	Columns     []Column
}

// LoadData loads rows from a CSV file
type LoadData struct {
	CatalogName             string
	CommentLineStartsWith   string
	Encoding                string
	File                    string
	Quotchar                string
	RelativeToChangelogFile *bool
	SchemaName              string
	Separator               string
	TableName               string
	UsePreparedStatements   *bool
	Columns                 []LoadDataColumn
}

// LoadUpdateData upserts rows from a CSV file keyed by PrimaryKey
type LoadUpdateData struct {
	CatalogName             string
	CommentLineStartsWith   string
	Encoding                string
	File                    string
	OnlyUpdate              *bool
	PrimaryKey              string
	Quotchar                string
	RelativeToChangelogFile *bool
	SchemaName              string
	Separator               string
	TableName               string
	UsePreparedStatements   *bool
	Columns                 []LoadDataColumn
}

// MergeColumns concatenates two columns into one
type MergeColumns struct {
	CatalogName     string
	Column1Name     string
	Column2Name     string
	FinalColumnName string
	FinalColumnType string
	JoinString      string
	SchemaName      string
	TableName       string
}

// Update sets the column values of its block on the rows matching its where clause
type Update struct {
	CatalogName string
	SchemaName  string
	TableName   string
	Columns     []Column
	Where       string
	WhereParams []Param
}

// Miscellaneous

// CustomChange runs user supplied logic.
// Class names a factory registered with custom.Register; Task carries an inline
// implementation and cannot be serialized.
type CustomChange struct {
	Class  string
	Params []Param
	task   custom.Task
}

// Task resolves the custom task, either the inline one or the registered class
func (c *CustomChange) Task() (custom.Task, error) {
	if c.task != nil {
		return c.task, nil
	}
	params := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		params[p.Name] = p.Value
	}
	return custom.Resolve(c.Class, params)
}

// Inline reports whether the change carries an inline task
func (c *CustomChange) Inline() bool {
	return c.task != nil
}

// ExecuteCommand runs an executable with the arguments of its block
type ExecuteCommand struct {
	Executable string
	OS         string
	Timeout    string
	Args       []string
}

// Output writes a message to a target (STDOUT, STDERR, FATAL, WARN, INFO, DEBUG)
type Output struct {
	Message string
	Target  string
}

// RawSQL executes SQL text
type RawSQL struct {
	DBMS            string
	EndDelimiter    string
	SplitStatements *bool
	StripComments   *bool
	SQL             string
	Comment         string
}

// SQLFile executes the statements of a SQL file
type SQLFile struct {
	DBMS                    string
	Encoding                string
	EndDelimiter            string
	Path                    string
	RelativeToChangelogFile *bool
	SplitStatements         *bool
	StripComments           *bool
}

// Stop halts the update with an optional message
type Stop struct {
	Message string
}

// TagDatabase tags the current database state for later rollback
type TagDatabase struct {
	Tag string
}

// Empty does nothing. It is useful as an explicit no-op rollback.
type Empty struct{}

func (*CreateTable) Kind() Kind                  { return KindCreateTable }
func (*DropTable) Kind() Kind                    { return KindDropTable }
func (*SetTableRemarks) Kind() Kind              { return KindSetTableRemarks }
func (*RenameTable) Kind() Kind                  { return KindRenameTable }
func (*AddColumn) Kind() Kind                    { return KindAddColumn }
func (*DropColumn) Kind() Kind                   { return KindDropColumn }
func (*RenameColumn) Kind() Kind                 { return KindRenameColumn }
func (*ModifyDataType) Kind() Kind               { return KindModifyDataType }
func (*SetColumnRemarks) Kind() Kind             { return KindSetColumnRemarks }
func (*AddAutoIncrement) Kind() Kind             { return KindAddAutoIncrement }
func (*CreateIndex) Kind() Kind                  { return KindCreateIndex }
func (*DropIndex) Kind() Kind                    { return KindDropIndex }
func (*CreateView) Kind() Kind                   { return KindCreateView }
func (*DropView) Kind() Kind                     { return KindDropView }
func (*RenameView) Kind() Kind                   { return KindRenameView }
func (*CreateProcedure) Kind() Kind              { return KindCreateProcedure }
func (*DropProcedure) Kind() Kind                { return KindDropProcedure }
func (*CreateSequence) Kind() Kind               { return KindCreateSequence }
func (*DropSequence) Kind() Kind                 { return KindDropSequence }
func (*RenameSequence) Kind() Kind               { return KindRenameSequence }
func (*AlterSequence) Kind() Kind                { return KindAlterSequence }
func (*AddDefaultValue) Kind() Kind              { return KindAddDefaultValue }
func (*DropDefaultValue) Kind() Kind             { return KindDropDefaultValue }
func (*AddForeignKeyConstraint) Kind() Kind      { return KindAddForeignKeyConstraint }
func (*DropForeignKeyConstraint) Kind() Kind     { return KindDropForeignKeyConstraint }
func (*DropAllForeignKeyConstraints) Kind() Kind { return KindDropAllForeignKeyConstraints }
func (*AddNotNullConstraint) Kind() Kind         { return KindAddNotNullConstraint }
func (*DropNotNullConstraint) Kind() Kind        { return KindDropNotNullConstraint }
func (*AddPrimaryKey) Kind() Kind                { return KindAddPrimaryKey }
func (*DropPrimaryKey) Kind() Kind               { return KindDropPrimaryKey }
func (*AddUniqueConstraint) Kind() Kind          { return KindAddUniqueConstraint }
func (*DropUniqueConstraint) Kind() Kind         { return KindDropUniqueConstraint }
func (*AddLookupTable) Kind() Kind               { return KindAddLookupTable }
func (*Delete) Kind() Kind                       { return KindDelete }
func (*Insert) Kind() Kind                       { return KindInsert }
func (*LoadData) Kind() Kind                     { return KindLoadData }
func (*LoadUpdateData) Kind() Kind               { return KindLoadUpdateData }
func (*MergeColumns) Kind() Kind                 { return KindMergeColumns }
func (*Update) Kind() Kind                       { return KindUpdate }
func (*CustomChange) Kind() Kind                 { return KindCustomChange }
func (*ExecuteCommand) Kind() Kind               { return KindExecuteCommand }
func (*Output) Kind() Kind                       { return KindOutput }
func (*RawSQL) Kind() Kind                       { return KindRawSQL }
func (*SQLFile) Kind() Kind                      { return KindSQLFile }
func (*Stop) Kind() Kind                         { return KindStop }
func (*TagDatabase) Kind() Kind                  { return KindTagDatabase }
func (*Empty) Kind() Kind                        { return KindEmpty }

func (*CreateTable) change()                  {}
func (*DropTable) change()                    {}
func (*SetTableRemarks) change()              {}
func (*RenameTable) change()                  {}
func (*AddColumn) change()                    {}
func (*DropColumn) change()                   {}
func (*RenameColumn) change()                 {}
func (*ModifyDataType) change()               {}
func (*SetColumnRemarks) change()             {}
func (*AddAutoIncrement) change()             {}
func (*CreateIndex) change()                  {}
func (*DropIndex) change()                    {}
func (*CreateView) change()                   {}
func (*DropView) change()                     {}
func (*RenameView) change()                   {}
func (*CreateProcedure) change()              {}
func (*DropProcedure) change()                {}
func (*CreateSequence) change()               {}
func (*DropSequence) change()                 {}
func (*RenameSequence) change()               {}
func (*AlterSequence) change()                {}
func (*AddDefaultValue) change()              {}
func (*DropDefaultValue) change()             {}
func (*AddForeignKeyConstraint) change()      {}
func (*DropForeignKeyConstraint) change()     {}
func (*DropAllForeignKeyConstraints) change() {}
func (*AddNotNullConstraint) change()         {}
func (*DropNotNullConstraint) change()        {}
func (*AddPrimaryKey) change()                {}
func (*DropPrimaryKey) change()               {}
func (*AddUniqueConstraint) change()          {}
func (*DropUniqueConstraint) change()         {}
func (*AddLookupTable) change()               {}
func (*Delete) change()                       {}
func (*Insert) change()                       {}
func (*LoadData) change()                     {}
func (*LoadUpdateData) change()               {}
func (*MergeColumns) change()                 {}
func (*Update) change()                       {}
func (*CustomChange) change()                 {}
func (*ExecuteCommand) change()               {}
func (*Output) change()                       {}
func (*RawSQL) change()                       {}
func (*SQLFile) change()                      {}
func (*Stop) change()                         {}
func (*TagDatabase) change()                  {}
func (*Empty) change()                        {}
