package changelog

import "fmt"

// Field is one named parameter of a schema, bound to the value it was requested for.
// Ptr is a *string, **bool or **int64 pointing into that value.
type Field struct {
	Name     string
	Ptr      any
	Required bool
	// Strict fields fail on unresolved placeholders, the rest keep them verbatim.
	Strict  bool
	Enum    []string
	Default string
}

func str(name string, p *string) Field  { return Field{Name: name, Ptr: p} }
func flag(name string, p **bool) Field  { return Field{Name: name, Ptr: p} }
func num(name string, p **int64) Field  { return Field{Name: name, Ptr: p} }
func (f Field) required() Field         { f.Required = true; return f }
func (f Field) strict() Field           { f.Strict = true; return f }
func (f Field) def(value string) Field  { f.Default = value; return f }
func (f Field) oneOf(v ...string) Field { f.Enum = v; return f }

// IsDefault reports whether the bound value equals the field default
func (f Field) IsDefault() bool {
	switch p := f.Ptr.(type) {
	case *string:
		return *p == "" || *p == f.Default
	case **bool:
		return *p == nil
	case **int64:
		return *p == nil
	default:
		return false
	}
}

// Schema is the ordered parameter list of a struct used in the DSL
type Schema struct {
	Name  string
	New   func() any
	bind  func(v any) []Field
	order []string
}

// Fields returns the fields of the schema bound to v, in declared order
func (s *Schema) Fields(v any) []Field {
	return s.bind(v)
}

// Field returns the named field of v
func (s *Schema) Field(v any, name string) (Field, bool) {
	for _, f := range s.bind(v) {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in declared order
func (s *Schema) Names() []string {
	return s.order
}

func schemaOf[T any](name string, fields func(*T) []Field) *Schema {
	s := &Schema{
		Name: name,
		New:  func() any { return new(T) },
		bind: func(v any) []Field { return fields(v.(*T)) },
	}
	for _, f := range fields(new(T)) {
		s.order = append(s.order, f.Name)
	}
	return s
}

// Block is the kind of nested block a change method takes
type Block int

const (
	NoBlock Block = iota
	ColumnsBlock
	LoadDataColumnsBlock
	ModifyDataBlock
	ArgsBlock
	ParamsBlock
)

// KindSpec describes one change kind
type KindSpec struct {
	*Schema
	Kind Kind
	// Method is the ChangeSetBuilder method that adds the kind.
	Method string
	Block  Block
	// OptionalBlock methods take the block as a variadic argument.
	OptionalBlock bool
	// NeedsColumns kinds must carry at least one column.
	NeedsColumns bool
}

// NewChange returns a zero value of the kind
func (k *KindSpec) NewChange() Change {
	return k.New().(Change)
}

type kindOption func(*KindSpec)

func withBlock(b Block) kindOption      { return func(k *KindSpec) { k.Block = b } }
func optionalBlock(b Block) kindOption  { return func(k *KindSpec) { k.Block = b; k.OptionalBlock = true } }
func needsColumns() kindOption          { return func(k *KindSpec) { k.NeedsColumns = true } }
func withMethod(name string) kindOption { return func(k *KindSpec) { k.Method = name } }

func kind[T any](k Kind, name string, fields func(*T) []Field, opts ...kindOption) *KindSpec {
	spec := &KindSpec{Schema: schemaOf(name, fields), Kind: k, Method: name}
	for _, opt := range opts {
		opt(spec)
	}
	if _, ok := spec.New().(Change); !ok {
		panic(fmt.Sprintf("changelog: %s does not implement Change", name))
	}
	return spec
}

var (
	kinds    []*KindSpec
	byKind   = map[Kind]*KindSpec{}
	byName   = map[string]*KindSpec{}
	byMethod = map[string]*KindSpec{}
	structs  = map[string]*Schema{}
)

// Lookup returns the spec of a kind
func Lookup(k Kind) (*KindSpec, bool) {
	spec, ok := byKind[k]
	return spec, ok
}

// LookupName returns the spec of a kind by its type name
func LookupName(name string) (*KindSpec, bool) {
	spec, ok := byName[name]
	return spec, ok
}

// LookupMethod returns the spec of a kind by its builder method name
func LookupMethod(method string) (*KindSpec, bool) {
	spec, ok := byMethod[method]
	return spec, ok
}

// Kinds returns every kind spec in declaration order
func Kinds() []*KindSpec {
	return append([]*KindSpec(nil), kinds...)
}

// StructSchema returns the schema of a non-change struct such as Column or ChangeSetArgs
func StructSchema(name string) (*Schema, bool) {
	s, ok := structs[name]
	return s, ok
}

var (
	columnSchema = schemaOf("Column", func(c *Column) []Field {
		return []Field{
			str("Name", &c.Name).required(),
			str("Type", &c.Type),
			flag("Computed", &c.Computed),
			flag("Descending", &c.Descending),
			str("Encoding", &c.Encoding),
			str("Remarks", &c.Remarks),
			flag("AutoIncrement", &c.AutoIncrement),
			num("StartWith", &c.StartWith),
			num("IncrementBy", &c.IncrementBy),
			str("GenerationType", &c.GenerationType),
			flag("DefaultOnNull", &c.DefaultOnNull),
			str("Value", &c.Value),
			flag("ValueBoolean", &c.ValueBoolean),
			str("ValueNumeric", &c.ValueNumeric),
			str("ValueDate", &c.ValueDate),
			str("ValueComputed", &c.ValueComputed),
			str("ValueSequenceNext", &c.ValueSequenceNext),
			str("ValueBlobFile", &c.ValueBlobFile),
			str("ValueClobFile", &c.ValueClobFile),
			str("DefaultValue", &c.DefaultValue),
			flag("DefaultValueBoolean", &c.DefaultValueBoolean),
			str("DefaultValueNumeric", &c.DefaultValueNumeric),
			str("DefaultValueDate", &c.DefaultValueDate),
			str("DefaultValueComputed", &c.DefaultValueComputed),
			str("DefaultValueSequenceNext", &c.DefaultValueSequenceNext),
			str("DefaultValueConstraintName", &c.DefaultValueConstraintName),
			str("AfterColumn", &c.AfterColumn),
			str("BeforeColumn", &c.BeforeColumn),
			num("Position", &c.Position),
		}
	})

	constraintsSchema = schemaOf("Constraints", func(c *Constraints) []Field {
		return []Field{
			flag("Nullable", &c.Nullable),
			str("NotNullConstraintName", &c.NotNullConstraintName),
			flag("PrimaryKey", &c.PrimaryKey),
			str("PrimaryKeyName", &c.PrimaryKeyName),
			str("PrimaryKeyTablespace", &c.PrimaryKeyTablespace),
			flag("Unique", &c.Unique),
			str("UniqueConstraintName", &c.UniqueConstraintName),
			str("References", &c.References),
			str("ReferencedTableName", &c.ReferencedTableName),
			str("ReferencedColumnNames", &c.ReferencedColumnNames),
			str("ForeignKeyName", &c.ForeignKeyName),
			flag("DeleteCascade", &c.DeleteCascade),
			flag("Deferrable", &c.Deferrable),
			flag("InitiallyDeferred", &c.InitiallyDeferred),
			str("CheckConstraint", &c.CheckConstraint),
			flag("ValidateNullable", &c.ValidateNullable),
			flag("ValidateUnique", &c.ValidateUnique),
			flag("ValidatePrimaryKey", &c.ValidatePrimaryKey),
			flag("ValidateForeignKey", &c.ValidateForeignKey),
		}
	})

	loadDataColumnSchema = schemaOf("LoadDataColumn", func(c *LoadDataColumn) []Field {
		return []Field{
			str("Name", &c.Name),
			str("Type", &c.Type).required(),
			str("Header", &c.Header),
			num("Index", &c.Index),
			flag("AllowUpdate", &c.AllowUpdate),
			str("DefaultValue", &c.DefaultValue),
			flag("DefaultValueBoolean", &c.DefaultValueBoolean),
			str("DefaultValueNumeric", &c.DefaultValueNumeric),
			str("DefaultValueDate", &c.DefaultValueDate),
			str("DefaultValueComputed", &c.DefaultValueComputed),
			str("Remarks", &c.Remarks),
		}
	})

	paramSchema = schemaOf("Param", func(p *Param) []Field {
		return []Field{
			str("Name", &p.Name).required(),
			str("Value", &p.Value),
		}
	})

	changeSetArgsSchema = schemaOf("ChangeSetArgs", func(a *ChangeSetArgs) []Field {
		return []Field{
			str("ID", &a.ID).required(),
			str("Author", &a.Author).required(),
			str("Context", &a.Context),
			str("Labels", &a.Labels),
			str("DBMS", &a.DBMS),
			flag("RunAlways", &a.RunAlways),
			flag("RunOnChange", &a.RunOnChange),
			flag("FailOnError", &a.FailOnError),
			flag("RunInTransaction", &a.RunInTransaction),
			flag("Ignore", &a.Ignore),
			str("Created", &a.Created),
			str("LogicalFilePath", &a.LogicalFilePath),
			str("ObjectQuotingStrategy", &a.ObjectQuotingStrategy).oneOf("LEGACY", "QUOTE_ALL_OBJECTS", "QUOTE_ONLY_RESERVED_WORDS"),
			str("OnValidationFail", &a.OnValidationFail).oneOf("HALT", "MARK_RAN"),
			str("RunOrder", &a.RunOrder).oneOf("first", "last"),
		}
	})

	preConditionArgsSchema = schemaOf("PreConditionArgs", func(a *PreConditionArgs) []Field {
		policies := []string{"CONTINUE", "HALT", "MARK_RAN", "WARN"}
		return []Field{
			str("OnFail", &a.OnFail).oneOf(policies...),
			str("OnError", &a.OnError).oneOf(policies...),
			str("OnFailMessage", &a.OnFailMessage).strict(),
			str("OnErrorMessage", &a.OnErrorMessage).strict(),
			str("OnSqlOutput", &a.OnSqlOutput).oneOf("FAIL", "IGNORE", "TEST"),
		}
	})

	modifySqlArgsSchema = schemaOf("ModifySqlArgs", func(a *ModifySqlArgs) []Field {
		return []Field{
			str("DBMS", &a.DBMS),
			str("Context", &a.Context),
			str("Labels", &a.Labels),
			flag("ApplyToRollback", &a.ApplyToRollback),
		}
	})
)

var fkActions = []string{"CASCADE", "SET NULL", "SET DEFAULT", "RESTRICT", "NO ACTION"}

func init() {
	for _, s := range []*Schema{
		columnSchema, constraintsSchema, loadDataColumnSchema, paramSchema,
		changeSetArgsSchema, preConditionArgsSchema, modifySqlArgsSchema,
	} {
		structs[s.Name] = s
	}

	register(
		// entities
		kind(KindCreateTable, "CreateTable", func(c *CreateTable) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				flag("IfNotExists", &c.IfNotExists),
				str("Remarks", &c.Remarks),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("Tablespace", &c.Tablespace),
			}
		}, withBlock(ColumnsBlock), needsColumns()),
		kind(KindDropTable, "DropTable", func(c *DropTable) []Field {
			return []Field{
				flag("CascadeConstraints", &c.CascadeConstraints),
				str("CatalogName", &c.CatalogName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindSetTableRemarks, "SetTableRemarks", func(c *SetTableRemarks) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("Remarks", &c.Remarks),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindRenameTable, "RenameTable", func(c *RenameTable) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("NewTableName", &c.NewTableName).required(),
				str("OldTableName", &c.OldTableName).required(),
				str("SchemaName", &c.SchemaName),
			}
		}),
		kind(KindAddColumn, "AddColumn", func(c *AddColumn) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}, withBlock(ColumnsBlock), needsColumns()),
		kind(KindDropColumn, "DropColumn", func(c *DropColumn) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnName", &c.ColumnName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}, optionalBlock(ColumnsBlock)),
		kind(KindRenameColumn, "RenameColumn", func(c *RenameColumn) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnDataType", &c.ColumnDataType),
				str("NewColumnName", &c.NewColumnName).required(),
				str("OldColumnName", &c.OldColumnName).required(),
				str("Remarks", &c.Remarks),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindModifyDataType, "ModifyDataType", func(c *ModifyDataType) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnName", &c.ColumnName).required(),
				str("NewDataType", &c.NewDataType).required(),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindSetColumnRemarks, "SetColumnRemarks", func(c *SetColumnRemarks) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnName", &c.ColumnName).required(),
				str("Remarks", &c.Remarks),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("ColumnDataType", &c.ColumnDataType),
				str("ColumnParentType", &c.ColumnParentType),
			}
		}),
		kind(KindAddAutoIncrement, "AddAutoIncrement", func(c *AddAutoIncrement) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnDataType", &c.ColumnDataType),
				str("ColumnName", &c.ColumnName).required(),
				flag("DefaultOnNull", &c.DefaultOnNull),
				str("GenerationType", &c.GenerationType),
				num("IncrementBy", &c.IncrementBy),
				str("SchemaName", &c.SchemaName),
				num("StartWith", &c.StartWith),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindCreateIndex, "CreateIndex", func(c *CreateIndex) []Field {
			return []Field{
				str("AssociatedWith", &c.AssociatedWith),
				str("CatalogName", &c.CatalogName),
				flag("Clustered", &c.Clustered),
				str("IndexName", &c.IndexName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("Tablespace", &c.Tablespace),
				flag("Unique", &c.Unique),
			}
		}, withBlock(ColumnsBlock), needsColumns()),
		kind(KindDropIndex, "DropIndex", func(c *DropIndex) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("IndexName", &c.IndexName).required(),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName),
			}
		}),
		kind(KindCreateView, "CreateView", func(c *CreateView) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("Encoding", &c.Encoding),
				flag("FullDefinition", &c.FullDefinition),
				str("Path", &c.Path),
				flag("RelativeToChangelogFile", &c.RelativeToChangelogFile),
				str("Remarks", &c.Remarks),
				flag("ReplaceIfExists", &c.ReplaceIfExists),
				str("SchemaName", &c.SchemaName),
				str("SelectQuery", &c.SelectQuery).strict(),
				str("ViewName", &c.ViewName).required(),
			}
		}),
		kind(KindDropView, "DropView", func(c *DropView) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				flag("IfExists", &c.IfExists),
				str("SchemaName", &c.SchemaName),
				str("ViewName", &c.ViewName).required(),
			}
		}),
		kind(KindRenameView, "RenameView", func(c *RenameView) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("NewViewName", &c.NewViewName).required(),
				str("OldViewName", &c.OldViewName).required(),
				str("SchemaName", &c.SchemaName),
			}
		}),
		kind(KindCreateProcedure, "CreateProcedure", func(c *CreateProcedure) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("DBMS", &c.DBMS),
				str("Encoding", &c.Encoding),
				str("Path", &c.Path),
				str("ProcedureName", &c.ProcedureName),
				str("ProcedureText", &c.ProcedureText).strict(),
				flag("RelativeToChangelogFile", &c.RelativeToChangelogFile),
				flag("ReplaceIfExists", &c.ReplaceIfExists),
				str("SchemaName", &c.SchemaName),
			}
		}),
		kind(KindDropProcedure, "DropProcedure", func(c *DropProcedure) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ProcedureName", &c.ProcedureName).required(),
				str("SchemaName", &c.SchemaName),
			}
		}),
		kind(KindCreateSequence, "CreateSequence", func(c *CreateSequence) []Field {
			return []Field{
				num("CacheSize", &c.CacheSize),
				str("CatalogName", &c.CatalogName),
				flag("Cycle", &c.Cycle),
				str("DataType", &c.DataType),
				num("IncrementBy", &c.IncrementBy),
				num("MaxValue", &c.MaxValue),
				num("MinValue", &c.MinValue),
				flag("Ordered", &c.Ordered),
				str("SchemaName", &c.SchemaName),
				str("SequenceName", &c.SequenceName).required(),
				num("StartValue", &c.StartValue),
			}
		}),
		kind(KindDropSequence, "DropSequence", func(c *DropSequence) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("SchemaName", &c.SchemaName),
				str("SequenceName", &c.SequenceName).required(),
			}
		}),
		kind(KindRenameSequence, "RenameSequence", func(c *RenameSequence) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("NewSequenceName", &c.NewSequenceName).required(),
				str("OldSequenceName", &c.OldSequenceName).required(),
				str("SchemaName", &c.SchemaName),
			}
		}),
		kind(KindAlterSequence, "AlterSequence", func(c *AlterSequence) []Field {
			return []Field{
				num("CacheSize", &c.CacheSize),
				str("CatalogName", &c.CatalogName),
				flag("Cycle", &c.Cycle),
				str("DataType", &c.DataType),
				num("IncrementBy", &c.IncrementBy),
				num("MaxValue", &c.MaxValue),
				num("MinValue", &c.MinValue),
				flag("Ordered", &c.Ordered),
				str("SchemaName", &c.SchemaName),
				str("SequenceName", &c.SequenceName).required(),
			}
		}),

		// constraints
		kind(KindAddDefaultValue, "AddDefaultValue", func(c *AddDefaultValue) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnDataType", &c.ColumnDataType),
				str("ColumnName", &c.ColumnName).required(),
				str("DefaultValue", &c.DefaultValue),
				flag("DefaultValueBoolean", &c.DefaultValueBoolean),
				str("DefaultValueComputed", &c.DefaultValueComputed),
				str("DefaultValueConstraintName", &c.DefaultValueConstraintName),
				str("DefaultValueDate", &c.DefaultValueDate),
				str("DefaultValueNumeric", &c.DefaultValueNumeric),
				str("DefaultValueSequenceNext", &c.DefaultValueSequenceNext),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindDropDefaultValue, "DropDefaultValue", func(c *DropDefaultValue) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnDataType", &c.ColumnDataType),
				str("ColumnName", &c.ColumnName).required(),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindAddForeignKeyConstraint, "AddForeignKeyConstraint", func(c *AddForeignKeyConstraint) []Field {
			return []Field{
				str("BaseColumnNames", &c.BaseColumnNames).required(),
				str("BaseTableCatalogName", &c.BaseTableCatalogName),
				str("BaseTableName", &c.BaseTableName).required(),
				str("BaseTableSchemaName", &c.BaseTableSchemaName),
				str("ConstraintName", &c.ConstraintName).required(),
				flag("Deferrable", &c.Deferrable),
				flag("InitiallyDeferred", &c.InitiallyDeferred),
				str("OnDelete", &c.OnDelete).oneOf(fkActions...),
				str("OnUpdate", &c.OnUpdate).oneOf(fkActions...),
				str("ReferencedColumnNames", &c.ReferencedColumnNames).required(),
				str("ReferencedTableCatalogName", &c.ReferencedTableCatalogName),
				str("ReferencedTableName", &c.ReferencedTableName).required(),
				str("ReferencedTableSchemaName", &c.ReferencedTableSchemaName),
				flag("Validate", &c.Validate),
				flag("ReferencesUniqueColumn", &c.ReferencesUniqueColumn),
			}
		}),
		kind(KindDropForeignKeyConstraint, "DropForeignKeyConstraint", func(c *DropForeignKeyConstraint) []Field {
			return []Field{
				str("BaseTableCatalogName", &c.BaseTableCatalogName),
				str("BaseTableName", &c.BaseTableName).required(),
				str("BaseTableSchemaName", &c.BaseTableSchemaName),
				str("ConstraintName", &c.ConstraintName).required(),
			}
		}),
		kind(KindDropAllForeignKeyConstraints, "DropAllForeignKeyConstraints", func(c *DropAllForeignKeyConstraints) []Field {
			return []Field{
				str("BaseTableCatalogName", &c.BaseTableCatalogName),
				str("BaseTableName", &c.BaseTableName).required(),
				str("BaseTableSchemaName", &c.BaseTableSchemaName),
			}
		}),
		kind(KindAddNotNullConstraint, "AddNotNullConstraint", func(c *AddNotNullConstraint) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnDataType", &c.ColumnDataType),
				str("ColumnName", &c.ColumnName).required(),
				str("ConstraintName", &c.ConstraintName),
				str("DefaultNullValue", &c.DefaultNullValue),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				flag("Validate", &c.Validate),
			}
		}),
		kind(KindDropNotNullConstraint, "DropNotNullConstraint", func(c *DropNotNullConstraint) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ColumnDataType", &c.ColumnDataType),
				str("ColumnName", &c.ColumnName).required(),
				str("ConstraintName", &c.ConstraintName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindAddPrimaryKey, "AddPrimaryKey", func(c *AddPrimaryKey) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				flag("Clustered", &c.Clustered),
				str("ColumnNames", &c.ColumnNames).required(),
				str("ConstraintName", &c.ConstraintName),
				str("ForIndexCatalogName", &c.ForIndexCatalogName),
				str("ForIndexName", &c.ForIndexName),
				str("ForIndexSchemaName", &c.ForIndexSchemaName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("Tablespace", &c.Tablespace),
				flag("Validate", &c.Validate),
			}
		}),
		kind(KindDropPrimaryKey, "DropPrimaryKey", func(c *DropPrimaryKey) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ConstraintName", &c.ConstraintName),
				flag("DropIndex", &c.DropIndex),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindAddUniqueConstraint, "AddUniqueConstraint", func(c *AddUniqueConstraint) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				flag("Clustered", &c.Clustered),
				str("ColumnNames", &c.ColumnNames).required(),
				str("ConstraintName", &c.ConstraintName),
				flag("Deferrable", &c.Deferrable),
				flag("Disabled", &c.Disabled),
				str("ForIndexCatalogName", &c.ForIndexCatalogName),
				str("ForIndexName", &c.ForIndexName),
				str("ForIndexSchemaName", &c.ForIndexSchemaName),
				flag("InitiallyDeferred", &c.InitiallyDeferred),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("Tablespace", &c.Tablespace),
				flag("Validate", &c.Validate),
			}
		}),
		kind(KindDropUniqueConstraint, "DropUniqueConstraint", func(c *DropUniqueConstraint) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("ConstraintName", &c.ConstraintName).required(),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("UniqueColumns", &c.UniqueColumns),
			}
		}),

		// data
		kind(KindAddLookupTable, "AddLookupTable", func(c *AddLookupTable) []Field {
			return []Field{
				str("ConstraintName", &c.ConstraintName),
				str("ExistingColumnName", &c.ExistingColumnName).required(),
				str("ExistingTableCatalogName", &c.ExistingTableCatalogName),
				str("ExistingTableName", &c.ExistingTableName).required(),
				str("ExistingTableSchemaName", &c.ExistingTableSchemaName),
				str("NewColumnDataType", &c.NewColumnDataType),
				str("NewColumnName", &c.NewColumnName).required(),
				str("NewTableCatalogName", &c.NewTableCatalogName),
				str("NewTableName", &c.NewTableName).required(),
				str("NewTableSchemaName", &c.NewTableSchemaName),
			}
		}),
		kind(KindDelete, "Delete", func(c *Delete) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("Where", &c.Where).strict(),
			}
		}, withBlock(ModifyDataBlock)),
		kind(KindInsert, "Insert", func(c *Insert) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("DBMS", &c.DBMS),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}, withBlock(ColumnsBlock)),
		kind(KindLoadData, "LoadData", func(c *LoadData) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("CommentLineStartsWith", &c.CommentLineStartsWith),
				str("Encoding", &c.Encoding),
				str("File", &c.File).required(),
				str("Quotchar", &c.Quotchar),
				flag("RelativeToChangelogFile", &c.RelativeToChangelogFile),
				str("SchemaName", &c.SchemaName),
				str("Separator", &c.Separator),
				str("TableName", &c.TableName).required(),
				flag("UsePreparedStatements", &c.UsePreparedStatements),
			}
		}, withBlock(LoadDataColumnsBlock)),
		kind(KindLoadUpdateData, "LoadUpdateData", func(c *LoadUpdateData) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("CommentLineStartsWith", &c.CommentLineStartsWith),
				str("Encoding", &c.Encoding),
				str("File", &c.File).required(),
				flag("OnlyUpdate", &c.OnlyUpdate),
				str("PrimaryKey", &c.PrimaryKey).required(),
				str("Quotchar", &c.Quotchar),
				flag("RelativeToChangelogFile", &c.RelativeToChangelogFile),
				str("SchemaName", &c.SchemaName),
				str("Separator", &c.Separator),
				str("TableName", &c.TableName).required(),
				flag("UsePreparedStatements", &c.UsePreparedStatements),
			}
		}, withBlock(LoadDataColumnsBlock)),
		kind(KindMergeColumns, "MergeColumns", func(c *MergeColumns) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("Column1Name", &c.Column1Name).required(),
				str("Column2Name", &c.Column2Name).required(),
				str("FinalColumnName", &c.FinalColumnName).required(),
				str("FinalColumnType", &c.FinalColumnType).required(),
				str("JoinString", &c.JoinString),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
			}
		}),
		kind(KindUpdate, "Update", func(c *Update) []Field {
			return []Field{
				str("CatalogName", &c.CatalogName),
				str("SchemaName", &c.SchemaName),
				str("TableName", &c.TableName).required(),
				str("Where", &c.Where).strict(),
			}
		}, withBlock(ModifyDataBlock)),

		// miscellaneous
		kind(KindCustomChange, "CustomChange", func(c *CustomChange) []Field {
			return []Field{
				str("Class", &c.Class),
			}
		}, optionalBlock(ParamsBlock)),
		kind(KindExecuteCommand, "ExecuteCommand", func(c *ExecuteCommand) []Field {
			return []Field{
				str("Executable", &c.Executable).required(),
				str("OS", &c.OS),
				str("Timeout", &c.Timeout),
			}
		}, optionalBlock(ArgsBlock)),
		kind(KindOutput, "Output", func(c *Output) []Field {
			return []Field{
				str("Message", &c.Message).strict(),
				str("Target", &c.Target).def("STDERR").oneOf("STDOUT", "STDERR", "FATAL", "WARN", "INFO", "DEBUG"),
			}
		}),
		kind(KindRawSQL, "RawSQL", func(c *RawSQL) []Field {
			return []Field{
				str("DBMS", &c.DBMS),
				str("EndDelimiter", &c.EndDelimiter),
				flag("SplitStatements", &c.SplitStatements),
				flag("StripComments", &c.StripComments),
				str("SQL", &c.SQL).required().strict(),
				str("Comment", &c.Comment).strict(),
			}
		}, withMethod("SQL")),
		kind(KindSQLFile, "SQLFile", func(c *SQLFile) []Field {
			return []Field{
				str("DBMS", &c.DBMS),
				str("Encoding", &c.Encoding),
				str("EndDelimiter", &c.EndDelimiter),
				str("Path", &c.Path).required(),
				flag("RelativeToChangelogFile", &c.RelativeToChangelogFile),
				flag("SplitStatements", &c.SplitStatements),
				flag("StripComments", &c.StripComments),
			}
		}),
		kind(KindStop, "Stop", func(c *Stop) []Field {
			return []Field{
				str("Message", &c.Message).strict(),
			}
		}),
		kind(KindTagDatabase, "TagDatabase", func(c *TagDatabase) []Field {
			return []Field{
				str("Tag", &c.Tag).required().strict(),
			}
		}),
		kind(KindEmpty, "Empty", func(*Empty) []Field { return nil }),
	)
}

func register(specs ...*KindSpec) {
	for _, spec := range specs {
		if _, dup := byKind[spec.Kind]; dup {
			panic(fmt.Sprintf("changelog: kind %d registered twice", spec.Kind))
		}
		kinds = append(kinds, spec)
		byKind[spec.Kind] = spec
		byName[spec.Name] = spec
		byMethod[spec.Method] = spec
	}
}
