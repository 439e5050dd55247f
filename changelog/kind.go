package changelog

// Kind identifies a change operation
type Kind int

const (
	KindCreateTable Kind = iota + 1
	KindDropTable
	KindSetTableRemarks
	KindRenameTable
	KindAddColumn
	KindDropColumn
	KindRenameColumn
	KindModifyDataType
	KindSetColumnRemarks
	KindAddAutoIncrement
	KindCreateIndex
	KindDropIndex
	KindCreateView
	KindDropView
	KindRenameView
	KindCreateProcedure
	KindDropProcedure
	KindCreateSequence
	KindDropSequence
	KindRenameSequence
	KindAlterSequence
	KindAddDefaultValue
	KindDropDefaultValue
	KindAddForeignKeyConstraint
	KindDropForeignKeyConstraint
	KindDropAllForeignKeyConstraints
	KindAddNotNullConstraint
	KindDropNotNullConstraint
	KindAddPrimaryKey
	KindDropPrimaryKey
	KindAddUniqueConstraint
	KindDropUniqueConstraint
	KindAddLookupTable
	KindDelete
	KindInsert
	KindLoadData
	KindLoadUpdateData
	KindMergeColumns
	KindUpdate
	KindCustomChange
	KindExecuteCommand
	KindOutput
	KindRawSQL
	KindSQLFile
	KindStop
	KindTagDatabase
	KindEmpty
)

// String returns the type name of the kind
func (k Kind) String() string {
	if spec, ok := Lookup(k); ok {
		return spec.Name
	}
	return "Kind(unknown)"
}

// Change is one typed schema or data operation.
// The set of implementations is closed; every one is listed in the registry.
type Change interface {
	Kind() Kind
	change()
}
