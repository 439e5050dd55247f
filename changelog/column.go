package changelog

import "sort"

// Column describes a column inside createTable, addColumn, createIndex, insert,
// update and dropColumn blocks
type Column struct {
	Name                 string
	Type                 string
	Computed             *bool
	Descending           *bool
	Encoding             string
	Remarks              string
	AutoIncrement        *bool
	StartWith            *int64
	IncrementBy          *int64
	GenerationType       string
	DefaultOnNull        *bool
	Value                string
	ValueBoolean         *bool
	ValueNumeric         string
	ValueDate            string
	ValueComputed        string
	ValueSequenceNext    string
	ValueBlobFile        string
	ValueClobFile        string
	DefaultValue         string
	DefaultValueBoolean  *bool
	DefaultValueNumeric  string
	DefaultValueDate     string
	DefaultValueComputed string
	// DefaultValueSequenceNext names the sequence whose next value is the default.
	DefaultValueSequenceNext   string
	DefaultValueConstraintName string
	// Placement only applies to addColumn.
	AfterColumn  string
	BeforeColumn string
	Position     *int64

	Constraints *Constraints
}

// Constraints are the inline constraints of a column
type Constraints struct {
	Nullable              *bool
	NotNullConstraintName string
	PrimaryKey            *bool
	PrimaryKeyName        string
	PrimaryKeyTablespace  string
	Unique                *bool
	UniqueConstraintName  string
	References            string
	ReferencedTableName   string
	ReferencedColumnNames string
	ForeignKeyName        string
	DeleteCascade         *bool
	Deferrable            *bool
	InitiallyDeferred     *bool
	CheckConstraint       string
	ValidateNullable      *bool
	ValidateUnique        *bool
	ValidatePrimaryKey    *bool
	ValidateForeignKey    *bool
}

// LoadDataColumn maps a CSV column onto a table column
type LoadDataColumn struct {
	Name                 string
	Type                 string
	Header               string
	Index                *int64
	AllowUpdate          *bool
	DefaultValue         string
	DefaultValueBoolean  *bool
	DefaultValueNumeric  string
	DefaultValueDate     string
	DefaultValueComputed string
	Remarks              string
}

// Param is a named string value
type Param struct {
	Name  string
	Value string
}

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v
func Int(v int64) *int64 { return &v }

func (c *Column) valueVariants() []string {
	return setVariants(map[string]bool{
		"Value":             c.Value != "",
		"ValueBoolean":      c.ValueBoolean != nil,
		"ValueNumeric":      c.ValueNumeric != "",
		"ValueDate":         c.ValueDate != "",
		"ValueComputed":     c.ValueComputed != "",
		"ValueSequenceNext": c.ValueSequenceNext != "",
		"ValueBlobFile":     c.ValueBlobFile != "",
		"ValueClobFile":     c.ValueClobFile != "",
	})
}

func (c *Column) defaultVariants() []string {
	return setVariants(map[string]bool{
		"DefaultValue":             c.DefaultValue != "",
		"DefaultValueBoolean":      c.DefaultValueBoolean != nil,
		"DefaultValueNumeric":      c.DefaultValueNumeric != "",
		"DefaultValueDate":         c.DefaultValueDate != "",
		"DefaultValueComputed":     c.DefaultValueComputed != "",
		"DefaultValueSequenceNext": c.DefaultValueSequenceNext != "",
	})
}

func (c *LoadDataColumn) defaultVariants() []string {
	return setVariants(map[string]bool{
		"DefaultValue":         c.DefaultValue != "",
		"DefaultValueBoolean":  c.DefaultValueBoolean != nil,
		"DefaultValueNumeric":  c.DefaultValueNumeric != "",
		"DefaultValueDate":     c.DefaultValueDate != "",
		"DefaultValueComputed": c.DefaultValueComputed != "",
	})
}

func setVariants(variants map[string]bool) []string {
	var set []string
	for name, ok := range variants {
		if ok {
			set = append(set, name)
		}
	}
	sort.Strings(set)
	return set
}
