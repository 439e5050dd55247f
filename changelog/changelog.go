// Package changelog is a declarative DSL for database changelogs.
//
// A changelog is written as Go code:
//
//	var Employees = changelog.Define("db/employees.go", func(b *changelog.Builder) {
//		b.ChangeSet(changelog.ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *changelog.ChangeSetBuilder) {
//			cs.CreateTable(changelog.CreateTable{TableName: "employee"}, func(t *changelog.ColumnsBuilder) {
//				t.Column(changelog.Column{Name: "id", Type: "UUID"})
//			})
//		})
//	})
//
// and turned into a ChangeLog with Build.
package changelog

import "fmt"

// ImportPath is the import path of this package, used by generated changelogs
const ImportPath = "github.com/koba/db-changelog/changelog"

// ChangeLog is an ordered list of changesets
type ChangeLog struct {
	FilePath   string
	Properties map[string]string
	ChangeSets []*ChangeSet
}

// Find returns the changeset with the given identity
func (l *ChangeLog) Find(id, author, filePath string) (*ChangeSet, bool) {
	for _, cs := range l.ChangeSets {
		if cs.ID == id && cs.Author == author && cs.FilePath == filePath {
			return cs, true
		}
	}
	return nil, false
}

// ChangeSetArgs are the attributes of a changeset
type ChangeSetArgs struct {
	ID                    string
	Author                string
	Context               string
	Labels                string
	DBMS                  string
	RunAlways             *bool
	RunOnChange           *bool
	FailOnError           *bool
	RunInTransaction      *bool
	Ignore                *bool
	Created               string
	LogicalFilePath       string
	ObjectQuotingStrategy string
	OnValidationFail      string
	RunOrder              string
}

// ChangeSet is a unit of changes applied together, with its rollback.
// FilePath is the identity path: LogicalFilePath when set, otherwise ChangeLogPath.
type ChangeSet struct {
	ChangeSetArgs
	ChangeLogPath  string
	FilePath       string
	Comments       string
	Preconditions  *Preconditions
	Changes        []Change
	Rollback       []Change
	SQLVisitors    []SQLVisitor
	ValidCheckSums []string
}

// Key returns the identity of the changeset in path::id::author form
func (cs *ChangeSet) Key() string {
	return fmt.Sprintf("%s::%s::%s", cs.FilePath, cs.ID, cs.Author)
}
