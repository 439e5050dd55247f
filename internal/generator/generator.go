// Package generator turns introspected table schemas and snapshot diffs into changelogs.
package generator

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/koba/db-changelog/changelog"
	"github.com/koba/db-changelog/internal/diff"
	"github.com/koba/db-changelog/internal/schema"
)

// Generator builds changelogs. Changeset IDs have the form <millis>-<n>.
type Generator struct {
	author string
	dbType string
	now    func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithClock sets the clock used for changeset IDs
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a generator. dbType selects identifier quoting in generated where clauses.
func New(author, dbType string, opts ...Option) *Generator {
	g := &Generator{author: author, dbType: dbType, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// changeSet collects forward changes and the changes that undo them
type changeSet struct {
	changes  []changelog.Change
	rollback []changelog.Change
}

// add appends a change. Its inverse goes in front of the rollback so that
// rolling back undoes the changes in reverse order.
func (s *changeSet) add(forward changelog.Change, inverse ...changelog.Change) {
	s.changes = append(s.changes, forward)
	s.rollback = append(slices.Clone(inverse), s.rollback...)
}

func (s *changeSet) empty() bool {
	return s == nil || len(s.changes) == 0
}

// FromSchemas generates a changelog that creates the given tables. Foreign keys
// come in changesets after all tables so that referenced tables exist.
func (g *Generator) FromSchemas(filePath string, tables []*schema.TableSchema) (*changelog.ChangeLog, error) {
	tables = slices.Clone(tables)
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	var sets []*changeSet
	for _, t := range tables {
		set := &changeSet{}
		g.createTable(set, t)
		sets = append(sets, set)
	}
	for _, t := range tables {
		if set := g.addForeignKeys(t); !set.empty() {
			sets = append(sets, set)
		}
	}
	return g.build(filePath, sets)
}

// FromDiff generates a changelog that turns the old snapshot of a diff into the new one.
// Schema changes come first, then foreign keys of added tables, then data changes.
func (g *Generator) FromDiff(filePath string, result *diff.Result) (*changelog.ChangeLog, error) {
	var (
		sets []*changeSet
		fks  []*changeSet
	)
	for _, d := range result.SchemaDiffs {
		set := &changeSet{}
		switch d.Action {
		case diff.ActionAdd:
			g.createTable(set, d.NewSchema)
			if fk := g.addForeignKeys(d.NewSchema); !fk.empty() {
				fks = append(fks, fk)
			}
		case diff.ActionDrop:
			g.dropTable(set, d.OldSchema)
		case diff.ActionModify:
			g.modifyTable(set, d)
		}
		if !set.empty() {
			sets = append(sets, set)
		}
	}
	sets = append(sets, fks...)

	for _, d := range result.DataDiffs {
		if set := g.modifyData(d); !set.empty() {
			sets = append(sets, set)
		}
	}
	return g.build(filePath, sets)
}

func (g *Generator) build(filePath string, sets []*changeSet) (*changelog.ChangeLog, error) {
	stamp := g.now().UnixMilli()
	def := changelog.Define(filePath, func(b *changelog.Builder) {
		for i, set := range sets {
			args := changelog.ChangeSetArgs{ID: fmt.Sprintf("%d-%d", stamp, i+1), Author: g.author}
			b.ChangeSet(args, func(cs *changelog.ChangeSetBuilder) {
				for _, c := range set.changes {
					cs.Change(c)
				}
				if len(set.rollback) > 0 {
					cs.Rollback(func(rb *changelog.ChangeSetBuilder) {
						for _, c := range set.rollback {
							rb.Change(c)
						}
					})
				}
			})
		}
	})
	cl, err := def.Build(changelog.WithoutEvaluation())
	if err != nil {
		return nil, fmt.Errorf("failed to build changelog: %w", err)
	}
	return cl, nil
}
