package changelog

import (
	"errors"
	"fmt"
	"strings"
)

// VisitorKind is the rewrite a SQLVisitor applies
type VisitorKind string

const (
	VisitPrepend       VisitorKind = "prepend"
	VisitAppend        VisitorKind = "append"
	VisitReplace       VisitorKind = "replace"
	VisitRegExpReplace VisitorKind = "regExpReplace"
)

// ModifySqlArgs are the filters shared by the visitors of one modifySql block
type ModifySqlArgs struct {
	// DBMS is a comma separated list.
	DBMS            string
	Context         string
	Labels          string
	ApplyToRollback *bool
}

// SQLVisitor rewrites generated SQL before it runs
type SQLVisitor struct {
	Kind            VisitorKind
	Value           string
	Replace         string
	With            string
	DBMS            []string
	Context         string
	Labels          string
	ApplyToRollback *bool
}

// ModifySqlBuilder is the receiver of a modifySql block
type ModifySqlBuilder struct {
	scope    *scope
	visitors []SQLVisitor
}

// Prepend adds text before the SQL
func (b *ModifySqlBuilder) Prepend(value string) {
	b.add(SQLVisitor{Kind: VisitPrepend, Value: value})
}

// Append adds text after the SQL
func (b *ModifySqlBuilder) Append(value string) {
	b.add(SQLVisitor{Kind: VisitAppend, Value: value})
}

// Replace replaces every occurrence of replace with with
func (b *ModifySqlBuilder) Replace(replace, with string) {
	b.add(SQLVisitor{Kind: VisitReplace, Replace: replace, With: with})
}

// RegExpReplace replaces every match of the pattern replace with with
func (b *ModifySqlBuilder) RegExpReplace(replace, with string) {
	b.add(SQLVisitor{Kind: VisitRegExpReplace, Replace: replace, With: with})
}

func (b *ModifySqlBuilder) add(v SQLVisitor) {
	if b.scope.failed() {
		return
	}
	for _, p := range []*string{&v.Value, &v.Replace, &v.With} {
		resolved, err := b.scope.eval(*p, true)
		if err != nil {
			b.scope.fail(fmt.Errorf("modifySql %s: %w", v.Kind, err))
			return
		}
		*p = resolved
	}
	if v.Kind != VisitPrepend && v.Kind != VisitAppend && v.Replace == "" {
		b.scope.fail(fmt.Errorf("modifySql %s: replace is required", v.Kind))
		return
	}
	b.visitors = append(b.visitors, v)
}

// ModifySql adds the visitors of body, filtered by args
func (b *ChangeSetBuilder) ModifySql(args ModifySqlArgs, body func(*ModifySqlBuilder)) {
	if !b.forwardOnly("modifySql") {
		return
	}
	if err := b.scope.resolve(modifySqlArgsSchema.Fields(&args)); err != nil {
		b.scope.fail(fmt.Errorf("modifySql: %w", err))
		return
	}
	if body == nil {
		b.scope.fail(errors.New("modifySql: block is required"))
		return
	}
	mb := &ModifySqlBuilder{scope: b.scope}
	body(mb)
	if b.scope.failed() {
		return
	}

	dbms := SplitDBMS(args.DBMS)
	for _, v := range mb.visitors {
		v.DBMS = dbms
		v.Context = args.Context
		v.Labels = args.Labels
		v.ApplyToRollback = args.ApplyToRollback
		b.cs.SQLVisitors = append(b.cs.SQLVisitors, v)
	}
}

// SplitDBMS splits a comma separated dbms list, dropping blanks
func SplitDBMS(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
