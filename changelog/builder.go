package changelog

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/koba/db-changelog/custom"
)

// Definition is a changelog body bound to its file path. Build turns it into a ChangeLog.
type Definition struct {
	FilePath string
	body     func(*Builder)
}

// Define declares a changelog
func Define(filePath string, body func(*Builder)) *Definition {
	return &Definition{FilePath: filePath, body: body}
}

// Option configures Build
type Option func(*buildOptions)

type buildOptions struct {
	properties map[string]string
	logger     *slog.Logger
	literal    bool
}

// WithProperties seeds the property table. These values take precedence over
// properties declared inside the changelog.
func WithProperties(props map[string]string) Option {
	return func(o *buildOptions) {
		for k, v := range props {
			o.properties[k] = v
		}
	}
}

// WithLogger sets the logger used for deprecation warnings
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithoutEvaluation keeps every value as written. ${name} placeholders are
// neither substituted nor reported as unresolved.
func WithoutEvaluation() Option {
	return func(o *buildOptions) { o.literal = true }
}

// Build runs the definition and returns the resulting changelog.
// The first construction error aborts the build and is returned.
func (d *Definition) Build(opts ...Option) (*ChangeLog, error) {
	o := buildOptions{properties: map[string]string{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	log := &ChangeLog{FilePath: d.FilePath, Properties: o.properties}
	b := &Builder{
		log:    log,
		path:   d.FilePath,
		scope:  &scope{props: log.Properties, logger: o.logger, literal: o.literal},
		active: map[string]bool{d.FilePath: true},
	}
	if d.body != nil {
		d.body(b)
	}
	if b.scope.err != nil {
		return nil, b.scope.err
	}
	return log, nil
}

// Builder is the receiver of a changelog body
type Builder struct {
	log    *ChangeLog
	path   string
	scope  *scope
	active map[string]bool
}

// FilePath returns the path of the changelog being built
func (b *Builder) FilePath() string {
	return b.path
}

// Property defines a property for ${name} substitution. The first definition wins.
func (b *Builder) Property(name, value string) {
	if b.scope.failed() {
		return
	}
	if name == "" {
		b.scope.fail(errors.New("property name is required"))
		return
	}
	if _, ok := b.log.Properties[name]; ok {
		return
	}
	v, err := b.scope.eval(value, false)
	if err != nil {
		b.scope.fail(err)
		return
	}
	b.log.Properties[name] = v
}

// Include adds the changesets of another definition, keeping their own file path
func (b *Builder) Include(d *Definition) {
	if b.scope.failed() || d == nil {
		return
	}
	if b.active[d.FilePath] {
		b.scope.fail(fmt.Errorf("circular include of %s", d.FilePath))
		return
	}
	b.active[d.FilePath] = true
	defer delete(b.active, d.FilePath)

	prev := b.path
	b.path = d.FilePath
	defer func() { b.path = prev }()
	if d.body != nil {
		d.body(b)
	}
}

// ChangeSet adds a changeset built by body
func (b *Builder) ChangeSet(args ChangeSetArgs, body func(*ChangeSetBuilder)) {
	if b.scope.failed() {
		return
	}

	cs := &ChangeSet{ChangeSetArgs: args}
	if err := b.scope.resolve(changeSetArgsSchema.Fields(&cs.ChangeSetArgs)); err != nil {
		b.scope.fail(&ParseError{ChangeSetID: args.ID, Err: err})
		return
	}
	cs.ChangeLogPath = b.path
	cs.FilePath = b.path
	if cs.LogicalFilePath != "" {
		cs.FilePath = cs.LogicalFilePath
	}

	csb := &ChangeSetBuilder{
		root:  b,
		cs:    cs,
		scope: &scope{props: b.scope.props, logger: b.scope.logger, literal: b.scope.literal},
	}
	if body != nil {
		body(csb)
	}
	if csb.scope.err != nil {
		b.scope.fail(&ParseError{ChangeSetID: cs.ID, Err: csb.scope.err})
		return
	}

	if _, dup := b.log.Find(cs.ID, cs.Author, cs.FilePath); dup {
		b.scope.fail(&DuplicateChangeSetError{ID: cs.ID, Author: cs.Author, FilePath: cs.FilePath})
		return
	}
	b.log.ChangeSets = append(b.log.ChangeSets, cs)
}

// ChangeSetBuilder is the receiver of a changeset body. Inside a Rollback block
// the same type appends to the rollback list instead of the forward list.
type ChangeSetBuilder struct {
	root       *Builder
	cs         *ChangeSet
	scope      *scope
	inRollback bool
}

// Change adds an already constructed change
func (b *ChangeSetBuilder) Change(c Change) {
	if b.scope.failed() {
		return
	}
	if c == nil {
		b.scope.fail(errors.New("nil change"))
		return
	}
	if err := b.scope.prepare(c); err != nil {
		b.scope.fail(err)
		return
	}
	if b.inRollback {
		b.cs.Rollback = append(b.cs.Rollback, c)
	} else {
		b.cs.Changes = append(b.cs.Changes, c)
	}
}

// CustomTask adds a custom change backed by an inline task
func (b *ChangeSetBuilder) CustomTask(task custom.Task) {
	if task == nil {
		b.scope.fail(errors.New("nil custom task"))
		return
	}
	b.Change(&CustomChange{task: task})
}

// Comment sets the changeset comment. Only the first call has an effect.
func (b *ChangeSetBuilder) Comment(text string) {
	if !b.forwardOnly("comment") {
		return
	}
	if b.cs.Comments != "" {
		return
	}
	v, err := b.scope.eval(text, true)
	if err != nil {
		b.scope.fail(fmt.Errorf("comment: %w", err))
		return
	}
	b.cs.Comments = v
}

// ValidCheckSum accepts an additional checksum for the changeset
func (b *ChangeSetBuilder) ValidCheckSum(sum string) {
	if !b.forwardOnly("validCheckSum") {
		return
	}
	if sum == "" {
		b.scope.fail(errors.New("validCheckSum: checksum is required"))
		return
	}
	b.cs.ValidCheckSums = append(b.cs.ValidCheckSums, sum)
}

// Rollback adds the changes of body to the rollback list
func (b *ChangeSetBuilder) Rollback(body func(*ChangeSetBuilder)) {
	if !b.forwardOnly("rollback") || body == nil {
		return
	}
	rb := *b
	rb.inRollback = true
	body(&rb)
}

// RollbackTo uses the forward changes of a previously defined changeset as the rollback.
// An empty path means the current changelog file.
func (b *ChangeSetBuilder) RollbackTo(id, author, path string) {
	if !b.forwardOnly("rollback") {
		return
	}
	key := [3]string{id, author, path}
	for i, v := range key {
		resolved, err := b.scope.eval(v, true)
		if err != nil {
			b.scope.fail(fmt.Errorf("rollback: %w", err))
			return
		}
		key[i] = resolved
	}
	if key[2] == "" {
		key[2] = b.root.path
	}

	target, ok := b.root.log.Find(key[0], key[1], key[2])
	if !ok {
		b.scope.fail(&RollbackImpossibleError{ID: key[0], Author: key[1], Path: key[2]})
		return
	}
	b.cs.Rollback = append(b.cs.Rollback, target.Changes...)
}

func (b *ChangeSetBuilder) forwardOnly(what string) bool {
	if b.scope.failed() {
		return false
	}
	if b.inRollback {
		b.scope.fail(fmt.Errorf("%s is not allowed inside a rollback block", what))
		return false
	}
	return true
}
