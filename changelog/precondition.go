package changelog

import (
	"errors"
	"fmt"
)

// PreConditionArgs are the failure policies of a precondition tree
type PreConditionArgs struct {
	OnFail         string
	OnError        string
	OnFailMessage  string
	OnErrorMessage string
	OnSqlOutput    string
}

// Preconditions gate a changeset. The root is an implicit AND of Nodes.
type Preconditions struct {
	PreConditionArgs
	Nodes []Precondition
}

// Precondition is a node of a precondition tree
type Precondition interface {
	precondition()
}

// AndCondition holds when every node holds
type AndCondition struct {
	Nodes []Precondition
}

// OrCondition holds when any node holds
type OrCondition struct {
	Nodes []Precondition
}

// NotCondition holds when the AND of its nodes does not
type NotCondition struct {
	Nodes []Precondition
}

// Condition is a named check evaluated by the migration engine, e.g. tableExists
type Condition struct {
	Name   string
	Params []Param
}

func (*AndCondition) precondition() {}
func (*OrCondition) precondition()  {}
func (*NotCondition) precondition() {}
func (*Condition) precondition()    {}

// PreconditionBuilder is the receiver of a precondition block
type PreconditionBuilder struct {
	scope *scope
	nodes []Precondition
}

// And adds a node that holds when all nodes of body hold
func (b *PreconditionBuilder) And(body func(*PreconditionBuilder)) {
	if nodes, ok := b.nested(body); ok {
		b.nodes = append(b.nodes, &AndCondition{Nodes: nodes})
	}
}

// Or adds a node that holds when any node of body holds
func (b *PreconditionBuilder) Or(body func(*PreconditionBuilder)) {
	if nodes, ok := b.nested(body); ok {
		b.nodes = append(b.nodes, &OrCondition{Nodes: nodes})
	}
}

// Not adds a node that negates the nodes of body
func (b *PreconditionBuilder) Not(body func(*PreconditionBuilder)) {
	if nodes, ok := b.nested(body); ok {
		b.nodes = append(b.nodes, &NotCondition{Nodes: nodes})
	}
}

// Condition adds a named check
func (b *PreconditionBuilder) Condition(name string, params ...Param) {
	if b.scope.failed() {
		return
	}
	if name == "" {
		b.scope.fail(errors.New("precondition name is required"))
		return
	}
	var ps []Param
	if len(params) > 0 {
		ps = append(ps, params...)
	}
	if err := b.scope.params(ps, false); err != nil {
		b.scope.fail(fmt.Errorf("precondition %s: %w", name, err))
		return
	}
	b.nodes = append(b.nodes, &Condition{Name: name, Params: ps})
}

func (b *PreconditionBuilder) nested(body func(*PreconditionBuilder)) ([]Precondition, bool) {
	if b.scope.failed() {
		return nil, false
	}
	child := &PreconditionBuilder{scope: b.scope}
	if body != nil {
		body(child)
	}
	return child.nodes, !b.scope.failed()
}

// PreConditions sets the precondition tree of the changeset
func (b *ChangeSetBuilder) PreConditions(args PreConditionArgs, body func(*PreconditionBuilder)) {
	if !b.forwardOnly("preConditions") {
		return
	}
	if b.cs.Preconditions != nil {
		b.scope.fail(errors.New("preConditions already set"))
		return
	}
	if err := b.scope.resolve(preConditionArgsSchema.Fields(&args)); err != nil {
		b.scope.fail(fmt.Errorf("preConditions: %w", err))
		return
	}
	pb := &PreconditionBuilder{scope: b.scope}
	if body != nil {
		body(pb)
	}
	if b.scope.failed() {
		return
	}
	b.cs.Preconditions = &Preconditions{PreConditionArgs: args, Nodes: pb.nodes}
}
