package run

import (
	"sync"

	"github.com/google/uuid"
)

// Node is the unit of schedulable work. Attributes mirror spec.md §3
// exactly: stable identity, human name, a state, dependency/dependent
// edges, a result, a captured error, and an optional parameter label
// tagging the node's result for keyed injection into dependents.
type Node struct {
	mu sync.RWMutex

	id             string
	name           string
	kind           Kind
	state          State
	dependencies   []*Node
	dependents     []*Node
	result         any
	err            error
	errTraceback   string
	parameterLabel string

	// test-case variant fields, set only when kind == KindTestCase.
	dataModel      *TestCaseDataModel
	fn             TestCaseFunc
	paramSpecs     []ParamSpec
	autoRetryCount int

	// terminal variant field, set only when kind == KindTerminal.
	owningRun *TestRun
}

// NewTestCaseNode constructs a test-case node wrapping fn. parameterLabel
// may be empty if no dependent needs this node's result by label.
func NewTestCaseNode(name, description string, fn TestCaseFunc, paramSpecs []ParamSpec, parameterLabel string, autoRetryCount int) *Node {
	n := &Node{
		id:             uuid.NewString(),
		name:           name,
		kind:           KindTestCase,
		state:          StateNotProcessed,
		parameterLabel: parameterLabel,
		fn:             fn,
		paramSpecs:     paramSpecs,
		autoRetryCount: autoRetryCount,
	}
	n.dataModel = newTestCaseDataModel(n.id, name, description)
	return n
}

// newTerminalNode constructs the dependency-only sink node for tr.
func newTerminalNode(tr *TestRun) *Node {
	return &Node{
		id:        uuid.NewString(),
		name:      "terminal",
		kind:      KindTerminal,
		state:     StateNotProcessed,
		owningRun: tr,
	}
}

// ID returns the node's stable identity.
func (n *Node) ID() string { return n.id }

// Name returns the node's human name.
func (n *Node) Name() string { return n.name }

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// State returns the node's current state.
func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *Node) setState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

// IsCleared reports whether the node has reached the terminal success
// state for its kind (spec.md §3 invariant (d)).
func (n *Node) IsCleared() bool {
	return n.State() == StateCleared
}

// Result returns the node's last produced result.
func (n *Node) Result() any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.result
}

// Err returns the captured error, if the node's last execution raised one.
func (n *Node) Err() error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.err
}

// ErrTraceback returns the formatted stack trace captured alongside Err.
func (n *Node) ErrTraceback() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.errTraceback
}

// ParameterLabel returns the label this node's result is keyed under for
// dependents that request it (empty if the node does not label itself).
func (n *Node) ParameterLabel() string { return n.parameterLabel }

// Dependencies returns a snapshot of the node's dependency edges.
func (n *Node) Dependencies() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Node(nil), n.dependencies...)
}

// Dependents returns a snapshot of the node's dependent edges.
func (n *Node) Dependents() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]*Node(nil), n.dependents...)
}

// DataModel returns the node's test-case data model, or nil for a
// non-test-case node.
func (n *Node) DataModel() *TestCaseDataModel { return n.dataModel }

// AutoRetryCount returns the test-case node's remaining retry budget.
func (n *Node) AutoRetryCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.autoRetryCount
}

// DecrementAutoRetry consumes one unit of the node's retry budget. Called
// by the failure handler before rescheduling a test-case node that still
// has retries left.
func (n *Node) DecrementAutoRetry() {
	n.mu.Lock()
	n.autoRetryCount--
	n.mu.Unlock()
}

func (n *Node) allDependenciesCleared() bool {
	n.mu.RLock()
	deps := n.dependencies
	n.mu.RUnlock()
	for _, d := range deps {
		if !d.IsCleared() {
			return false
		}
	}
	return true
}
