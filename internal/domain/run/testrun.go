package run

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kodflow/testjig/internal/domain/event"
)

// TestRun owns an ordered list of test-case nodes plus one terminal node,
// and a map of quarantined (failed) nodes keyed by id.
type TestRun struct {
	mu sync.RWMutex

	id       string
	graph    *Graph
	panel    *Panel
	nodes    []*Node
	failed   map[string]*Node
	terminal *Node
}

// NewTestRun constructs a run with a freshly created terminal node, wired
// against graph.
func NewTestRun(graph *Graph) *TestRun {
	tr := &TestRun{
		id:     uuid.NewString(),
		graph:  graph,
		failed: make(map[string]*Node),
	}
	tr.terminal = newTerminalNode(tr)
	return tr
}

// ID returns the run's stable identity.
func (tr *TestRun) ID() string { return tr.id }

// Panel returns the panel this run belongs to, or nil if it has not been
// attached to one yet.
func (tr *TestRun) Panel() *Panel {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return tr.panel
}

func (tr *TestRun) setPanel(p *Panel) {
	tr.mu.Lock()
	tr.panel = p
	tr.mu.Unlock()
}

// Terminal returns the run's terminal sink node.
func (tr *TestRun) Terminal() *Node { return tr.terminal }

// Nodes returns a snapshot of the run's active (non-quarantined) nodes.
func (tr *TestRun) Nodes() []*Node {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	return append([]*Node(nil), tr.nodes...)
}

// FailedNode looks up a quarantined node by id.
func (tr *TestRun) FailedNode(tcID string) (*Node, bool) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()
	n, ok := tr.failed[tcID]
	return n, ok
}

// AddTCNode wires n as a dependency of the terminal node, records it as
// active, publishes NewTestCase, and attempts to schedule it.
func (tr *TestRun) AddTCNode(ctx context.Context, bus event.Publisher, n *Node) error {
	if err := tr.graph.AddDependency(tr.terminal, n); err != nil {
		return err
	}

	n.DataModel().setParentRun(tr)

	tr.mu.Lock()
	tr.nodes = append(tr.nodes, n)
	tr.mu.Unlock()

	bus.Publish(ctx, event.New(event.KindNewTestCase, n))
	tr.graph.CheckAndSchedule(ctx, n)
	return nil
}

// LoadNodes adds every node in order via AddTCNode.
func (tr *TestRun) LoadNodes(ctx context.Context, bus event.Publisher, nodes []*Node) error {
	for _, n := range nodes {
		if err := tr.AddTCNode(ctx, bus, n); err != nil {
			return err
		}
	}
	return nil
}

// Quarantine moves n out of the active list into the failed map keyed by
// its id, sets n.state <- failed, and publishes TestCaseFail.
func (tr *TestRun) Quarantine(ctx context.Context, bus event.Publisher, n *Node) {
	tr.mu.Lock()
	tr.nodes = removeNode(tr.nodes, n)
	tr.failed[n.ID()] = n
	tr.mu.Unlock()

	n.setState(StateFailed)
	bus.Publish(ctx, event.New(event.KindTestCaseFail, TestCaseFailPayload{TCID: n.ID()}))
}

// Retest pops n from the failed map, resets it, and re-adds it as a
// dependency of the terminal node before scheduling. n itself is reset
// without being scheduled (its dependents go through Graph.Reset), so
// AddTCNode is the single place that schedules it again.
func (tr *TestRun) Retest(ctx context.Context, bus event.Publisher, tcID string) error {
	tr.mu.Lock()
	n, ok := tr.failed[tcID]
	if ok {
		delete(tr.failed, tcID)
	}
	tr.mu.Unlock()
	if !ok {
		return ErrTestCaseNotQuarantined
	}

	n.DataModel().resetExecutions()
	n.mu.Lock()
	n.result = nil
	n.state = StateNotProcessed
	n.mu.Unlock()
	for _, d := range n.Dependents() {
		tr.graph.Reset(ctx, d)
	}
	return tr.AddTCNode(ctx, bus, n)
}

// detachFromPanel removes this run from its owning panel, invoked by the
// terminal node when it executes.
func (tr *TestRun) detachFromPanel() {
	if p := tr.Panel(); p != nil {
		p.removeTestRun()
	}
}
