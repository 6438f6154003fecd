package run

import (
	"context"
	"fmt"
	"sync"

	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/logging"
)

// Graph coordinates the DAG operations shared by every node in the
// process: edge maintenance with cycle rejection, readiness scheduling,
// clearing, and reset. It is a single coarse-grained aggregate (one
// mutex guards structural mutation) the way the teacher's Supervisor
// guards its whole service map with one RWMutex — node state mutation is
// otherwise serialized by the executor owning at most one task per node,
// per spec.md §5.
type Graph struct {
	mu     sync.Mutex
	bus    event.Publisher
	logger logging.Logger
}

// NewGraph constructs a Graph publishing scheduling events on bus. A nil
// logger is replaced with a no-op implementation so callers that don't
// care about scheduling logs don't need to supply a stub.
func NewGraph(bus event.Publisher, logger logging.Logger) *Graph {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Graph{bus: bus, logger: logger}
}

// noopLogger discards every log call. It exists so Graph never has to
// nil-check its logger on every call site.
type noopLogger struct{}

func (noopLogger) Log(logging.LogEvent)                         {}
func (noopLogger) Debug(string, string, string, map[string]any) {}
func (noopLogger) Info(string, string, string, map[string]any)  {}
func (noopLogger) Warn(string, string, string, map[string]any)  {}
func (noopLogger) Error(string, string, string, map[string]any) {}
func (noopLogger) Close() error                                 { return nil }

// AddDependency records that a requires b. Fails with ErrCyclicDependency
// if b is reachable from a through existing dependents. Idempotent:
// re-adding an existing edge is a no-op and is logged. On success,
// a.state <- not_processed.
func (g *Graph) AddDependency(a, b *Node) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, d := range a.Dependencies() {
		if d == b {
			g.logger.Info(a.id, "add_dependency", "dependency already present, no-op", map[string]any{"dependency": b.id})
			return nil
		}
	}
	if g.isReachable(a, b) {
		return fmt.Errorf("%w: %s -> %s", ErrCyclicDependency, a.name, b.name)
	}

	a.mu.Lock()
	a.dependencies = append(a.dependencies, b)
	a.state = StateNotProcessed
	a.mu.Unlock()

	b.mu.Lock()
	b.dependents = append(b.dependents, a)
	b.mu.Unlock()

	g.logger.Info(a.id, "add_dependency", fmt.Sprintf("%s added as a dependency to %s", b.name, a.name), nil)
	return nil
}

// RemoveDependency undoes a previously recorded dependency between a and b.
func (g *Graph) RemoveDependency(a, b *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a.mu.Lock()
	a.dependencies = removeNode(a.dependencies, b)
	a.mu.Unlock()

	b.mu.Lock()
	b.dependents = removeNode(b.dependents, a)
	b.mu.Unlock()
}

func removeNode(nodes []*Node, target *Node) []*Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// isReachable reports whether target is reachable from from by following
// dependent edges (i.e. from is already upstream of target). Adding a new
// dependency from -> target would close a cycle in that case. Mirrors the
// original implementation's DFS exactly (see original_source's
// BaseNode._is_reachable).
func (g *Graph) isReachable(from, target *Node) bool {
	visited := map[*Node]bool{}
	var dfs func(n *Node) bool
	dfs = func(n *Node) bool {
		if n == target {
			return true
		}
		visited[n] = true
		for _, dep := range n.Dependents() {
			if !visited[dep] && dfs(dep) {
				return true
			}
		}
		return false
	}
	return dfs(from)
}

// CheckAndSchedule sets n.state <- ready and publishes NodeReady(n) if
// every dependency of n is cleared. Otherwise it is a no-op.
func (g *Graph) CheckAndSchedule(ctx context.Context, n *Node) {
	if !n.allDependenciesCleared() {
		return
	}
	n.setState(StateReady)
	g.logger.Info(n.id, "check_and_schedule", fmt.Sprintf("%s is ready to process", n.name), nil)
	g.bus.Publish(ctx, event.New(event.KindNodeReady, n))
}

// SetCleared sets n.state <- cleared and, for every dependent d of n,
// invokes CheckAndSchedule(d). Publishing order is deterministic by
// dependent insertion order.
func (g *Graph) SetCleared(ctx context.Context, n *Node) {
	n.setState(StateCleared)
	g.logger.Info(n.id, "set_cleared", fmt.Sprintf("%s node is cleared", n.name), nil)
	for _, d := range n.Dependents() {
		g.CheckAndSchedule(ctx, d)
	}
}

// Reset implements spec.md §4.1's reset operation: if n is processing, it
// is marked cancel (the executor's eventual result for this node is
// discarded by the classifier); otherwise its result is cleared and it is
// set not_processed, then immediately re-checked for scheduling. After n
// itself is handled, every dependent is recursively reset.
func (g *Graph) Reset(ctx context.Context, n *Node) {
	n.mu.Lock()
	wasProcessing := n.state == StateProcessing
	if wasProcessing {
		n.state = StateCancel
	} else {
		n.result = nil
		n.state = StateNotProcessed
	}
	n.mu.Unlock()

	if wasProcessing {
		g.logger.Info(n.id, "reset", fmt.Sprintf("%s node cancelled", n.name), nil)
	} else {
		g.logger.Info(n.id, "reset", fmt.Sprintf("%s node reset", n.name), nil)
		g.CheckAndSchedule(ctx, n)
	}

	for _, d := range n.Dependents() {
		g.Reset(ctx, d)
	}
}

// Execute runs n's variant-specific work: a test-case node invokes its
// wrapped callable with injected arguments; a terminal node emits
// TestRunTermination and detaches its owning run from its parent panel.
// Any error is also captured on the node (error/error_traceback, state
// <- error) so the classifier can route it to the failure queue.
func (g *Graph) Execute(ctx context.Context, n *Node) error {
	switch n.kind {
	case KindTestCase:
		return g.executeTestCase(ctx, n)
	case KindTerminal:
		return g.executeTerminal(ctx, n)
	default:
		return fmt.Errorf("run: unknown node kind %v", n.kind)
	}
}

func (g *Graph) executeTestCase(ctx context.Context, n *Node) error {
	n.setState(StateProcessing)

	if err := n.dataModel.addExecution(ctx, g.bus); err != nil {
		return err
	}

	args := make(map[string]any, len(n.paramSpecs))
	for _, spec := range n.paramSpecs {
		if spec.Source.fromDataModel {
			args[spec.ArgName] = n.dataModel
			continue
		}
		for _, dep := range n.Dependencies() {
			if dep.ParameterLabel() == spec.Source.dependencyLabel {
				args[spec.ArgName] = dep.Result()
				break
			}
		}
	}

	result, err := n.fn(ctx, args)
	if err != nil {
		n.mu.Lock()
		n.err = err
		n.errTraceback = fmt.Sprintf("%+v", err)
		n.state = StateError
		n.mu.Unlock()
		g.logger.Error(n.id, "execute", fmt.Sprintf("error while executing %s: %v", n.name, err), nil)
		return err
	}

	n.mu.Lock()
	n.result = result
	n.mu.Unlock()
	return nil
}

func (g *Graph) executeTerminal(ctx context.Context, n *Node) error {
	tr := n.owningRun
	g.bus.Publish(ctx, event.New(event.KindTestRunTermination, TestRunTerminationPayload{RunID: tr.ID()}))
	tr.detachFromPanel()
	n.mu.Lock()
	n.result = true
	n.mu.Unlock()
	return nil
}

// IsTruthy reproduces the original implementation's Python-style
// truthiness for a node's result, used by the classifier to decide
// between clearing a node and routing it to the failure queue.
func IsTruthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
