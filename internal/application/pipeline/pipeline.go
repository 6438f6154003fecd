// Package pipeline implements the stage pipeline that moves a node
// through execution, result classification, and failure handling.
//
// Three long-lived workers are connected by bounded FIFO channels of
// capacity stageQueueCapacity: Executor reads from the ready queue and
// spawns one goroutine per node so independent nodes run in parallel;
// Classifier reads from the classify queue and routes a finished node to
// either success or failure; FailureHandler reads from the failure queue
// and either re-schedules a retry-eligible node or quarantines it.
//
// The teacher's worker-per-stage shutdown relies on closing a channel
// once its sole producer is done; here multiple goroutines can hand
// nodes to the same downstream queue concurrently, so a shared channel
// cannot safely be closed by any one of them. Shutdown is therefore
// driven by ctx cancellation: every queue send/receive also selects on
// ctx.Done(), and a canceled context is treated the way the original
// treats a closed queue — logged, and the worker returns.
package pipeline

import (
	"context"
	"sync"

	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/logging"
	"github.com/kodflow/testjig/internal/domain/run"
)

// stageQueueCapacity bounds every inter-stage channel, mirroring the
// teacher's eventBufferSize constant convention.
const stageQueueCapacity int = 50

// Pipeline wires the ready/classify/failure queues and the three stage
// workers that consume them.
type Pipeline struct {
	graph  *run.Graph
	bus    event.Publisher
	logger logging.Logger

	ready    chan *run.Node
	classify chan *run.Node
	failure  chan *run.Node

	wg sync.WaitGroup
}

// New constructs a Pipeline. Call Run to start its workers and Ready() to
// obtain the input queue that scheduling (the state manager's NodeReady
// handler) forwards nodes into.
func New(graph *run.Graph, bus event.Publisher, logger logging.Logger) *Pipeline {
	return &Pipeline{
		graph:    graph,
		bus:      bus,
		logger:   logger,
		ready:    make(chan *run.Node, stageQueueCapacity),
		classify: make(chan *run.Node, stageQueueCapacity),
		failure:  make(chan *run.Node, stageQueueCapacity),
	}
}

// Ready returns the executor's input queue.
func (p *Pipeline) Ready() chan<- *run.Node { return p.ready }

// Run starts the three stage workers. It returns immediately; workers
// stop once ctx is canceled, and Wait blocks until they have all
// returned.
func (p *Pipeline) Run(ctx context.Context) {
	p.wg.Add(3)
	go p.runExecutor(ctx)
	go p.runClassifier(ctx)
	go p.runFailureHandler(ctx)
}

// Wait blocks until every stage worker has returned.
func (p *Pipeline) Wait() { p.wg.Wait() }

func (p *Pipeline) runExecutor(ctx context.Context) {
	defer p.wg.Done()

	var spawned sync.WaitGroup
	defer spawned.Wait()

	for {
		select {
		case <-ctx.Done():
			p.logClosed("executor")
			return
		case n, ok := <-p.ready:
			if !ok {
				return
			}
			spawned.Go(func() {
				p.execute(ctx, n)
			})
		}
	}
}

func (p *Pipeline) execute(ctx context.Context, n *run.Node) {
	if err := p.graph.Execute(ctx, n); err != nil && p.logger != nil {
		p.logger.Error("", "node_execute", "node execution failed", map[string]any{
			"node_id": n.ID(),
			"error":   err.Error(),
		})
	}

	select {
	case <-ctx.Done():
		p.logClosed("executor->classifier")
	case p.classify <- n:
	}
}

func (p *Pipeline) runClassifier(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.logClosed("classifier")
			return
		case n, ok := <-p.classify:
			if !ok {
				return
			}
			p.classify1(ctx, n)
		}
	}
}

func (p *Pipeline) classify1(ctx context.Context, n *run.Node) {
	if n.State() == run.StateCancel {
		// Nodes in cancel are dropped: a subsequent reset/re-schedule
		// already owns their next life.
		return
	}

	if run.IsTruthy(n.Result()) {
		p.graph.SetCleared(ctx, n)
		return
	}

	select {
	case <-ctx.Done():
		p.logClosed("classifier->failure")
	case p.failure <- n:
	}
}

func (p *Pipeline) runFailureHandler(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.logClosed("failure_handler")
			return
		case n, ok := <-p.failure:
			if !ok {
				return
			}
			p.handleFailure(ctx, n)
		}
	}
}

func (p *Pipeline) handleFailure(ctx context.Context, n *run.Node) {
	if n.Kind() == run.KindTestCase && n.AutoRetryCount() > 0 {
		n.DecrementAutoRetry()
		p.graph.CheckAndSchedule(ctx, n)
		return
	}

	dm := n.DataModel()
	if dm == nil {
		return
	}
	tr := dm.ParentRun()
	if tr == nil {
		return
	}
	tr.Quarantine(ctx, p.bus, n)
}

func (p *Pipeline) logClosed(stage string) {
	if p.logger == nil {
		return
	}
	p.logger.Info("", "pipeline_stage_stopped", "stage stopped on context cancellation", map[string]any{
		"stage": stage,
	})
}
