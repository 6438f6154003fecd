// Package state implements the application state manager (C6): the
// process-wide mutable coordination state (the single control session
// slot, the session map, the outstanding-interaction map) plus the
// event-bus handlers that turn domain events into transport-facing
// effects, per spec.md §4.6's event -> effect table.
package state

import (
	"context"
	"sync"

	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/interaction"
	"github.com/kodflow/testjig/internal/domain/logging"
	"github.com/kodflow/testjig/internal/domain/run"
)

// Transport is the collaborator port used only for the NewViewSession
// initial-replay send, which targets one specific session handle
// directly (spec.md §4.6's effect table). Every other outbound message
// instead crosses the tc-data/ui-request output channels below, which the
// transport collaborator drains and fans out to every active session;
// that fan-out, and ordinary per-session delivery, is the transport's
// job, not the state manager's (spec.md §4.6 "performs no fan-out to
// transport").
type Transport interface {
	// Send delivers message to the session identified by handle,
	// best-effort; a failed send is the transport's concern (it removes
	// the session), not the state manager's.
	Send(handle string, message any) error
}

// session is the minimal shape shared by *run.ControlSession and
// *run.ViewSession needed to track "which handle owns this session".
type session interface {
	ID() string
}

// Manager holds the engine's process-wide mutable state and wires the
// event bus to its effects. Construct with New, which subscribes one
// handler per event kind immediately (spec.md §4.6 "At startup,
// subscribes one handler per event kind").
type Manager struct {
	mu sync.RWMutex

	bus       event.Publisher
	ready     chan<- *run.Node
	tcData    chan<- TCDataMessage
	uiRequest chan<- UIPromptMessage
	transport Transport
	logger    logging.Logger

	control      *run.ControlSession
	sessions     map[string]session
	interactions map[string]*interaction.Context
}

// New constructs a Manager and subscribes its event handlers on bus.
// ready is the pipeline's executor input queue (NodeReady forwards
// here); tcData and uiRequest are the output channels the transport
// collaborator drains; transport is used only for NewViewSession replay.
func New(
	bus event.Publisher,
	ready chan<- *run.Node,
	tcData chan<- TCDataMessage,
	uiRequest chan<- UIPromptMessage,
	transport Transport,
	logger logging.Logger,
) *Manager {
	m := &Manager{
		bus:          bus,
		ready:        ready,
		tcData:       tcData,
		uiRequest:    uiRequest,
		transport:    transport,
		logger:       logger,
		sessions:     make(map[string]session),
		interactions: make(map[string]*interaction.Context),
	}
	m.subscribeAll()
	return m
}

func (m *Manager) subscribeAll() {
	m.bus.Subscribe(event.KindNewTestCase, m.onNewTestCase)
	m.bus.Subscribe(event.KindNewTestExecution, m.onNewTestExecution)
	m.bus.Subscribe(event.KindParameterUpdate, m.onParameterUpdate)
	m.bus.Subscribe(event.KindProgressUpdate, m.onProgressUpdate)
	m.bus.Subscribe(event.KindTestCaseFail, m.onTestCaseFail)
	m.bus.Subscribe(event.KindTestRunTermination, m.onTestRunTermination)
	m.bus.Subscribe(event.KindNodeReady, m.onNodeReady)
	m.bus.Subscribe(event.KindUserInteraction, m.onUserInteraction)
	m.bus.Subscribe(event.KindUserResponse, m.onUserResponse)
	m.bus.Subscribe(event.KindNewViewSession, m.onNewViewSession)
}

// ControlSession returns the current control session, or
// ErrNoControlSession if none exists.
func (m *Manager) ControlSession() (*run.ControlSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.control == nil {
		return nil, ErrNoControlSession
	}
	return m.control, nil
}

// AddSession registers a newly connected transport handle. If no control
// session currently exists, handle becomes the controller; otherwise a
// view session is created and NewViewSession is published (spec.md
// §4.6 "add_session"). Reports whether handle became the controller.
func (m *Manager) AddSession(ctx context.Context, handle string, panelLimit int) (isController bool, err error) {
	m.mu.Lock()
	if m.control == nil {
		cs := run.NewControlSession(handle, panelLimit)
		m.control = cs
		m.sessions[handle] = cs
		m.mu.Unlock()
		m.logInfo(handle, "add_session", "control session established", nil)
		return true, nil
	}

	vs := run.NewViewSession(handle)
	m.sessions[handle] = vs
	m.mu.Unlock()

	m.logInfo(handle, "add_session", "view session joined", nil)
	m.bus.Publish(ctx, event.New(event.KindNewViewSession, run.NewViewSessionPayload{Handle: handle}))
	return false, nil
}

// RemoveSession unregisters handle (spec.md §4.6 "remove_session"). If
// handle was the controller, the control slot is cleared so a subsequent
// connection can take it over.
func (m *Manager) RemoveSession(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[handle]; !ok {
		return ErrUnknownSession
	}
	delete(m.sessions, handle)

	if m.control != nil && m.control.ID() == handle {
		m.control = nil
	}
	return nil
}

func (m *Manager) onNewTestCase(ctx context.Context, e event.Event) error {
	n := e.Payload.(*run.Node)
	return m.sendTCData(ctx, "newTC", n.DataModel().Snapshot(n.State()))
}

func (m *Manager) onNewTestExecution(ctx context.Context, e event.Event) error {
	p := e.Payload.(run.NewExecutionPayload)
	return m.sendTCData(ctx, "newExecution", NewExecutionWire{
		TCID:        p.TCID,
		ExecutionID: p.ExecutionID,
		TCState:     p.TCState.String(),
	})
}

func (m *Manager) onParameterUpdate(ctx context.Context, e event.Event) error {
	p := e.Payload.(run.ParameterUpdatePayload)
	return m.sendTCData(ctx, "parameterUpdate", ParameterUpdateWire{
		TCID:        p.TCID,
		ExecutionID: p.ExecutionID,
		Parameter:   map[string]run.ParameterSummary{p.Parameter.Name: p.Parameter.Summary()},
	})
}

func (m *Manager) onProgressUpdate(ctx context.Context, e event.Event) error {
	p := e.Payload.(run.ProgressUpdatePayload)
	return m.sendTCData(ctx, "progressUpdate", ProgressUpdateWire{TCID: p.TCID, Progress: p.Progress})
}

func (m *Manager) onTestCaseFail(ctx context.Context, e event.Event) error {
	p := e.Payload.(run.TestCaseFailPayload)
	return m.sendTCData(ctx, "testCaseFail", TestCaseFailWire{TCID: p.TCID})
}

func (m *Manager) onTestRunTermination(ctx context.Context, e event.Event) error {
	_ = e.Payload.(run.TestRunTerminationPayload)
	return m.sendTCData(ctx, "testRunTermination", nil)
}

func (m *Manager) sendTCData(ctx context.Context, eventType string, payload any) error {
	msg := TCDataMessage{Type: "tc_data", EventType: eventType, Payload: payload}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.tcData <- msg:
		return nil
	}
}

func (m *Manager) onNodeReady(ctx context.Context, e event.Event) error {
	n := e.Payload.(*run.Node)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.ready <- n:
		return nil
	}
}

func (m *Manager) onUserInteraction(ctx context.Context, e event.Event) error {
	ic := e.Payload.(*interaction.Context)

	m.mu.Lock()
	m.interactions[ic.ID()] = ic
	m.mu.Unlock()

	msg := UIPromptMessage{
		Type:      "app_state",
		EventType: "prompt",
		Payload: UIPromptPayload{
			ID:         ic.ID(),
			Message:    ic.Message(),
			PromptType: ic.Kind().String(),
		},
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case m.uiRequest <- msg:
		return nil
	}
}

func (m *Manager) onUserResponse(_ context.Context, e event.Event) error {
	p := e.Payload.(run.UserResponsePayload)

	m.mu.Lock()
	ic, ok := m.interactions[p.InteractionID]
	if ok {
		delete(m.interactions, p.InteractionID)
	}
	m.mu.Unlock()

	if !ok {
		m.logInfo(p.InteractionID, "user_response", "response for unknown or already-resolved interaction", nil)
		return nil
	}
	ic.Resolve(p.Response)
	return nil
}

// onNewViewSession implements spec.md §4.6's replay effect: for each
// panel of the current control session, for each active test-case node,
// send a newTC-shaped message directly to the joining view's handle.
func (m *Manager) onNewViewSession(_ context.Context, e event.Event) error {
	p := e.Payload.(run.NewViewSessionPayload)

	m.mu.RLock()
	control := m.control
	m.mu.RUnlock()
	if control == nil {
		return nil
	}

	for _, panel := range control.Panels() {
		tr := panel.TestRun()
		if tr == nil {
			continue
		}
		for _, n := range tr.Nodes() {
			msg := TCDataMessage{
				Type:      "tc_data",
				EventType: "newTC",
				Payload:   n.DataModel().Snapshot(n.State()),
			}
			if err := m.transport.Send(p.Handle, msg); err != nil {
				m.logError(p.Handle, "new_view_session_replay", "replay send failed", map[string]any{"error": err.Error()})
			}
		}
	}
	return nil
}

func (m *Manager) logInfo(service, eventType, message string, meta map[string]any) {
	if m.logger == nil {
		return
	}
	m.logger.Info(service, eventType, message, meta)
}

func (m *Manager) logError(service, eventType, message string, meta map[string]any) {
	if m.logger == nil {
		return
	}
	m.logger.Error(service, eventType, message, meta)
}
