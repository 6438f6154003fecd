// Package dispatcher implements the command dispatcher (C7): a static
// function-table mapping inbound command names to domain actions,
// mirroring the teacher's bootstrap composition root's preference for
// explicit function tables over type switches wherever the handler set
// is injected at construction time rather than fixed at compile time.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/logging"
	"github.com/kodflow/testjig/internal/domain/run"
)

// Command is the inbound shape of spec.md §6's command messages.
type Command struct {
	CommandType string         `json:"command_type"`
	Payload     map[string]any `json:"payload"`
}

// CommandHandler runs the domain action for one command_type.
type CommandHandler func(ctx context.Context, payload map[string]any) error

// ControlSessionProvider is the narrow slice of the application state
// manager the dispatcher needs: read-only access to the current
// control session.
type ControlSessionProvider interface {
	ControlSession() (*run.ControlSession, error)
}

// Dispatcher routes Command values to their registered handler.
// Recognized commands, per spec.md §4.7, are loadTC and retest; an
// unknown command_type, or a command that requires a control session
// when none exists, is a recoverable condition: it is logged and
// Dispatch returns the describing sentinel error so the caller can
// decide whether to surface it further, but neither condition should
// be treated as fatal to the dispatch loop.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler

	sessions ControlSessionProvider
	graph    *run.Graph
	bus      event.Publisher
	profile  run.Profile
	logger   logging.Logger
}

// New constructs a Dispatcher with the built-in loadTC/retest handlers
// registered. sessions provides the current control session; graph and
// bus back the test runs created by loadTC; profile supplies the case
// list loadTC wires into each panel's run.
func New(sessions ControlSessionProvider, graph *run.Graph, bus event.Publisher, prof run.Profile, logger logging.Logger) *Dispatcher {
	d := &Dispatcher{
		sessions: sessions,
		graph:    graph,
		bus:      bus,
		profile:  prof,
		logger:   logger,
	}
	d.handlers = map[string]CommandHandler{
		"loadTC": d.handleLoadTC,
		"retest": d.handleRetest,
	}
	return d
}

// Register adds or replaces the handler for name, letting an embedding
// program extend the recognized command set beyond loadTC/retest.
func (d *Dispatcher) Register(name string, h CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Dispatch looks up cmd.CommandType in the function table and invokes
// it with cmd.Payload.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	d.mu.RLock()
	h, ok := d.handlers[cmd.CommandType]
	d.mu.RUnlock()

	if !ok {
		d.logWarn(cmd.CommandType, "unrecognized command, discarding", nil)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.CommandType)
	}
	return h(ctx, cmd.Payload)
}

// handleLoadTC implements spec.md §4.7's loadTC: for each panel of the
// current control session, create a test run and wire the profile's
// case list into it via load_test_case's Go equivalent, TestRun.LoadNodes.
func (d *Dispatcher) handleLoadTC(ctx context.Context, _ map[string]any) error {
	cs, err := d.sessions.ControlSession()
	if err != nil {
		d.logWarn("loadTC", "no control session, dropping command", nil)
		return ErrMissingControlSession
	}

	for _, panel := range cs.Panels() {
		tr, err := panel.AddTestRun(d.graph)
		if err != nil {
			d.logError("loadTC", "failed to add test run to panel", map[string]any{"panel_id": panel.ID(), "error": err.Error()})
			continue
		}

		nodes, err := d.profile.TestCaseList(d.graph)
		if err != nil {
			return fmt.Errorf("loadTC: resolving test case list: %w", err)
		}
		if err := tr.LoadNodes(ctx, d.bus, nodes); err != nil {
			return fmt.Errorf("loadTC: loading nodes: %w", err)
		}
	}
	return nil
}

// handleRetest implements spec.md §4.7's retest: given a tc_id, locate
// it in panel 0's current test run's failed map and retest it.
func (d *Dispatcher) handleRetest(ctx context.Context, payload map[string]any) error {
	cs, err := d.sessions.ControlSession()
	if err != nil {
		d.logWarn("retest", "no control session, dropping command", nil)
		return ErrMissingControlSession
	}

	panels := cs.Panels()
	if len(panels) == 0 {
		d.logWarn("retest", "control session has no panel, dropping command", nil)
		return ErrMissingPanel
	}

	tr := panels[0].TestRun()
	if tr == nil {
		d.logWarn("retest", "panel 0 has no active test run, dropping command", nil)
		return run.ErrNoTestRun
	}

	tcID, _ := payload["tc_id"].(string)
	return tr.Retest(ctx, d.bus, tcID)
}

func (d *Dispatcher) logWarn(service, message string, meta map[string]any) {
	if d.logger == nil {
		return
	}
	d.logger.Warn(service, "dispatch", message, meta)
}

func (d *Dispatcher) logError(service, message string, meta map[string]any) {
	if d.logger == nil {
		return
	}
	d.logger.Error(service, "dispatch", message, meta)
}
