package run

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/interaction"
)

// Parameter is one measured/expected value pair recorded against a test
// execution, e.g. a voltage reading checked against a tolerance.
type Parameter struct {
	ID          string
	Name        string
	Description string
	Expected    any
	Measured    any
	Pass        bool
}

// Summary produces the wire shape of p, used both internally by Snapshot
// and by the application state manager building a parameterUpdate payload.
func (p Parameter) Summary() ParameterSummary {
	result := "fail"
	if p.Pass {
		result = "pass"
	}
	return ParameterSummary{
		Name:        p.Name,
		Expected:    p.Expected,
		Measured:    p.Measured,
		Description: p.Description,
		Result:      result,
		ID:          p.ID,
	}
}

// TestExecution is one attempt at running a test case: its parameters and
// progress, indexed by the order executions occur within a node's
// lifetime.
type TestExecution struct {
	ID         int
	Progress   int
	Parameters []Parameter
}

// TestCaseDataModel is the state a test case accumulates across its
// (possibly several, on retry) executions: its identity, a log of
// executions, and the parent run it belongs to once added to one.
type TestCaseDataModel struct {
	mu sync.RWMutex

	id          string
	name        string
	description string
	tcID        string
	parentRun   *TestRun
	executions  []TestExecution
}

func newTestCaseDataModel(tcID, name, description string) *TestCaseDataModel {
	return &TestCaseDataModel{tcID: tcID, name: name, description: description}
}

func (d *TestCaseDataModel) setParentRun(tr *TestRun) {
	d.mu.Lock()
	d.parentRun = tr
	d.mu.Unlock()
}

// ParentRun returns the test run this data model was added to, or nil.
func (d *TestCaseDataModel) ParentRun() *TestRun {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.parentRun
}

// resetExecutions clears the execution log, starting a fresh lifecycle.
// Used by TestRun.Retest (spec.md §8 scenario 4): a retest is a new
// lifecycle whose first execution is NewTestExecution(id, 0) again, in
// contrast to an auto-retry within the same lifecycle (scenario 3),
// which keeps accumulating executions instead of resetting them.
func (d *TestCaseDataModel) resetExecutions() {
	d.mu.Lock()
	d.executions = nil
	d.mu.Unlock()
}

// addExecution appends a new TestExecution and publishes NewTestExecution.
func (d *TestCaseDataModel) addExecution(ctx context.Context, bus event.Publisher) error {
	d.mu.Lock()
	execID := len(d.executions)
	d.executions = append(d.executions, TestExecution{ID: execID})
	d.mu.Unlock()

	bus.Publish(ctx, event.New(event.KindNewTestExecution, NewExecutionPayload{
		TCID:        d.tcID,
		ExecutionID: execID,
		TCState:     StateProcessing,
	}))
	return nil
}

// UpdateParameter appends p to the current execution and publishes
// ParameterUpdate.
func (d *TestCaseDataModel) UpdateParameter(ctx context.Context, bus event.Publisher, p Parameter) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	d.mu.Lock()
	execID := len(d.executions) - 1
	if execID >= 0 {
		d.executions[execID].Parameters = append(d.executions[execID].Parameters, p)
	}
	d.mu.Unlock()

	bus.Publish(ctx, event.New(event.KindParameterUpdate, ParameterUpdatePayload{
		TCID:        d.tcID,
		ExecutionID: execID,
		Parameter:   p,
	}))
}

// UpdateProgress sets the current execution's progress and publishes
// ProgressUpdate.
func (d *TestCaseDataModel) UpdateProgress(ctx context.Context, bus event.Publisher, progress int) {
	d.mu.Lock()
	execID := len(d.executions) - 1
	if execID >= 0 {
		d.executions[execID].Progress = progress
	}
	d.mu.Unlock()

	bus.Publish(ctx, event.New(event.KindProgressUpdate, ProgressUpdatePayload{
		TCID:     d.tcID,
		Progress: progress,
	}))
}

// UserInputRequest creates an input_request interaction, publishes
// UserInteraction, and blocks until the controller responds or ctx is
// canceled.
func (d *TestCaseDataModel) UserInputRequest(ctx context.Context, bus event.Publisher, message string) (any, error) {
	ic := interaction.New(interaction.KindInputRequest, message)
	bus.Publish(ctx, event.New(event.KindUserInteraction, ic))
	return ic.Wait(ctx)
}

// Snapshot produces the wire shape of spec.md §6's data-model snapshot.
func (d *TestCaseDataModel) Snapshot(state State) Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var trID, panelID, sessionID string
	progress := 0
	if d.parentRun != nil {
		trID = d.parentRun.ID()
		if p := d.parentRun.Panel(); p != nil {
			panelID = p.ID()
			if cs := p.Session(); cs != nil {
				sessionID = cs.ID()
			}
		}
	}

	executions := make(map[int]ExecutionSnapshot, len(d.executions))
	for _, ex := range d.executions {
		params := make(map[string]ParameterSummary, len(ex.Parameters))
		for _, p := range ex.Parameters {
			params[p.Name] = p.Summary()
		}
		executions[ex.ID] = ExecutionSnapshot{ID: ex.ID, Name: d.name, Parameters: params}
		if ex.ID == len(d.executions)-1 {
			progress = ex.Progress
		}
	}

	return Snapshot{
		ID:         d.tcID,
		Name:       d.name,
		TestRunID:  trID,
		PanelID:    panelID,
		SessionID:  sessionID,
		Progress:   progress,
		TCState:    state.String(),
		Executions: executions,
	}
}
