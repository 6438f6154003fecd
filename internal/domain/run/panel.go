package run

import (
	"sync"

	"github.com/google/uuid"
)

// Panel owns at most one test run at a time. It belongs to exactly one
// control session.
type Panel struct {
	mu sync.RWMutex

	id      string
	session *ControlSession
	run     *TestRun
}

func newPanel(cs *ControlSession) *Panel {
	return &Panel{id: uuid.NewString(), session: cs}
}

// ID returns the panel's stable identity.
func (p *Panel) ID() string { return p.id }

// Session returns the panel's owning control session.
func (p *Panel) Session() *ControlSession { return p.session }

// TestRun returns the panel's current test run, or nil.
func (p *Panel) TestRun() *TestRun {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.run
}

// AddTestRun creates a fresh TestRun against graph and attaches it to the
// panel, failing if one is already active.
func (p *Panel) AddTestRun(graph *Graph) (*TestRun, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run != nil {
		return nil, ErrPanelHasTestRun
	}
	tr := NewTestRun(graph)
	tr.setPanel(p)
	p.run = tr
	return tr, nil
}

// removeTestRun detaches the panel's current test run.
func (p *Panel) removeTestRun() {
	p.mu.Lock()
	p.run = nil
	p.mu.Unlock()
}
