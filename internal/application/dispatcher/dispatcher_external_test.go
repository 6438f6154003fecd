package dispatcher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/testjig/internal/application/dispatcher"
	"github.com/kodflow/testjig/internal/application/eventbus"
	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/profile"
	"github.com/kodflow/testjig/internal/domain/run"
)

// fakeSessions implements dispatcher.ControlSessionProvider over a
// single swappable control session.
type fakeSessions struct {
	cs  *run.ControlSession
	err error
}

func (f *fakeSessions) ControlSession() (*run.ControlSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cs, nil
}

func constFn(v any) run.TestCaseFunc {
	return func(context.Context, map[string]any) (any, error) { return v, nil }
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("UnknownCommandReturnsSentinel", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		g := run.NewGraph(bus, nil)
		d := dispatcher.New(&fakeSessions{}, g, bus, profile.New(profile.Document{}, profile.Registry{}), nil)

		err := d.Dispatch(context.Background(), dispatcher.Command{CommandType: "bogus"})
		assert.ErrorIs(t, err, dispatcher.ErrUnknownCommand)
	})

	t.Run("LoadTCWithoutControlSessionIsRecoverable", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		g := run.NewGraph(bus, nil)
		d := dispatcher.New(&fakeSessions{err: run.ErrNoTestRun}, g, bus, profile.New(profile.Document{}, profile.Registry{}), nil)

		err := d.Dispatch(context.Background(), dispatcher.Command{CommandType: "loadTC"})
		assert.ErrorIs(t, err, dispatcher.ErrMissingControlSession)
	})

	t.Run("LoadTCWiresProfileIntoEveryPanel", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		g := run.NewGraph(bus, nil)
		cs := run.NewControlSession("h1", 1)
		_, err := cs.AddPanel()
		require.NoError(t, err)

		doc := profile.Document{Cases: []profile.CaseSpec{{Key: "a", Name: "case a"}}}
		reg := profile.Registry{"a": constFn(true)}
		d := dispatcher.New(&fakeSessions{cs: cs}, g, bus, profile.New(doc, reg), nil)

		var newTCCount int
		bus.Subscribe(event.KindNewTestCase, func(context.Context, event.Event) error {
			newTCCount++
			return nil
		})

		require.NoError(t, d.Dispatch(context.Background(), dispatcher.Command{CommandType: "loadTC"}))

		assert.Equal(t, 1, newTCCount)
		assert.NotNil(t, cs.Panels()[0].TestRun())
	})

	t.Run("RetestWithoutPanelIsRecoverable", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		g := run.NewGraph(bus, nil)
		cs := run.NewControlSession("h1", 1)
		d := dispatcher.New(&fakeSessions{cs: cs}, g, bus, profile.New(profile.Document{}, profile.Registry{}), nil)

		err := d.Dispatch(context.Background(), dispatcher.Command{CommandType: "retest", Payload: map[string]any{"tc_id": "x"}})
		assert.ErrorIs(t, err, dispatcher.ErrMissingPanel)
	})

	t.Run("RetestDelegatesToTestRun", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		g := run.NewGraph(bus, nil)
		cs := run.NewControlSession("h1", 1)
		panel, err := cs.AddPanel()
		require.NoError(t, err)
		tr, err := panel.AddTestRun(g)
		require.NoError(t, err)

		n := run.NewTestCaseNode("a", "", constFn(true), nil, "", 0)
		require.NoError(t, tr.AddTCNode(context.Background(), bus, n))
		tr.Quarantine(context.Background(), bus, n)

		d := dispatcher.New(&fakeSessions{cs: cs}, g, bus, profile.New(profile.Document{}, profile.Registry{}), nil)

		err = d.Dispatch(context.Background(), dispatcher.Command{CommandType: "retest", Payload: map[string]any{"tc_id": n.ID()}})
		require.NoError(t, err)

		_, stillFailed := tr.FailedNode(n.ID())
		assert.False(t, stillFailed)
	})
}
