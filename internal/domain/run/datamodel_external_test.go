package run_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodflow/testjig/internal/application/eventbus"
	"github.com/kodflow/testjig/internal/domain/event"
	"github.com/kodflow/testjig/internal/domain/run"
)

func TestTestCaseDataModel_Snapshot(t *testing.T) {
	t.Run("ReflectsExecutionsParametersAndProgress", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		g := run.NewGraph(bus, nil)
		n := run.NewTestCaseNode("voltage check", "checks the rail voltage", func(context.Context, map[string]any) (any, error) {
			return true, nil
		}, nil, "", 0)
		dm := n.DataModel()
		ctx := context.Background()

		// Executing the node is the only way to append a TestExecution; the
		// data model has no exported mutator for that by itself.
		require.NoError(t, g.Execute(ctx, n))
		dm.UpdateParameter(ctx, bus, run.Parameter{Name: "rail", Expected: 5.0, Measured: 5.1, Pass: true})
		dm.UpdateProgress(ctx, bus, 100)

		snap := dm.Snapshot(run.StateCleared)

		assert.Equal(t, n.ID(), snap.ID)
		assert.Equal(t, "cleared", snap.TCState)
		assert.Equal(t, 100, snap.Progress)
		require.Contains(t, snap.Executions, 0)
		require.Contains(t, snap.Executions[0].Parameters, "rail")
		assert.Equal(t, "pass", snap.Executions[0].Parameters["rail"].Result)
	})
}

func TestTestCaseDataModel_UserInputRequest(t *testing.T) {
	t.Run("ResolvesOnMatchingUserResponse", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		n := run.NewTestCaseNode("prompt case", "", nil, nil, "", 0)
		dm := n.DataModel()

		respCh := make(chan any, 1)
		errCh := make(chan error, 1)
		go func() {
			resp, err := dm.UserInputRequest(context.Background(), bus, "pick one")
			respCh <- resp
			errCh <- err
		}()

		// Resolving the interaction on a matching UserResponse is the state
		// manager's job in the real wiring; stand in for it here.
		var promptID string
		done := make(chan struct{})
		bus.Subscribe(event.KindUserInteraction, func(_ context.Context, e event.Event) error {
			ic := e.Payload.(interface {
				ID() string
				Resolve(any)
			})
			promptID = ic.ID()
			bus.Subscribe(event.KindUserResponse, func(_ context.Context, e event.Event) error {
				p := e.Payload.(run.UserResponsePayload)
				if p.InteractionID == ic.ID() {
					ic.Resolve(p.Response)
				}
				return nil
			})
			close(done)
			return nil
		})

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for UserInteraction publish")
		}

		bus.Publish(context.Background(), event.New(event.KindUserResponse, run.UserResponsePayload{
			InteractionID: promptID,
			Response:      "ok",
		}))

		select {
		case resp := <-respCh:
			assert.Equal(t, "ok", resp)
			assert.NoError(t, <-errCh)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for UserInputRequest to resume")
		}
	})

	t.Run("ReturnsContextErrorOnCancellation", func(t *testing.T) {
		bus := eventbus.NewBus(nil)
		n := run.NewTestCaseNode("prompt case", "", nil, nil, "", 0)
		dm := n.DataModel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := dm.UserInputRequest(ctx, bus, "pick one")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
