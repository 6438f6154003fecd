// Package bootstrap provides Wire dependency injection for the engine.
// This file defines App, the root object of the dependency graph
// InitializeApp (wire.go) builds, and its process-lifecycle methods.
// Everything downstream of App (the transport, the profile loader, the
// YAML config reader) is an out-of-scope collaborator per spec.md §1;
// App exists only to start and stop the wired components together, not
// to host a CLI or signal-handling main loop (that belongs to an
// embedding program's cmd/ entrypoint, which this repository does not
// ship).
package bootstrap

import (
	"context"

	"github.com/kodflow/testjig/internal/application/dispatcher"
	"github.com/kodflow/testjig/internal/application/eventbus"
	"github.com/kodflow/testjig/internal/application/pipeline"
	"github.com/kodflow/testjig/internal/application/state"
	"github.com/kodflow/testjig/internal/domain/engineconfig"
	"github.com/kodflow/testjig/internal/domain/logging"
	"github.com/kodflow/testjig/internal/domain/profile"
	grpctransport "github.com/kodflow/testjig/internal/infrastructure/transport/grpc"
)

// App holds every dependency Wire constructs for one engine instance:
// the event bus, the DAG, the stage pipeline, the loaded profile, the
// application state manager, the command dispatcher, and the transport
// adapter that drives all three from the outside.
type App struct {
	// Config is the loaded engine configuration (logging, profile path).
	Config engineconfig.Config
	// Logger is the engine-wide structured logger.
	Logger logging.Logger
	// Bus is the process-wide event bus (C3).
	Bus *eventbus.Bus
	// Pipeline is the three-stage execution pipeline (C4).
	Pipeline *pipeline.Pipeline
	// Profile is the loaded, registry-resolved test-case profile.
	Profile *profile.Profile
	// State is the application state manager (C6).
	State *state.Manager
	// Dispatcher is the command dispatcher (C7).
	Dispatcher *dispatcher.Dispatcher
	// Server is the gRPC transport adapter (out-of-scope collaborator,
	// kept here only so Run/Shutdown can start and stop its pumps).
	Server *grpctransport.Server
}

// NewApp assembles App from its wired dependencies and closes the
// constructor cycle documented on ProvideServer: server is constructed
// with nil dispatcher/sessions because the state manager (its
// ControlSessionProvider/SessionManager) and the dispatcher both need
// the state manager to exist first. NewApp wires both back in once
// everything is built.
func NewApp(
	cfg engineconfig.Config,
	logger logging.Logger,
	bus *eventbus.Bus,
	p *pipeline.Pipeline,
	prof *profile.Profile,
	server *grpctransport.Server,
	mgr *state.Manager,
	disp *dispatcher.Dispatcher,
) (*App, error) {
	server.SetSessions(mgr)
	server.SetDispatcher(disp)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Bus:        bus,
		Pipeline:   p,
		Profile:    prof,
		State:      mgr,
		Dispatcher: disp,
		Server:     server,
	}, nil
}

// Run starts the stage pipeline's workers and the transport's broadcast
// pumps. It returns immediately; both run until ctx is canceled.
func (a *App) Run(ctx context.Context) {
	a.Pipeline.Run(ctx)
	a.Server.Run(ctx)
}

// Shutdown blocks until the pipeline's stage workers and the
// transport's broadcast pumps have all returned. Callers should cancel
// the context passed to Run before calling Shutdown.
func (a *App) Shutdown() {
	a.Pipeline.Wait()
	a.Server.Wait()
}
