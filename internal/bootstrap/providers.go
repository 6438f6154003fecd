// Package bootstrap provides Wire dependency injection for the engine.
// This file contains custom providers that require conditional logic
// or wiring beyond a simple constructor call.
package bootstrap

import (
	"fmt"

	"github.com/kodflow/testjig/internal/application/dispatcher"
	"github.com/kodflow/testjig/internal/application/eventbus"
	"github.com/kodflow/testjig/internal/application/pipeline"
	"github.com/kodflow/testjig/internal/application/state"
	"github.com/kodflow/testjig/internal/domain/engineconfig"
	multilog "github.com/kodflow/testjig/internal/infrastructure/logging"
	"github.com/kodflow/testjig/internal/domain/logging"
	"github.com/kodflow/testjig/internal/domain/profile"
	"github.com/kodflow/testjig/internal/domain/run"
	yamlconfig "github.com/kodflow/testjig/internal/infrastructure/persistence/config/yaml"
	grpctransport "github.com/kodflow/testjig/internal/infrastructure/transport/grpc"
)

// tcDataChannelCapacity and uiRequestChannelCapacity bound the state
// manager's output queues, mirroring the pipeline's stageQueueCapacity
// convention.
const (
	tcDataChannelCapacity    int = 50
	uiRequestChannelCapacity int = 50
)

// LoadEngineConfig loads the engine's top-level configuration from
// configPath.
func LoadEngineConfig(configPath string) (engineconfig.Config, error) {
	return yamlconfig.LoadEngineConfig(configPath)
}

// ProvideLogger builds the engine's logger from the loaded configuration.
func ProvideLogger(cfg engineconfig.Config) (logging.Logger, error) {
	return multilog.BuildLogger(cfg.Logging, "")
}

// ProvideBus constructs the event bus every other application component
// publishes to and subscribes on.
func ProvideBus(logger logging.Logger) *eventbus.Bus {
	return eventbus.NewBus(logger)
}

// ProvideGraph constructs the dependency graph shared by every panel's
// test runs.
func ProvideGraph(bus *eventbus.Bus, logger logging.Logger) *run.Graph {
	return run.NewGraph(bus, logger)
}

// ProvidePipeline constructs the three-stage execution pipeline. Its
// Ready() queue is what the state manager's NodeReady handler forwards
// scheduled nodes into; Run must still be called on the returned value.
func ProvidePipeline(graph *run.Graph, bus *eventbus.Bus, logger logging.Logger) *pipeline.Pipeline {
	return pipeline.New(graph, bus, logger)
}

// ProvideProfile loads the profile document named by cfg.ProfilePath and
// resolves it against registry.
func ProvideProfile(cfg engineconfig.Config, registry profile.Registry) (*profile.Profile, error) {
	loader := yamlconfig.New()
	doc, err := loader.Load(cfg.ProfilePath)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return profile.New(doc, registry), nil
}

// ProvideTCDataChannel constructs the bounded channel the state manager
// publishes tc-data messages onto and the gRPC server drains.
func ProvideTCDataChannel() chan state.TCDataMessage {
	return make(chan state.TCDataMessage, tcDataChannelCapacity)
}

// ProvideUIRequestChannel constructs the bounded channel the state
// manager publishes UI prompts onto and the gRPC server drains.
func ProvideUIRequestChannel() chan state.UIPromptMessage {
	return make(chan state.UIPromptMessage, uiRequestChannelCapacity)
}

// ProvideServer constructs the gRPC transport adapter with only the
// channels it needs to start draining. Its dispatcher and session
// manager are wired in later by NewApp (SetDispatcher/SetSessions),
// since both of those in turn depend on the state manager, which itself
// depends on this Server as its Transport port — a cycle that, as in
// the teacher's supervisor/health-prober wiring, is broken by
// constructing first and configuring after.
func ProvideServer(tcData chan state.TCDataMessage, uiRequest chan state.UIPromptMessage, logger logging.Logger) *grpctransport.Server {
	return grpctransport.NewServer(nil, nil, tcData, uiRequest, logger)
}

// ProvideStateManager constructs the application state manager. server
// satisfies the Transport port used only for the NewViewSession replay
// send, which never touches server's own dispatcher/sessions fields, so
// this does not require those to be wired yet.
func ProvideStateManager(
	bus *eventbus.Bus,
	p *pipeline.Pipeline,
	tcData chan state.TCDataMessage,
	uiRequest chan state.UIPromptMessage,
	server *grpctransport.Server,
	logger logging.Logger,
) *state.Manager {
	return state.New(bus, p.Ready(), tcData, uiRequest, server, logger)
}

// ProvideDispatcher constructs the command dispatcher (C7).
func ProvideDispatcher(mgr *state.Manager, graph *run.Graph, bus *eventbus.Bus, prof *profile.Profile, logger logging.Logger) *dispatcher.Dispatcher {
	return dispatcher.New(mgr, graph, bus, prof, logger)
}
