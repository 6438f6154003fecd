//go:build wireinject

package bootstrap

import (
	"github.com/google/wire"

	"github.com/kodflow/testjig/internal/domain/profile"
)

// InitializeApp creates the application with all dependencies wired.
// This function is the injector Wire generates wire_gen.go's
// implementation for; edit this file and regenerate with `go generate`
// rather than editing wire_gen.go by hand.
//
// Params:
//   - configPath: path to the engine's YAML configuration file.
//   - registry: the test case callables the loaded profile resolves
//     against (supplied by the embedding program, not loaded from disk).
//
// Returns:
//   - *App: the fully wired application.
//   - error: any error during dependency construction.
func InitializeApp(configPath string, registry profile.Registry) (*App, error) {
	wire.Build(
		LoadEngineConfig,
		ProvideLogger,
		ProvideBus,
		ProvideGraph,
		ProvidePipeline,
		ProvideProfile,
		ProvideTCDataChannel,
		ProvideUIRequestChannel,
		ProvideServer,
		ProvideStateManager,
		ProvideDispatcher,
		NewApp,
	)
	return nil, nil
}
