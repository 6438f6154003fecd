// Package engineconfig is the top-level configuration document for the
// engine binary: where to listen, which profile document to load, and
// how to log. It is deliberately small; the bulk of the engine's
// domain-specific configuration lives in the profile document itself
// (internal/domain/profile), loaded separately.
package engineconfig

import "github.com/kodflow/testjig/internal/domain/logconfig"

// defaultListenAddr is the address the gRPC transport listens on when
// the config omits one.
const defaultListenAddr string = ":7800"

// Config is the engine's top-level configuration.
type Config struct {
	// ListenAddr is the TCP address for the gRPC transport. Nothing in
	// this repository reads it or opens a listener on it.
	ListenAddr string `yaml:"listen_addr"`
	// ProfilePath is the path to the YAML profile document describing
	// the test cases to run.
	ProfilePath string `yaml:"profile_path"`
	// PanelLimit is a bound on how many panels the controller may open.
	// It is not read: the gRPC transport opens every session with
	// run.DefaultPanelLimit.
	PanelLimit int `yaml:"panel_limit"`
	// Logging configures the engine's logging writers.
	Logging logconfig.LoggingConfig `yaml:"logging"`
}

// Default returns a Config with a console logger, the default listen
// address, and no profile path set (the caller must supply one).
func Default() Config {
	return Config{
		ListenAddr: defaultListenAddr,
		Logging:    logconfig.DefaultLoggingConfig(),
	}
}
