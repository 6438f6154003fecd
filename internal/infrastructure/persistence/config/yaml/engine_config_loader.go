package yaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kodflow/testjig/internal/domain/engineconfig"
)

// LoadEngineConfig reads and parses the engine's top-level configuration
// document. Unlike Loader (which is stateful, tracking the profile path
// for Reload), this is a one-shot read: the engine config only changes
// across process restarts.
func LoadEngineConfig(path string) (engineconfig.Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - config path is trusted input
	if err != nil {
		return engineconfig.Config{}, fmt.Errorf("reading engine config file: %w", err)
	}

	cfg := engineconfig.Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return engineconfig.Config{}, fmt.Errorf("parsing engine config yaml: %w", err)
	}
	return cfg, nil
}
