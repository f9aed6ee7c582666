package focusengine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/e7canasta/orion-focus-engine/internal/engine"
)

// New returns an engine with the default configuration, ready for a
// session.
func New() *Engine {
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		// DefaultConfig always validates.
		panic(fmt.Sprintf("focusengine: default config rejected: %v", err))
	}
	return eng
}

// NewWithConfig returns an engine for the given configuration. The
// configuration is validated (and structurally gap-filled) first; errors
// wrap ErrInvalidConfig.
func NewWithConfig(cfg Config) (*Engine, error) {
	return engine.New(cfg)
}

// DefaultConfig returns the recommended configuration for typical webcam
// sessions.
func DefaultConfig() Config {
	return engine.DefaultConfig()
}

// RelaxedConfig returns a configuration for noisy setups: glasses glare,
// low light, or users who naturally shift more.
func RelaxedConfig() Config {
	return engine.RelaxedConfig()
}

// StrictConfig returns a configuration for competitive scoring.
func StrictConfig() Config {
	return engine.StrictConfig()
}

// DefaultGrades returns the standard descending grade table.
func DefaultGrades() []GradeBand {
	return engine.DefaultGrades()
}

// LoadConfig reads a YAML file and merges it over the defaults: fields the
// file omits keep their default values, so partial files are valid. The
// merged configuration is validated before being returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
