package engine

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/selkit/synth"
)

// Config holds the engine configuration.
type Config struct {
	// Cache memoizes translations by exact input.
	Cache bool `yaml:"cache"`

	// RecordDB is the recorder's SQLite path. Empty disables recording.
	RecordDB string `yaml:"record_db"`

	// MaxBody caps HTTP request bodies in bytes.
	MaxBody int64 `yaml:"max_body"`

	Policy synth.Policy `yaml:"policy"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a config with caching on and recording off.
func DefaultConfig() Config {
	return Config{
		Cache:   true,
		MaxBody: 4 << 20,
		Policy:  synth.DefaultPolicy(),
	}
}

func (c *Config) defaults() {
	if c.MaxBody <= 0 {
		c.MaxBody = 4 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfigFile reads a YAML config. Keys absent from the file keep their
// DefaultConfig values, including each policy field.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("engine: load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("engine: load config %s: %w", path, err)
	}
	return cfg, nil
}
