package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete rama configuration
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Client   ClientConfig   `yaml:"client"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ProviderConfig defines the research provider child process
type ProviderConfig struct {
	Command  string            `yaml:"command"`  // Executable to run
	Args     []string          `yaml:"args"`     // Command arguments
	Dir      string            `yaml:"dir"`      // Working directory, empty for the current one
	Env      map[string]string `yaml:"env"`      // Environment variables with ${VAR} support
	Disabled bool              `yaml:"disabled"` // Never spawn, always serve fallbacks
}

// ClientConfig controls the handshake identity and the timeouts of the RPC client
type ClientConfig struct {
	Name            string   `yaml:"name"`
	Version         string   `yaml:"version"`
	ProtocolVersion string   `yaml:"protocol_version"`
	StartTimeout    Duration `yaml:"start_timeout"`
	CallTimeout     Duration `yaml:"call_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// SearchConfig holds defaults for search_papers
type SearchConfig struct {
	Sources    []string `yaml:"sources"`
	MaxResults int      `yaml:"max_results"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Color bool   `yaml:"color"`
}

// Duration is a time.Duration that reads "10s"-style strings from YAML
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{
			Command: "rama-provider",
		},
		Client: ClientConfig{
			Name:            "rama-backend",
			Version:         "0.1.0",
			ProtocolVersion: "2024-11-05",
			StartTimeout:    Duration(10 * time.Second),
			CallTimeout:     Duration(10 * time.Second),
			ShutdownTimeout: Duration(5 * time.Second),
		},
		Search: SearchConfig{
			Sources:    []string{"arxiv", "scholar"},
			MaxResults: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
	}
}

// Load reads and parses the YAML config file.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads config with fallback to default locations
// Checks: ./rama.yaml, ./configs/rama.yaml, ~/.config/rama/rama.yaml, /etc/rama/rama.yaml
func LoadWithDefaults() (*Config, error) {
	locations := []string{
		"./rama.yaml",
		"./configs/rama.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "rama", "rama.yaml"))
	}

	locations = append(locations, "/etc/rama/rama.yaml")

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}

	// No config found - defaults plus environment overrides
	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks config correctness
func (c *Config) Validate() error {
	if err := c.Provider.Validate(); err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search: max_results cannot be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}

	return nil
}

// Validate checks the provider config
func (p *ProviderConfig) Validate() error {
	if p.Disabled {
		return nil
	}

	if p.Command == "" {
		return fmt.Errorf("command is required unless the provider is disabled")
	}

	return nil
}

// Validate checks the client config
func (c *ClientConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if c.ProtocolVersion == "" {
		return fmt.Errorf("protocol_version is required")
	}

	if c.StartTimeout <= 0 {
		return fmt.Errorf("start_timeout must be positive")
	}

	if c.CallTimeout <= 0 {
		return fmt.Errorf("call_timeout must be positive")
	}

	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	return nil
}
