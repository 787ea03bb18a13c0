package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joeshaw/envdecode"
)

// envVarPattern matches ${VAR} and $VAR patterns
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}|\$([A-Za-z0-9_]+)`)

// ExpandEnv replaces ${VAR} and $VAR with environment variables
// Example: "${HOME}/mcp-server" → "/home/me/mcp-server"
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := ""
		if match[1] == '{' {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		return os.Getenv(varName)
	})
}

// ExpandEnvMap expands all values in a map
func ExpandEnvMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}

	expanded := make(map[string]string, len(m))
	for key, value := range m {
		expanded[key] = ExpandEnv(value)
	}
	return expanded
}

// overrides lists the settings that can be set from the environment.
// Zero values mean "not set" and leave the file value alone.
type overrides struct {
	ProviderCommand  string        `env:"RAMA_PROVIDER_COMMAND"`
	ProviderDir      string        `env:"RAMA_PROVIDER_DIR"`
	ProviderDisabled bool          `env:"RAMA_PROVIDER_DISABLED"`
	StartTimeout     time.Duration `env:"RAMA_START_TIMEOUT"`
	CallTimeout      time.Duration `env:"RAMA_CALL_TIMEOUT"`
	LogLevel         string        `env:"RAMA_LOG_LEVEL"`
}

// ApplyEnv overlays RAMA_* environment variables onto cfg
func ApplyEnv(cfg *Config) error {
	var o overrides
	if err := envdecode.Decode(&o); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return fmt.Errorf("failed to decode environment overrides: %w", err)
	}

	if o.ProviderCommand != "" {
		cfg.Provider.Command = o.ProviderCommand
	}
	if o.ProviderDir != "" {
		cfg.Provider.Dir = o.ProviderDir
	}
	if o.ProviderDisabled {
		cfg.Provider.Disabled = true
	}
	if o.StartTimeout > 0 {
		cfg.Client.StartTimeout = Duration(o.StartTimeout)
	}
	if o.CallTimeout > 0 {
		cfg.Client.CallTimeout = Duration(o.CallTimeout)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}

	return nil
}
