package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rama.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
provider:
  command: research-server
  args: ["-m", "rama_research_server.server"]
  dir: ../mcp-server
client:
  call_timeout: 3s
search:
  sources: [arxiv]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Provider.Command != "research-server" {
		t.Errorf("Expected command research-server, got %q", cfg.Provider.Command)
	}
	if len(cfg.Provider.Args) != 2 || cfg.Provider.Args[1] != "rama_research_server.server" {
		t.Errorf("Unexpected args: %v", cfg.Provider.Args)
	}
	if cfg.Client.CallTimeout.Std() != 3*time.Second {
		t.Errorf("Expected call timeout 3s, got %s", cfg.Client.CallTimeout.Std())
	}

	// Untouched fields keep their defaults
	if cfg.Client.StartTimeout.Std() != 10*time.Second {
		t.Errorf("Expected default start timeout, got %s", cfg.Client.StartTimeout.Std())
	}
	if cfg.Client.ProtocolVersion != "2024-11-05" {
		t.Errorf("Expected default protocol version, got %q", cfg.Client.ProtocolVersion)
	}
	if cfg.Search.MaxResults != 10 {
		t.Errorf("Expected default max results 10, got %d", cfg.Search.MaxResults)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
client:
  call_timeout: soon
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing command",
			mutate:  func(c *Config) { c.Provider.Command = "" },
			wantErr: "command is required",
		},
		{
			name: "disabled provider needs no command",
			mutate: func(c *Config) {
				c.Provider.Command = ""
				c.Provider.Disabled = true
			},
		},
		{
			name:    "zero call timeout",
			mutate:  func(c *Config) { c.Client.CallTimeout = 0 },
			wantErr: "call_timeout",
		},
		{
			name:    "negative max results",
			mutate:  func(c *Config) { c.Search.MaxResults = -1 },
			wantErr: "max_results",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "unknown level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RAMA_PROVIDER_COMMAND", "/opt/rama/provider")
	t.Setenv("RAMA_CALL_TIMEOUT", "250ms")
	t.Setenv("RAMA_LOG_LEVEL", "debug")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Provider.Command != "/opt/rama/provider" {
		t.Errorf("Expected command override, got %q", cfg.Provider.Command)
	}
	if cfg.Client.CallTimeout.Std() != 250*time.Millisecond {
		t.Errorf("Expected 250ms call timeout, got %s", cfg.Client.CallTimeout.Std())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug level, got %q", cfg.Logging.Level)
	}
	if cfg.Client.StartTimeout.Std() != 10*time.Second {
		t.Errorf("Start timeout should be untouched, got %s", cfg.Client.StartTimeout.Std())
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("RAMA_TEST_TOKEN", "abc123")

	tests := []struct {
		in   string
		want string
	}{
		{"Bearer ${RAMA_TEST_TOKEN}", "Bearer abc123"},
		{"$RAMA_TEST_TOKEN", "abc123"},
		{"${RAMA_TEST_UNSET_VAR}", ""},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := ExpandEnv(tt.in); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if ExpandEnvMap(nil) != nil {
		t.Error("ExpandEnvMap(nil) should return nil")
	}
}
