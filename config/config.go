package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

type LLMConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	BaseURL     string  `toml:"base_url,omitempty"`
	APIKey      string  `toml:"api_key,omitempty"`
	Temperature float64 `toml:"temperature"`
	MaxRetries  int     `toml:"max_retries"`
}

type CompsConfig struct {
	Host   string `toml:"host"`
	APIKey string `toml:"api_key,omitempty"`
	// BaseURL overrides https://<host>; used for local mocks.
	BaseURL string `toml:"base_url,omitempty"`
}

type PDFConfig struct {
	OutputPath string `toml:"output_path"`
	Engine     string `toml:"engine"`
}

type SessionConfig struct {
	Backend   string `toml:"backend"`
	SQLiteDSN string `toml:"sqlite_dsn,omitempty"`
	ThreadID  string `toml:"thread_id,omitempty"`
}

type AgentConfig struct {
	MaxSteps     int    `toml:"max_steps"`
	SystemPrompt string `toml:"system_prompt,omitempty"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `toml:"otlp_endpoint,omitempty"`
	ServiceName  string `toml:"service_name"`
}

// Config is the full runtime configuration, loaded once at process start and
// passed down explicitly.
type Config struct {
	DataDirectory string          `toml:"data_directory"`
	LLM           LLMConfig       `toml:"llm"`
	Comps         CompsConfig     `toml:"comps"`
	PDF           PDFConfig       `toml:"pdf"`
	Session       SessionConfig   `toml:"session"`
	Agent         AgentConfig     `toml:"agent"`
	Telemetry     TelemetryConfig `toml:"telemetry"`
}

// ErrMissingCredential is returned by Validate when a required API key is unset.
var ErrMissingCredential = errors.New("missing credential")

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COMPSBOT_DATA_DIR"); v != "" {
		c.DataDirectory = v
	}
	if v := os.Getenv("COMPSBOT_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("COMPSBOT_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("COMPSBOT_LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("COMPSBOT_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(providerKeyEnv(c.LLM.Provider))
	}
	if v := os.Getenv("COMPSBOT_RAPIDAPI_KEY"); v != "" {
		c.Comps.APIKey = v
	}
	if v := os.Getenv("COMPSBOT_PDF_OUTPUT"); v != "" {
		c.PDF.OutputPath = v
	}
	if v := os.Getenv("COMPSBOT_THREAD_ID"); v != "" {
		c.Session.ThreadID = v
	}
}

// providerKeyEnv maps a provider ID to the vendor's conventional env var.
func providerKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

// Validate reports configuration that would fail on the first turn.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is empty")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("%w: llm.api_key for provider %s", ErrMissingCredential, c.LLM.Provider)
	}
	if c.Comps.APIKey == "" {
		return fmt.Errorf("%w: comps.api_key (COMPSBOT_RAPIDAPI_KEY)", ErrMissingCredential)
	}
	if c.PDF.OutputPath == "" {
		return fmt.Errorf("pdf.output_path is empty")
	}
	if c.Agent.MaxSteps <= 0 {
		return fmt.Errorf("agent.max_steps must be positive, got %d", c.Agent.MaxSteps)
	}
	return nil
}

// Load reads the settings file (creating it from the template on first run),
// then applies environment overrides. Env vars always win.
func Load() (*Config, error) {
	return LoadFrom(GetSettingsFilePath())
}

func LoadFrom(settingsPath string) (*Config, error) {
	cfg, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
