package config

const (
	DefaultProvider    = "openai"
	DefaultModel       = "gpt-4o"
	DefaultMaxRetries  = 3
	DefaultCompsHost   = "zillow-com1.p.rapidapi.com"
	DefaultPDFOutput   = "output.pdf"
	DefaultPDFEngine   = "fpdf"
	DefaultMaxSteps    = 10
	DefaultServiceName = "compsbot"
)

func DefaultConfig() *Config {
	return &Config{
		DataDirectory: "~/.local/share/compsbot",
		LLM: LLMConfig{
			Provider:    DefaultProvider,
			Model:       DefaultModel,
			Temperature: 0.0,
			MaxRetries:  DefaultMaxRetries,
		},
		Comps: CompsConfig{
			Host: DefaultCompsHost,
		},
		PDF: PDFConfig{
			OutputPath: DefaultPDFOutput,
			Engine:     DefaultPDFEngine,
		},
		Session: SessionConfig{
			Backend:   "memory",
			SQLiteDSN: ":memory:",
		},
		Agent: AgentConfig{
			MaxSteps: DefaultMaxSteps,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
	}
}

func GenerateConfigTemplate() string {
	return `# compsbot configuration
# Location: ~/.config/compsbot/config.toml
# This file uses TOML format: https://toml.io
# Every value can be overridden by a COMPSBOT_* environment variable.

# Where the debug log lives (COMPSBOT_DEBUG=1 enables it)
data_directory = "~/.local/share/compsbot"

[llm]
# openai | openrouter | anthropic | ollama
provider = "openai"
model = "gpt-4o"
# base_url = ""
# API key; falls back to OPENAI_API_KEY / ANTHROPIC_API_KEY / OPENROUTER_API_KEY
# api_key = ""
temperature = 0.0
# Retries of transient completion failures before the turn fails
max_retries = 3

[comps]
host = "zillow-com1.p.rapidapi.com"
# RapidAPI key (or COMPSBOT_RAPIDAPI_KEY)
# api_key = ""

[pdf]
output_path = "output.pdf"
# fpdf (built in) | wkhtmltopdf (needs the wkhtmltopdf binary)
engine = "fpdf"

[session]
# memory | sqlite
backend = "memory"
sqlite_dsn = ":memory:"
# Fixed thread id; a random one is generated per process when empty
# thread_id = ""

[agent]
max_steps = 10
# Replaces the built-in real-estate system prompt
# system_prompt = ""

[telemetry]
# OTLP gRPC endpoint, e.g. "localhost:4317"; tracing is off when empty
# otlp_endpoint = ""
service_name = "compsbot"
`
}
