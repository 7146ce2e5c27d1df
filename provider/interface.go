// Package provider implements model.Provider for the supported chat-completion
// endpoints.
//
// Every provider streams text deltas through the callback and reports
// completed tool calls once the model has finished emitting them. Message and
// tool conversions between the model package and each SDK live next to the
// provider that needs them.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:       provider.ProviderTypeOpenAI,
//	    APIKey:     "sk-...",
//	    Model:      "gpt-4o",
//	    MaxRetries: 3,
//	})
//	if err != nil {
//	    // handle error
//	}
//	err = p.ChatWithTools(ctx, messages, tools, callback)
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type        ProviderType
	BaseURL     string
	Model       string
	APIKey      string // unused for Ollama
	Temperature float64
	// MaxRetries bounds automatic retries of transient failures.
	MaxRetries int
}
