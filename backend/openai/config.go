package openai

import "time"

const (
	DefaultModel           = "gpt-4o-mini"
	DefaultMaxToolRounds   = 4
	DefaultAzureAPIVersion = "2024-10-21"
	DefaultTimeout         = 60 * time.Second
)

// Config selects the model service. With AzureEndpoint set, requests go to
// the Azure OpenAI deployment named by Model; otherwise to BaseURL (or the
// public API when empty). An empty APIKey falls back to OPENAI_API_KEY.
type Config struct {
	Model           string `json:"model,omitempty" env:"MODEL"`
	APIKey          string `json:"-" env:"API_KEY"`
	BaseURL         string `json:"base_url,omitempty" env:"BASE_URL"`
	AzureEndpoint   string `json:"azure_endpoint,omitempty" env:"AZURE_ENDPOINT"`
	AzureAPIVersion string `json:"azure_api_version,omitempty" env:"AZURE_API_VERSION"`
	MaxToolRounds   int    `json:"max_tool_rounds,omitempty" env:"MAX_TOOL_ROUNDS" validate:"gte=0"`
	MaxRetries      int    `json:"max_retries,omitempty" env:"MAX_RETRIES" validate:"gte=0"`
	TimeoutSeconds  int    `json:"timeout_seconds,omitempty" env:"TIMEOUT_SECONDS" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Model:           DefaultModel,
		AzureAPIVersion: DefaultAzureAPIVersion,
		MaxToolRounds:   DefaultMaxToolRounds,
		MaxRetries:      2,
		TimeoutSeconds:  int(DefaultTimeout / time.Second),
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.AzureEndpoint != "" {
		c.AzureEndpoint = source.AzureEndpoint
	}
	if source.AzureAPIVersion != "" {
		c.AzureAPIVersion = source.AzureAPIVersion
	}
	if source.MaxToolRounds > 0 {
		c.MaxToolRounds = source.MaxToolRounds
	}
	if source.MaxRetries > 0 {
		c.MaxRetries = source.MaxRetries
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
}
