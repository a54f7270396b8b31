package kernel

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/tailored-agentic-units/groupchat/backend/openai"
	"github.com/tailored-agentic-units/groupchat/incident"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
	"github.com/tailored-agentic-units/groupchat/report"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv, e.g.
// GROUPCHAT_MAX_TURNS or GROUPCHAT_OPENAI_MODEL.
const EnvPrefix = "GROUPCHAT_"

// Backend drivers.
const (
	DriverRules  = "rules"
	DriverOpenAI = "openai"
)

// BackendConfig selects the service that plays the personas.
type BackendConfig struct {
	Driver string        `json:"driver,omitempty" env:"BACKEND" validate:"oneof=rules openai"`
	OpenAI openai.Config `json:"openai" envPrefix:"OPENAI_"`
}

// Config holds initialization parameters for all subsystems.
//
// Example JSON:
//
//	{
//	  "chat": {"log_path": "logs/app.log", "max_turns": 8},
//	  "backend": {"driver": "openai", "openai": {"model": "gpt-4o"}},
//	  "personas": "personas.yaml",
//	  "report": {"driver": "badger", "path": "reports"}
//	}
type Config struct {
	Chat             orchestrate.Config `json:"chat"`
	Backend          BackendConfig      `json:"backend"`
	Personas         string             `json:"personas,omitempty" env:"PERSONAS"`
	Report           report.Config      `json:"report" envPrefix:"REPORT_"`
	FailureThreshold int                `json:"failure_threshold,omitempty" env:"FAILURE_THRESHOLD" validate:"gte=0"`
}

// DefaultConfig returns a Config for the canonical incident group chat
// played by the offline rules backend.
func DefaultConfig() Config {
	chat := orchestrate.DefaultConfig()
	chat.Participants = incident.Participants()

	return Config{
		Chat: chat,
		Backend: BackendConfig{
			Driver: DriverRules,
			OpenAI: openai.DefaultConfig(),
		},
		Report:           report.DefaultConfig(),
		FailureThreshold: incident.DefaultFailureThreshold,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Chat.Merge(&source.Chat)
	c.Report.Merge(&source.Report)
	c.Backend.OpenAI.Merge(&source.Backend.OpenAI)

	if source.Backend.Driver != "" {
		c.Backend.Driver = source.Backend.Driver
	}
	if source.Personas != "" {
		c.Personas = source.Personas
	}
	if source.FailureThreshold > 0 {
		c.FailureThreshold = source.FailureThreshold
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// ApplyEnv overlays GROUPCHAT_* environment variables onto c. Unset
// variables leave their fields untouched.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

var validate = validator.New()

// Validate checks the whole configuration. Failures wrap
// orchestrate.ErrConfiguration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", orchestrate.ErrConfiguration, err)
	}
	if err := c.Chat.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Chat.LogPath) == "" {
		return fmt.Errorf("%w: log path is required", orchestrate.ErrConfiguration)
	}
	if c.Backend.Driver == DriverOpenAI && c.Backend.OpenAI.Model == "" {
		return fmt.Errorf("%w: %w", orchestrate.ErrConfiguration, openai.ErrMissingModel)
	}
	return nil
}
