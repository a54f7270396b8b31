package orchestrate

import (
	"fmt"
	"strings"
)

const (
	// DefaultMarker is the convergence phrase of the incident group chat.
	DefaultMarker   = "no action needed"
	DefaultMaxTurns = 10
)

// Config holds the session parameters consumed at construction. Observer is
// a name resolved through observability.GetObserver.
//
// Example JSON:
//
//	{
//	  "participants": ["INCIDENT_MANAGER", "DEVOPS_ASSISTANT"],
//	  "marker": "no action needed",
//	  "max_turns": 10,
//	  "log_path": "logs/app.log",
//	  "observer": "slog"
//	}
type Config struct {
	Participants []string `json:"participants,omitempty" env:"PARTICIPANTS" envSeparator:","`
	Marker       string   `json:"marker,omitempty" env:"MARKER"`
	MaxTurns     int      `json:"max_turns,omitempty" env:"MAX_TURNS"`
	LogPath      string   `json:"log_path,omitempty" env:"LOG_PATH"`
	Observer     string   `json:"observer,omitempty" env:"OBSERVER"`
}

// DefaultConfig returns the session defaults. Participants are left empty;
// the roster comes from the persona catalog in use.
func DefaultConfig() Config {
	return Config{
		Marker:   DefaultMarker,
		MaxTurns: DefaultMaxTurns,
		Observer: "slog",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if len(source.Participants) > 0 {
		c.Participants = append([]string(nil), source.Participants...)
	}
	if source.Marker != "" {
		c.Marker = source.Marker
	}
	if source.MaxTurns != 0 {
		c.MaxTurns = source.MaxTurns
	}
	if source.LogPath != "" {
		c.LogPath = source.LogPath
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// Validate reports configuration errors wrapped in ErrConfiguration.
func (c *Config) Validate() error {
	if err := validateParticipants(c.Participants); err != nil {
		return configError(err)
	}
	if c.MaxTurns < 1 {
		return configError(fmt.Errorf("%w: got %d", ErrInvalidMaxTurns, c.MaxTurns))
	}
	if strings.TrimSpace(c.Marker) == "" {
		return configError(fmt.Errorf("marker must not be empty"))
	}
	return nil
}

// NewConversation validates c and opens a conversation with the prompt.
func (c *Config) NewConversation(prompt string) (*Conversation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return NewConversation(prompt, c.Participants, c.MaxTurns)
}
