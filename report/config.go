package report

import "fmt"

// Store drivers.
const (
	DriverFile   = "file"
	DriverBadger = "badger"
)

// Config holds report store initialization parameters.
type Config struct {
	Driver string `json:"driver,omitempty" env:"DRIVER" validate:"omitempty,oneof=file badger"`
	Path   string `json:"path,omitempty" env:"PATH"` // empty disables persistence
}

// DefaultConfig returns the default configuration: file driver, disabled.
func DefaultConfig() Config {
	return Config{Driver: DriverFile}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Driver != "" {
		c.Driver = source.Driver
	}
	if source.Path != "" {
		c.Path = source.Path
	}
}

// NewStore creates a Store from configuration. Returns a nil Store when Path
// is empty, indicating persistence is disabled.
func NewStore(cfg *Config) (Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.Path), nil
	case DriverBadger:
		return OpenBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}
