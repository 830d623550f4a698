package xstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/bft-labs/xstore/internal/domain"
)

// Default values applied by SetDefaults.
const (
	DefaultTimeout      = 5 * time.Second
	DefaultPollInterval = time.Second
)

// Config holds the construction parameters of a Client.
type Config struct {
	// HubURL is the address of the hub document. Relative URLs resolve
	// against Location. Required.
	HubURL string

	// Location is the URL of the embedding document. When empty, the host's
	// location is used (see WithHost), falling back to a file location.
	Location string

	// Timeout bounds OnConnect and every request.
	// Default: 5 seconds
	Timeout time.Duration

	// FrameID attaches to an already embedded hub frame with this id. The
	// frame must already point at HubURL. When no such frame exists a new
	// one is embedded under this id.
	FrameID string

	// PollInterval is the poll period used when attached to an existing
	// frame.
	// Default: 1 second
	PollInterval time.Duration
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HubURL) == "" {
		return fmt.Errorf("%w: hub URL is required", domain.ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
