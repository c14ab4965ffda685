package mapper

import (
	"fmt"
	"runtime"

	"github.com/dyuri/tsmap/internal/model"
	"github.com/dyuri/tsmap/internal/sector"
)

// Config holds configuration for a Mapper
type Config struct {
	Workers     int                     // Sectors decoded in parallel
	UnknownTags sector.UnknownTagPolicy // What to do with unknown item types
	Catalog     *model.Catalog          // Optional definition catalog
}

// DefaultConfig returns a config using one worker per CPU
func DefaultConfig() Config {
	return Config{
		Workers:     runtime.GOMAXPROCS(0),
		UnknownTags: sector.UnknownTagFail,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, ok := sector.ParseUnknownTagPolicy(string(c.UnknownTags)); !ok {
		return fmt.Errorf("invalid unknown tag policy: %q", c.UnknownTags)
	}
	return nil
}
