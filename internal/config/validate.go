package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/rajramo61/aem-core-wcm-components/internal/models"
)

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be 'postgres' or 'sqlite', got '%s'", c.Database.Driver)
	}

	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	// The regex is handed to template callers verbatim, so a broken
	// pattern should fail at startup rather than per request.
	if c.ClientLibs.ResourceTypeRegex != "" {
		if _, err := regexp.Compile(c.ClientLibs.ResourceTypeRegex); err != nil {
			return fmt.Errorf("clientlibs.resource_type_regex is not a valid regex: %w", err)
		}
	}

	switch c.Amp.DefaultMode {
	case "", models.AmpModeOnly, models.AmpModePaired, models.AmpModeNone:
	default:
		return fmt.Errorf("amp.default_mode must be one of '%s', '%s', '%s' or empty, got '%s'",
			models.AmpModeOnly, models.AmpModePaired, models.AmpModeNone, c.Amp.DefaultMode)
	}

	return nil
}
