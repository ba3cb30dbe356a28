package config

import (
	"fmt"

	"github.com/leapstack-labs/coverdash/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("invalid output format %q (use one of %v)", c.OutputFormat, output.Modes)
	}
	if c.UI != nil {
		if c.UI.Port < 0 || c.UI.Port > 65535 {
			return fmt.Errorf("ui.port %d is out of range", c.UI.Port)
		}
		if _, err := c.UI.DashboardTabs(); err != nil {
			return fmt.Errorf("invalid ui.tabs: %w", err)
		}
	}
	return nil
}
