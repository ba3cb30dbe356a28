package config

// Default configuration values.
const (
	DefaultStateFile  = ".coverdash/state.db"
	DefaultPort       = 8765
	DefaultReportsDir = "reports"
)

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:       DefaultPort,
		AutoOpen:   true,
		Watch:      true,
		ReportsDir: DefaultReportsDir,
	}
}

// ApplyDefaults fills the unset values of c.
func (c *ProjectConfig) ApplyDefaults() {
	if c.StatePath == "" {
		c.StatePath = DefaultStateFile
	}
	if c.UI == nil {
		c.UI = DefaultUIConfig()
	}
	c.UI.ApplyDefaults()
}

// ApplyDefaults fills the unset values of c.
func (c *UIConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ReportsDir == "" {
		c.ReportsDir = DefaultReportsDir
	}
}
