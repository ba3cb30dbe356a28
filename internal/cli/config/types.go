// Package config provides configuration management for the coverdash CLI.
//
// The file level types are shared with the dashboard server and live in
// internal/config; they are re-exported here via type aliases.
package config

import (
	sharedcfg "github.com/leapstack-labs/coverdash/internal/config"
)

// UIConfig is an alias for the shared dashboard configuration.
type UIConfig = sharedcfg.UIConfig

// ThemeConfig is an alias for the shared theme configuration.
type ThemeConfig = sharedcfg.ThemeConfig

// IngestConfig is an alias for the shared ingest configuration.
type IngestConfig = sharedcfg.IngestConfig

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot  string        `koanf:"-"`
	StatePath    string        `koanf:"state_path"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	UI           *UIConfig     `koanf:"ui"`
	Theme        *ThemeConfig  `koanf:"theme"`
	Ingest       *IngestConfig `koanf:"ingest"`
}

// Default configuration values.
const (
	DefaultStateFile = sharedcfg.DefaultStateFile
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return sharedcfg.DefaultUIConfig()
	}
	c.UI.ApplyDefaults()
	return c.UI
}
