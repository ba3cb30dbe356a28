// Package config provides the project configuration types shared by the
// command line and the dashboard server.
package config

import (
	"github.com/leapstack-labs/coverdash/internal/coverage"
	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/theme"
)

// ProjectConfig is the content of a coverdash.yaml file.
type ProjectConfig struct {
	StatePath string        `koanf:"state_path"`
	UI        *UIConfig     `koanf:"ui"`
	Theme     *ThemeConfig  `koanf:"theme"`
	Ingest    *IngestConfig `koanf:"ingest"`
}

// UIConfig configures the dashboard server.
type UIConfig struct {
	Port     int  `koanf:"port"`
	AutoOpen bool `koanf:"auto_open"`
	// Watch ingests profiles written to ReportsDir while the server runs.
	Watch         bool            `koanf:"watch"`
	ReportsDir    string          `koanf:"reports_dir"`
	SessionSecret string          `koanf:"session_secret"`
	Tabs          []dashboard.Tab `koanf:"tabs"`
	Tables        []string        `koanf:"tables"`
}

// ThemeConfig maps theme color names such as "--green" to hex values.
type ThemeConfig struct {
	Colors map[string]string `koanf:"colors"`
}

// IngestConfig holds the defaults of every ingested build.
type IngestConfig struct {
	SourceRoot string `koanf:"source_root"`
	ModulePath string `koanf:"module_path"`
}

// DashboardTabs builds the tab registry, falling back to the default tabs.
func (c *UIConfig) DashboardTabs() (*dashboard.Tabs, error) {
	if c == nil || len(c.Tabs) == 0 {
		return dashboard.NewTabs(dashboard.DefaultTabs()...)
	}
	return dashboard.NewTabs(c.Tabs...)
}

// DashboardTables returns the tables with a source panel.
func (c *UIConfig) DashboardTables() []string {
	if c == nil || len(c.Tables) == 0 {
		return dashboard.DefaultTables
	}
	return c.Tables
}

// Palette returns the chart palette. Missing colors use the defaults.
func (c *ThemeConfig) Palette() *theme.Palette {
	if c == nil {
		return theme.NewPalette(nil)
	}
	return theme.NewPalette(c.Colors)
}

// Options returns the ingest options for a build.
func (c *IngestConfig) Options() coverage.IngestOptions {
	if c == nil {
		return coverage.IngestOptions{}
	}
	return coverage.IngestOptions{
		SourceRoot: c.SourceRoot,
		ModulePath: c.ModulePath,
	}
}
