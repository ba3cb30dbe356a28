package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/theme"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFromDir(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    *ProjectConfig
		wantErr bool
	}{
		{
			name: "no config file",
			want: nil,
		},
		{
			name: "defaults applied",
			file: ConfigFileName,
			content: `theme:
  colors:
    --green: "#00ff00"
`,
			want: &ProjectConfig{
				StatePath: DefaultStateFile,
				UI:        DefaultUIConfig(),
				Theme:     &ThemeConfig{Colors: map[string]string{"--green": "#00ff00"}},
			},
		},
		{
			name: "alternate name with tabs",
			file: ConfigFileNameAlt,
			content: `state_path: cov.db
ui:
  port: 9000
  watch: true
  tabs:
    - target: "#overview"
      title: Summary
  tables: [absolute-coverage]
ingest:
  source_root: ..
`,
			want: &ProjectConfig{
				StatePath: "cov.db",
				UI: &UIConfig{
					Port:       9000,
					Watch:      true,
					ReportsDir: DefaultReportsDir,
					Tabs:       []dashboard.Tab{{Target: "#overview", Title: "Summary"}},
					Tables:     []string{"absolute-coverage"},
				},
				Ingest: &IngestConfig{SourceRoot: ".."},
			},
		},
		{
			name:    "invalid yaml",
			file:    ConfigFileName,
			content: "ui: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeConfig(t, dir, tt.file, tt.content)
			}

			got, err := LoadFromDir(dir)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	writeConfig(t, root, ConfigFileName, "")

	assert.Equal(t, root, FindProjectRoot(nested, 10))
	assert.Equal(t, root, FindProjectRoot(root, 10))
	assert.Empty(t, FindProjectRoot(nested, 2), "search stops after the level limit")
	assert.Empty(t, FindProjectRoot(t.TempDir(), 10))
}

func TestUIConfig_DashboardTabs(t *testing.T) {
	var nilCfg *UIConfig
	tabs, err := nilCfg.DashboardTabs()
	require.NoError(t, err)
	assert.Equal(t, dashboard.DefaultTabs(), tabs.All())
	assert.Equal(t, dashboard.DefaultTables, nilCfg.DashboardTables())

	cfg := &UIConfig{Tabs: []dashboard.Tab{{Target: "overview"}, {Target: "#overview"}}}
	_, err = cfg.DashboardTabs()
	assert.ErrorContains(t, err, "duplicate tab target")
}

func TestThemeConfig_Palette(t *testing.T) {
	var nilCfg *ThemeConfig
	assert.Equal(t, theme.DefaultColors[theme.Green], nilCfg.Palette().Color(theme.Green))

	cfg := &ThemeConfig{Colors: map[string]string{theme.Green: "#00ff00", theme.Red: "hsl(0, 100%, 50%)"}}
	p := cfg.Palette()
	assert.Equal(t, "#00ff00", p.Color(theme.Green))
	assert.Empty(t, p.Color(theme.Red), "only hex values resolve")
}

func TestIngestConfig_Options(t *testing.T) {
	var nilCfg *IngestConfig
	assert.Empty(t, nilCfg.Options().SourceRoot)

	opts := (&IngestConfig{SourceRoot: "src", ModulePath: "example.com/m"}).Options()
	assert.Equal(t, "src", opts.SourceRoot)
	assert.Equal(t, "example.com/m", opts.ModulePath)
}
