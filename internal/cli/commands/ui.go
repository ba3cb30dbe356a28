package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/coverdash/internal/ui"
)

// devSessionSecret signs the client cookie when no secret is configured.
const devSessionSecret = "coverdash-dev-secret-change-in-production" //nolint:gosec

// UIOptions holds options for the ui command.
type UIOptions struct {
	Port       int
	NoBrowser  bool
	Watch      bool
	ReportsDir string
}

// NewUICommand creates the ui command.
func NewUICommand() *cobra.Command {
	opts := &UIOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the coverage dashboard",
		Long: `Start a local web server serving the coverage dashboard.

The dashboard provides:
- Coverage overview and trend charts
- Absolute and change coverage file tables with painted sources
- Live reload when new profiles are written to the reports directory`,
		Example: `  # Start the dashboard on the default port
  coverdash ui

  # Start on custom port
  coverdash ui --port 3000

  # Ingest profiles written to ./out while the dashboard runs
  coverdash ui --reports-dir out`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Ingest profiles written to the reports directory")
	cmd.Flags().StringVar(&opts.ReportsDir, "reports-dir", "", "Directory watched for coverage profiles")

	return cmd
}

// serverConfig assembles the dashboard configuration from the loaded config
// and the command flags.
func serverConfig(cmd *cobra.Command, cmdCtx *CommandContext, opts *UIOptions) (ui.Config, error) {
	cfg := cmdCtx.Cfg
	uiCfg := cfg.GetUIConfig()

	// CLI flags override config file
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}
	reportsDir := uiCfg.ReportsDir
	if opts.ReportsDir != "" {
		reportsDir = opts.ReportsDir
	}
	secret := uiCfg.SessionSecret
	if secret == "" {
		cmdCtx.Logger.Warn("ui.session_secret is not set, using the development secret")
		secret = devSessionSecret
	}

	tabs, err := uiCfg.DashboardTabs()
	if err != nil {
		return ui.Config{}, err
	}

	return ui.Config{
		Store:         cmdCtx.Store,
		Port:          port,
		Watch:         watch,
		ReportsDir:    reportsDir,
		Ingest:        cfg.Ingest.Options(),
		SessionSecret: secret,
		Tabs:          tabs,
		Tables:        uiCfg.DashboardTables(),
		Palette:       cfg.Theme.Palette(),
		Logger:        cmdCtx.Logger,
	}, nil
}

func runUI(cmd *cobra.Command, opts *UIOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	serverCfg, err := serverConfig(cmd, cmdCtx, opts)
	if err != nil {
		return err
	}
	if serverCfg.Watch {
		if err := os.MkdirAll(serverCfg.ReportsDir, 0o750); err != nil {
			return fmt.Errorf("failed to create reports directory: %w", err)
		}
	}

	server := ui.NewServer(serverCfg)

	url := fmt.Sprintf("http://localhost:%d/coverage", serverCfg.Port)
	if cmdCtx.Cfg.GetUIConfig().AutoOpen && !opts.NoBrowser {
		go openBrowser(url)
	}

	r := cmdCtx.Renderer
	r.Println("Starting dashboard on " + url)
	if serverCfg.Watch {
		r.Muted("Watching " + serverCfg.ReportsDir + " for coverage profiles")
	}
	r.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
