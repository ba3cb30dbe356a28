package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/coverdash/internal/coverage"
	"github.com/leapstack-labs/coverdash/internal/format"
	"github.com/leapstack-labs/coverdash/internal/state"
)

// IngestOptions holds options for the ingest command.
type IngestOptions struct {
	SourceRoot  string
	ModulePath  string
	Changed     []string
	DiffFile    string
	DisplayName string
	URL         string
	Number      int
}

// IngestSummary is the structured output of the ingest command.
type IngestSummary struct {
	Build        state.Build         `json:"build" yaml:"build"`
	Metrics      []state.MetricValue `json:"metrics" yaml:"metrics"`
	Files        int                 `json:"files" yaml:"files"`
	ChangedFiles int                 `json:"changed_files" yaml:"changed_files"`
	WithSource   int                 `json:"with_source" yaml:"with_source"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest <profile>...",
		Short: "Store coverage profiles as a new build",
		Long: `Parse one or more Go coverage profiles (go test -coverprofile) and store
them as one build in the state database.

Sources are read from the source root so the dashboard can paint them.
Files named by --changed or touched by the --diff unified diff make up
the change coverage table.`,
		Example: `  # Ingest a profile of the current module
  coverdash ingest cover.out

  # Record the changes of a pull request
  git diff origin/main... | coverdash ingest cover.out --diff -

  # Name the build and link it to CI
  coverdash ingest cover.out --name "PR 42" --url https://ci.example.com/job/42/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SourceRoot, "source-root", "", "Module root the sources are read from (default: ingest.source_root or .)")
	cmd.Flags().StringVar(&opts.ModulePath, "module", "", "Module path stripped from profile file names (default: read from go.mod)")
	cmd.Flags().StringSliceVar(&opts.Changed, "changed", nil, "Module relative paths of the changed files")
	cmd.Flags().StringVar(&opts.DiffFile, "diff", "", "Unified diff of the build's changes, - for stdin")
	cmd.Flags().StringVar(&opts.DisplayName, "name", "", "Display name of the build")
	cmd.Flags().StringVar(&opts.URL, "url", "", "CI URL of the build")
	cmd.Flags().IntVar(&opts.Number, "number", 0, "Build number (default: next number)")

	return cmd
}

// ingestOptions merges the configured defaults with the command flags.
func ingestOptions(cmd *cobra.Command, cmdCtx *CommandContext, opts *IngestOptions) (coverage.IngestOptions, error) {
	ingest := cmdCtx.Cfg.Ingest.Options()
	if opts.SourceRoot != "" {
		ingest.SourceRoot = opts.SourceRoot
	}
	if ingest.SourceRoot == "" {
		ingest.SourceRoot = "."
	}
	if opts.ModulePath != "" {
		ingest.ModulePath = opts.ModulePath
	}
	ingest.Changed = opts.Changed
	ingest.DisplayName = opts.DisplayName
	ingest.URL = opts.URL
	ingest.Number = opts.Number
	ingest.CreatedAt = time.Now().UTC()

	if opts.DiffFile != "" {
		modified, err := readDiff(cmd.InOrStdin(), opts.DiffFile)
		if err != nil {
			return ingest, err
		}
		ingest.Modified = modified
	}
	return ingest, nil
}

func readDiff(stdin io.Reader, path string) (map[string][]int, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // user supplied diff
		if err != nil {
			return nil, fmt.Errorf("failed to open diff: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	modified, err := coverage.ParseUnifiedDiff(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}
	return modified, nil
}

func runIngest(cmd *cobra.Command, profiles []string, opts *IngestOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ingestOpts, err := ingestOptions(cmd, cmdCtx, opts)
	if err != nil {
		return err
	}

	report, err := coverage.Ingest(cmd.Context(), cmdCtx.Store, profiles, ingestOpts)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("ingested build",
		"build", report.Build.Number,
		"profiles", profiles,
		"source_root", ingestOpts.SourceRoot)

	summary := summarize(report)
	r := cmdCtx.Renderer
	if handled, err := r.Structured(summary); handled {
		return err
	}

	r.Header(1, "Build "+summary.Build.Label())
	for _, m := range summary.Metrics {
		r.KeyValue(m.Metric, fmt.Sprintf("%s (%d/%d)", format.PercentageDefault(m.CoveredPercentage()), m.Covered, m.Total()))
	}
	r.KeyValue("Files", strconv.Itoa(summary.Files))
	r.KeyValue("Changed files", strconv.Itoa(summary.ChangedFiles))
	if summary.WithSource < summary.Files {
		r.Warning(fmt.Sprintf("%d of %d files have no source, check --source-root", summary.Files-summary.WithSource, summary.Files))
	}
	r.Success("Stored build " + summary.Build.Label())
	return nil
}

func summarize(report *coverage.Report) IngestSummary {
	s := IngestSummary{
		Build:   report.Build,
		Metrics: report.Metrics,
		Files:   len(report.Files),
	}
	for _, f := range report.Files {
		if f.Changed {
			s.ChangedFiles++
		}
		if f.HasSource {
			s.WithSource++
		}
	}
	return s
}
