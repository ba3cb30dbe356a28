package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/coverdash/internal/coverage"
	"github.com/leapstack-labs/coverdash/internal/format"
	"github.com/leapstack-labs/coverdash/internal/state"
)

// BuildSummary is the structured output of the builds command.
type BuildSummary struct {
	state.Build `yaml:",inline"`
	Metrics     []state.MetricValue `json:"metrics" yaml:"metrics"`
}

// NewBuildsCommand creates the builds command.
func NewBuildsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "builds",
		Short: "List stored builds",
		Long: `List the stored builds, newest first, with their coverage metrics.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List the last 20 builds
  coverdash builds

  # List every build as YAML
  coverdash builds --limit 0 --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuilds(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of builds to list (0 for all)")

	cmd.AddCommand(newBuildsShowCommand())
	cmd.AddCommand(newBuildsDeleteCommand())

	return cmd
}

func newBuildsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Show the metrics of a build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseBuildNumber(args[0])
			if err != nil {
				return err
			}
			return runBuildsShow(cmd, number)
		},
	}
}

func newBuildsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <number>",
		Aliases: []string{"rm"},
		Short:   "Delete a build with its files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseBuildNumber(args[0])
			if err != nil {
				return err
			}
			return runBuildsDelete(cmd, number)
		},
	}
}

func parseBuildNumber(arg string) (int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid build number %q", arg)
	}
	return number, nil
}

func runBuilds(cmd *cobra.Command, limit int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	history, err := cmdCtx.Store.MetricHistory(cmd.Context(), limit)
	if err != nil {
		return err
	}

	summaries := make([]BuildSummary, len(history))
	for i, h := range history {
		summaries[i] = BuildSummary{Build: h.Build, Metrics: h.Metrics}
	}

	r := cmdCtx.Renderer
	if handled, err := r.Structured(summaries); handled {
		return err
	}

	if len(summaries) == 0 {
		r.Muted("No builds yet, run coverdash ingest first")
		return nil
	}

	columns := append([]string{"build", "name", "created"}, coverage.Metrics...)
	caser := cases.Title(language.English)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = caser.String(c)
	}

	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		row := []string{"#" + strconv.Itoa(s.Number), s.DisplayName, s.CreatedAt.Format(time.DateTime)}
		for _, metric := range coverage.Metrics {
			row = append(row, metricPercentage(s.Metrics, metric))
		}
		rows[i] = row
	}

	r.Header(1, fmt.Sprintf("Builds (%d)", len(summaries)))
	r.Table(header, rows)
	return nil
}

func runBuildsShow(cmd *cobra.Command, number int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	build, err := cmdCtx.Store.BuildByNumber(cmd.Context(), number)
	if err != nil {
		return err
	}
	metrics, err := cmdCtx.Store.BuildMetrics(cmd.Context(), build.ID)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if handled, err := r.Structured(BuildSummary{Build: *build, Metrics: metrics}); handled {
		return err
	}

	r.Header(1, "Build "+build.Label())
	r.KeyValue("Created", build.CreatedAt.Format(time.DateTime))
	if build.URL != "" {
		r.KeyValue("URL", build.URL)
	}
	rows := make([][]string, len(metrics))
	for i, m := range metrics {
		rows[i] = []string{
			m.Metric,
			strconv.Itoa(m.Covered),
			strconv.Itoa(m.Missed),
			format.PercentageDefault(m.CoveredPercentage()),
		}
	}
	r.Table([]string{"Metric", "Covered", "Missed", "Coverage"}, rows)
	return nil
}

func runBuildsDelete(cmd *cobra.Command, number int) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := cmdCtx.Store.DeleteBuild(cmd.Context(), number); err != nil {
		return err
	}
	cmdCtx.Logger.Debug("deleted build", "build", number)
	cmdCtx.Renderer.Success(fmt.Sprintf("Deleted build #%d", number))
	return nil
}

func metricPercentage(metrics []state.MetricValue, name string) string {
	for _, m := range metrics {
		if m.Metric == name {
			return format.PercentageDefault(m.CoveredPercentage())
		}
	}
	return "-"
}
