package coverage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/coverdash/internal/chart"
	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/state"
	"github.com/leapstack-labs/coverdash/internal/theme"
)

// ChangeCoverageTable is the table listing the files changed by a build.
const ChangeCoverageTable = "change-coverage"

// Reader is the read side of the state store used by the dashboard.
type Reader interface {
	LatestBuild(ctx context.Context) (*state.Build, error)
	BuildByNumber(ctx context.Context, number int) (*state.Build, error)
	BuildMetrics(ctx context.Context, buildID string) ([]state.MetricValue, error)
	MetricHistory(ctx context.Context, limit int) ([]state.BuildMetrics, error)
	ListFiles(ctx context.Context, buildID string, changedOnly bool) ([]state.FileRecord, error)
	File(ctx context.Context, buildID, hash string) (*state.FileRecord, error)
}

// Provider serves the stored builds to dashboard views.
type Provider struct {
	store   Reader
	palette *theme.Palette
	logger  *slog.Logger
	now     func() time.Time
}

var _ dashboard.Provider = (*Provider)(nil)

// NewProvider creates a provider reading from store.
func NewProvider(store Reader, palette *theme.Palette, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{store: store, palette: palette, logger: logger, now: time.Now}
}

// Overview returns the metrics of the latest build. Without builds the model
// is empty.
func (p *Provider) Overview(ctx context.Context) (chart.OverviewModel, error) {
	model := chart.OverviewModel{
		Metrics:            []string{},
		Covered:            []int{},
		Missed:             []int{},
		CoveredPercentages: []float64{},
		MissedPercentages:  []float64{},
	}

	build, err := p.store.LatestBuild(ctx)
	if errors.Is(err, state.ErrNotFound) {
		return model, nil
	}
	if err != nil {
		return model, err
	}

	metrics, err := p.store.BuildMetrics(ctx, build.ID)
	if err != nil {
		return model, err
	}
	for _, m := range metrics {
		covered := round2(m.CoveredPercentage())
		model.Metrics = append(model.Metrics, m.Metric)
		model.Covered = append(model.Covered, m.Covered)
		model.Missed = append(model.Missed, m.Missed)
		model.CoveredPercentages = append(model.CoveredPercentages, covered)
		model.MissedPercentages = append(model.MissedPercentages, round2(100-covered))
	}
	return model, nil
}

// TrendChart returns the trend model for a serialized trend configuration.
// Invalid configurations fall back to the defaults.
func (p *Provider) TrendChart(ctx context.Context, configuration string) (json.RawMessage, error) {
	cfg, err := chart.ParseTrendConfig(configuration)
	if err != nil {
		p.logger.Debug("using default trend configuration", slog.Any("error", err))
	}

	history, err := p.store.MetricHistory(ctx, 0)
	if err != nil {
		return nil, err
	}

	points := make([]chart.TrendPoint, 0, len(history))
	for _, h := range history {
		values := make(map[string]float64, len(h.Metrics))
		for _, m := range h.Metrics {
			values[m.Metric] = round2(m.CoveredPercentage())
		}
		points = append(points, chart.TrendPoint{
			Build:       h.Build.Number,
			DisplayName: h.Build.DisplayName,
			Date:        h.Build.CreatedAt,
			Values:      values,
		})
	}

	model := chart.BuildTrend(points, Metrics, p.palette.HexColors(Metrics...), cfg, p.now())
	data, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("encoding trend chart: %w", err)
	}
	return data, nil
}

// SourceCode returns the painted source of a file of the latest build, or
// dashboard.SourceNotAvailable. Files shown in the change coverage table only
// have their modified lines painted.
func (p *Provider) SourceCode(ctx context.Context, fileHash, tableID string) (string, error) {
	build, err := p.store.LatestBuild(ctx)
	if errors.Is(err, state.ErrNotFound) {
		return dashboard.SourceNotAvailable, nil
	}
	if err != nil {
		return "", err
	}

	f, err := p.store.File(ctx, build.ID, fileHash)
	if errors.Is(err, state.ErrNotFound) {
		return dashboard.SourceNotAvailable, nil
	}
	if err != nil {
		return "", err
	}
	if !f.HasSource || f.Source == "" {
		return dashboard.SourceNotAvailable, nil
	}

	modifiedOnly := strings.TrimSuffix(tableID, "-table") == ChangeCoverageTable
	return PaintSource(f, modifiedOnly), nil
}

// BuildURL resolves a build number to the URL stored with the build, or to
// the build page of this server relative to pageURL. Unknown builds resolve
// to dashboard.SourceNotAvailable.
func (p *Provider) BuildURL(ctx context.Context, build, pageURL string) (string, error) {
	number, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(build), "#"))
	if err != nil {
		return dashboard.SourceNotAvailable, nil
	}

	b, err := p.store.BuildByNumber(ctx, number)
	if errors.Is(err, state.ErrNotFound) {
		return dashboard.SourceNotAvailable, nil
	}
	if err != nil {
		return "", err
	}
	if b.URL != "" {
		return b.URL, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return dashboard.SourceNotAvailable, nil
	}
	return base.ResolveReference(&url.URL{Path: "/builds/" + strconv.Itoa(b.Number)}).String(), nil
}

// Files returns the files of the latest build for a table.
func (p *Provider) Files(ctx context.Context, table string) ([]state.FileRecord, error) {
	build, err := p.store.LatestBuild(ctx)
	if errors.Is(err, state.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.store.ListFiles(ctx, build.ID, table == ChangeCoverageTable)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
