package chart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Default trend configuration values.
const (
	DefaultNumberOfBuilds = 50
	DefaultNumberOfDays   = 0
)

// TrendConfig is the persisted configuration of the trend chart, as written by
// the chart configuration dialog. Zero values mean "no limit".
type TrendConfig struct {
	NumberOfBuilds int  `json:"numberOfBuilds"`
	NumberOfDays   int  `json:"numberOfDays"`
	BuildAsDomain  bool `json:"buildAsDomain"`
}

// DefaultTrendConfig returns the configuration used when nothing was saved yet.
func DefaultTrendConfig() TrendConfig {
	return TrendConfig{
		NumberOfBuilds: DefaultNumberOfBuilds,
		NumberOfDays:   DefaultNumberOfDays,
		BuildAsDomain:  true,
	}
}

// ParseTrendConfig decodes a serialized configuration. Empty input and the
// JSON literal null yield the defaults; unknown fields are ignored.
func ParseTrendConfig(raw string) (TrendConfig, error) {
	cfg := DefaultTrendConfig()
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return DefaultTrendConfig(), fmt.Errorf("invalid trend configuration: %w", err)
	}
	if cfg.NumberOfBuilds < 0 {
		cfg.NumberOfBuilds = 0
	}
	if cfg.NumberOfDays < 0 {
		cfg.NumberOfDays = 0
	}
	return cfg, nil
}

// TrendPoint holds the coverage percentages of one build.
type TrendPoint struct {
	Build       int
	DisplayName string
	Date        time.Time
	Values      map[string]float64
}

// LinesChartModel is the chart-ready payload consumed by the zoomable trend
// chart widget.
type LinesChartModel struct {
	DomainAxisItemName string        `json:"domainAxisItemName"`
	DomainAxisLabels   []string      `json:"domainAxisLabels"`
	BuildNumbers       []int         `json:"buildNumbers"`
	Series             []LinesSeries `json:"series"`
}

// LinesSeries is one line of the trend chart.
type LinesSeries struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Symbol    string     `json:"symbol"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
	Data      []float64  `json:"data"`
}

// BuildTrend creates the trend model for points, oldest build first. Points
// are filtered by cfg relative to now; metrics is the series order.
func BuildTrend(points []TrendPoint, metrics []string, colors map[string]string, cfg TrendConfig, now time.Time) LinesChartModel {
	sorted := make([]TrendPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Build > sorted[j].Build })

	selected := make([]TrendPoint, 0, len(sorted))
	for _, p := range sorted {
		if cfg.NumberOfBuilds > 0 && len(selected) >= cfg.NumberOfBuilds {
			break
		}
		if cfg.NumberOfDays > 0 && now.Sub(p.Date) > time.Duration(cfg.NumberOfDays)*24*time.Hour {
			continue
		}
		selected = append(selected, p)
	}

	// oldest first on the domain axis
	for i, j := 0, len(selected)-1; i < j; i, j = i+1, j-1 {
		selected[i], selected[j] = selected[j], selected[i]
	}

	model := LinesChartModel{
		DomainAxisItemName: "Build",
		DomainAxisLabels:   make([]string, len(selected)),
		BuildNumbers:       make([]int, len(selected)),
		Series:             make([]LinesSeries, 0, len(metrics)),
	}
	if !cfg.BuildAsDomain {
		model.DomainAxisItemName = "Date"
	}

	for i, p := range selected {
		model.BuildNumbers[i] = p.Build
		switch {
		case !cfg.BuildAsDomain:
			model.DomainAxisLabels[i] = p.Date.Format("2006-01-02")
		case p.DisplayName != "":
			model.DomainAxisLabels[i] = p.DisplayName
		default:
			model.DomainAxisLabels[i] = fmt.Sprintf("#%d", p.Build)
		}
	}

	for _, metric := range metrics {
		series := LinesSeries{
			Name:   metric,
			Type:   "line",
			Symbol: "circle",
			Data:   make([]float64, len(selected)),
		}
		if color, ok := colors[metric]; ok && color != "" {
			series.ItemStyle = &ItemStyle{Color: color}
		}
		for i, p := range selected {
			series.Data[i] = p.Values[metric]
		}
		model.Series = append(model.Series, series)
	}

	return model
}
