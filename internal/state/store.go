// Package state persists coverage builds and per-browser dashboard state in
// SQLite. The schema is managed with goose migrations embedded in the binary.
package state

import (
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned when a requested build or file does not exist.
var ErrNotFound = errors.New("not found")

// Build is one ingested coverage report.
type Build struct {
	ID          string    `json:"id" yaml:"id"`
	Number      int       `json:"number" yaml:"number"`
	DisplayName string    `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Label returns the display name of the build or "#<number>".
func (b Build) Label() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return "#" + strconv.Itoa(b.Number)
}

// MetricValue holds the covered and missed counts of one coverage metric.
type MetricValue struct {
	Metric  string `json:"metric" yaml:"metric"`
	Covered int    `json:"covered" yaml:"covered"`
	Missed  int    `json:"missed" yaml:"missed"`
}

// Total returns covered plus missed.
func (m MetricValue) Total() int {
	return m.Covered + m.Missed
}

// CoveredPercentage returns the covered share on a 0-100 scale. A metric
// without items counts as fully covered.
func (m MetricValue) CoveredPercentage() float64 {
	if m.Total() == 0 {
		return 100
	}
	return float64(m.Covered) * 100 / float64(m.Total())
}

// LineCoverage counts the covered and missed statements starting on a line.
type LineCoverage struct {
	Covered int `json:"c,omitempty"`
	Missed  int `json:"m,omitempty"`
}

// FileRecord is the coverage of one source file within a build.
type FileRecord struct {
	Hash              string
	Path              string
	Package           string
	Changed           bool
	CoveredLines      int
	MissedLines       int
	CoveredStatements int
	MissedStatements  int
	// HasSource is false when the source was not captured at ingest time.
	HasSource bool
	Source    string
	Lines     map[int]LineCoverage
	// ModifiedLines are the lines changed by the build, ascending.
	ModifiedLines []int
}

// LineMetric returns the line coverage of the file as a metric value.
func (f FileRecord) LineMetric() MetricValue {
	return MetricValue{Metric: "Line", Covered: f.CoveredLines, Missed: f.MissedLines}
}

// BuildMetrics is a build with its metrics, used for trend charts.
type BuildMetrics struct {
	Build   Build
	Metrics []MetricValue
}
