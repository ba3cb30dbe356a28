package coverage

import (
	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/state"
)

// PageSignals are sent by the page when it opens the updates stream.
type PageSignals struct {
	Fragment    string `json:"fragment"`
	HasFragment bool   `json:"hasFragment"`
	PageURL     string `json:"pageUrl"`
}

// ActionSignals carry a user action to the view of a page.
type ActionSignals struct {
	ViewID   string              `json:"viewId"`
	Tab      string              `json:"tab,omitempty"`
	Table    string              `json:"table,omitempty"`
	Type     string              `json:"type,omitempty"`
	Row      dashboard.RowRecord `json:"row"`
	DialogID string              `json:"dialogId,omitempty"`
	Build    string              `json:"build,omitempty"`
}

// PageData is everything the dashboard page renders on the server.
type PageData struct {
	Title string
	IsDev bool
	// Build is the latest build, nil before the first ingest.
	Build  *state.Build
	Tabs   []dashboard.Tab
	Tables map[string]TableData
}

// TableData is one file table with its source panel.
type TableData struct {
	ID    string
	Title string
	Rows  []FileRow
}

// FileRow is one file of a coverage table.
type FileRow struct {
	Hash              string
	Path              string
	Package           string
	LineCoverage      string
	StatementCoverage string
	MissedLines       int
	HasSource         bool
}

// BuildPageData is rendered by the build page.
type BuildPageData struct {
	IsDev   bool
	Build   state.Build
	Metrics []MetricRow
}

// MetricRow is one metric of a build.
type MetricRow struct {
	Metric     string
	Covered    int
	Missed     int
	Percentage string
}
