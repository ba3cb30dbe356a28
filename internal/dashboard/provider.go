package dashboard

import (
	"context"
	"encoding/json"

	"github.com/leapstack-labs/coverdash/internal/chart"
)

// SourceNotAvailable is returned by Provider.SourceCode when no source was
// captured for a file.
const SourceNotAvailable = "N/A"

// Provider supplies the data shown on the dashboard. Every method may block;
// the view calls them off its event loop.
type Provider interface {
	// Overview returns the summary of the current build.
	Overview(ctx context.Context) (chart.OverviewModel, error)
	// TrendChart returns the chart-ready trend model for a serialized
	// trend configuration.
	TrendChart(ctx context.Context, configuration string) (json.RawMessage, error)
	// SourceCode returns the painted source of a file or SourceNotAvailable.
	SourceCode(ctx context.Context, fileHash, tableID string) (string, error)
	// BuildURL resolves a build identifier relative to pageURL. The result
	// is either an absolute URL or a placeholder.
	BuildURL(ctx context.Context, build, pageURL string) (string, error)
}

// RowRecord is the payload of a selected table row.
type RowRecord struct {
	FileHash string `json:"fileHash"`
	Path     string `json:"path,omitempty"`
}
