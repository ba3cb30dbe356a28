package dashboard

import "encoding/json"

// Region is one of the three display regions associated with a managed table.
type Region int

const (
	RegionNoSelection Region = iota
	RegionNoSource
	RegionSourceFile
)

// String returns the DOM id suffix of the region.
func (r Region) String() string {
	switch r {
	case RegionNoSelection:
		return "no-selection"
	case RegionNoSource:
		return "no-source"
	case RegionSourceFile:
		return "source-file"
	default:
		return "unknown"
	}
}

// Regions lists every region in display order.
var Regions = []Region{RegionNoSelection, RegionNoSource, RegionSourceFile}

// RegionID returns the DOM id of a table's region, e.g. "absolute-coverage-no-source".
func RegionID(table string, r Region) string {
	return table + "-" + r.String()
}

// Surface is the page a view draws on: the DOM, the chart engine and the tab,
// modal and table widgets. Implementations queue the operations for the
// browser; they must not call back into the view synchronously.
type Surface interface {
	// SetFragment replaces the URL fragment; "" clears it.
	SetFragment(fragment string)
	// ActivateTab marks the tab with the given target as active.
	ActivateTab(target string)
	// InitChart creates a chart in container, replacing any existing one.
	InitChart(container string, height int, option json.RawMessage)
	// ResizeChart resizes the chart attached to container to fit its box.
	ResizeChart(container string)
	// RenderTrendChart hands a trend model to the zoomable trend widget.
	RenderTrendChart(container, dialogID string, model json.RawMessage)
	// ShowChartError replaces the content of container with a message.
	ShowChartError(container, message string)
	// ShowPanel makes region visible and hides the other regions of table.
	ShowPanel(table string, region Region)
	// SetSource replaces the markup of the table's source region.
	SetSource(table, markup string)
	// Navigate sends the browser to an absolute URL.
	Navigate(url string)
}
