package coverage

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/state"
	"github.com/leapstack-labs/coverdash/internal/ui/features/common"
)

// pageSignals initializes the signals read by the updates stream.
const pageSignals = `{fragment: location.hash.slice(1), hasFragment: location.href.includes('#'), pageUrl: location.href, viewId: '', tab: ''}`

// Page renders the dashboard page. The charts and panels are drawn by the
// view once the updates stream is open.
func Page(data PageData) templ.Component {
	return common.Layout(common.PageOptions{
		Title:     data.Title,
		IsDev:     data.IsDev,
		Charts:    true,
		BodyAttrs: templ.Attributes{"data-signals": pageSignals},
	}, common.Component(func(ctx context.Context, hw *common.Writer) {
		hw.Raw(`<div data-init="@get('/coverage/updates', {openWhenHidden: true})"></div>`)
		hw.Render(ctx, Header(data.Title, data.Build))
		hw.Render(ctx, TabBar(data.Tabs))
		for _, tab := range data.Tabs {
			hw.Render(ctx, tabPane(tab, data.Tables))
		}
	}))
}

// HeaderID is the id of the page header, patched when a new build arrives.
const HeaderID = "coverage-header"

// Header renders the page title and a link to the build shown.
func Header(title string, build *state.Build) templ.Component {
	return common.Component(func(_ context.Context, hw *common.Writer) {
		hw.Open("header", "id", HeaderID)
		hw.Element("h1", title)
		if build != nil {
			hw.Element("a", build.Label(), "class", "build", "href", "/builds/"+strconv.Itoa(build.Number))
		}
		hw.Close("header")
	})
}

// TabBar renders the tab links. Clicking one posts the target to the view.
func TabBar(tabs []dashboard.Tab) templ.Component {
	return common.Component(func(_ context.Context, hw *common.Writer) {
		hw.Open("ul", "class", "nav-tabs", "id", "tab-details", "role", "tablist")
		for _, tab := range tabs {
			hw.Open("li", "role", "presentation")
			hw.Element("a", tab.Title,
				"class", "nav-link",
				"role", "tab",
				"href", tab.Target,
				"data-tab-target", tab.Target,
				"data-on:click__prevent", "$tab = "+jsString(tab.Target)+"; @post('/coverage/tab')")
			hw.Close("li")
		}
		hw.Close("ul")
	})
}

func tabPane(tab dashboard.Tab, tables map[string]TableData) templ.Component {
	return common.Component(func(ctx context.Context, hw *common.Writer) {
		hw.Open("div", "class", "tab-pane", "role", "tabpanel", "id", tab.Fragment())
		if tab.Fragment() == "overview" {
			hw.Render(ctx, Overview())
		} else if table, ok := tables[tab.Fragment()]; ok {
			hw.Render(ctx, CoverageTable(table))
		}
		hw.Close("div")
	})
}

// Overview renders the chart containers and the trend configuration dialog.
func Overview() templ.Component {
	dialog := jsString(dashboard.TrendDialogID)
	return common.Component(func(_ context.Context, hw *common.Writer) {
		hw.Element("div", "", "class", "chart", "id", dashboard.OverviewContainer)
		hw.Open("div", "class", "chart-toolbar")
		hw.Element("button", "Configure trend", "type", "button", "onclick", "coverdash.openTrendConfig("+dialog+")")
		hw.Close("div")
		hw.Element("div", "", "class", "chart chart-trend", "id", dashboard.TrendContainer)

		hw.Open("dialog", "id", dashboard.TrendDialogID)
		hw.Element("h2", "Trend chart")
		hw.Open("label")
		hw.Text("Number of builds ")
		hw.Open("input", "type", "number", "min", "0", "name", "numberOfBuilds")
		hw.Close("label")
		hw.Open("label")
		hw.Text("Number of days ")
		hw.Open("input", "type", "number", "min", "0", "name", "numberOfDays")
		hw.Close("label")
		hw.Open("label")
		hw.Open("input", "type", "checkbox", "name", "buildAsDomain")
		hw.Text(" Use build name as domain")
		hw.Close("label")
		hw.Element("button", "Save", "type", "button", "onclick", "coverdash.saveTrendConfig("+dialog+")")
		hw.Element("button", "Cancel", "type", "button", "onclick", "this.closest('dialog').close()")
		hw.Close("dialog")
	})
}

// CoverageTable renders the files of a table next to its three source
// regions. Only the no-selection region is visible initially.
func CoverageTable(table TableData) templ.Component {
	return common.Component(func(ctx context.Context, hw *common.Writer) {
		hw.Element("h2", table.Title)
		hw.Render(ctx, FileTable(table))

		hw.Element("div", "Select a file to show its source code.",
			"class", "no-selection", "id", dashboard.RegionID(table.ID, dashboard.RegionNoSelection))
		hw.Element("div", "No source code available for this file.",
			"class", "no-source", "id", dashboard.RegionID(table.ID, dashboard.RegionNoSource), "hidden")
		hw.Element("div", "",
			"class", "source-file", "id", dashboard.RegionID(table.ID, dashboard.RegionSourceFile), "hidden")
	})
}

// FileTableID is the id of the element wrapping the file rows of a table.
func FileTableID(table string) string {
	return table + "-table-inline"
}

var fileTableColumns = []string{"Package", "File", "Line", "Statement", "Missed lines"}

// FileTable renders the file rows of a table. It is patched on its own when
// a new build arrives.
func FileTable(table TableData) templ.Component {
	return common.Component(func(_ context.Context, hw *common.Writer) {
		hw.Open("div", "id", FileTableID(table.ID))
		hw.Open("table", "class", "coverage-table", "id", dashboard.SourceTableID(table.ID))
		hw.Open("thead")
		hw.Open("tr")
		for _, column := range fileTableColumns {
			hw.Element("th", column)
		}
		hw.Close("tr")
		hw.Close("thead")

		hw.Open("tbody")
		for _, row := range table.Rows {
			hw.Open("tr",
				"data-file-hash", row.Hash,
				"data-path", row.Path,
				"onclick", "coverdash.toggleRow("+jsString(table.ID)+", this)")
			hw.Element("td", row.Package)
			hw.Element("td", row.Path)
			hw.Element("td", row.LineCoverage, "class", "number")
			hw.Element("td", row.StatementCoverage, "class", "number")
			hw.Element("td", strconv.Itoa(row.MissedLines), "class", "number")
			hw.Close("tr")
		}
		if len(table.Rows) == 0 {
			hw.Open("tr")
			hw.Element("td", "No files", "colspan", strconv.Itoa(len(fileTableColumns)))
			hw.Close("tr")
		}
		hw.Close("tbody")
		hw.Close("table")
		hw.Close("div")
	})
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// ChartError replaces a chart that could not be loaded.
func ChartError(message string) templ.Component {
	return common.Component(func(_ context.Context, hw *common.Writer) {
		hw.Element("div", message, "class", "chart-error")
	})
}

var metricColumns = []string{"Metric", "Covered", "Missed", "Coverage"}

// BuildPage renders the metrics of one build.
func BuildPage(data BuildPageData) templ.Component {
	return common.Layout(common.PageOptions{
		Title: data.Build.Label(),
		IsDev: data.IsDev,
	}, common.Component(func(_ context.Context, hw *common.Writer) {
		hw.Open("header")
		hw.Element("h1", data.Build.Label())
		hw.Element("span", data.Build.CreatedAt.Format("2006-01-02 15:04"), "class", "build")
		hw.Element("a", "Dashboard", "href", "/coverage")
		if data.Build.URL != "" {
			hw.Element("a", "CI build", "href", data.Build.URL)
		}
		hw.Close("header")

		hw.Open("table", "class", "coverage-table metrics")
		hw.Open("thead")
		hw.Open("tr")
		for _, column := range metricColumns {
			hw.Element("th", column)
		}
		hw.Close("tr")
		hw.Close("thead")
		hw.Open("tbody")
		for _, m := range data.Metrics {
			hw.Open("tr")
			hw.Element("td", m.Metric)
			hw.Element("td", strconv.Itoa(m.Covered), "class", "number")
			hw.Element("td", strconv.Itoa(m.Missed), "class", "number")
			hw.Element("td", m.Percentage, "class", "number")
			hw.Close("tr")
		}
		hw.Close("tbody")
		hw.Close("table")
	}))
}
