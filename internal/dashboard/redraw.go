package dashboard

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/leapstack-labs/coverdash/internal/chart"
)

// redraw re-renders the trend chart, whose configuration may have changed,
// and resizes the overview chart if it was drawn already.
func (v *View) redraw() {
	v.renderTrendChart()
	v.resizeChart(OverviewContainer)
}

func (v *View) resizeChart(container string) {
	if _, ok := v.charts.Resize(container); !ok {
		v.logger.Debug("no chart to resize", "container", container)
		return
	}
	v.surface.ResizeChart(container)
}

// trendConfiguration returns the persisted trend configuration in serialized
// form, or "null" when none is usable.
func (v *View) trendConfiguration() string {
	raw, ok, err := v.store.Get(TrendConfigKey)
	if err != nil {
		v.logger.Warn("failed to read trend configuration", "error", err)
		return "null"
	}
	if !ok {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		v.logger.Debug("ignoring invalid trend configuration", "error", err)
		return "null"
	}
	return buf.String()
}

// renderTrendChart requests a new trend model. Only the result of the latest
// request is drawn.
func (v *View) renderTrendChart() {
	v.trendGen++
	gen := v.trendGen
	configuration := v.trendConfiguration()
	ctx := v.ctx

	go func() {
		model, err := v.provider.TrendChart(ctx, configuration)
		v.complete(ctx, trendLoaded{gen: gen, model: model, err: err})
	}()
}

func (v *View) handleTrendLoaded(e trendLoaded) {
	if e.gen != v.trendGen {
		return
	}
	if e.err != nil {
		v.logger.Error("failed to load trend chart", "error", e.err)
		v.surface.ShowChartError(TrendContainer, "Failed to load the coverage trend.")
		return
	}
	v.surface.RenderTrendChart(TrendContainer, TrendDialogID, e.model)
	v.charts.Replace(TrendContainer, 0)
	v.resizeChart(TrendContainer)
}

func (v *View) loadOverview() {
	v.overviewGen++
	gen := v.overviewGen
	ctx := v.ctx

	go func() {
		model, err := v.provider.Overview(ctx)
		v.complete(ctx, overviewLoaded{gen: gen, model: model, err: err})
	}()
}

func (v *View) handleOverviewLoaded(e overviewLoaded) {
	if e.gen != v.overviewGen {
		return
	}
	if e.err != nil {
		v.logger.Error("failed to load overview", "error", e.err)
		v.surface.ShowChartError(OverviewContainer, "Failed to load the coverage overview.")
		return
	}
	v.createOverview(e.model, OverviewContainer)
}

// createOverview draws the summary bar chart into container, replacing any
// chart attached to it. The model is not validated.
func (v *View) createOverview(model chart.OverviewModel, container string) {
	height := chart.OverviewHeight(len(model.Metrics))
	option := chart.BuildOverview(model, chart.ResolveOverviewColors(v.palette))
	data, err := json.Marshal(option)
	if err != nil {
		v.logger.Error("failed to encode overview chart", "error", err)
		return
	}

	v.charts.Replace(container, height)
	v.surface.InitChart(container, height, data)
	v.resizeChart(container)
}

func (v *View) handleOpenBuild(e openBuild) {
	ctx := v.ctx
	pageURL := v.pageURL

	go func() {
		target, err := v.provider.BuildURL(ctx, e.build, pageURL)
		v.complete(ctx, buildResolved{build: e.build, url: target, err: err})
	}()
}

func (v *View) handleBuildResolved(e buildResolved) {
	if e.err != nil {
		v.logger.Warn("failed to resolve build URL", "build", e.build, "error", e.err)
		return
	}
	if !IsAbsoluteHTTPURL(e.url) {
		v.logger.Debug("not navigating to non-absolute build URL", "build", e.build, "url", e.url)
		return
	}
	v.surface.Navigate(e.url)
}

// IsAbsoluteHTTPURL reports whether s is an absolute http or https URL with
// a host.
func IsAbsoluteHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
