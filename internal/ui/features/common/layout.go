package common

import (
	"context"
	"maps"
	"slices"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/coverdash/internal/ui/resources"
)

// Script locations of the browser libraries.
const (
	DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
	EChartsScript  = "https://cdn.jsdelivr.net/npm/echarts@5.6.0/dist/echarts.min.js"
)

// PageOptions configures the page shell.
type PageOptions struct {
	Title string
	IsDev bool
	// Charts loads the chart library and the dashboard client.
	Charts bool
	// BodyAttrs are written verbatim into the body tag.
	BodyAttrs templ.Attributes
}

// Layout renders a complete HTML document around body.
func Layout(opts PageOptions, body templ.Component) templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		hw.Raw("<!doctype html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw("<title>")
		hw.Text(opts.Title)
		hw.Raw(" - coverdash</title>")
		hw.Raw(`<link rel="stylesheet"`)
		hw.Attr("href", resources.StaticPath("coverdash.css"))
		hw.Raw(">")
		if opts.Charts {
			hw.Raw(`<script defer`)
			hw.Attr("src", EChartsScript)
			hw.Raw("></script>")
			hw.Raw(`<script defer`)
			hw.Attr("src", resources.StaticPath("coverdash.js"))
			hw.Raw("></script>")
		}
		hw.Raw(`<script type="module"`)
		hw.Attr("src", DatastarScript)
		hw.Raw("></script></head><body")
		for _, name := range slices.Sorted(maps.Keys(opts.BodyAttrs)) {
			if s, ok := opts.BodyAttrs[name].(string); ok {
				hw.Attr(name, s)
			}
		}
		hw.Raw(">")
		if opts.IsDev {
			hw.Raw(`<div data-init="@get('/reload', {retryMaxCount: 1000, retryInterval: 20})"></div>`)
		}
		hw.Render(ctx, body)
		hw.Raw("</body></html>")
	})
}
