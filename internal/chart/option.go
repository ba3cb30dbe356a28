// Package chart builds ECharts options for the coverage dashboard and keeps
// track of the chart instances attached to page containers.
package chart

// Option is the subset of the ECharts option object used by the dashboard.
type Option struct {
	Tooltip *Tooltip `json:"tooltip,omitempty"`
	Legend  *Legend  `json:"legend,omitempty"`
	Grid    *Grid    `json:"grid,omitempty"`
	XAxis   []Axis   `json:"xAxis"`
	YAxis   []Axis   `json:"yAxis"`
	Series  []Series `json:"series"`
}

// Tooltip configures the chart tooltip. Formatter names a formatter of the
// browser client, which replaces the name with the function before drawing.
type Tooltip struct {
	Trigger     string       `json:"trigger"`
	AxisPointer *AxisPointer `json:"axisPointer,omitempty"`
	Formatter   string       `json:"formatter,omitempty"`
}

// AxisPointer configures the pointer drawn for axis tooltips.
type AxisPointer struct {
	Type string `json:"type"`
}

// Legend configures the series legend.
type Legend struct {
	Data      []string   `json:"data"`
	Left      string     `json:"left,omitempty"`
	Top       string     `json:"top,omitempty"`
	TextStyle *TextStyle `json:"textStyle,omitempty"`
}

// TextStyle holds text color overrides. An empty color keeps the library default.
type TextStyle struct {
	Color string `json:"color,omitempty"`
}

// Grid positions the plotting area.
type Grid struct {
	Left         string `json:"left"`
	Right        string `json:"right"`
	Bottom       string `json:"bottom"`
	Top          string `json:"top"`
	ContainLabel bool   `json:"containLabel"`
}

// Axis describes a category or value axis.
type Axis struct {
	Type      string     `json:"type"`
	Data      []string   `json:"data,omitempty"`
	Position  string     `json:"position,omitempty"`
	Max       *float64   `json:"max,omitempty"`
	AxisLabel *AxisLabel `json:"axisLabel,omitempty"`
	AxisLine  *Toggle    `json:"axisLine,omitempty"`
	AxisTick  *Toggle    `json:"axisTick,omitempty"`
}

// AxisLabel formats axis labels.
type AxisLabel struct {
	Formatter string `json:"formatter,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Toggle shows or hides an axis decoration.
type Toggle struct {
	Show bool `json:"show"`
}

// Series is a single data series.
type Series struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Stack     string     `json:"stack,omitempty"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
	Label     *Label     `json:"label,omitempty"`
	Data      []DataItem `json:"data"`
}

// ItemStyle sets the fill color of series items.
type ItemStyle struct {
	Color string `json:"color,omitempty"`
}

// Label configures the text drawn on a bar.
type Label struct {
	Show       bool   `json:"show"`
	Position   string `json:"position,omitempty"`
	Color      string `json:"color,omitempty"`
	FontWeight string `json:"fontWeight,omitempty"`
	Formatter  string `json:"formatter,omitempty"`
}

// DataItem is one value of a series. The tooltip texts are read by the
// OverviewTooltipFormatter of the client, which picks TooltipText when every
// series of the axis is visible and SeriesTooltipText otherwise.
type DataItem struct {
	Value             float64 `json:"value"`
	Label             *Label  `json:"label,omitempty"`
	TooltipText       string  `json:"tooltipText,omitempty"`
	SeriesTooltipText string  `json:"seriesTooltipText,omitempty"`
}
