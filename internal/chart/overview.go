package chart

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/leapstack-labs/coverdash/internal/format"
	"github.com/leapstack-labs/coverdash/internal/theme"
)

// Series names of the overview chart.
const (
	SeriesCovered = "Covered"
	SeriesMissed  = "Missed"
)

const (
	overviewRowHeight = 31
	overviewPadding   = 150
)

// OverviewModel is the summary payload of the overview chart. All slices have
// the same length; index i of every slice describes the same metric.
type OverviewModel struct {
	Metrics            []string  `json:"metrics"`
	Covered            []int     `json:"covered"`
	Missed             []int     `json:"missed"`
	CoveredPercentages []float64 `json:"coveredPercentages"`
	MissedPercentages  []float64 `json:"missedPercentages"`
}

// Validate reports a length mismatch between the slices of the model.
func (m OverviewModel) Validate() error {
	n := len(m.Metrics)
	if len(m.Covered) != n || len(m.Missed) != n || len(m.CoveredPercentages) != n || len(m.MissedPercentages) != n {
		return fmt.Errorf("overview model is inconsistent: %d metrics, %d covered, %d missed, %d covered%%, %d missed%%",
			n, len(m.Covered), len(m.Missed), len(m.CoveredPercentages), len(m.MissedPercentages))
	}
	return nil
}

// OverviewColors holds the resolved colors of the overview chart. Empty
// values are left out of the option.
type OverviewColors struct {
	CoveredFill  string
	CoveredLabel string
	MissedFill   string
	MissedLabel  string
	Text         string
}

// ResolveOverviewColors looks up the overview colors in the palette.
func ResolveOverviewColors(p *theme.Palette) OverviewColors {
	return OverviewColors{
		CoveredFill:  p.Color(theme.Green),
		CoveredLabel: p.Color(theme.White),
		MissedFill:   p.Color(theme.Red),
		MissedLabel:  p.Color(theme.White),
		Text:         p.Color(theme.TextColor),
	}
}

// OverviewTooltipFormatter is the client formatter showing the tooltip
// texts of the overview bars.
const OverviewTooltipFormatter = "overview"

// OverviewHeight returns the container height in pixels for n metrics.
func OverviewHeight(n int) int {
	return n*overviewRowHeight + overviewPadding
}

// BuildOverview creates the stacked horizontal bar option for model. The
// input is not validated: missing entries simply produce zero values.
func BuildOverview(model OverviewModel, colors OverviewColors) Option {
	percentLabels := make([]string, len(model.Metrics))
	covered := make([]DataItem, len(model.Metrics))
	missed := make([]DataItem, len(model.Metrics))

	for i, name := range model.Metrics {
		coveredCount := intAt(model.Covered, i)
		missedCount := intAt(model.Missed, i)
		coveredPercent := floatAt(model.CoveredPercentages, i)

		percentLabels[i] = format.PercentageDefault(coveredPercent)

		title := "<b>" + html.EscapeString(name) + "</b>"
		tooltip := strings.Join([]string{
			title,
			SeriesCovered + ": " + strconv.Itoa(coveredCount),
			SeriesMissed + ": " + strconv.Itoa(missedCount),
			format.PercentageDefault(coveredPercent),
		}, "<br/>")

		covered[i] = DataItem{
			Value:             coveredPercent,
			Label:             &Label{Show: true, Formatter: strconv.Itoa(coveredCount)},
			TooltipText:       tooltip,
			SeriesTooltipText: title + "<br/>" + SeriesCovered + ": " + strconv.Itoa(coveredCount),
		}
		missed[i] = DataItem{
			Value:             floatAt(model.MissedPercentages, i),
			Label:             &Label{Show: true, Formatter: strconv.Itoa(missedCount)},
			TooltipText:       tooltip,
			SeriesTooltipText: title + "<br/>" + SeriesMissed + ": " + strconv.Itoa(missedCount),
		}
	}

	hidden := &Toggle{Show: false}
	maxPercent := 100.0

	return Option{
		Tooltip: &Tooltip{
			Trigger:     "axis",
			AxisPointer: &AxisPointer{Type: "shadow"},
			Formatter:   OverviewTooltipFormatter,
		},
		Legend: &Legend{
			Data:      []string{SeriesCovered, SeriesMissed},
			Left:      "center",
			Top:       "top",
			TextStyle: textStyle(colors.Text),
		},
		Grid: &Grid{Left: "20", Right: "10", Bottom: "5", Top: "40", ContainLabel: true},
		XAxis: []Axis{{
			Type:      "value",
			Max:       &maxPercent,
			AxisLabel: &AxisLabel{Formatter: "{value}%", Color: colors.Text},
		}},
		YAxis: []Axis{
			{
				Type:      "category",
				Data:      model.Metrics,
				AxisLine:  hidden,
				AxisTick:  hidden,
				AxisLabel: &AxisLabel{Color: colors.Text},
			},
			{
				Type:      "category",
				Data:      percentLabels,
				Position:  "right",
				AxisLine:  hidden,
				AxisTick:  hidden,
				AxisLabel: &AxisLabel{Color: colors.Text},
			},
		},
		Series: []Series{
			barSeries(SeriesCovered, "insideLeft", colors.CoveredFill, colors.CoveredLabel, covered),
			barSeries(SeriesMissed, "insideRight", colors.MissedFill, colors.MissedLabel, missed),
		},
	}
}

func barSeries(name, position, fill, text string, data []DataItem) Series {
	s := Series{
		Name:  name,
		Type:  "bar",
		Stack: "sum",
		Label: &Label{
			Show:       true,
			Position:   position,
			Color:      text,
			FontWeight: "bold",
		},
		Data: data,
	}
	if fill != "" {
		s.ItemStyle = &ItemStyle{Color: fill}
	}
	return s
}

func textStyle(color string) *TextStyle {
	if color == "" {
		return nil
	}
	return &TextStyle{Color: color}
}

func intAt(values []int, i int) int {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func floatAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
