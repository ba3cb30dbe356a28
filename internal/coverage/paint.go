package coverage

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/leapstack-labs/coverdash/internal/state"
)

// CSS classes of painted source lines.
const (
	ClassNoCode  = "noCover"
	ClassNone    = "coverNone"
	ClassFull    = "coverFull"
	ClassPartial = "coverPart"
)

const nbsp = "&nbsp;"

// PaintSource renders the source of f as an HTML table with one row per line,
// colored by its coverage. With modifiedOnly set only the modified lines of
// the file are colored.
func PaintSource(f *state.FileRecord, modifiedOnly bool) string {
	var painted map[int]bool
	if modifiedOnly {
		painted = make(map[int]bool, len(f.ModifiedLines))
		for _, l := range f.ModifiedLines {
			painted[l] = true
		}
	}

	source := strings.ReplaceAll(f.Source, "\r\n", "\n")
	source = strings.TrimSuffix(source, "\n")
	lines := strings.Split(source, "\n")

	var b strings.Builder
	b.WriteString(`<table class="source"><tbody>`)
	for i, code := range lines {
		n := i + 1
		lc, ok := f.Lines[n]
		if modifiedOnly && !painted[n] {
			ok = false
		}
		if ok {
			fmt.Fprintf(&b, `<tr class="%s" data-html-tooltip="%s">`, colorClass(lc), html.EscapeString(tooltip(lc)))
		} else {
			fmt.Fprintf(&b, `<tr class="%s">`, ClassNoCode)
		}
		fmt.Fprintf(&b, `<td class="line"><a name="%d">%d</a></td>`, n, n)
		b.WriteString(`<td class="hits">`)
		if ok {
			b.WriteString(summary(lc))
		}
		b.WriteString(`</td><td class="code">`)
		b.WriteString(cleanupCode(code))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func colorClass(lc state.LineCoverage) string {
	switch {
	case lc.Covered == 0:
		return ClassNone
	case lc.Missed == 0:
		return ClassFull
	default:
		return ClassPartial
	}
}

func tooltip(lc state.LineCoverage) string {
	total := lc.Covered + lc.Missed
	switch {
	case total > 1 && lc.Missed == 0:
		return "All blocks covered"
	case total > 1:
		return fmt.Sprintf("Partially covered, block coverage: %d/%d", lc.Covered, total)
	case lc.Covered == 1:
		return "Covered at least once"
	default:
		return "Not covered"
	}
}

func summary(lc state.LineCoverage) string {
	total := lc.Covered + lc.Missed
	if total > 1 {
		return fmt.Sprintf("%d/%d", lc.Covered, total)
	}
	return strconv.Itoa(lc.Covered)
}

func cleanupCode(code string) string {
	code = html.EscapeString(code)
	code = strings.ReplaceAll(code, " ", nbsp)
	return strings.ReplaceAll(code, "\t", strings.Repeat(nbsp, 8))
}
