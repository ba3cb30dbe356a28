// Package theme resolves named theme colors (CSS custom property names such
// as "--green") to hex values usable in chart options.
//
// Only literal 6-digit hex values are accepted. HSL or other representations
// configured for a name are dropped, so charts fall back to the chart
// library's default color for that slot.
package theme

import "regexp"

// Well-known color names used by the coverage charts.
const (
	Green     = "--green"
	Red       = "--red"
	White     = "--white"
	TextColor = "--text-color"
)

var hexColor = regexp.MustCompile(`^#[a-fA-F0-9]{6}$`)

// DefaultColors is the palette used when the configuration has no theme section.
var DefaultColors = map[string]string{
	Green:     "#1ea64b",
	Red:       "#e6001f",
	White:     "#ffffff",
	TextColor: "#333333",
}

// Palette maps color names to configured values.
type Palette struct {
	colors map[string]string
}

// NewPalette creates a palette from the configured colors. Missing names fall
// back to DefaultColors.
func NewPalette(colors map[string]string) *Palette {
	merged := make(map[string]string, len(DefaultColors)+len(colors))
	for name, value := range DefaultColors {
		merged[name] = value
	}
	for name, value := range colors {
		merged[name] = value
	}
	return &Palette{colors: merged}
}

// Resolve returns the hex value for name. The second result is false when the
// name is unknown or its value is not a 6-digit hex string.
func (p *Palette) Resolve(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := p.colors[name]
	if !ok || !IsHex(value) {
		return "", false
	}
	return value, true
}

// Color returns the resolved value for name or "" when it doesn't validate.
func (p *Palette) Color(name string) string {
	value, _ := p.Resolve(name)
	return value
}

// HexColors returns the subset of names that resolve to valid hex colors.
func (p *Palette) HexColors(names ...string) map[string]string {
	result := make(map[string]string, len(names))
	for _, name := range names {
		if value, ok := p.Resolve(name); ok {
			result[name] = value
		}
	}
	return result
}

// IsHex reports whether value is a literal #RRGGBB color.
func IsHex(value string) bool {
	return hexColor.MatchString(value)
}
