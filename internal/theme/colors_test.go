package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsHex(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"#1ea64b", true},
		{"#ABCDEF", true},
		{"#fff", false},
		{"hsl(120, 50%, 50%)", false},
		{"1ea64b", false},
		{"#1ea64b ", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHex(tt.value))
		})
	}
}

func TestPalette_Resolve(t *testing.T) {
	p := NewPalette(map[string]string{
		Green:      "hsl(120, 50%, 50%)",
		"--accent": "#123456",
	})

	_, ok := p.Resolve(Green)
	assert.False(t, ok, "hsl colors are dropped")

	red, ok := p.Resolve(Red)
	assert.True(t, ok)
	assert.Equal(t, DefaultColors[Red], red)

	assert.Equal(t, "#123456", p.Color("--accent"))
	assert.Empty(t, p.Color("--unknown"))
}

func TestPalette_HexColors(t *testing.T) {
	p := NewPalette(map[string]string{White: "white"})

	got := p.HexColors(Green, White, "--missing")

	assert.Equal(t, map[string]string{Green: DefaultColors[Green]}, got)
}

func TestPalette_Nil(t *testing.T) {
	var p *Palette
	_, ok := p.Resolve(Green)
	assert.False(t, ok)
}
