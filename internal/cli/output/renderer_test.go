package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto when piped", ModeAuto, false, ModeMarkdown},
		{"empty means auto", "", false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text when piped", ModeText, false, ModeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestMode_Valid(t *testing.T) {
	for _, m := range Modes {
		assert.True(t, m.Valid(), m)
	}
	assert.True(t, Mode("").Valid())
	assert.False(t, Mode("csv").Valid())
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, _ := newTestRenderer(ModeMarkdown, false)

	r.Header(2, "Builds")
	r.KeyValue("Line", "80.00%")
	r.Success("stored")
	r.Table([]string{"Build", "Line"}, [][]string{{"#1", "80.00%"}})

	got := out.String()
	assert.Contains(t, got, "## Builds\n")
	assert.Contains(t, got, "- **Line**: 80.00%\n")
	assert.Contains(t, got, "**stored**")
	assert.Contains(t, got, "| Build | Line |")
	assert.Contains(t, got, "| #1 | 80.00% |")
}

func TestRenderer_TextWithoutTerminalHasNoANSI(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)

	r.Header(1, "Summary")
	r.KeyValue("Files", "2")
	r.Success("done")
	r.Warning("no sources")
	r.Table([]string{"Build"}, [][]string{{"#1"}})

	assert.NotContains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "Summary")
	assert.Contains(t, out.String(), "Files: 2")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "#1")
	assert.Equal(t, "warning: no sources\n", errOut.String())
}

func TestRenderer_Structured(t *testing.T) {
	value := map[string]int{"number": 3}

	tests := []struct {
		mode    Mode
		handled bool
		want    string
	}{
		{ModeJSON, true, "{\n  \"number\": 3\n}\n"},
		{ModeYAML, true, "number: 3\n"},
		{ModeText, false, ""},
		{ModeMarkdown, false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, out, _ := newTestRenderer(tt.mode, false)
			handled, err := r.Structured(value)
			require.NoError(t, err)
			assert.Equal(t, tt.handled, handled)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(0, "Title"))
	assert.Equal(t, "### Title", FormatHeader(3, "Title"))
}
