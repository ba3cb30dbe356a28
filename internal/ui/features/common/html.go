// Package common provides the page shell and HTML helpers shared by the UI
// features.
package common

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Writer writes HTML fragments and keeps the first error. Calls after an
// error are ignored, so components can write unconditionally and check Err
// once.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup.
func (hw *Writer) Raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// Text writes escaped text.
func (hw *Writer) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with the value escaped.
func (hw *Writer) Attr(name, value string) {
	hw.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// Open writes a start tag. attrs are name, value pairs written in order; a
// trailing name without a value is written as a boolean attribute.
func (hw *Writer) Open(tag string, attrs ...string) {
	hw.Raw("<" + tag)
	for i := 0; i < len(attrs); i += 2 {
		if i+1 == len(attrs) {
			hw.Raw(" " + attrs[i])
			break
		}
		hw.Attr(attrs[i], attrs[i+1])
	}
	hw.Raw(">")
}

// Close writes an end tag.
func (hw *Writer) Close(tag string) {
	hw.Raw("</" + tag + ">")
}

// Element writes an element holding escaped text.
func (hw *Writer) Element(tag, text string, attrs ...string) {
	hw.Open(tag, attrs...)
	hw.Text(text)
	hw.Close(tag)
}

// Render renders a nested component.
func (hw *Writer) Render(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Err returns the first error.
func (hw *Writer) Err() error {
	return hw.err
}

// Component builds a templ component from a function writing through a Writer.
func Component(fn func(ctx context.Context, hw *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		fn(ctx, hw)
		return hw.Err()
	})
}
