package dashboard

import "html"

// SelectionTypeRow is the selection type that loads source code.
const SelectionTypeRow = "row"

// SourceTableID returns the table identifier passed to the source provider.
func SourceTableID(table string) string {
	return table + "-table"
}

func (v *View) handleSelect(e selectRow) {
	p, ok := v.panels[e.table]
	if !ok {
		v.logger.Debug("selection in unmanaged table", "table", e.table)
		return
	}
	p.token++
	if e.selectionType != SelectionTypeRow {
		v.clearSelection(p)
		return
	}

	p.selected = true
	p.fileHash = e.row.FileHash
	p.state = ShowingSource
	p.markup = LoadingMarkup
	v.paintPanel(p)

	token := p.token
	table := p.table
	fileHash := e.row.FileHash
	ctx := v.ctx
	go func() {
		markup, err := v.provider.SourceCode(ctx, fileHash, SourceTableID(table))
		v.complete(ctx, sourceLoaded{table: table, token: token, markup: markup, err: err})
	}()
}

func (v *View) handleDeselect(e deselectRow) {
	p, ok := v.panels[e.table]
	if !ok {
		v.logger.Debug("deselection in unmanaged table", "table", e.table)
		return
	}
	p.token++
	v.clearSelection(p)
}

func (v *View) clearSelection(p *sourcePanel) {
	p.selected = false
	p.fileHash = ""
	p.state = NoSelection
	p.markup = ""
	v.paintPanel(p)
}

func (v *View) handleSourceLoaded(e sourceLoaded) {
	p, ok := v.panels[e.table]
	if !ok || !p.selected || e.token != p.token {
		return
	}

	switch {
	case e.err != nil:
		v.logger.Error("failed to load source code", "table", e.table, "file", p.fileHash, "error", e.err)
		p.state = SourceFailed
		p.markup = `<div class="source-error">Failed to load the source code: ` + html.EscapeString(e.err.Error()) + `</div>`
	case e.markup == SourceNotAvailable:
		p.state = NoSourceAvailable
		p.markup = ""
	default:
		p.state = ShowingSource
		p.markup = e.markup
	}
	v.paintPanel(p)
}

// paintPanel shows the region of the panel state and hides the others. The
// source region gets its markup whenever it is shown.
func (v *View) paintPanel(p *sourcePanel) {
	region := p.state.Region()
	if region == RegionSourceFile {
		v.surface.SetSource(p.table, p.markup)
	}
	v.surface.ShowPanel(p.table, region)
}
