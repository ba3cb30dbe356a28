package coverage

import (
	"errors"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/coverdash/internal/dashboard"
)

// ClickTab posts a tab click to the view of the page.
func (h *Handlers) ClickTab(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(v *dashboard.View, s ActionSignals) error {
		return v.ClickTab(s.Tab)
	})
}

// Resize posts a window resize.
func (h *Handlers) Resize(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(v *dashboard.View, _ ActionSignals) error {
		return v.Resize()
	})
}

// DialogHidden posts that a dialog of the page was closed.
func (h *Handlers) DialogHidden(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(v *dashboard.View, s ActionSignals) error {
		return v.DialogHidden(s.DialogID)
	})
}

// SelectRow posts a table selection.
func (h *Handlers) SelectRow(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(v *dashboard.View, s ActionSignals) error {
		return v.SelectRow(s.Table, s.Type, s.Row)
	})
}

// DeselectRow posts that a table selection was cleared.
func (h *Handlers) DeselectRow(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(v *dashboard.View, s ActionSignals) error {
		return v.DeselectRow(s.Table)
	})
}

// OpenBuild posts that a build of the trend chart was clicked.
func (h *Handlers) OpenBuild(w http.ResponseWriter, r *http.Request) {
	h.withView(w, r, func(v *dashboard.View, s ActionSignals) error {
		return v.OpenBuild(s.Build)
	})
}

// withView decodes the action signals and hands them to the view they name.
// The response carries no content; the view answers over the updates stream.
func (h *Handlers) withView(w http.ResponseWriter, r *http.Request, fn func(*dashboard.View, ActionSignals) error) {
	var signals ActionSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "invalid signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	view, err := h.views.Get(signals.ViewID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	if err := fn(view, signals); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dashboard.ErrViewClosed) {
			status = http.StatusGone
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
