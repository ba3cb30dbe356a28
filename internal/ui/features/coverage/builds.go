package coverage

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/coverdash/internal/format"
	"github.com/leapstack-labs/coverdash/internal/state"
)

// BuildPage renders the metrics of the build named by the number URL param.
// Build links of the trend chart resolve to this page when the build has no
// URL of its own.
func (h *Handlers) BuildPage(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		http.Error(w, "invalid build number", http.StatusBadRequest)
		return
	}

	build, err := h.store.BuildByNumber(r.Context(), number)
	if errors.Is(err, state.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics, err := h.store.BuildMetrics(r.Context(), build.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := BuildPageData{IsDev: h.isDev, Build: *build, Metrics: make([]MetricRow, len(metrics))}
	for i, m := range metrics {
		data.Metrics[i] = MetricRow{
			Metric:     m.Metric,
			Covered:    m.Covered,
			Missed:     m.Missed,
			Percentage: format.PercentageDefault(m.CoveredPercentage()),
		}
	}

	if err := BuildPage(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
