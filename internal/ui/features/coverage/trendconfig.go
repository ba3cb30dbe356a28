package coverage

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/coverdash/internal/chart"
	"github.com/leapstack-labs/coverdash/internal/dashboard"
)

// TrendConfig returns the trend chart configuration of the client, or the
// defaults when none was saved.
func (h *Handlers) TrendConfig(w http.ResponseWriter, r *http.Request) {
	clientID, err := h.clientID(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	raw, _, err := h.store.ClientValue(r.Context(), clientID, dashboard.TrendConfigKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cfg, err := chart.ParseTrendConfig(raw)
	if err != nil {
		h.logger.Debug("ignoring stored trend configuration", "client", clientID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		h.logger.Debug("failed to write trend configuration", "error", err)
	}
}

// SaveTrendConfig stores the trend chart configuration of the client. The
// page redraws the trend once the dialog is closed.
func (h *Handlers) SaveTrendConfig(w http.ResponseWriter, r *http.Request) {
	var cfg chart.TrendConfig
	if err := datastar.ReadSignals(r, &cfg); err != nil {
		http.Error(w, "invalid configuration: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := validateTrendConfig(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	clientID, err := h.clientID(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	value, err := json.Marshal(cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.store.SetClientValue(r.Context(), clientID, dashboard.TrendConfigKey, string(value)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateTrendConfig(cfg chart.TrendConfig) error {
	if cfg.NumberOfBuilds < 0 {
		return errors.New("numberOfBuilds must not be negative")
	}
	if cfg.NumberOfDays < 0 {
		return errors.New("numberOfDays must not be negative")
	}
	return nil
}
