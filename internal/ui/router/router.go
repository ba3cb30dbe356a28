// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	coverageFeature "github.com/leapstack-labs/coverdash/internal/ui/features/coverage"
	"github.com/leapstack-labs/coverdash/internal/ui/resources"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, opts coverageFeature.Options, logger *slog.Logger) *coverageFeature.Handlers {
	// Hot reload endpoint for dev mode
	if opts.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler(logger))

	return coverageFeature.SetupRoutes(router, opts)
}

// setupReload reloads an open page once when it reconnects to a restarted
// server, and again whenever /hotreload is requested.
func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
