package coverage

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the dashboard routes.
func SetupRoutes(router chi.Router, opts Options) *Handlers {
	handlers := NewHandlers(opts)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/coverage", http.StatusFound)
	})

	router.Route("/coverage", func(r chi.Router) {
		r.Get("/", handlers.CoveragePage)
		r.Get("/updates", handlers.CoverageUpdates)

		r.Post("/tab", handlers.ClickTab)
		r.Post("/resize", handlers.Resize)
		r.Post("/dialog-hidden", handlers.DialogHidden)
		r.Post("/select", handlers.SelectRow)
		r.Post("/deselect", handlers.DeselectRow)
		r.Post("/open-build", handlers.OpenBuild)

		r.Get("/trend-config", handlers.TrendConfig)
		r.Post("/trend-config", handlers.SaveTrendConfig)
	})

	router.Get("/builds/{number}", handlers.BuildPage)

	return handlers
}
