//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
)

// Dev reports whether assets are read from the source tree.
const Dev = false

//go:embed static/*
var staticFS embed.FS

// Handler serves the assets embedded in the binary.
func Handler(logger *slog.Logger) http.Handler {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		logger.Error("embedded assets unavailable", "error", err)
		return http.NotFoundHandler()
	}

	files := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
