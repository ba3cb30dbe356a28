package router

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/coverdash/internal/state"
	"github.com/leapstack-labs/coverdash/internal/testutil"
	coverageFeature "github.com/leapstack-labs/coverdash/internal/ui/features/coverage"
	"github.com/leapstack-labs/coverdash/internal/ui/notifier"
)

func setupRouter(t *testing.T, isDev bool) http.Handler {
	t.Helper()
	logger := testutil.NewTestLogger(t)

	store := state.NewSQLiteStore(logger)
	require.NoError(t, store.Open(filepath.Join(t.TempDir(), "state.db")))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(t.Context()))

	r := chi.NewMux()
	SetupRoutes(r, coverageFeature.Options{
		Store:        store,
		SessionStore: sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")),
		Notifier:     notifier.New(),
		Logger:       logger,
		IsDev:        isDev,
	}, logger)
	return r
}

func TestSetupRoutes(t *testing.T) {
	tests := []struct {
		name       string
		isDev      bool
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"root redirects to dashboard", false, http.MethodGet, "/", "", http.StatusFound},
		{"dashboard page", false, http.MethodGet, "/coverage", "", http.StatusOK},
		{"static asset", false, http.MethodGet, "/static/coverdash.css", "", http.StatusOK},
		{"unknown build", false, http.MethodGet, "/builds/4", "", http.StatusNotFound},
		{"action of unknown view", false, http.MethodPost, "/coverage/resize", `{"viewId":"gone"}`, http.StatusNotFound},
		{"trend config", false, http.MethodGet, "/coverage/trend-config", "", http.StatusOK},
		{"hot reload absent in release", false, http.MethodGet, "/hotreload", "", http.StatusNotFound},
		{"hot reload in dev", true, http.MethodGet, "/hotreload", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupRouter(t, tt.isDev)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
