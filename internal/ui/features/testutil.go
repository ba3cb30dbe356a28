// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/coverdash/internal/coverage"
	"github.com/leapstack-labs/coverdash/internal/state"
	"github.com/leapstack-labs/coverdash/internal/testutil"
	"github.com/leapstack-labs/coverdash/internal/ui/notifier"
)

// TestModulePath is the module path of the fixture sources.
const TestModulePath = "example.com/demo"

// TestBuild describes a build to ingest into the fixture store.
type TestBuild struct {
	// Profile is the content of a coverage profile of TestModulePath.
	Profile string
	// Sources maps module relative paths to file contents. Files without an
	// entry have no source.
	Sources     map[string]string
	Changed     []string
	Modified    map[string][]int
	DisplayName string
	URL         string
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *state.SQLiteStore
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
	Reports      []*coverage.Report

	t      *testing.T
	tmpDir string
}

// SetupTestFixture creates a migrated SQLite store and ingests builds in order.
func SetupTestFixture(t *testing.T, builds ...TestBuild) *TestFixture {
	t.Helper()

	tmpDir := t.TempDir()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(filepath.Join(tmpDir, "state.db")))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	f := &TestFixture{
		Store:        store,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		t:            t,
		tmpDir:       tmpDir,
	}
	for _, b := range builds {
		f.Ingest(b)
	}
	return f
}

// Ingest writes the build's module and profile to disk and ingests them.
func (f *TestFixture) Ingest(b TestBuild) *coverage.Report {
	f.t.Helper()

	root, err := os.MkdirTemp(f.tmpDir, "module")
	require.NoError(f.t, err)
	require.NoError(f.t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module "+TestModulePath+"\n"), 0600))
	for path, src := range b.Sources {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0750))
		require.NoError(f.t, os.WriteFile(full, []byte(src), 0600))
	}
	profile := filepath.Join(root, "cover.out")
	require.NoError(f.t, os.WriteFile(profile, []byte(b.Profile), 0600))

	report, err := coverage.Ingest(context.Background(), f.Store, []string{profile}, coverage.IngestOptions{
		SourceRoot:  root,
		Changed:     b.Changed,
		Modified:    b.Modified,
		DisplayName: b.DisplayName,
		URL:         b.URL,
	})
	require.NoError(f.t, err)
	f.Reports = append(f.Reports, report)
	return report
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// SyncRecorder is a ResponseRecorder whose body can be read while a handler
// is still streaming into it.
type SyncRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

// NewSyncRecorder creates an empty recorder.
func NewSyncRecorder() *SyncRecorder {
	return &SyncRecorder{rec: httptest.NewRecorder()}
}

// Header implements http.ResponseWriter.
func (r *SyncRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.Header()
}

// Write implements http.ResponseWriter.
func (r *SyncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.Write(p)
}

// WriteHeader implements http.ResponseWriter.
func (r *SyncRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.WriteHeader(code)
}

// Flush implements http.Flusher.
func (r *SyncRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.Flush()
}

// Body returns what was written so far.
func (r *SyncRecorder) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.Body.String()
}
