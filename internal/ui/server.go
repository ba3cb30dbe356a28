// Package ui serves the coverage dashboard.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/coverdash/internal/coverage"
	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/state"
	"github.com/leapstack-labs/coverdash/internal/theme"
	coverageFeature "github.com/leapstack-labs/coverdash/internal/ui/features/coverage"
	"github.com/leapstack-labs/coverdash/internal/ui/notifier"
	"github.com/leapstack-labs/coverdash/internal/ui/resources"
	"github.com/leapstack-labs/coverdash/internal/ui/router"
)

// reportDebounce is how long the watcher waits for a report to be fully
// written before ingesting it.
const reportDebounce = 200 * time.Millisecond

// Server is the dashboard server.
type Server struct {
	store        *state.SQLiteStore
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
	reportsDir   string
	ingest       coverage.IngestOptions
	tabs         *dashboard.Tabs
	tables       []string
	palette      *theme.Palette
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the dashboard server.
type Config struct {
	Store *state.SQLiteStore
	Port  int
	// Watch enables ingesting profiles written to ReportsDir.
	Watch      bool
	ReportsDir string
	// Ingest is the template for builds ingested by the watcher.
	Ingest        coverage.IngestOptions
	SessionSecret string
	Tabs          *dashboard.Tabs
	Tables        []string
	Palette       *theme.Palette
	Logger        *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 365)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		store:        cfg.Store,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
		reportsDir:   cfg.ReportsDir,
		ingest:       cfg.Ingest,
		tabs:         cfg.Tabs,
		tables:       cfg.Tables,
		palette:      cfg.Palette,
		logger:       logger,
		notifier:     notifier.New(),
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	router.SetupRoutes(r, coverageFeature.Options{
		Store:        s.store,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Tabs:         s.tabs,
		Tables:       s.tables,
		Palette:      s.palette,
		Logger:       s.logger,
		IsDev:        s.IsDev(),
	}, s.logger)
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting dashboard", "addr", fmt.Sprintf("http://localhost:%d/coverage", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch && s.reportsDir != "" {
		watcher, err := s.newWatcher()
		if err != nil {
			// the dashboard works without live updates
			s.logger.Error("failed to watch reports directory", "dir", s.reportsDir, "error", err)
		} else {
			eg.Go(func() error {
				return s.watchReports(egctx, watcher)
			})
		}
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev returns true when static assets are served from the source tree.
func (s *Server) IsDev() bool {
	return resources.Dev
}

// Notifier returns the notifier that makes open pages reload their data.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

func (s *Server) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.reportsDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// watchReports ingests coverage profiles written to the reports directory.
// Profiles written within the debounce window become one build.
func (s *Server) watchReports(ctx context.Context, watcher *fsnotify.Watcher) error {
	defer func() { _ = watcher.Close() }()

	batch := newReportBatch(reportDebounce, func(paths []string) {
		if ctx.Err() != nil {
			return
		}
		if err := s.ingestReports(ctx, paths); err != nil {
			s.logger.Error("failed to ingest reports", "files", paths, "error", err)
		}
	})
	defer batch.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !IsProfile(event.Name) {
				continue
			}
			batch.add(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// ingestReports stores the profiles as a new build and notifies the open
// pages.
func (s *Server) ingestReports(ctx context.Context, paths []string) error {
	report, err := coverage.Ingest(ctx, s.store, paths, s.ingest)
	if err != nil {
		return err
	}
	notified := s.notifier.Broadcast()
	s.logger.Info("ingested coverage report",
		"build", report.Build.Label(),
		"files", len(report.Files),
		"pages", notified)
	return nil
}

// IsProfile reports whether a file name looks like a Go coverage profile.
func IsProfile(name string) bool {
	base := filepath.Base(name)
	if base == "coverage.txt" {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".out", ".cov", ".coverprofile":
		return true
	}
	return false
}

// reportBatch collects paths until no new path arrived for delay, then hands
// them to flush in a stable order. Nothing is flushed after stop.
type reportBatch struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]struct{}
	timer   *time.Timer
	flush   func([]string)
	stopped bool
}

func newReportBatch(delay time.Duration, flush func([]string)) *reportBatch {
	return &reportBatch{delay: delay, pending: make(map[string]struct{}), flush: flush}
}

func (b *reportBatch) add(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}

	b.pending[path] = struct{}{}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.fire)
}

func (b *reportBatch) fire() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(b.pending))
	for p := range b.pending {
		paths = append(paths, p)
	}
	clear(b.pending)
	b.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	slices.Sort(paths)
	b.flush(paths)
}

func (b *reportBatch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	clear(b.pending)
	if b.timer != nil {
		b.timer.Stop()
	}
}
