// Package coverage serves the coverage dashboard page and routes the actions
// of every open page to its dashboard view.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	cov "github.com/leapstack-labs/coverdash/internal/coverage"
	"github.com/leapstack-labs/coverdash/internal/dashboard"
	"github.com/leapstack-labs/coverdash/internal/format"
	"github.com/leapstack-labs/coverdash/internal/state"
	"github.com/leapstack-labs/coverdash/internal/theme"
	"github.com/leapstack-labs/coverdash/internal/ui/notifier"
)

// Session cookie holding the browser client id.
const (
	SessionName = "coverdash"
	clientIDKey = "client_id"
)

// PageTitle is the title of the dashboard page.
const PageTitle = "Coverage Report"

// Options configures the dashboard handlers.
type Options struct {
	Store        *state.SQLiteStore
	Views        *dashboard.Registry
	SessionStore sessions.Store
	Notifier     *notifier.Notifier
	Tabs         *dashboard.Tabs
	Tables       []string
	Palette      *theme.Palette
	Logger       *slog.Logger
	IsDev        bool
}

// Handlers provides HTTP handlers for the dashboard.
type Handlers struct {
	store        *state.SQLiteStore
	provider     *cov.Provider
	views        *dashboard.Registry
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	tabs         *dashboard.Tabs
	tables       []string
	palette      *theme.Palette
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(opts Options) *Handlers {
	if opts.Views == nil {
		opts.Views = dashboard.NewRegistry()
	}
	if opts.Tabs == nil {
		// the default tabs are always valid
		opts.Tabs, _ = dashboard.NewTabs(dashboard.DefaultTabs()...)
	}
	if len(opts.Tables) == 0 {
		opts.Tables = dashboard.DefaultTables
	}
	if opts.Palette == nil {
		opts.Palette = theme.NewPalette(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handlers{
		store:        opts.Store,
		provider:     cov.NewProvider(opts.Store, opts.Palette, opts.Logger),
		views:        opts.Views,
		sessionStore: opts.SessionStore,
		notifier:     opts.Notifier,
		tabs:         opts.Tabs,
		tables:       opts.Tables,
		palette:      opts.Palette,
		logger:       opts.Logger,
		isDev:        opts.IsDev,
	}
}

// Views returns the registry of the open pages.
func (h *Handlers) Views() *dashboard.Registry {
	return h.views
}

// CoveragePage renders the dashboard page with the file tables of the latest
// build.
func (h *Handlers) CoveragePage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.clientID(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := h.buildPageData(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := Page(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CoverageUpdates is the long-lived SSE endpoint of a dashboard page. It runs
// the dashboard view of the page for as long as the stream is open and sends
// the view's page operations as they are issued.
func (h *Handlers) CoverageUpdates(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE
	var signals PageSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "invalid signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	clientID, err := h.clientID(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	surface := NewSurface()
	view, err := dashboard.New(dashboard.Config{
		Provider: h.provider,
		Store:    h.store.ClientStore(clientID),
		Surface:  surface,
		Tabs:     h.tabs,
		Tables:   h.tables,
		Palette:  h.palette,
		PageURL:  signals.PageURL,
		Logger:   h.logger,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(map[string]string{"viewId": view.ID()}); err != nil {
		h.logger.Debug("updates stream closed before start", "view", view.ID(), "error", err)
		return
	}
	surface.Attach(view.ID())

	ctx, cancel := context.WithCancel(r.Context())
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return view.Run(egctx)
	})
	defer func() {
		cancel()
		_ = eg.Wait()
	}()

	updates, unsubscribe := h.notifier.Subscribe()
	defer unsubscribe()

	h.views.Add(view)
	defer h.views.Remove(view.ID())

	if err := view.Init(signals.Fragment, signals.HasFragment); err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-surface.Ready():
			surface.Flush(sse)
		case <-updates:
			if err := h.refreshPage(ctx, sse, view); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// refreshPage shows a new build on an open page: it patches the header and
// the file tables, clears the source panels whose rows were replaced and
// redraws the charts.
func (h *Handlers) refreshPage(ctx context.Context, sse *datastar.ServerSentEventGenerator, view *dashboard.View) error {
	data, err := h.buildPageData(ctx)
	if err != nil {
		return err
	}

	if err := sse.PatchElementTempl(Header(data.Title, data.Build)); err != nil {
		return err
	}
	for _, table := range h.tables {
		if _, err := h.tabs.Find("#" + table); err != nil {
			// not on the page
			continue
		}
		if err := sse.PatchElementTempl(FileTable(data.Tables[table])); err != nil {
			return err
		}
		if err := view.DeselectRow(table); err != nil {
			return err
		}
	}
	return view.DataChanged()
}

// buildPageData assembles the server rendered part of the page.
func (h *Handlers) buildPageData(ctx context.Context) (PageData, error) {
	data := PageData{
		Title:  PageTitle,
		IsDev:  h.isDev,
		Tabs:   h.tabs.All(),
		Tables: make(map[string]TableData, len(h.tables)),
	}

	build, err := h.store.LatestBuild(ctx)
	switch {
	case errors.Is(err, state.ErrNotFound):
	case err != nil:
		return data, err
	default:
		data.Build = build
	}

	for _, table := range h.tables {
		files, err := h.provider.Files(ctx, table)
		if err != nil {
			return data, fmt.Errorf("failed to list files of %s: %w", table, err)
		}
		data.Tables[table] = TableData{
			ID:    table,
			Title: h.tableTitle(table),
			Rows:  fileRows(files),
		}
	}
	return data, nil
}

func (h *Handlers) tableTitle(table string) string {
	if tab, err := h.tabs.Find("#" + table); err == nil {
		return tab.Title
	}
	return table
}

func fileRows(files []state.FileRecord) []FileRow {
	rows := make([]FileRow, len(files))
	for i, f := range files {
		statements := state.MetricValue{Covered: f.CoveredStatements, Missed: f.MissedStatements}
		rows[i] = FileRow{
			Hash:              f.Hash,
			Path:              f.Path,
			Package:           f.Package,
			LineCoverage:      format.PercentageDefault(f.LineMetric().CoveredPercentage()),
			StatementCoverage: format.PercentageDefault(statements.CoveredPercentage()),
			MissedLines:       f.MissedLines,
			HasSource:         f.HasSource,
		}
	}
	return rows
}

// clientID returns the id of the browser client, creating the session cookie
// on first use.
func (h *Handlers) clientID(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := h.sessionStore.Get(r, SessionName)
	if err != nil {
		// an undecodable cookie gets replaced by a fresh session
		h.logger.Debug("discarding session", "error", err)
	}
	if id, ok := session.Values[clientIDKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	session.Values[clientIDKey] = id
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}
