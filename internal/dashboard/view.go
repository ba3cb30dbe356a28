// Package dashboard coordinates the coverage dashboard of one browser page.
//
// A View owns the state of a single page: the active tab, the chart handles
// attached to the page containers and the source panels of the managed tables.
// All of that state is touched by exactly one goroutine, the loop started by
// Run. Browser events and data fetch completions are posted to the loop as
// messages; the loop reacts by issuing operations on the Surface.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leapstack-labs/coverdash/internal/chart"
	"github.com/leapstack-labs/coverdash/internal/theme"
)

// Fixed DOM ids of the charts on the page.
const (
	OverviewContainer = "coverage-overview"
	TrendContainer    = "coverage-trend"
	TrendDialogID     = "chart-configuration-coverage-history"
)

// DefaultTables lists the tables with a source inspector.
var DefaultTables = []string{"absolute-coverage", "change-coverage"}

// ErrViewClosed is returned when posting to a view whose loop has stopped.
var ErrViewClosed = errors.New("view closed")

const eventBuffer = 64

// Config configures a View.
type Config struct {
	// ID identifies the view; a random one is generated when empty.
	ID       string
	Provider Provider
	Store    KeyValueStore
	Surface  Surface
	Tabs     *Tabs
	// Tables are the ids of the tables with a source inspector. Defaults to
	// DefaultTables.
	Tables  []string
	Palette *theme.Palette
	// PageURL is the URL of the page, used to resolve build links.
	PageURL string
	Logger  *slog.Logger
}

// View is the coordinator of one dashboard page.
type View struct {
	id       string
	provider Provider
	store    KeyValueStore
	surface  Surface
	palette  *theme.Palette
	pageURL  string
	logger   *slog.Logger

	tabs   *tabWidget
	charts *chart.Registry
	tables []string
	panels map[string]*sourcePanel

	overviewGen uint64
	trendGen    uint64
	initialized bool

	ctx     context.Context
	events  chan event
	pending []event
	done    chan struct{}
}

// New creates a view. Run must be called to start processing events.
func New(cfg Config) (*View, error) {
	if cfg.Provider == nil {
		return nil, errors.New("provider is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("key-value store is required")
	}
	if cfg.Surface == nil {
		return nil, errors.New("surface is required")
	}
	if cfg.Tabs == nil {
		return nil, errors.New("tabs are required")
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if len(cfg.Tables) == 0 {
		cfg.Tables = DefaultTables
	}
	if cfg.Palette == nil {
		cfg.Palette = theme.NewPalette(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	v := &View{
		id:       cfg.ID,
		provider: cfg.Provider,
		store:    cfg.Store,
		surface:  cfg.Surface,
		palette:  cfg.Palette,
		pageURL:  cfg.PageURL,
		logger:   cfg.Logger.With("view", cfg.ID),
		charts:   chart.NewRegistry(),
		tables:   append([]string(nil), cfg.Tables...),
		panels:   make(map[string]*sourcePanel, len(cfg.Tables)),
		events:   make(chan event, eventBuffer),
		done:     make(chan struct{}),
	}
	v.tabs = &tabWidget{tabs: cfg.Tabs, surface: cfg.Surface, emit: v.emit}
	for _, table := range v.tables {
		if _, dup := v.panels[table]; dup {
			return nil, fmt.Errorf("duplicate table %q", table)
		}
		v.panels[table] = &sourcePanel{table: table}
	}
	return v, nil
}

// ID returns the view id.
func (v *View) ID() string {
	return v.id
}

// Done is closed when the loop has stopped.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Run processes events until ctx is canceled. The source panels of every
// table are painted in their initial state before the first event.
func (v *View) Run(ctx context.Context) error {
	defer close(v.done)
	v.ctx = ctx

	for _, table := range v.tables {
		v.paintPanel(v.panels[table])
	}

	for {
		select {
		case <-ctx.Done():
			v.logger.Debug("view stopped")
			return nil
		case ev := <-v.events:
			v.handle(ev)
		}
	}
}

// handle processes one posted event. Events emitted by the widgets while
// handling it run before the next posted event.
func (v *View) handle(ev event) {
	v.dispatch(ev)
	for len(v.pending) > 0 {
		next := v.pending[0]
		v.pending = v.pending[1:]
		v.dispatch(next)
	}
}

// emit queues a widget event behind the event currently being handled.
func (v *View) emit(ev event) {
	v.pending = append(v.pending, ev)
}

// post delivers an event from outside the loop.
func (v *View) post(ev event) error {
	select {
	case v.events <- ev:
		return nil
	case <-v.done:
		return ErrViewClosed
	}
}

// complete delivers a fetch result. Results of a stopped view are dropped.
func (v *View) complete(ctx context.Context, ev event) {
	select {
	case v.events <- ev:
	case <-ctx.Done():
	}
}

// Init starts the page: it resolves the active tab and loads the charts.
// fragment is the URL fragment without '#'; hasFragment tells an empty
// fragment ("page#") apart from none.
func (v *View) Init(fragment string, hasFragment bool) error {
	return v.post(initPage{fragment: fragment, hasFragment: hasFragment})
}

// ClickTab activates the tab with the given target selector.
func (v *View) ClickTab(selector string) error {
	return v.post(clickTab{selector: selector})
}

// Resize reports a window resize.
func (v *View) Resize() error {
	return v.post(windowResized{})
}

// DialogHidden reports that a modal dialog was closed.
func (v *View) DialogHidden(dialogID string) error {
	return v.post(dialogHidden{dialogID: dialogID})
}

// SelectRow reports a selection in a managed table. Only the selection type
// "row" loads source code; any other type clears the panel.
func (v *View) SelectRow(table, selectionType string, row RowRecord) error {
	return v.post(selectRow{table: table, selectionType: selectionType, row: row})
}

// DeselectRow reports that the selection of a managed table was cleared.
func (v *View) DeselectRow(table string) error {
	return v.post(deselectRow{table: table})
}

// OpenBuild reports that an entry of the trend chart was activated.
func (v *View) OpenBuild(build string) error {
	return v.post(openBuild{build: build})
}

// DataChanged reports that new coverage data is available.
func (v *View) DataChanged() error {
	return v.post(dataChanged{})
}

// PanelSnapshot is the state of one source panel.
type PanelSnapshot struct {
	State    SourcePanelState
	FileHash string
	Markup   string
}

// Snapshot is a copy of the view state.
type Snapshot struct {
	ActiveTab string
	Panels    map[string]PanelSnapshot
	Charts    map[string]chart.Handle
}

// Snapshot returns a copy of the current state. It waits until every event
// posted before it has been handled.
func (v *View) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if err := v.post(snapshotRequest{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-v.done:
		return Snapshot{}, ErrViewClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (v *View) snapshot() Snapshot {
	s := Snapshot{
		ActiveTab: v.tabs.active,
		Panels:    make(map[string]PanelSnapshot, len(v.panels)),
		Charts:    make(map[string]chart.Handle),
	}
	for table, p := range v.panels {
		s.Panels[table] = PanelSnapshot{State: p.state, FileHash: p.fileHash, Markup: p.markup}
	}
	for _, container := range []string{OverviewContainer, TrendContainer} {
		if h, ok := v.charts.Lookup(container); ok {
			s.Charts[container] = *h
		}
	}
	return s
}

// event is a message handled by the view loop.
type event interface {
	isEvent()
}

type (
	initPage struct {
		fragment    string
		hasFragment bool
	}
	clickTab      struct{ selector string }
	tabShown      struct{ target string }
	windowResized struct{}
	dialogHidden  struct{ dialogID string }
	selectRow     struct {
		table         string
		selectionType string
		row           RowRecord
	}
	deselectRow     struct{ table string }
	openBuild       struct{ build string }
	dataChanged     struct{}
	snapshotRequest struct{ reply chan<- Snapshot }

	overviewLoaded struct {
		gen   uint64
		model chart.OverviewModel
		err   error
	}
	trendLoaded struct {
		gen   uint64
		model json.RawMessage
		err   error
	}
	sourceLoaded struct {
		table  string
		token  uint64
		markup string
		err    error
	}
	buildResolved struct {
		build string
		url   string
		err   error
	}
)

func (initPage) isEvent()        {}
func (clickTab) isEvent()        {}
func (tabShown) isEvent()        {}
func (windowResized) isEvent()   {}
func (dialogHidden) isEvent()    {}
func (selectRow) isEvent()       {}
func (deselectRow) isEvent()     {}
func (openBuild) isEvent()       {}
func (dataChanged) isEvent()     {}
func (snapshotRequest) isEvent() {}
func (overviewLoaded) isEvent()  {}
func (trendLoaded) isEvent()     {}
func (sourceLoaded) isEvent()    {}
func (buildResolved) isEvent()   {}

func (v *View) dispatch(ev event) {
	switch e := ev.(type) {
	case initPage:
		v.handleInit(e)
	case clickTab:
		if !v.tabs.show(e.selector) {
			v.logger.Debug("tab not found", "selector", e.selector)
		}
	case tabShown:
		v.handleTabShown(e)
	case windowResized:
		v.redraw()
	case dialogHidden:
		if e.dialogID == TrendDialogID {
			v.redraw()
		}
	case selectRow:
		v.handleSelect(e)
	case deselectRow:
		v.handleDeselect(e)
	case openBuild:
		v.handleOpenBuild(e)
	case dataChanged:
		v.loadOverview()
		v.renderTrendChart()
	case snapshotRequest:
		e.reply <- v.snapshot()
	case overviewLoaded:
		v.handleOverviewLoaded(e)
	case trendLoaded:
		v.handleTrendLoaded(e)
	case sourceLoaded:
		v.handleSourceLoaded(e)
	case buildResolved:
		v.handleBuildResolved(e)
	default:
		v.logger.Warn("unhandled event", "type", fmt.Sprintf("%T", ev))
	}
}

func (v *View) handleInit(e initPage) {
	if v.initialized {
		v.logger.Debug("view already initialized")
		return
	}
	v.initialized = true

	v.restoreActiveTab(e.fragment, e.hasFragment)
	v.renderTrendChart()
	v.loadOverview()
}
