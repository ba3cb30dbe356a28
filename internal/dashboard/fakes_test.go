package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/coverdash/internal/chart"
	"github.com/leapstack-labs/coverdash/internal/testutil"
)

// =============================================================================
// Fake surface
// =============================================================================

type surfaceOp struct {
	Kind   string
	Target string
	Value  string
}

type fakeSurface struct {
	mu       sync.Mutex
	ops      []surfaceOp
	fragment string
	visible  map[string]Region
	sources  map[string]string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		visible: make(map[string]Region),
		sources: make(map[string]string),
	}
}

func (s *fakeSurface) record(kind, target, value string) {
	s.ops = append(s.ops, surfaceOp{Kind: kind, Target: target, Value: value})
}

func (s *fakeSurface) SetFragment(fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fragment = fragment
	s.record("fragment", "", fragment)
}

func (s *fakeSurface) ActivateTab(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("tab", target, "")
}

func (s *fakeSurface) InitChart(container string, _ int, option json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("init", container, string(option))
}

func (s *fakeSurface) ResizeChart(container string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("resize", container, "")
}

func (s *fakeSurface) RenderTrendChart(container, dialogID string, model json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("trend", container, string(model))
}

func (s *fakeSurface) ShowChartError(container, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("chart-error", container, message)
}

func (s *fakeSurface) ShowPanel(table string, region Region) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[table] = region
	s.record("panel", table, region.String())
}

func (s *fakeSurface) SetSource(table, markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[table] = markup
	s.record("source", table, markup)
}

func (s *fakeSurface) Navigate(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("navigate", "", url)
}

func (s *fakeSurface) Fragment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fragment
}

func (s *fakeSurface) Visible(table string) Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[table]
}

func (s *fakeSurface) Source(table string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sources[table]
}

func (s *fakeSurface) Ops(kind string) []surfaceOp {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []surfaceOp
	for _, op := range s.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// =============================================================================
// Fake provider
// =============================================================================

type fakeProvider struct {
	mu          sync.Mutex
	overview    chart.OverviewModel
	overviewErr error
	trend       json.RawMessage
	trendErr    error
	configs     []string
	sources     map[string]string
	sourceErr   error
	gates       map[string]chan struct{}
	sourceCalls []string
	buildURLs   map[string]string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		overview: chart.OverviewModel{
			Metrics:            []string{"Line", "Branch"},
			Covered:            []int{80, 40},
			Missed:             []int{20, 60},
			CoveredPercentages: []float64{80, 40},
			MissedPercentages:  []float64{20, 60},
		},
		trend:     json.RawMessage(`{"series":[]}`),
		sources:   make(map[string]string),
		gates:     make(map[string]chan struct{}),
		buildURLs: make(map[string]string),
	}
}

// gate blocks SourceCode for fileHash until the returned func is called.
func (p *fakeProvider) gate(fileHash string) func() {
	ch := make(chan struct{})
	p.mu.Lock()
	p.gates[fileHash] = ch
	p.mu.Unlock()
	return func() { close(ch) }
}

func (p *fakeProvider) Overview(context.Context) (chart.OverviewModel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overview, p.overviewErr
}

func (p *fakeProvider) TrendChart(_ context.Context, configuration string) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configs = append(p.configs, configuration)
	return p.trend, p.trendErr
}

func (p *fakeProvider) SourceCode(ctx context.Context, fileHash, tableID string) (string, error) {
	p.mu.Lock()
	p.sourceCalls = append(p.sourceCalls, fileHash+"@"+tableID)
	gate := p.gates[fileHash]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sourceErr != nil {
		return "", p.sourceErr
	}
	if src, ok := p.sources[fileHash]; ok {
		return src, nil
	}
	return SourceNotAvailable, nil
}

func (p *fakeProvider) BuildURL(_ context.Context, build, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.buildURLs[build]; ok {
		return u, nil
	}
	return SourceNotAvailable, nil
}

func (p *fakeProvider) Configs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.configs...)
}

func (p *fakeProvider) SourceCalls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.sourceCalls...)
}

// =============================================================================
// Harness
// =============================================================================

type harness struct {
	view     *View
	surface  *fakeSurface
	provider *fakeProvider
	store    *MemoryStore
	logs     *testutil.LogRecorder
}

func testTabs(t *testing.T) *Tabs {
	t.Helper()
	tabs, err := NewTabs(
		Tab{Target: "#overview", Title: "Overview"},
		Tab{Target: "#file-coverage", Title: "Files"},
		Tab{Target: "#branch-coverage", Title: "Branches"},
	)
	require.NoError(t, err)
	return tabs
}

// newHarness creates a view that is driven step by step through handle. Fetch
// completions are read from the event channel with next.
func newHarness(t *testing.T, stored map[string]string) *harness {
	t.Helper()

	logger, logs := testutil.NewRecordingLogger(t)
	h := &harness{
		surface:  newFakeSurface(),
		provider: newFakeProvider(),
		store:    NewMemoryStore(stored),
		logs:     logs,
	}
	v, err := New(Config{
		ID:       "test-view",
		Provider: h.provider,
		Store:    h.store,
		Surface:  h.surface,
		Tabs:     testTabs(t),
		PageURL:  "http://localhost:8080/coverage",
		Logger:   logger,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	v.ctx = ctx
	for _, table := range v.tables {
		v.paintPanel(v.panels[table])
	}
	h.view = v
	return h
}

// next handles the next fetch completion posted by a provider goroutine.
func (h *harness) next(t *testing.T) event {
	t.Helper()
	select {
	case ev := <-h.view.events:
		h.view.handle(ev)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a completion")
		return nil
	}
}

// drain handles n completions.
func (h *harness) drain(t *testing.T, n int) {
	t.Helper()
	for range n {
		h.next(t)
	}
}

func (h *harness) stored(t *testing.T, key string) string {
	t.Helper()
	value, ok, err := h.store.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "key %s not stored", key)
	return value
}
