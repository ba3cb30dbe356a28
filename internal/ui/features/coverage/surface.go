package coverage

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/coverdash/internal/dashboard"
)

// operation is one queued change for the browser page.
type operation func(sse *datastar.ServerSentEventGenerator) error

// Surface queues the page operations issued by a dashboard view until the
// updates stream of the page sends them. It is safe for concurrent use: the
// view loop appends while the stream handler flushes.
type Surface struct {
	mu    sync.Mutex
	queue []operation
	ready chan struct{}
}

var _ dashboard.Surface = (*Surface)(nil)

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{ready: make(chan struct{}, 1)}
}

// Ready receives a value whenever operations were queued since the last Flush.
func (s *Surface) Ready() <-chan struct{} {
	return s.ready
}

// Pending returns the number of queued operations.
func (s *Surface) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush sends the queued operations in order. Failing operations are reported
// to the browser console and do not stop the remaining ones.
func (s *Surface) Flush(sse *datastar.ServerSentEventGenerator) {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, op := range queue {
		if err := op(sse); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
}

func (s *Surface) push(op operation) {
	s.mu.Lock()
	s.queue = append(s.queue, op)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Surface) script(fn string, args ...any) {
	call, err := jsCall(fn, args...)
	s.push(func(sse *datastar.ServerSentEventGenerator) error {
		if err != nil {
			return err
		}
		return sse.ExecuteScript(call)
	})
}

// Attach tells the page client the id of its view.
func (s *Surface) Attach(viewID string) {
	s.script("coverdash.attach", viewID)
}

// SetFragment implements dashboard.Surface.
func (s *Surface) SetFragment(fragment string) {
	s.script("coverdash.setFragment", fragment)
}

// ActivateTab implements dashboard.Surface.
func (s *Surface) ActivateTab(target string) {
	s.script("coverdash.activateTab", target)
}

// InitChart implements dashboard.Surface.
func (s *Surface) InitChart(container string, height int, option json.RawMessage) {
	s.script("coverdash.initChart", container, height, option)
}

// ResizeChart implements dashboard.Surface.
func (s *Surface) ResizeChart(container string) {
	s.script("coverdash.resizeChart", container)
}

// RenderTrendChart implements dashboard.Surface.
func (s *Surface) RenderTrendChart(container, dialogID string, model json.RawMessage) {
	s.script("coverdash.renderTrendChart", container, dialogID, model)
}

// ShowChartError implements dashboard.Surface.
func (s *Surface) ShowChartError(container, message string) {
	s.script("coverdash.disposeChart", container)
	s.push(func(sse *datastar.ServerSentEventGenerator) error {
		return sse.PatchElementTempl(ChartError(message),
			datastar.WithSelectorID(container), datastar.WithModeInner())
	})
}

// ShowPanel implements dashboard.Surface.
func (s *Surface) ShowPanel(table string, region dashboard.Region) {
	s.script("coverdash.showPanel", table, region.String())
}

// SetSource implements dashboard.Surface.
func (s *Surface) SetSource(table, markup string) {
	s.push(func(sse *datastar.ServerSentEventGenerator) error {
		return sse.PatchElementTempl(templ.Raw(markup),
			datastar.WithSelectorID(dashboard.RegionID(table, dashboard.RegionSourceFile)),
			datastar.WithModeInner())
	})
}

// Navigate implements dashboard.Surface.
func (s *Surface) Navigate(url string) {
	s.script("window.location.assign", url)
}

// jsCall renders a call of fn with JSON encoded arguments. Raw JSON arguments
// are embedded as is.
func jsCall(fn string, args ...any) (string, error) {
	var b strings.Builder
	b.WriteString(fn)
	b.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		if raw, ok := arg.(json.RawMessage); ok {
			if len(raw) == 0 {
				raw = json.RawMessage("null")
			}
			b.Write(raw)
			continue
		}
		encoded, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode argument %d of %s: %w", i, fn, err)
		}
		b.Write(encoded)
	}
	b.WriteByte(')')
	return b.String(), nil
}
