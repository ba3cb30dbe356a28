package dashboard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTabNotFound is returned when a selector matches no registered tab.
var ErrTabNotFound = errors.New("tab not found")

// Tab is one pane of the details tab bar. Target is the selector of the pane,
// e.g. "#absolute-coverage".
type Tab struct {
	Target string `koanf:"target"`
	Title  string `koanf:"title"`
}

// Fragment returns the target without the leading '#'.
func (t Tab) Fragment() string {
	return strings.TrimPrefix(t.Target, "#")
}

// Tabs is the registry of tabs on the page, in document order. It is built
// once at startup and is read-only afterwards.
type Tabs struct {
	tabs     []Tab
	byTarget map[string]int
}

// NewTabs builds the tab registry. Targets without a leading '#' get one.
func NewTabs(tabs ...Tab) (*Tabs, error) {
	if len(tabs) == 0 {
		return nil, errors.New("at least one tab is required")
	}

	t := &Tabs{
		tabs:     make([]Tab, 0, len(tabs)),
		byTarget: make(map[string]int, len(tabs)),
	}
	for _, tab := range tabs {
		target := strings.TrimSpace(tab.Target)
		if target == "" || target == "#" {
			return nil, fmt.Errorf("tab %q has no target", tab.Title)
		}
		if !strings.HasPrefix(target, "#") {
			target = "#" + target
		}
		if _, dup := t.byTarget[target]; dup {
			return nil, fmt.Errorf("duplicate tab target %q", target)
		}
		tab.Target = target
		if tab.Title == "" {
			tab.Title = tab.Fragment()
		}
		t.byTarget[target] = len(t.tabs)
		t.tabs = append(t.tabs, tab)
	}
	return t, nil
}

// DefaultTabs returns the tab bar of the coverage page.
func DefaultTabs() []Tab {
	return []Tab{
		{Target: "#overview", Title: "Overview"},
		{Target: "#absolute-coverage", Title: "Coverage"},
		{Target: "#change-coverage", Title: "Change Coverage"},
	}
}

// Find returns the tab whose target equals selector.
func (t *Tabs) Find(selector string) (Tab, error) {
	i, ok := t.byTarget[selector]
	if !ok {
		return Tab{}, fmt.Errorf("%w: %q", ErrTabNotFound, selector)
	}
	return t.tabs[i], nil
}

// First returns the first tab in document order.
func (t *Tabs) First() Tab {
	return t.tabs[0]
}

// All returns the tabs in document order.
func (t *Tabs) All() []Tab {
	out := make([]Tab, len(t.tabs))
	copy(out, t.tabs)
	return out
}

// tabWidget tracks the active tab of one view and emits a shown event for
// every activation.
type tabWidget struct {
	tabs    *Tabs
	surface Surface
	active  string
	emit    func(event)
}

// show activates the tab matching selector. It returns false when nothing
// matches; that is not an error. Showing the active tab again is a no-op.
func (w *tabWidget) show(selector string) bool {
	tab, err := w.tabs.Find(selector)
	if err != nil {
		return false
	}
	if tab.Target == w.active {
		return true
	}
	w.active = tab.Target
	w.surface.ActivateTab(tab.Target)
	w.emit(tabShown{target: tab.Target})
	return true
}
