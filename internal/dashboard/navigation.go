package dashboard

// restoreActiveTab picks the tab to activate when the page is loaded: the tab
// named by the URL fragment, then the persisted tab, then the first tab.
func (v *View) restoreActiveTab(fragment string, hasFragment bool) {
	restored := false
	if hasFragment {
		v.surface.SetFragment("")
		selector := "#" + fragment
		if v.tabs.show(selector) {
			v.persistActiveTab(selector)
			restored = true
		}
	}

	if !restored {
		selector, ok, err := v.store.Get(ActiveTabKey)
		if err != nil {
			v.logger.Warn("failed to read active tab", "error", err)
		}
		if ok && selector != "" {
			restored = v.tabs.show(selector)
		}
	}

	if !restored && v.tabs.active == "" {
		v.tabs.show(v.tabs.tabs.First().Target)
	}
}

// handleTabShown runs for every tab activation, whatever triggered it.
func (v *View) handleTabShown(e tabShown) {
	tab, err := v.tabs.tabs.Find(e.target)
	if err != nil {
		v.logger.Debug("shown event for unknown tab", "target", e.target)
		return
	}
	v.surface.SetFragment(tab.Fragment())
	v.persistActiveTab(tab.Target)
	v.redraw()
}

func (v *View) persistActiveTab(selector string) {
	if err := v.store.Set(ActiveTabKey, selector); err != nil {
		v.logger.Warn("failed to persist active tab", "tab", selector, "error", err)
	}
}
