package dashboard

// SourcePanelState is the display state of a table's source panel.
type SourcePanelState int

const (
	NoSelection SourcePanelState = iota
	NoSourceAvailable
	ShowingSource
	// SourceFailed shows the source region with an error message after the
	// source fetch failed.
	SourceFailed
)

// String returns a readable name for the state.
func (s SourcePanelState) String() string {
	switch s {
	case NoSelection:
		return "no-selection"
	case NoSourceAvailable:
		return "no-source"
	case ShowingSource:
		return "showing-source"
	case SourceFailed:
		return "source-failed"
	default:
		return "unknown"
	}
}

// Region returns the region that is visible in state s.
func (s SourcePanelState) Region() Region {
	switch s {
	case NoSourceAvailable:
		return RegionNoSource
	case ShowingSource, SourceFailed:
		return RegionSourceFile
	default:
		return RegionNoSelection
	}
}

// Placeholder markup of the source region.
const (
	LoadingMarkup = "Loading..."
)

// sourcePanel is the per-table state of the source inspector. token grows on
// every select and deselect; a fetch result is applied only while its token
// is current.
type sourcePanel struct {
	table    string
	state    SourcePanelState
	token    uint64
	selected bool
	fileHash string
	markup   string
}
