package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTabs(t *testing.T) {
	tests := []struct {
		name    string
		tabs    []Tab
		want    []string
		wantErr string
	}{
		{
			name: "normalizes targets",
			tabs: []Tab{{Target: "overview"}, {Target: "#files", Title: "Files"}},
			want: []string{"#overview", "#files"},
		},
		{
			name:    "no tabs",
			wantErr: "at least one tab",
		},
		{
			name:    "empty target",
			tabs:    []Tab{{Target: "#", Title: "Broken"}},
			wantErr: "has no target",
		},
		{
			name:    "duplicate target",
			tabs:    []Tab{{Target: "#a"}, {Target: "a"}},
			wantErr: "duplicate tab target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabs, err := NewTabs(tt.tabs...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			var targets []string
			for _, tab := range tabs.All() {
				targets = append(targets, tab.Target)
			}
			assert.Equal(t, tt.want, targets)
		})
	}
}

func TestTabs_Find(t *testing.T) {
	tabs := testTabs(t)

	tab, err := tabs.Find("#file-coverage")
	require.NoError(t, err)
	assert.Equal(t, "Files", tab.Title)
	assert.Equal(t, "file-coverage", tab.Fragment())

	_, err = tabs.Find("#missing")
	require.ErrorIs(t, err, ErrTabNotFound)

	assert.Equal(t, "#overview", tabs.First().Target)
}

func TestTabs_DefaultTitle(t *testing.T) {
	tabs, err := NewTabs(Tab{Target: "#overview"})
	require.NoError(t, err)
	assert.Equal(t, "overview", tabs.First().Title)
}

func TestDefaultTabs(t *testing.T) {
	tabs, err := NewTabs(DefaultTabs()...)
	require.NoError(t, err)
	assert.Len(t, tabs.All(), 3)
}
