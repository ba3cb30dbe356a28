package testutil

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingLogger(t *testing.T) {
	logger, rec := NewRecordingLogger(t)

	logger.With("view", "v1").Error("failed to load overview", "error", errors.New("boom"))
	logger.Debug("details", "count", 3)

	records := rec.Records()
	require.Len(t, records, 2)

	got, ok := rec.Find(slog.LevelError, "failed to load overview")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"view": "v1", "error": "boom"}, got.Attrs)

	assert.True(t, rec.Has(slog.LevelDebug, "details"))
	assert.False(t, rec.Has(slog.LevelInfo, "details"), "the level must match")
	assert.Equal(t, "3", records[1].Attrs["count"])
}
