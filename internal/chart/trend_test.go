package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrendConfig(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    TrendConfig
		wantErr bool
	}{
		{name: "empty", raw: "", want: DefaultTrendConfig()},
		{name: "null", raw: "null", want: DefaultTrendConfig()},
		{
			name: "all fields",
			raw:  `{"numberOfBuilds": 10, "numberOfDays": 7, "buildAsDomain": false}`,
			want: TrendConfig{NumberOfBuilds: 10, NumberOfDays: 7, BuildAsDomain: false},
		},
		{
			name: "partial keeps defaults",
			raw:  `{"numberOfDays": 3, "unknown": true}`,
			want: TrendConfig{NumberOfBuilds: DefaultNumberOfBuilds, NumberOfDays: 3, BuildAsDomain: true},
		},
		{
			name: "negative limits clamp",
			raw:  `{"numberOfBuilds": -1, "numberOfDays": -2}`,
			want: TrendConfig{NumberOfBuilds: 0, NumberOfDays: 0, BuildAsDomain: true},
		},
		{name: "invalid json", raw: `{"numberOfBuilds":`, want: DefaultTrendConfig(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTrendConfig(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildTrend(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	points := []TrendPoint{
		{Build: 3, Date: now.Add(-1 * time.Hour), Values: map[string]float64{"Line": 90, "File": 100}},
		{Build: 1, Date: now.Add(-10 * 24 * time.Hour), Values: map[string]float64{"Line": 70, "File": 80}},
		{Build: 2, DisplayName: "release-2", Date: now.Add(-2 * 24 * time.Hour), Values: map[string]float64{"Line": 80}},
	}
	colors := map[string]string{"Line": "#1ea64b"}

	t.Run("defaults keep every build oldest first", func(t *testing.T) {
		model := BuildTrend(points, []string{"Line", "File"}, colors, DefaultTrendConfig(), now)

		assert.Equal(t, "Build", model.DomainAxisItemName)
		assert.Equal(t, []int{1, 2, 3}, model.BuildNumbers)
		assert.Equal(t, []string{"#1", "release-2", "#3"}, model.DomainAxisLabels)
		require.Len(t, model.Series, 2)
		assert.Equal(t, []float64{70, 80, 90}, model.Series[0].Data)
		assert.Equal(t, []float64{80, 0, 100}, model.Series[1].Data)
		require.NotNil(t, model.Series[0].ItemStyle)
		assert.Nil(t, model.Series[1].ItemStyle)
	})

	t.Run("number of builds keeps the newest", func(t *testing.T) {
		model := BuildTrend(points, []string{"Line"}, nil, TrendConfig{NumberOfBuilds: 2, BuildAsDomain: true}, now)
		assert.Equal(t, []int{2, 3}, model.BuildNumbers)
	})

	t.Run("number of days drops old builds", func(t *testing.T) {
		model := BuildTrend(points, []string{"Line"}, nil, TrendConfig{NumberOfDays: 5, BuildAsDomain: true}, now)
		assert.Equal(t, []int{2, 3}, model.BuildNumbers)
	})

	t.Run("date domain", func(t *testing.T) {
		model := BuildTrend(points[:1], []string{"Line"}, nil, TrendConfig{}, now)
		assert.Equal(t, "Date", model.DomainAxisItemName)
		assert.Equal(t, []string{"2026-10-19"}, model.DomainAxisLabels)
	})
}
