package coverage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/coverdash/internal/chart"
	"github.com/leapstack-labs/coverdash/internal/dashboard"
)

func getTrendConfig(t *testing.T, h *Handlers, cookie *http.Cookie) chart.TrendConfig {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/coverage/trend-config", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.TrendConfig(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var cfg chart.TrendConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	return cfg
}

func TestTrendConfig_Defaults(t *testing.T) {
	h, _ := setupTestHandlers(t)
	cookie := pageCookie(t, h)

	assert.Equal(t, chart.DefaultTrendConfig(), getTrendConfig(t, h, cookie))
}

func TestTrendConfig_InvalidStoredValue(t *testing.T) {
	h, _ := setupTestHandlers(t)
	cookie := pageCookie(t, h)
	require.NoError(t, h.store.SetClientValue(t.Context(), clientIDOf(t, h, cookie), dashboard.TrendConfigKey, "{broken"))

	assert.Equal(t, chart.DefaultTrendConfig(), getTrendConfig(t, h, cookie))
}

func TestSaveTrendConfig(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       chart.TrendConfig
	}{
		{
			name:       "saves configuration",
			body:       `{"numberOfBuilds":10,"numberOfDays":7,"buildAsDomain":false}`,
			wantStatus: http.StatusNoContent,
			want:       chart.TrendConfig{NumberOfBuilds: 10, NumberOfDays: 7},
		},
		{
			name:       "negative builds",
			body:       `{"numberOfBuilds":-1}`,
			wantStatus: http.StatusBadRequest,
			want:       chart.DefaultTrendConfig(),
		},
		{
			name:       "negative days",
			body:       `{"numberOfDays":-3}`,
			wantStatus: http.StatusBadRequest,
			want:       chart.DefaultTrendConfig(),
		},
		{
			name:       "invalid JSON",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			want:       chart.DefaultTrendConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t)
			cookie := pageCookie(t, h)

			req := httptest.NewRequest(http.MethodPost, "/coverage/trend-config", strings.NewReader(tt.body))
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			h.SaveTrendConfig(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.want, getTrendConfig(t, h, cookie))
		})
	}
}

func TestSaveTrendConfig_UsedByTrendChart(t *testing.T) {
	h, _ := setupTestHandlers(t, calcBuild, calcBuild, calcBuild)
	cookie := pageCookie(t, h)

	req := httptest.NewRequest(http.MethodPost, "/coverage/trend-config",
		strings.NewReader(`{"numberOfBuilds":2,"numberOfDays":0,"buildAsDomain":true}`))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.SaveTrendConfig(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	page := openUpdates(t, h, `{"pageUrl":"http://localhost:8080/coverage"}`, cookie)
	page.waitForBody(t, `"domainAxisLabels":["#2","#3"]`)
}
