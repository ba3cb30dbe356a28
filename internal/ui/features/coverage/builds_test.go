package coverage

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/coverdash/internal/ui/features"
)

func TestBuildPage(t *testing.T) {
	named := calcBuild
	named.DisplayName = "nightly"
	named.URL = "https://ci.example.com/job/9/"

	tests := []struct {
		name       string
		number     string
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "build metrics",
			number:     "1",
			wantStatus: http.StatusOK,
			wantBody: []string{
				"<title>nightly - coverdash</title>",
				`href="https://ci.example.com/job/9/"`,
				`href="/coverage"`,
				"<td>Line</td>",
				"<td>Statement</td>",
				"100.00%",
				"66.67%",
			},
		},
		{"unknown build", "7", http.StatusNotFound, []string{"not found"}},
		{"invalid number", "latest", http.StatusBadRequest, []string{"invalid build number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandlers(t, named)

			req := httptest.NewRequest(http.MethodGet, "/builds/"+tt.number, nil)
			req = features.RequestWithPathParam(req, "number", tt.number)
			rec := httptest.NewRecorder()
			h.BuildPage(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}
