package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		digits int
		want   string
	}{
		{name: "two digits", value: 80.42, digits: 2, want: "80.42%"},
		{name: "padded fraction", value: 50, digits: 2, want: "50.00%"},
		{name: "no fraction", value: 100, digits: 0, want: "100%"},
		{name: "zero", value: 0, digits: 0, want: "0%"},
		{name: "negative digits clamp to zero", value: 25, digits: -1, want: "25%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percentage(tt.value, tt.digits))
		})
	}
}

func TestPercentageDefault(t *testing.T) {
	assert.Equal(t, Percentage(12.5, DefaultFractionDigits), PercentageDefault(12.5))
	assert.Equal(t, "12.50%", PercentageDefault(12.5))
}
