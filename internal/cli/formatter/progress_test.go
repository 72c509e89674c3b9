package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComplianceBar(t *testing.T) {
	tests := []struct {
		name   string
		frac   float64
		filled int
		label  string
	}{
		{"empty", 0, 0, "  0%"},
		{"half", 0.5, 5, " 50%"},
		{"full", 1, 10, "100%"},
		{"negative clamps", -0.5, 0, "-50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(ComplianceBar(tt.frac, 10))
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.Equal(t, 10-tt.filled, strings.Count(got, emptyBlock))
			assert.True(t, strings.HasSuffix(got, tt.label), got)
		})
	}
}

func TestUtilizationBar_OverCapacityKeepsLabel(t *testing.T) {
	got := stripANSI(UtilizationBar(150, 4))
	assert.Equal(t, 4, strings.Count(got, filledBlock))
	assert.True(t, strings.HasSuffix(got, "150%"))
}

func TestRenderBar_MinimumWidth(t *testing.T) {
	got := stripANSI(ComplianceBar(0.5, 1))
	assert.Equal(t, 1, strings.Count(got, filledBlock))
	assert.Equal(t, 1, strings.Count(got, emptyBlock))
}
