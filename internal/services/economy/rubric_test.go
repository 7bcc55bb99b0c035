package economy

import (
	"testing"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBandBreakpoints(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		bands []breakpoint
		other int
		want  int
		high  bool
	}{
		{"gdp top", 5.0, gdpBands, gdpFloor, 20, true},
		{"gdp strong", 3.0, gdpBands, gdpFloor, 10, true},
		{"gdp weak", 1.0, gdpBands, gdpFloor, 5, true},
		{"gdp flat", 0.0, gdpBands, gdpFloor, 0, true},
		{"gdp recession", -0.1, gdpBands, gdpFloor, -10, true},
		{"trade surplus", 500, tradeBands, tradeFloor, 10, true},
		{"trade balanced", 0, tradeBands, tradeFloor, 5, true},
		{"trade deficit", -500, tradeBands, tradeFloor, 0, true},
		{"trade deep deficit", -501, tradeBands, tradeFloor, -10, true},
		{"unemployment low", 4.0, unemploymentBands, unemploymentCeiling, 15, false},
		{"unemployment moderate", 7.0, unemploymentBands, unemploymentCeiling, 5, false},
		{"unemployment high", 10.0, unemploymentBands, unemploymentCeiling, 0, false},
		{"unemployment severe", 10.1, unemploymentBands, unemploymentCeiling, -10, false},
		{"inflation low", 3.0, inflationBands, inflationCeiling, 15, false},
		{"inflation moderate", 6.0, inflationBands, inflationCeiling, 5, false},
		{"inflation high", 10.0, inflationBands, inflationCeiling, -5, false},
		{"inflation runaway", 10.1, inflationBands, inflationCeiling, -15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			if tt.high {
				got = atLeast(tt.value, tt.bands, tt.other)
			} else {
				got = atMost(tt.value, tt.bands, tt.other)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateChangeBands(t *testing.T) {
	prev := model.EconomicYearRecord{GoldReserves: 100, IndustrialOutput: 50}

	next := prev
	b := Evaluate(prev, next)
	assert.Equal(t, 0, b.GoldChange)
	assert.Equal(t, 0, b.IndustrialGrowth)

	next.GoldReserves = 101
	next.IndustrialOutput = 50.5
	b = Evaluate(prev, next)
	assert.Equal(t, 5, b.GoldChange)
	assert.Equal(t, 5, b.IndustrialGrowth)

	next.GoldReserves = 99
	next.IndustrialOutput = 52.0
	b = Evaluate(prev, next)
	assert.Equal(t, -5, b.GoldChange)
	assert.Equal(t, 10, b.IndustrialGrowth)

	next.IndustrialOutput = 49.9
	b = Evaluate(prev, next)
	assert.Equal(t, -5, b.IndustrialGrowth)
}
