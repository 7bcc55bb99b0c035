package economy

import (
	"github.com/mcoot/brettonwoods/internal/model"
)

type breakpoint struct {
	threshold float64
	points    int
}

// Higher is better: first threshold the value reaches wins
var (
	gdpBands = []breakpoint{{5, 20}, {3, 10}, {1, 5}, {0, 0}}
	gdpFloor = -10

	tradeBands = []breakpoint{{500, 10}, {0, 5}, {-500, 0}}
	tradeFloor = -10
)

// Lower is better: first threshold the value stays under wins
var (
	unemploymentBands   = []breakpoint{{4, 15}, {7, 5}, {10, 0}}
	unemploymentCeiling = -10

	inflationBands   = []breakpoint{{3, 15}, {6, 5}, {10, -5}}
	inflationCeiling = -15
)

// Evaluate scores next against prev across the six rubric bands
func Evaluate(prev, next model.EconomicYearRecord) model.ScoreBreakdown {
	return model.ScoreBreakdown{
		GDPGrowth:        atLeast(next.GDPGrowth, gdpBands, gdpFloor),
		Unemployment:     atMost(next.Unemployment, unemploymentBands, unemploymentCeiling),
		Inflation:        atMost(next.Inflation, inflationBands, inflationCeiling),
		TradeBalance:     atLeast(next.TradeBalance, tradeBands, tradeFloor),
		GoldChange:       goldChangePoints(next.GoldReserves - prev.GoldReserves),
		IndustrialGrowth: industrialChangePoints(round1(next.IndustrialOutput - prev.IndustrialOutput)),
	}
}

func atLeast(v float64, bands []breakpoint, otherwise int) int {
	for _, b := range bands {
		if v >= b.threshold {
			return b.points
		}
	}
	return otherwise
}

func atMost(v float64, bands []breakpoint, otherwise int) int {
	for _, b := range bands {
		if v <= b.threshold {
			return b.points
		}
	}
	return otherwise
}

func goldChangePoints(delta float64) int {
	switch {
	case delta > 0:
		return 5
	case delta < 0:
		return -5
	default:
		return 0
	}
}

func industrialChangePoints(delta float64) int {
	switch {
	case delta >= 2:
		return 10
	case delta > 0:
		return 5
	case delta < 0:
		return -5
	default:
		return 0
	}
}
