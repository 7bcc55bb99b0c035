// Package economy implements the year-over-year economic simulation and the
// yearly performance rubric.
package economy

import (
	"math"

	"github.com/mcoot/brettonwoods/internal/dependencies/random"
	"github.com/mcoot/brettonwoods/internal/model"
)

// Model coefficients
const (
	baseGrowth          = 4.0
	optimalCentralBank  = 3.0
	centralBankDrag     = 0.5
	parityExchangeRate  = 1.0
	exchangeRateDrag    = 2.0
	tariffDrag          = 0.1
	noPolicyGrowthDrop  = 2.0
	agreementBonusScale = 20.0

	gdpShockAmplitude       = 1.0
	inflationShockAmplitude = 1.5
	tradeShockAmplitude     = 100.0

	minUnemployment = 0.5
	maxUnemployment = 25.0
)

// Outcome is the result of advancing one country by one year
type Outcome struct {
	Record    model.EconomicYearRecord
	Score     int
	Breakdown model.ScoreBreakdown
	NoPolicy  bool
}

// AgreementBonus converts a country's Phase 1 score into a growth bonus
func AgreementBonus(phase1Score int) float64 {
	if phase1Score <= 0 {
		return 0
	}
	return float64(phase1Score) / agreementBonusScale
}

// AdvanceYear derives the next year's record for a country from its previous
// record and the policy it submitted for that year. A nil policy carries the
// previous record forward with a growth penalty and draws no randomness.
//
// Random draws are consumed in a fixed order: GDP, inflation, trade.
func AdvanceYear(prev model.EconomicYearRecord, policy *model.Policy, bonus float64, profile model.CountryProfile, rnd random.Random) Outcome {
	next := prev
	next.Year = prev.Year + 1
	next.Country = profile.Country

	if policy == nil {
		next.GDPGrowth = round1(prev.GDPGrowth - noPolicyGrowthDrop)
		breakdown := Evaluate(prev, next)
		return Outcome{Record: next, Score: breakdown.Total(), Breakdown: breakdown, NoPolicy: true}
	}

	shockGDP, shockInflation, shockTrade := profile.ShocksIn(next.Year)
	if bonus < 0 {
		bonus = 0
	}

	growth := baseGrowth -
		centralBankDrag*math.Abs(policy.CentralBankRate-optimalCentralBank) -
		exchangeRateDrag*math.Abs(policy.ExchangeRate-parityExchangeRate) -
		tariffDrag*math.Abs(policy.TariffRate-profile.TariffOptimum) +
		bonus + shockGDP + shock(rnd, gdpShockAmplitude)
	next.GDPGrowth = round1(growth)
	g := next.GDPGrowth

	inflation := prev.Inflation
	if policy.CentralBankRate < 2.0 {
		inflation += (2.0 - policy.CentralBankRate) * 2.0
	}
	if policy.CentralBankRate > 5.0 {
		inflation -= (policy.CentralBankRate - 5.0) * 1.5
	}
	inflation += shock(rnd, inflationShockAmplitude) + shockInflation
	next.Inflation = round1(math.Max(0, inflation))

	unemployment := prev.Unemployment
	if g > 3.0 {
		unemployment -= (g - 3.0) * 0.3
	}
	if g < 1.0 {
		unemployment += (1.0 - g) * 0.5
	}
	next.Unemployment = round1(clamp(unemployment, minUnemployment, maxUnemployment))

	trade := prev.TradeBalance +
		(1-policy.ExchangeRate)*500 -
		20*policy.TariffRate -
		100*g +
		shockTrade + shock(rnd, tradeShockAmplitude)
	next.TradeBalance = math.Round(trade)

	gold := prev.GoldReserves
	if next.TradeBalance > 0 {
		gold += 0.10 * next.TradeBalance
	} else {
		gold += 0.15 * next.TradeBalance
	}
	next.GoldReserves = math.Round(math.Max(0, gold))

	next.IndustrialOutput = round1(math.Max(0, prev.IndustrialOutput+0.5*g))

	breakdown := Evaluate(prev, next)
	return Outcome{Record: next, Score: breakdown.Total(), Breakdown: breakdown}
}

// shock maps a uniform draw in [0,1) onto [-amplitude, +amplitude)
func shock(rnd random.Random, amplitude float64) float64 {
	return (2*rnd.Float64() - 1) * amplitude
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
