// Package achievement awards end-of-game achievements from a country's
// complete economic history.
package achievement

import (
	"github.com/mcoot/brettonwoods/internal/model"
)

// Result is the set of achievements a country earned and their summed points
type Result struct {
	Achievements []model.Achievement
	Bonus        int
}

type stats struct {
	meanGrowth       float64
	meanUnemployment float64
	meanInflation    float64
}

type tier struct {
	achievement model.Achievement
	qualifies   func(stats) bool
}

// Stability tiers, strictest first. Only the first match is awarded.
var stabilityTiers = []tier{
	{
		achievement: model.Achievement{ID: "golden-age", Name: "Golden Age", Description: "Average growth of 5% with unemployment at or under 4% and inflation at or under 3%", Points: 50},
		qualifies: func(s stats) bool {
			return s.meanGrowth >= 5 && s.meanUnemployment <= 4 && s.meanInflation <= 3
		},
	},
	{
		achievement: model.Achievement{ID: "stable-prosperity", Name: "Stable Prosperity", Description: "Average growth of 3% with unemployment at or under 6% and inflation at or under 5%", Points: 30},
		qualifies: func(s stats) bool {
			return s.meanGrowth >= 3 && s.meanUnemployment <= 6 && s.meanInflation <= 5
		},
	},
	{
		achievement: model.Achievement{ID: "steady-hand", Name: "Steady Hand", Description: "Average growth of 1% with inflation at or under 8%", Points: 15},
		qualifies: func(s stats) bool {
			return s.meanGrowth >= 1 && s.meanInflation <= 8
		},
	},
}

var (
	tradePowerhouse       = model.Achievement{ID: "trade-powerhouse", Name: "Trade Powerhouse", Description: "Cumulative trade surplus of at least 2000", Points: 25}
	goldHoarder           = model.Achievement{ID: "gold-hoarder", Name: "Gold Hoarder", Description: "Gold reserves never fell and ended above their starting level", Points: 20}
	industrialExpansion   = model.Achievement{ID: "industrial-expansion", Name: "Industrial Expansion", Description: "Industrial output grew at least 10% over the game", Points: 20}
	fullEmployment        = model.Achievement{ID: "full-employment", Name: "Full Employment", Description: "Unemployment at or under 3% every year", Points: 15}
	consistentPolicymaker = model.Achievement{ID: "consistent-policymaker", Name: "Consistent Policymaker", Description: "Submitted a policy every year", Points: 10}
)

const (
	tradePowerhouseThreshold = 2000.0
	industrialGrowthFactor   = 1.1
	fullEmploymentCeiling    = 3.0
)

// Evaluate scans a country's history and policies for achievements.
// history[0] is the baseline year; averages and per-year checks cover the
// simulated years that follow it. Histories with no simulated years earn
// nothing.
func Evaluate(country model.Country, history []model.EconomicYearRecord, policies []model.PolicyRecord) Result {
	var result Result
	if len(history) < 2 {
		return result
	}
	baseline := history[0]
	years := history[1:]
	final := years[len(years)-1]

	award := func(a model.Achievement) {
		result.Achievements = append(result.Achievements, a)
		result.Bonus += a.Points
	}

	st := summarize(years)
	for _, t := range stabilityTiers {
		if t.qualifies(st) {
			award(t.achievement)
			break
		}
	}

	var tradeTotal float64
	for _, y := range years {
		tradeTotal += y.TradeBalance
	}
	if tradeTotal >= tradePowerhouseThreshold {
		award(tradePowerhouse)
	}

	if goldNeverFell(history) && final.GoldReserves > baseline.GoldReserves {
		award(goldHoarder)
	}

	if final.IndustrialOutput > baseline.IndustrialOutput &&
		final.IndustrialOutput >= baseline.IndustrialOutput*industrialGrowthFactor {
		award(industrialExpansion)
	}

	if allYears(years, func(r model.EconomicYearRecord) bool { return r.Unemployment <= fullEmploymentCeiling }) {
		award(fullEmployment)
	}

	if submittedEveryYear(years, policies) {
		award(consistentPolicymaker)
	}

	byYear := make(map[int]model.EconomicYearRecord, len(history))
	for _, r := range history {
		byYear[r.Year] = r
	}
	for _, rule := range countryRules[country] {
		if rule.applies(byYear) {
			award(rule.achievement)
		}
	}

	return result
}

func summarize(years []model.EconomicYearRecord) stats {
	var st stats
	for _, y := range years {
		st.meanGrowth += y.GDPGrowth
		st.meanUnemployment += y.Unemployment
		st.meanInflation += y.Inflation
	}
	n := float64(len(years))
	st.meanGrowth /= n
	st.meanUnemployment /= n
	st.meanInflation /= n
	return st
}

func goldNeverFell(history []model.EconomicYearRecord) bool {
	for i := 1; i < len(history); i++ {
		if history[i].GoldReserves < history[i-1].GoldReserves {
			return false
		}
	}
	return true
}

func allYears(years []model.EconomicYearRecord, pred func(model.EconomicYearRecord) bool) bool {
	for _, y := range years {
		if !pred(y) {
			return false
		}
	}
	return true
}

// submittedEveryYear checks that each simulated year was produced from a
// submitted policy for the year before it
func submittedEveryYear(years []model.EconomicYearRecord, policies []model.PolicyRecord) bool {
	submitted := make(map[int]bool, len(policies))
	for _, p := range policies {
		if p.Submitted {
			submitted[p.Year] = true
		}
	}
	for _, y := range years {
		if !submitted[y.Year-1] {
			return false
		}
	}
	return true
}
