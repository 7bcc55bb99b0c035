package achievement

import (
	"github.com/mcoot/brettonwoods/internal/model"
)

// countryRule is an achievement only one country can earn. It is skipped
// unless every year it names is present in the history.
type countryRule struct {
	achievement model.Achievement
	years       []int
	check       func(byYear map[int]model.EconomicYearRecord) bool
}

func (r countryRule) applies(byYear map[int]model.EconomicYearRecord) bool {
	for _, y := range r.years {
		if _, ok := byYear[y]; !ok {
			return false
		}
	}
	return r.check(byYear)
}

var countryRules = map[model.Country][]countryRule{
	model.CountryUSA: {
		{
			achievement: model.Achievement{ID: "usa-anchor", Name: "Anchor of the System", Description: "Trade surplus in each of 1947, 1948 and 1949", Points: 30},
			years:       []int{1947, 1948, 1949},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1947].TradeBalance > 0 && y[1948].TradeBalance > 0 && y[1949].TradeBalance > 0
			},
		},
	},
	model.CountryUK: {
		{
			achievement: model.Achievement{ID: "uk-sterling-recovery", Name: "Sterling Recovery", Description: "Gold reserves in 1950 at or above their 1946 level", Points: 30},
			years:       []int{1946, 1950},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1950].GoldReserves >= y[1946].GoldReserves
			},
		},
	},
	model.CountryUSSR: {
		{
			achievement: model.Achievement{ID: "ussr-five-year-plan", Name: "Five-Year Plan", Description: "Industrial output in 1950 at least 25% above 1946", Points: 30},
			years:       []int{1946, 1950},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1950].IndustrialOutput >= y[1946].IndustrialOutput*1.25
			},
		},
	},
	model.CountryFrance: {
		{
			achievement: model.Achievement{ID: "france-trente-glorieuses", Name: "Les Trente Glorieuses", Description: "Growth of at least 4% in each of 1949, 1950 and 1951", Points: 35},
			years:       []int{1949, 1950, 1951},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1949].GDPGrowth >= 4 && y[1950].GDPGrowth >= 4 && y[1951].GDPGrowth >= 4
			},
		},
	},
	model.CountryChina: {
		{
			achievement: model.Achievement{ID: "china-reconstruction", Name: "Reconstruction", Description: "Growth of at least 3% in 1950 after the civil war", Points: 40},
			years:       []int{1950},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1950].GDPGrowth >= 3
			},
		},
	},
	model.CountryIndia: {
		{
			achievement: model.Achievement{ID: "india-independent-economy", Name: "Independent Economy", Description: "Positive growth in 1948 through the transition", Points: 30},
			years:       []int{1948},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1948].GDPGrowth > 0
			},
		},
	},
	model.CountryArgentina: {
		{
			achievement: model.Achievement{ID: "argentina-export-boom", Name: "Export Boom", Description: "Trade surplus in 1947 and inflation at or under 10% in 1949", Points: 25},
			years:       []int{1947, 1949},
			check: func(y map[int]model.EconomicYearRecord) bool {
				return y[1947].TradeBalance > 0 && y[1949].Inflation <= 10
			},
		},
	},
}
