// Package issues holds the scripted content of a game: the Phase 1 issues
// put to a vote each round and the country profiles Phase 2 starts from.
package issues

import (
	"github.com/mcoot/brettonwoods/internal/model"
)

// ReferenceTariffOptimum is the tariff level the reference economy (USA)
// grows best at. Every other country peaks at DefaultTariffOptimum.
const (
	ReferenceTariffOptimum = 10.0
	DefaultTariffOptimum   = 15.0
)

var rounds = []model.Issue{
	{
		ID:      "exchange-regime",
		Title:   "Exchange rate regime",
		Summary: "How should member currencies be anchored after the war?",
		Options: []model.IssueOption{
			{
				ID:      "dollar-gold",
				Label:   "Peg to the dollar, dollar convertible to gold",
				Favors:  []model.Country{model.CountryUSA},
				Opposes: []model.Country{model.CountryUK},
			},
			{
				ID:      "bancor",
				Label:   "International clearing union with the bancor",
				Favors:  []model.Country{model.CountryUK, model.CountryIndia},
				Opposes: []model.Country{model.CountryUSA},
			},
			{
				ID:      "float",
				Label:   "Let currencies float",
				Favors:  []model.Country{model.CountryArgentina},
				Opposes: []model.Country{model.CountryFrance},
			},
		},
	},
	{
		ID:      "fund-quotas",
		Title:   "IMF quota formula",
		Summary: "How should subscriptions and drawing rights be allocated?",
		Options: []model.IssueOption{
			{
				ID:      "by-size",
				Label:   "Quotas by national income and trade",
				Favors:  []model.Country{model.CountryUSA, model.CountryUK},
				Opposes: []model.Country{model.CountryIndia, model.CountryChina},
			},
			{
				ID:      "equal",
				Label:   "Equal base quota for every member",
				Favors:  []model.Country{model.CountryIndia, model.CountryChina, model.CountryArgentina},
				Opposes: []model.Country{model.CountryUSA},
			},
		},
	},
	{
		ID:      "bank-lending",
		Title:   "World Bank lending priority",
		Summary: "Where should the Bank direct its first loans?",
		Options: []model.IssueOption{
			{
				ID:      "reconstruction",
				Label:   "Reconstruction of war-damaged Europe",
				Favors:  []model.Country{model.CountryFrance, model.CountryUK, model.CountryUSSR},
				Opposes: []model.Country{model.CountryIndia},
			},
			{
				ID:      "development",
				Label:   "Development of poorer economies",
				Favors:  []model.Country{model.CountryIndia, model.CountryChina, model.CountryArgentina},
				Opposes: []model.Country{model.CountryFrance},
			},
		},
	},
	{
		ID:      "capital-controls",
		Title:   "Capital controls",
		Summary: "May members restrict movements of capital across borders?",
		Options: []model.IssueOption{
			{
				ID:      "permit",
				Label:   "Members may impose capital controls",
				Favors:  []model.Country{model.CountryUK, model.CountryFrance, model.CountryUSSR},
				Opposes: []model.Country{model.CountryUSA},
			},
			{
				ID:      "free",
				Label:   "Capital moves freely between members",
				Favors:  []model.Country{model.CountryUSA},
				Opposes: []model.Country{model.CountryUSSR, model.CountryIndia},
			},
		},
	},
	{
		ID:      "scarce-currency",
		Title:   "Scarce currency clause",
		Summary: "Should surplus countries share the burden of adjustment?",
		Options: []model.IssueOption{
			{
				ID:      "symmetric",
				Label:   "Surplus and deficit countries both adjust",
				Favors:  []model.Country{model.CountryUK, model.CountryFrance, model.CountryIndia},
				Opposes: []model.Country{model.CountryUSA, model.CountryArgentina},
			},
			{
				ID:      "deficit-only",
				Label:   "Deficit countries carry the adjustment",
				Favors:  []model.Country{model.CountryUSA},
				Opposes: []model.Country{model.CountryUK},
			},
		},
	},
}

var profiles = map[model.Country]model.CountryProfile{
	model.CountryUSA: {
		Country:       model.CountryUSA,
		DisplayName:   "United States",
		TariffOptimum: ReferenceTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: 2.0, Unemployment: 3.9, Inflation: 8.3,
			TradeBalance: 1000, GoldReserves: 20000, IndustrialOutput: 100,
		},
	},
	model.CountryUK: {
		Country:       model.CountryUK,
		DisplayName:   "United Kingdom",
		TariffOptimum: DefaultTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: -1.0, Unemployment: 2.5, Inflation: 3.1,
			TradeBalance: -300, GoldReserves: 2000, IndustrialOutput: 60,
		},
	},
	model.CountryUSSR: {
		Country:       model.CountryUSSR,
		DisplayName:   "Soviet Union",
		TariffOptimum: DefaultTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: 1.0, Unemployment: 1.0, Inflation: 5.0,
			TradeBalance: 0, GoldReserves: 2500, IndustrialOutput: 50,
		},
	},
	model.CountryFrance: {
		Country:       model.CountryFrance,
		DisplayName:   "France",
		TariffOptimum: DefaultTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: -2.0, Unemployment: 3.0, Inflation: 12.0,
			TradeBalance: -400, GoldReserves: 1500, IndustrialOutput: 40,
		},
	},
	model.CountryChina: {
		Country:       model.CountryChina,
		DisplayName:   "Republic of China",
		TariffOptimum: DefaultTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: -5.0, Unemployment: 10.0, Inflation: 30.0,
			TradeBalance: -200, GoldReserves: 300, IndustrialOutput: 20,
		},
		Shocks: []model.Shock{
			{Name: "civil-conflict", FromYear: 1946, ToYear: 1949, GDP: -3.0, Inflation: 5.0, Trade: -300},
		},
	},
	model.CountryIndia: {
		Country:       model.CountryIndia,
		DisplayName:   "India",
		TariffOptimum: DefaultTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: 0.5, Unemployment: 8.0, Inflation: 6.0,
			TradeBalance: 100, GoldReserves: 250, IndustrialOutput: 25,
		},
		Shocks: []model.Shock{
			{Name: "independence-transition", FromYear: 1947, ToYear: 1948, GDP: -1.5, Inflation: 2.0, Trade: -150},
		},
	},
	model.CountryArgentina: {
		Country:       model.CountryArgentina,
		DisplayName:   "Argentina",
		TariffOptimum: DefaultTariffOptimum,
		Baseline: model.EconomicYearRecord{
			GDPGrowth: 4.0, Unemployment: 3.0, Inflation: 9.0,
			TradeBalance: 400, GoldReserves: 1200, IndustrialOutput: 35,
		},
	},
}

// Rounds returns the Phase 1 issues in the order they are voted on
func Rounds() []model.Issue {
	return rounds
}

// RoundCount returns the number of scripted Phase 1 rounds
func RoundCount() int {
	return len(rounds)
}

// ForRound returns the issue voted on in a 1-indexed round
func ForRound(round int) (model.Issue, bool) {
	if round < 1 || round > len(rounds) {
		return model.Issue{}, false
	}
	return rounds[round-1], true
}

// Profile returns the static profile of a country
func Profile(country model.Country) (model.CountryProfile, bool) {
	p, ok := profiles[country]
	return p, ok
}

// Baseline returns a country's starting record stamped with the start year
func Baseline(country model.Country, year int) (model.EconomicYearRecord, bool) {
	p, ok := profiles[country]
	if !ok {
		return model.EconomicYearRecord{}, false
	}
	rec := p.Baseline
	rec.Year = year
	rec.Country = country
	return rec, true
}
