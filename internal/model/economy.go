package model

import "math"

// Country identifies a playable nation
type Country string

const (
	CountryUSA       Country = "USA"
	CountryUK        Country = "UK"
	CountryUSSR      Country = "USSR"
	CountryFrance    Country = "France"
	CountryChina     Country = "China"
	CountryIndia     Country = "India"
	CountryArgentina Country = "Argentina"
)

// Countries returns every playable country in seating order
func Countries() []Country {
	return []Country{
		CountryUSA,
		CountryUK,
		CountryUSSR,
		CountryFrance,
		CountryChina,
		CountryIndia,
		CountryArgentina,
	}
}

// IsValid returns true if c is a playable country
func (c Country) IsValid() bool {
	for _, known := range Countries() {
		if c == known {
			return true
		}
	}
	return false
}

// Policy is the set of levers a country pulls for one year
type Policy struct {
	CentralBankRate float64 `json:"cb_rate"`
	ExchangeRate    float64 `json:"exchange_rate"`
	TariffRate      float64 `json:"tariff_rate"`
}

// Policy bounds
const (
	MinCentralBankRate = 0.0
	MaxCentralBankRate = 20.0
	MinExchangeRate    = 0.1
	MaxExchangeRate    = 5.0
	MinTariffRate      = 0.0
	MaxTariffRate      = 100.0
)

// Validate checks that every lever is a finite number within range
func (p Policy) Validate() error {
	for _, lever := range []float64{p.CentralBankRate, p.ExchangeRate, p.TariffRate} {
		if math.IsNaN(lever) || math.IsInf(lever, 0) {
			return ErrInvalidPolicy
		}
	}
	if p.CentralBankRate < MinCentralBankRate || p.CentralBankRate > MaxCentralBankRate {
		return ErrInvalidPolicy
	}
	if p.ExchangeRate < MinExchangeRate || p.ExchangeRate > MaxExchangeRate {
		return ErrInvalidPolicy
	}
	if p.TariffRate < MinTariffRate || p.TariffRate > MaxTariffRate {
		return ErrInvalidPolicy
	}
	return nil
}

// PolicyRecord is a policy as it stood when a year was advanced
type PolicyRecord struct {
	Year      int    `json:"year"`
	Policy    Policy `json:"policy"`
	Submitted bool   `json:"submitted"` // false when the year advanced without one
}

// EconomicYearRecord holds one country's indicators for one year
type EconomicYearRecord struct {
	Year             int     `json:"year"`
	Country          Country `json:"country"`
	GDPGrowth        float64 `json:"gdp_growth"`
	Unemployment     float64 `json:"unemployment"`
	Inflation        float64 `json:"inflation"`
	TradeBalance     float64 `json:"trade_balance"`
	GoldReserves     float64 `json:"gold_reserves"`
	IndustrialOutput float64 `json:"industrial_output"`
}

// ScoreBreakdown is the per-band result of the yearly performance rubric
type ScoreBreakdown struct {
	GDPGrowth        int `json:"gdp_growth"`
	Unemployment     int `json:"unemployment"`
	Inflation        int `json:"inflation"`
	TradeBalance     int `json:"trade_balance"`
	GoldChange       int `json:"gold_change"`
	IndustrialGrowth int `json:"industrial_growth"`
}

// Total sums every band
func (b ScoreBreakdown) Total() int {
	return b.GDPGrowth + b.Unemployment + b.Inflation + b.TradeBalance + b.GoldChange + b.IndustrialGrowth
}

// YearScore records the performance score a country earned for a year
type YearScore struct {
	Year      int            `json:"year"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	NoPolicy  bool           `json:"no_policy"`
}

// Achievement is a named end-of-game award
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// Shock is a scripted additive disturbance applied to a country for a
// range of years, inclusive
type Shock struct {
	Name      string  `json:"name"`
	FromYear  int     `json:"from_year"`
	ToYear    int     `json:"to_year"`
	GDP       float64 `json:"gdp"`
	Inflation float64 `json:"inflation"`
	Trade     float64 `json:"trade"`
}

// Applies returns true if the shock is active in year
func (s Shock) Applies(year int) bool {
	return year >= s.FromYear && year <= s.ToYear
}

// CountryProfile is the static context the economic model needs for a country
type CountryProfile struct {
	Country       Country            `json:"country"`
	DisplayName   string             `json:"display_name"`
	TariffOptimum float64            `json:"tariff_optimum"`
	Baseline      EconomicYearRecord `json:"baseline"` // Year is filled in when Phase 2 starts
	Shocks        []Shock            `json:"shocks"`
}

// ShocksIn returns the summed shock deltas active in year
func (p CountryProfile) ShocksIn(year int) (gdp, inflation, trade float64) {
	for _, s := range p.Shocks {
		if s.Applies(year) {
			gdp += s.GDP
			inflation += s.Inflation
			trade += s.Trade
		}
	}
	return gdp, inflation, trade
}
