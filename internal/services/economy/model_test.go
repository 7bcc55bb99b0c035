package economy

import (
	"testing"

	"github.com/mcoot/brettonwoods/internal/dependencies/mocks"
	"github.com/mcoot/brettonwoods/internal/dependencies/random"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/issues"
	"github.com/stretchr/testify/suite"
)

type ModelSuite struct {
	suite.Suite
	rnd  *mocks.MockRandom
	prev model.EconomicYearRecord
	usa  model.CountryProfile
}

func TestModelSuite(t *testing.T) {
	suite.Run(t, new(ModelSuite))
}

func (s *ModelSuite) SetupTest() {
	s.rnd = mocks.NewMockRandom()
	s.prev = model.EconomicYearRecord{
		Year:             1946,
		Country:          model.CountryUSA,
		GDPGrowth:        2.0,
		Unemployment:     5.0,
		Inflation:        4.0,
		TradeBalance:     0,
		GoldReserves:     1000,
		IndustrialOutput: 50,
	}
	s.usa, _ = issues.Profile(model.CountryUSA)
}

func neutralPolicy() *model.Policy {
	return &model.Policy{CentralBankRate: 3.0, ExchangeRate: 1.0, TariffRate: 10}
}

func (s *ModelSuite) TestNeutralPolicyReferenceCountry() {
	out := AdvanceYear(s.prev, neutralPolicy(), 0, s.usa, s.rnd)

	s.False(out.NoPolicy)
	s.Equal(1947, out.Record.Year)
	s.Equal(model.CountryUSA, out.Record.Country)
	s.InDelta(4.0, out.Record.GDPGrowth, 1e-9)
	s.InDelta(4.7, out.Record.Unemployment, 1e-9) // down 0.3
	s.InDelta(4.0, out.Record.Inflation, 1e-9)
	s.InDelta(-600, out.Record.TradeBalance, 1e-9) // tariff -200, growth -400
	s.InDelta(910, out.Record.GoldReserves, 1e-9)  // 15% of the deficit
	s.InDelta(52.0, out.Record.IndustrialOutput, 1e-9)
}

func (s *ModelSuite) TestNeutralPolicyBreakdown() {
	out := AdvanceYear(s.prev, neutralPolicy(), 0, s.usa, s.rnd)

	s.Equal(model.ScoreBreakdown{
		GDPGrowth:        10,
		Unemployment:     5,
		Inflation:        5,
		TradeBalance:     -10,
		GoldChange:       -5,
		IndustrialGrowth: 10,
	}, out.Breakdown)
	s.Equal(15, out.Score)
	s.Equal(out.Breakdown.Total(), out.Score)
}

func (s *ModelSuite) TestNonReferenceCountryTariffOptimum() {
	uk, _ := issues.Profile(model.CountryUK)
	out := AdvanceYear(s.prev, neutralPolicy(), 0, uk, s.rnd)

	// tariff 10 is 5 points from the optimum of 15
	s.InDelta(3.5, out.Record.GDPGrowth, 1e-9)
}

func (s *ModelSuite) TestPolicyDeviationsReduceGrowth() {
	p := &model.Policy{CentralBankRate: 5.0, ExchangeRate: 1.5, TariffRate: 20}
	out := AdvanceYear(s.prev, p, 0, s.usa, s.rnd)

	// 4.0 - 0.5*2 - 2.0*0.5 - 0.1*10
	s.InDelta(1.0, out.Record.GDPGrowth, 1e-9)
}

func (s *ModelSuite) TestAgreementBonusAddsGrowth() {
	out := AdvanceYear(s.prev, neutralPolicy(), AgreementBonus(30), s.usa, s.rnd)
	s.InDelta(5.5, out.Record.GDPGrowth, 1e-9)
}

func (s *ModelSuite) TestNegativeBonusIgnored() {
	out := AdvanceYear(s.prev, neutralPolicy(), -3, s.usa, s.rnd)
	s.InDelta(4.0, out.Record.GDPGrowth, 1e-9)
}

func (s *ModelSuite) TestRandomDrawOrder() {
	s.rnd.QueueFloat(0.0, 1.0, 0.75)
	out := AdvanceYear(s.prev, neutralPolicy(), 0, s.usa, s.rnd)

	s.InDelta(3.0, out.Record.GDPGrowth, 1e-9)     // gdp shock -1
	s.InDelta(5.5, out.Record.Inflation, 1e-9)     // inflation shock +1.5
	s.InDelta(-450, out.Record.TradeBalance, 1e-9) // -200 -300 +50
	s.Equal(3, s.rnd.Drawn())
}

func (s *ModelSuite) TestLowRateRaisesInflation() {
	p := neutralPolicy()
	p.CentralBankRate = 1.0
	out := AdvanceYear(s.prev, p, 0, s.usa, s.rnd)
	s.InDelta(6.0, out.Record.Inflation, 1e-9)
}

func (s *ModelSuite) TestHighRateLowersInflationFlooredAtZero() {
	p := neutralPolicy()
	p.CentralBankRate = 9.0
	out := AdvanceYear(s.prev, p, 0, s.usa, s.rnd)
	s.InDelta(0.0, out.Record.Inflation, 1e-9)
}

func (s *ModelSuite) TestLowGrowthRaisesUnemployment() {
	p := &model.Policy{CentralBankRate: 3.0, ExchangeRate: 2.5, TariffRate: 10}
	out := AdvanceYear(s.prev, p, 0, s.usa, s.rnd)

	s.InDelta(1.0, out.Record.GDPGrowth, 1e-9)
	s.InDelta(5.0, out.Record.Unemployment, 1e-9)

	p.ExchangeRate = 3.5
	out = AdvanceYear(s.prev, p, 0, s.usa, s.rnd)
	s.InDelta(-1.0, out.Record.GDPGrowth, 1e-9)
	s.InDelta(6.0, out.Record.Unemployment, 1e-9)
}

func (s *ModelSuite) TestUnemploymentClamped() {
	s.prev.Unemployment = 0.6
	s.rnd.QueueFloat(0.99)
	p := neutralPolicy()
	out := AdvanceYear(s.prev, p, 10, s.usa, s.rnd)
	s.InDelta(0.5, out.Record.Unemployment, 1e-9)

	s.prev.Unemployment = 24.5
	p.ExchangeRate = 5.0
	out = AdvanceYear(s.prev, p, 0, s.usa, s.rnd)
	s.InDelta(25.0, out.Record.Unemployment, 1e-9)
}

func (s *ModelSuite) TestGoldFlooredAtZero() {
	s.prev.GoldReserves = 10
	p := &model.Policy{CentralBankRate: 3.0, ExchangeRate: 1.0, TariffRate: 100}
	out := AdvanceYear(s.prev, p, 0, s.usa, s.rnd)
	s.Equal(0.0, out.Record.GoldReserves)
}

func (s *ModelSuite) TestSurplusAddsTenPercentGold() {
	s.prev.TradeBalance = 2000
	out := AdvanceYear(s.prev, neutralPolicy(), 0, s.usa, s.rnd)
	s.InDelta(1400, out.Record.TradeBalance, 1e-9)
	s.InDelta(1140, out.Record.GoldReserves, 1e-9)
}

func (s *ModelSuite) TestScriptedShocksApplyToComputedYear() {
	china, _ := issues.Profile(model.CountryChina)
	s.prev.Country = model.CountryChina
	out := AdvanceYear(s.prev, neutralPolicy(), 0, china, s.rnd)

	// 4.0 - 0.5 (tariff) - 3.0 (civil conflict)
	s.InDelta(0.5, out.Record.GDPGrowth, 1e-9)
	s.InDelta(9.0, out.Record.Inflation, 1e-9)

	s.prev.Year = 1949
	out = AdvanceYear(s.prev, neutralPolicy(), 0, china, s.rnd)
	s.InDelta(3.5, out.Record.GDPGrowth, 1e-9)
}

func (s *ModelSuite) TestIndiaTransitionStartsIn1947() {
	india, _ := issues.Profile(model.CountryIndia)
	s.prev.Year = 1945
	out := AdvanceYear(s.prev, neutralPolicy(), 0, india, s.rnd)
	s.InDelta(3.5, out.Record.GDPGrowth, 1e-9)

	s.prev.Year = 1946
	out = AdvanceYear(s.prev, neutralPolicy(), 0, india, s.rnd)
	s.InDelta(2.0, out.Record.GDPGrowth, 1e-9)
}

func (s *ModelSuite) TestNoPolicyCarriesForward() {
	s.rnd.QueueFloat(0.0, 0.0, 0.0)
	out := AdvanceYear(s.prev, nil, 0, s.usa, s.rnd)

	s.True(out.NoPolicy)
	s.Equal(1947, out.Record.Year)
	s.InDelta(0.0, out.Record.GDPGrowth, 1e-9)
	s.Equal(s.prev.Unemployment, out.Record.Unemployment)
	s.Equal(s.prev.Inflation, out.Record.Inflation)
	s.Equal(s.prev.TradeBalance, out.Record.TradeBalance)
	s.Equal(s.prev.GoldReserves, out.Record.GoldReserves)
	s.Equal(s.prev.IndustrialOutput, out.Record.IndustrialOutput)
	s.Equal(0, s.rnd.Drawn())
	s.Equal(out.Breakdown.Total(), out.Score)
}

func (s *ModelSuite) TestDeterministicWithSeededSource() {
	p := &model.Policy{CentralBankRate: 4.2, ExchangeRate: 0.9, TariffRate: 12}
	a := AdvanceYear(s.prev, p, 1.5, s.usa, random.NewSeeded(7))
	b := AdvanceYear(s.prev, p, 1.5, s.usa, random.NewSeeded(7))
	s.Equal(a, b)
}

func (s *ModelSuite) TestAgreementBonus() {
	s.Equal(0.0, AgreementBonus(-20))
	s.Equal(0.0, AgreementBonus(0))
	s.Equal(1.5, AgreementBonus(30))
}
