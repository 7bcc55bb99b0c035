package room

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/achievement"
	"github.com/mcoot/brettonwoods/internal/services/economy"
	"github.com/mcoot/brettonwoods/internal/services/issues"
)

// startPhase2 seeds a baseline record at the start year for every seated country
func (m *Machine) startPhase2() {
	r := m.room
	r.Phase = model.PhasePhase2
	r.CurrentYear = r.Config.StartYear
	r.Ready = make(map[model.PlayerID]bool)
	r.Votes = []model.VoteEntry{}
	r.Phase2 = model.NewPhase2State()
	for _, c := range r.SeatedCountries() {
		if rec, ok := issues.Baseline(c, r.Config.StartYear); ok {
			r.Phase2.Records[c] = []model.EconomicYearRecord{rec}
		}
	}
	m.logger.Info("phase 2 started",
		slog.Int("year", r.CurrentYear),
		slog.Int("countries", len(r.Phase2.Records)))
}

// SetPolicy records the actor's country's policy for the current year.
// Resubmitting replaces the pending policy.
func (m *Machine) SetPolicy(actor Actor, policy model.Policy) (Outcome, error) {
	r := m.room
	if r.Phase != model.PhasePhase2 {
		return Outcome{}, model.ErrWrongPhase
	}
	p := r.GetPlayer(actor.PlayerID)
	if p == nil {
		return Outcome{}, model.ErrNotSeated
	}
	if err := policy.Validate(); err != nil {
		return Outcome{}, err
	}
	r.Phase2.Pending[p.Country] = policy
	m.touch()
	out := changed()
	out.Waiting = !r.AllPoliciesSubmitted()
	return out, nil
}

// AdvanceYear runs the economic model for every country once every seated
// player has a policy in. Countries whose player has left advance without a
// policy. After the configured number of years, achievements are awarded
// and the game completes.
func (m *Machine) AdvanceYear(actor Actor) (Outcome, error) {
	r := m.room
	if r.Phase != model.PhasePhase2 {
		return Outcome{}, model.ErrWrongPhase
	}
	if r.GetMember(actor.PlayerID) == nil && Authorize(actor, model.RoleSuperadmin) != nil {
		return Outcome{}, model.ErrNotInRoom
	}
	if !r.AllPoliciesSubmitted() {
		return waiting(), nil
	}

	p2 := r.Phase2
	for _, c := range model.Countries() {
		prev, ok := p2.LatestRecord(c)
		if !ok {
			continue
		}
		profile, _ := issues.Profile(c)

		var policy *model.Policy
		record := model.PolicyRecord{Year: r.CurrentYear}
		if pol, ok := p2.Pending[c]; ok {
			policy = &pol
			record.Policy = pol
			record.Submitted = true
		}

		bonus := economy.AgreementBonus(m.phase1Score(c))
		out := economy.AdvanceYear(prev, policy, bonus, profile, m.random)

		p2.Records[c] = append(p2.Records[c], out.Record)
		p2.Policies[c] = append(p2.Policies[c], record)
		p2.YearScores[c] = append(p2.YearScores[c], model.YearScore{
			Year:      out.Record.Year,
			Score:     out.Score,
			Breakdown: out.Breakdown,
			NoPolicy:  out.NoPolicy,
		})
		reason := fmt.Sprintf("economic performance %d", out.Record.Year)
		if out.NoPolicy {
			reason += " (no policy)"
		}
		m.applyDelta(model.ScoreDelta{
			Country: c,
			Points:  out.Score,
			Source:  model.SourceEconomy,
			Year:    out.Record.Year,
			Reason:  reason,
		})
	}

	p2.Pending = make(map[model.Country]model.Policy)
	p2.YearsAdvanced++
	r.CurrentYear++
	m.logger.Info("year advanced", slog.Int("year", r.CurrentYear))

	out := changed()
	if p2.YearsAdvanced >= r.Config.MaxYears {
		m.complete()
		out.ListChanged = true
	}
	m.touch()
	return out, nil
}

// complete evaluates achievements once per country and ends the game
func (m *Machine) complete() {
	r := m.room
	p2 := r.Phase2
	for _, c := range model.Countries() {
		history, ok := p2.Records[c]
		if !ok {
			continue
		}
		res := achievement.Evaluate(c, history, p2.Policies[c])
		p2.Achievements[c] = res.Achievements
		for _, a := range res.Achievements {
			m.applyDelta(model.ScoreDelta{
				Country: c,
				Points:  a.Points,
				Source:  model.SourceAchievement,
				Year:    r.CurrentYear,
				Reason:  a.Name,
			})
		}
	}
	r.Phase = model.PhaseComplete
	m.logger.Info("game complete", slog.Int("final_year", r.CurrentYear))
}

// phase1Score sums the vote and motion deltas a country earned
func (m *Machine) phase1Score(c model.Country) int {
	total := 0
	for _, d := range m.room.Ledger {
		if d.Country == c && (d.Source == model.SourceVote || d.Source == model.SourceMotion) {
			total += d.Points
		}
	}
	return total
}
