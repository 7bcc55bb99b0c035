// Package vote turns a round's vote ledger into an outcome and score deltas.
package vote

import (
	"fmt"
	"slices"

	"github.com/mcoot/brettonwoods/internal/model"
)

// Award values
const (
	FavoredPoints = 10
	OpposedPoints = -5

	ParticipationPoints = 10
	AlignmentPoints     = 30
	AbstainPoints       = 5
)

// OptionTally is the result of counting an options-mode round
type OptionTally struct {
	Counts map[string]int
	Order  []string // options in the order they first received a vote
	Winner string   // empty when nobody voted
	Deltas []model.ScoreDelta
}

// TallyOptions counts votes per option. The winner is the option with the
// strictly highest count; a tie goes to whichever tied option was voted for
// first in ledger order. The winner's favoured countries gain FavoredPoints
// and its opposed countries lose, once each, if they are in the roster.
func TallyOptions(ledger []model.VoteEntry, issue model.Issue, round int, roster []model.Country) OptionTally {
	t := OptionTally{Counts: make(map[string]int)}
	for _, v := range ledger {
		if _, seen := t.Counts[v.Choice]; !seen {
			t.Order = append(t.Order, v.Choice)
		}
		t.Counts[v.Choice]++
	}

	best := 0
	for _, id := range t.Order {
		if t.Counts[id] > best {
			best = t.Counts[id]
			t.Winner = id
		}
	}
	if t.Winner == "" {
		return t
	}

	opt := issue.Option(t.Winner)
	if opt == nil {
		return t
	}
	reason := fmt.Sprintf("%s: %s", issue.Title, opt.Label)
	for _, c := range opt.Favors {
		if slices.Contains(roster, c) {
			t.Deltas = append(t.Deltas, model.ScoreDelta{Country: c, Points: FavoredPoints, Source: model.SourceVote, Round: round, Reason: reason})
		}
	}
	for _, c := range opt.Opposes {
		if slices.Contains(roster, c) {
			t.Deltas = append(t.Deltas, model.ScoreDelta{Country: c, Points: OpposedPoints, Source: model.SourceVote, Round: round, Reason: reason})
		}
	}
	return t
}

// MotionTally is the result of counting a motion-mode round
type MotionTally struct {
	For     int
	Against int
	Abstain int
	Outcome string
	Deltas  []model.ScoreDelta
}

// Counts returns the tally keyed by choice
func (m MotionTally) Counts() map[string]int {
	return map[string]int{
		model.ChoiceFor:     m.For,
		model.ChoiceAgainst: m.Against,
		model.ChoiceAbstain: m.Abstain,
	}
}

// TallyMotion resolves a for/against/abstain round. The motion passes only
// when votes for strictly outnumber votes against. Every for or against
// voter earns ParticipationPoints plus AlignmentPoints when they sided with
// the outcome; abstainers earn AbstainPoints only.
func TallyMotion(ledger []model.VoteEntry, round int) MotionTally {
	var t MotionTally
	for _, v := range ledger {
		switch v.Choice {
		case model.ChoiceFor:
			t.For++
		case model.ChoiceAgainst:
			t.Against++
		case model.ChoiceAbstain:
			t.Abstain++
		}
	}

	winning := model.ChoiceAgainst
	t.Outcome = model.OutcomeRejected
	if t.For > t.Against {
		winning = model.ChoiceFor
		t.Outcome = model.OutcomePassed
	}

	for _, v := range ledger {
		var points int
		var reason string
		switch v.Choice {
		case model.ChoiceAbstain:
			points, reason = AbstainPoints, "abstained"
		case model.ChoiceFor, model.ChoiceAgainst:
			points, reason = ParticipationPoints, "voted"
			if v.Choice == winning {
				points += AlignmentPoints
				reason = "voted with the " + t.Outcome + " side"
			}
		default:
			continue
		}
		t.Deltas = append(t.Deltas, model.ScoreDelta{Country: v.Country, Points: points, Source: model.SourceMotion, Round: round, Reason: reason})
	}
	return t
}

// ValidateChoice checks that a choice is allowed for the round's mode and issue
func ValidateChoice(mode model.VoteMode, issue model.Issue, choice string) error {
	switch mode {
	case model.VoteModeMotion:
		switch choice {
		case model.ChoiceFor, model.ChoiceAgainst, model.ChoiceAbstain:
			return nil
		}
	default:
		if issue.Option(choice) != nil {
			return nil
		}
	}
	return model.ErrInvalidChoice
}
