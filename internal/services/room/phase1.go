package room

import (
	"log/slog"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/issues"
	"github.com/mcoot/brettonwoods/internal/services/vote"
)

// StartGame moves the room from the lobby into the first voting round
func (m *Machine) StartGame(actor Actor) (Outcome, error) {
	r := m.room
	if r.Phase != model.PhaseLobby {
		return Outcome{}, model.ErrGameStarted
	}
	if r.Config.RequireAdminToStart {
		if err := Authorize(actor, model.RoleSuperadmin); err != nil {
			return Outcome{}, err
		}
	} else if err := AuthorizeOwner(actor, r); err != nil {
		return Outcome{}, err
	}
	if len(r.Players) < r.Config.MinPlayers() {
		return Outcome{}, model.ErrNotEnoughPlayers
	}
	if r.Config.RequireAllReady && !r.AllReady() {
		return Outcome{}, model.ErrPlayersNotReady
	}

	r.Started = true
	m.openRound(1)
	m.touch()
	m.logger.Info("game started",
		slog.String("player_id", string(actor.PlayerID)),
		slog.Int("players", len(r.Players)))
	return listChanged(), nil
}

// CurrentIssue returns the issue being voted on, if the room is in Phase 1
func (m *Machine) CurrentIssue() (model.Issue, bool) {
	if m.room.Phase != model.PhaseVoting && m.room.Phase != model.PhaseResults {
		return model.Issue{}, false
	}
	return issues.ForRound(m.room.Round)
}

// SubmitVote records or replaces the actor's vote for the current round.
// Once every seated player has voted the round resolves exactly once and
// the room moves to results.
func (m *Machine) SubmitVote(actor Actor, choice string) (Outcome, error) {
	r := m.room
	if r.Phase != model.PhaseVoting {
		return Outcome{}, model.ErrWrongPhase
	}
	p := r.GetPlayer(actor.PlayerID)
	if p == nil {
		return Outcome{}, model.ErrNotSeated
	}
	if choice == "" {
		return Outcome{}, model.ErrMissingField
	}
	issue, _ := issues.ForRound(r.Round)
	if err := vote.ValidateChoice(r.Config.VoteMode, issue, choice); err != nil {
		return Outcome{}, err
	}

	entry := model.VoteEntry{PlayerID: p.PlayerID, Country: p.Country, Choice: choice}
	if idx := r.VoteOf(p.PlayerID); idx >= 0 {
		r.Votes[idx] = entry
	} else {
		r.Votes = append(r.Votes, entry)
	}
	m.touch()

	if r.Resolved || !r.AllVoted() {
		return Outcome{Changed: true, Waiting: true}, nil
	}
	m.resolveRound()
	return listChanged(), nil
}

// resolveRound tallies the ledger under the room's vote mode and applies the
// resulting deltas. Guarded by Resolved so a round scores at most once.
func (m *Machine) resolveRound() {
	r := m.room
	if r.Resolved {
		return
	}
	issue, _ := issues.ForRound(r.Round)
	result := model.RoundResult{
		Round:   r.Round,
		IssueID: issue.ID,
		Mode:    r.Config.VoteMode,
		Votes:   append([]model.VoteEntry(nil), r.Votes...),
	}

	switch r.Config.VoteMode {
	case model.VoteModeMotion:
		t := vote.TallyMotion(r.Votes, r.Round)
		result.Counts = t.Counts()
		result.Winner = t.Outcome
		result.Deltas = t.Deltas
	default:
		t := vote.TallyOptions(r.Votes, issue, r.Round, r.SeatedCountries())
		result.Counts = t.Counts
		result.Winner = t.Winner
		result.Deltas = t.Deltas
	}

	for _, d := range result.Deltas {
		m.applyDelta(d)
	}
	r.History = append(r.History, result)
	r.Resolved = true
	r.Phase = model.PhaseResults
	r.Ready = make(map[model.PlayerID]bool)

	m.logger.Info("round resolved",
		slog.Int("round", r.Round),
		slog.String("issue", issue.ID),
		slog.String("winner", result.Winner))
}

// NextRound opens the next voting round once every player is ready. After
// the last scripted round Phase 2 begins instead.
func (m *Machine) NextRound(actor Actor) (Outcome, error) {
	r := m.room
	if r.Phase != model.PhaseResults {
		return Outcome{}, model.ErrWrongPhase
	}
	if r.GetMember(actor.PlayerID) == nil && Authorize(actor, model.RoleSuperadmin) != nil {
		return Outcome{}, model.ErrNotInRoom
	}
	if !r.AllReady() {
		return waiting(), nil
	}

	if r.Round >= issues.RoundCount() {
		m.startPhase2()
	} else {
		m.openRound(r.Round + 1)
	}
	m.touch()
	return listChanged(), nil
}

func (m *Machine) openRound(round int) {
	r := m.room
	r.Phase = model.PhaseVoting
	r.Round = round
	r.Votes = []model.VoteEntry{}
	r.Ready = make(map[model.PlayerID]bool)
	r.Resolved = false
	m.logger.Info("round opened", slog.Int("round", round))
}
