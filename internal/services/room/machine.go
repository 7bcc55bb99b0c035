// Package room implements the per-room game state machine: membership,
// seating, Phase 1 voting rounds, Phase 2 economic years and completion.
//
// A Machine is not safe for concurrent use. The registry holds a mutex per
// room and calls exactly one Machine method at a time under it.
package room

import (
	"log/slog"

	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/dependencies/random"
	"github.com/mcoot/brettonwoods/internal/model"
)

// Actor is the identity performing an action
type Actor struct {
	PlayerID model.PlayerID
	Username string
	Role     model.Role
}

// Outcome describes what an accepted action did
type Outcome struct {
	// Changed is set when room state was mutated and must be persisted and broadcast
	Changed bool
	// ListChanged is set when the room's listing entry changed
	ListChanged bool
	// Waiting is set when the action was accepted but its transition is
	// held back until every player has acted
	Waiting bool
}

func changed() Outcome     { return Outcome{Changed: true} }
func listChanged() Outcome { return Outcome{Changed: true, ListChanged: true} }
func waiting() Outcome     { return Outcome{Waiting: true} }

// Machine owns one room's authoritative state
type Machine struct {
	room   *model.Room
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

// New wraps an existing room
func New(room *model.Room, clock clock.Clock, random random.Random, logger *slog.Logger) *Machine {
	return &Machine{
		room:   room,
		clock:  clock,
		random: random,
		logger: logger.With(slog.String("room_id", string(room.ID))),
	}
}

// Room returns the live room state. Callers must hold the room's lock.
func (m *Machine) Room() *model.Room {
	return m.room
}

// Snapshot returns a deep copy of the room state
func (m *Machine) Snapshot() *model.Room {
	return m.room.Clone()
}

func (m *Machine) touch() {
	m.room.UpdatedAt = m.clock.Now()
}

// JoinRoom adds the actor as a member. Joining a room without a host makes
// the actor the host.
func (m *Machine) JoinRoom(actor Actor) (Outcome, error) {
	if m.room.GetMember(actor.PlayerID) != nil {
		return Outcome{}, nil
	}
	m.addMember(actor)
	out := changed()
	if m.room.HostID == "" {
		m.room.HostID = actor.PlayerID
		out.ListChanged = true
	}
	m.touch()
	m.logger.Info("member joined", slog.String("player_id", string(actor.PlayerID)))
	return out, nil
}

func (m *Machine) addMember(actor Actor) {
	m.room.Members = append(m.room.Members, model.RoomMember{
		PlayerID: actor.PlayerID,
		Username: actor.Username,
		JoinedAt: m.clock.Now(),
	})
}

// LeaveRoom removes the actor from the room, giving up any seat they hold.
// If the host leaves, the longest-standing remaining member becomes host.
func (m *Machine) LeaveRoom(actor Actor) (Outcome, error) {
	if m.room.GetMember(actor.PlayerID) == nil {
		return Outcome{}, model.ErrNotInRoom
	}

	out := changed()
	if m.room.GetPlayer(actor.PlayerID) != nil {
		m.unseat(actor.PlayerID)
		out.ListChanged = true
	}

	for i, mem := range m.room.Members {
		if mem.PlayerID == actor.PlayerID {
			m.room.Members = append(m.room.Members[:i], m.room.Members[i+1:]...)
			break
		}
	}

	if m.room.IsHost(actor.PlayerID) {
		m.room.HostID = ""
		if len(m.room.Members) > 0 {
			m.room.HostID = m.room.Members[0].PlayerID
		}
		out.ListChanged = true
		m.logger.Info("host changed", slog.String("host_id", string(m.room.HostID)))
	}

	m.touch()
	m.logger.Info("member left", slog.String("player_id", string(actor.PlayerID)))
	return out, nil
}

// JoinGame seats the actor as a country. New seats are only taken in the
// lobby; an actor rejoining the country they already hold resumes play in
// any phase.
func (m *Machine) JoinGame(actor Actor, country model.Country) (Outcome, error) {
	if !country.IsValid() {
		return Outcome{}, model.ErrUnknownCountry
	}

	if p := m.room.GetPlayer(actor.PlayerID); p != nil {
		if p.Country != country {
			return Outcome{}, model.ErrAlreadySeated
		}
		if p.Connected {
			return Outcome{}, nil
		}
		p.Connected = true
		m.touch()
		m.logger.Info("player resumed",
			slog.String("player_id", string(actor.PlayerID)),
			slog.String("country", string(country)))
		return changed(), nil
	}

	if m.room.Phase != model.PhaseLobby {
		return Outcome{}, model.ErrGameStarted
	}
	if len(m.room.Players) >= m.room.Config.MaxPlayers {
		return Outcome{}, model.ErrRoomFull
	}
	if m.room.PlayerByCountry(country) != nil {
		return Outcome{}, model.ErrCountryTaken
	}

	if m.room.GetMember(actor.PlayerID) == nil {
		m.addMember(actor)
	}
	now := m.clock.Now()
	m.room.Players = append(m.room.Players, model.RoomPlayer{
		PlayerID:  actor.PlayerID,
		Username:  actor.Username,
		Country:   country,
		Connected: true,
		JoinedAt:  now,
	})
	m.touch()
	m.logger.Info("player seated",
		slog.String("player_id", string(actor.PlayerID)),
		slog.String("country", string(country)))
	return listChanged(), nil
}

// LeaveGame frees the actor's seat. If the remaining roster has now all
// voted, the pending round resolves.
func (m *Machine) LeaveGame(actor Actor) (Outcome, error) {
	if m.room.GetPlayer(actor.PlayerID) == nil {
		return Outcome{}, model.ErrNotSeated
	}
	m.unseat(actor.PlayerID)
	m.touch()
	m.logger.Info("player unseated", slog.String("player_id", string(actor.PlayerID)))
	return listChanged(), nil
}

// unseat removes a player and their live per-round state, then re-checks
// vote quorum for the rest of the roster
func (m *Machine) unseat(id model.PlayerID) {
	p := m.room.GetPlayer(id)
	country := p.Country
	for i := range m.room.Players {
		if m.room.Players[i].PlayerID == id {
			m.room.Players = append(m.room.Players[:i], m.room.Players[i+1:]...)
			break
		}
	}
	delete(m.room.Ready, id)
	if idx := m.room.VoteOf(id); idx >= 0 {
		m.room.Votes = append(m.room.Votes[:idx], m.room.Votes[idx+1:]...)
	}
	if m.room.Phase2 != nil {
		delete(m.room.Phase2.Pending, country)
	}

	if m.room.Phase == model.PhaseVoting && !m.room.Resolved && m.room.AllVoted() {
		m.resolveRound()
	}
}

// Disconnect marks a seated player as disconnected. Nothing else changes.
func (m *Machine) Disconnect(id model.PlayerID) Outcome {
	p := m.room.GetPlayer(id)
	if p == nil || !p.Connected {
		return Outcome{}
	}
	p.Connected = false
	m.touch()
	m.logger.Info("player disconnected", slog.String("player_id", string(id)))
	return changed()
}

// SetReady marks the actor ready or not. Readiness gates the start of the
// game (when the room requires it) and each move to the next round.
func (m *Machine) SetReady(actor Actor, ready bool) (Outcome, error) {
	if m.room.Phase != model.PhaseLobby && m.room.Phase != model.PhaseResults {
		return Outcome{}, model.ErrWrongPhase
	}
	if m.room.GetPlayer(actor.PlayerID) == nil {
		return Outcome{}, model.ErrNotSeated
	}
	if m.room.Ready[actor.PlayerID] == ready {
		return Outcome{Waiting: !m.room.AllReady()}, nil
	}
	if ready {
		m.room.Ready[actor.PlayerID] = true
	} else {
		delete(m.room.Ready, actor.PlayerID)
	}
	m.touch()
	out := changed()
	out.Waiting = !m.room.AllReady()
	return out, nil
}

// ResetGame returns the room to the lobby, keeping its roster and members
// but clearing all game progress. Superadmin only.
func (m *Machine) ResetGame(actor Actor) (Outcome, error) {
	if err := Authorize(actor, model.RoleSuperadmin); err != nil {
		return Outcome{}, err
	}
	r := m.room
	r.Phase = model.PhaseLobby
	r.Started = false
	r.Round = 0
	r.CurrentYear = 0
	r.Votes = []model.VoteEntry{}
	r.Ready = make(map[model.PlayerID]bool)
	r.Resolved = false
	r.History = []model.RoundResult{}
	r.Scores = make(map[model.Country]int)
	r.Ledger = []model.ScoreDelta{}
	r.Phase2 = nil
	m.touch()
	m.logger.Info("game reset", slog.String("player_id", string(actor.PlayerID)))
	return listChanged(), nil
}

// CanDelete checks whether the actor may delete the room
func (m *Machine) CanDelete(actor Actor) error {
	return AuthorizeOwner(actor, m.room)
}

// applyDelta records a score change in the ledger and the running total
func (m *Machine) applyDelta(d model.ScoreDelta) {
	m.room.Scores[d.Country] += d.Points
	m.room.Ledger = append(m.room.Ledger, d)
}
