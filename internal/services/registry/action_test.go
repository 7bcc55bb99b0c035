package registry

import (
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

func (s *RegistrySuite) TestDispatchRegisterAndLogin() {
	res := s.registry.Dispatch(s.ctx, room.Actor{}, Action{Type: ActionRegister, Username: "alice", Password: "password"})
	s.Require().True(res.OK, "%+v", res.Error)
	s.NotEmpty(res.Token)
	s.Equal("alice", res.Username)

	res = s.registry.Dispatch(s.ctx, room.Actor{}, Action{Type: ActionLogin, Username: "alice", Password: "wrong1"})
	s.False(res.OK)
	s.Equal(model.KindUnauthorized, res.Error.Kind)
	s.Error(res.Err())
}

func (s *RegistrySuite) TestDispatchRequiresActor() {
	res := s.registry.Dispatch(s.ctx, room.Actor{}, Action{Type: ActionCreateRoom, Name: "Conference"})
	s.False(res.OK)
	s.Equal(model.KindUnauthorized, res.Error.Kind)

	res = s.registry.Dispatch(s.ctx, room.Actor{}, Action{Type: ActionListRooms})
	s.True(res.OK)
}

func (s *RegistrySuite) TestDispatchGameFlow() {
	host := s.register("alice")

	res := s.registry.Dispatch(s.ctx, host, Action{Type: ActionCreateRoom, Name: "Conference", RequestID: "r1"})
	s.Require().True(res.OK)
	s.Equal("r1", res.RequestID)
	id := res.Room.ID

	res = s.registry.Dispatch(s.ctx, host, Action{Type: ActionJoinGame, RoomID: id})
	s.False(res.OK)
	s.Equal(model.KindValidation, res.Error.Kind)

	res = s.registry.Dispatch(s.ctx, host, Action{Type: ActionJoinGame, RoomID: id, Country: model.CountryUSA})
	s.Require().True(res.OK)
	res = s.registry.Dispatch(s.ctx, host, Action{Type: ActionStartGame, RoomID: id})
	s.Require().True(res.OK)

	// "vote" is an alias
	res = s.registry.Dispatch(s.ctx, host, Action{Type: "vote", RoomID: id, Choice: firstOption(1)})
	s.Require().True(res.OK)
	s.Equal(ActionSubmitVote, res.Type)
	s.Equal(model.PhaseResults, res.Room.Phase)

	res = s.registry.Dispatch(s.ctx, host, Action{Type: "advanceRound", RoomID: id})
	s.Require().True(res.OK)
	s.True(res.Waiting)

	res = s.registry.Dispatch(s.ctx, host, Action{Type: ActionSetReady, RoomID: id})
	s.Require().True(res.OK)
	s.False(res.Waiting)

	res = s.registry.Dispatch(s.ctx, host, Action{Type: ActionNextRound, RoomID: id})
	s.Require().True(res.OK)
	s.False(res.Waiting)
	s.Equal(2, res.Room.Round)
	s.Equal(model.PhaseVoting, res.Room.Phase)
}

func (s *RegistrySuite) TestDispatchPolicyRequiresBody() {
	host := s.register("alice")
	rm := s.createRoom(host)

	res := s.registry.Dispatch(s.ctx, host, Action{Type: ActionSetPolicies, RoomID: rm.ID})
	s.False(res.OK)
	s.Equal(model.KindValidation, res.Error.Kind)

	res = s.registry.Dispatch(s.ctx, host, Action{Type: ActionSetPolicies, RoomID: rm.ID, Policy: &model.Policy{CentralBankRate: 3, ExchangeRate: 1, TariffRate: 10}})
	s.False(res.OK)
	s.Equal(model.KindConflict, res.Error.Kind)
}

func (s *RegistrySuite) TestDispatchUnknownAction() {
	host := s.register("alice")
	res := s.registry.Dispatch(s.ctx, host, Action{Type: "teleport"})
	s.False(res.OK)
	s.Equal(model.KindValidation, res.Error.Kind)
}

func (s *RegistrySuite) TestDispatchAdminClear() {
	admin := s.register("admin")
	host := s.register("alice")
	s.createRoom(host)

	res := s.registry.Dispatch(s.ctx, admin, Action{Type: ActionAdminClear})
	s.Require().True(res.OK)
	s.Equal(&ClearCounts{Rooms: 1, Users: 1}, res.Removed)
}

func (s *RegistrySuite) TestDispatchNotFound() {
	host := s.register("alice")
	res := s.registry.Dispatch(s.ctx, host, Action{Type: ActionJoinRoom, RoomID: "missing"})
	s.False(res.OK)
	s.Equal(model.KindNotFound, res.Error.Kind)
}
