package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/brettonwoods/internal/dependencies/mocks"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/auth"
	"github.com/mcoot/brettonwoods/internal/services/issues"
	"github.com/mcoot/brettonwoods/internal/services/room"
	"github.com/mcoot/brettonwoods/internal/testutil"
)

type countingSaver struct {
	mu sync.Mutex
	n  int
}

func (c *countingSaver) Trigger() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingSaver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type recordingMetrics struct {
	mu      sync.Mutex
	rooms   int
	results map[string]int
}

func (m *recordingMetrics) SetActiveRooms(n int) {
	m.mu.Lock()
	m.rooms = n
	m.mu.Unlock()
}

func (m *recordingMetrics) ObserveAction(action, result string, d time.Duration) {
	m.mu.Lock()
	m.results[action+"/"+result]++
	m.mu.Unlock()
}

type RegistrySuite struct {
	suite.Suite
	ctx         context.Context
	clock       *mocks.MockClock
	auth        *auth.Service
	broadcaster *mocks.MockBroadcaster
	saver       *countingSaver
	metrics     *recordingMetrics
	registry    *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.auth = auth.New(s.clock, auth.Config{SuperadminUsername: "admin", BcryptCost: bcrypt.MinCost})
	s.broadcaster = mocks.NewMockBroadcaster()
	s.saver = &countingSaver{}
	s.metrics = &recordingMetrics{results: map[string]int{}}
	s.registry = s.newRegistry()
}

func (s *RegistrySuite) newRegistry() *Registry {
	r := New(s.auth, s.clock, mocks.NewMockRandom(), testutil.NopLogger(), WithMetrics(s.metrics))
	r.SetBroadcaster(s.broadcaster)
	r.SetSaver(s.saver)
	return r
}

func (s *RegistrySuite) register(name string) room.Actor {
	session, err := s.registry.Register(s.ctx, name, "password")
	s.Require().NoError(err)
	actor, err := s.registry.Authenticate(session.Token)
	s.Require().NoError(err)
	return actor
}

func (s *RegistrySuite) createRoom(host room.Actor) *model.Room {
	rm, err := s.registry.CreateRoom(s.ctx, host, "Conference", nil)
	s.Require().NoError(err)
	return rm
}

func firstOption(round int) string {
	issue, _ := issues.ForRound(round)
	return issue.Options[0].ID
}

func (s *RegistrySuite) TestRegisterTriggersSave() {
	actor := s.register("alice")
	s.Equal("alice", actor.Username)
	s.Equal(model.RolePlayer, actor.Role)
	s.NotEmpty(actor.PlayerID)
	s.Equal(1, s.saver.count())
}

func (s *RegistrySuite) TestSuperadminBootstrap() {
	actor := s.register("admin")
	s.Equal(model.RoleSuperadmin, actor.Role)
}

func (s *RegistrySuite) TestAuthenticateRejectsUnknownToken() {
	_, err := s.registry.Authenticate("nope")
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *RegistrySuite) TestCreateRoom() {
	host := s.register("alice")
	rm := s.createRoom(host)

	s.Len(rm.ID, roomIDLength)
	s.Equal(host.PlayerID, rm.HostID)
	s.Equal(model.PhaseLobby, rm.Phase)
	s.Require().Len(rm.Members, 1)
	s.Equal(host.PlayerID, rm.Members[0].PlayerID)

	s.Equal(1, s.broadcaster.RoomCount())
	s.Equal(1, s.broadcaster.ListCount())
	s.Equal(1, s.metrics.rooms)
}

func intPtr(n int) *int    { return &n }
func boolPtr(b bool) *bool { return &b }

func (s *RegistrySuite) TestCreateRoomValidation() {
	host := s.register("alice")

	_, err := s.registry.CreateRoom(s.ctx, host, "   ", nil)
	s.ErrorIs(err, model.ErrInvalidRoomName)

	ranked := model.VoteMode("ranked")
	for _, bad := range []model.RoomConfigOverrides{
		{VoteMode: &ranked},
		{MaxPlayers: intPtr(0)},
		{StartYear: intPtr(1)},
		{StartYear: intPtr(model.MaxStartYear + 1)},
		{MaxYears: intPtr(model.MaxGameYears + 1)},
	} {
		_, err = s.registry.CreateRoom(s.ctx, host, "Conference", &bad)
		s.ErrorIs(err, model.ErrInvalidConfig)
	}

	s.Equal(0, s.registry.RoomCount())
	s.Equal(0, s.broadcaster.RoomCount())
}

func (s *RegistrySuite) TestCreateRoomWithPartialConfig() {
	host := s.register("alice")
	motion := model.VoteModeMotion

	rm, err := s.registry.CreateRoom(s.ctx, host, "Motions", &model.RoomConfigOverrides{
		VoteMode: &motion,
		MaxYears: intPtr(3),
	})
	s.Require().NoError(err)
	s.Equal(model.VoteModeMotion, rm.Config.VoteMode)
	s.Equal(3, rm.Config.MaxYears)

	defaults := model.DefaultRoomConfig()
	s.Equal(defaults.MaxPlayers, rm.Config.MaxPlayers)
	s.Equal(defaults.StartYear, rm.Config.StartYear)
}

func (s *RegistrySuite) gatedRegistry() *Registry {
	gated := model.DefaultRoomConfig()
	gated.RequireAdminToStart = true
	gated.RequireAllReady = true
	r := New(s.auth, s.clock, mocks.NewMockRandom(), testutil.NopLogger(), WithRoomDefaults(gated))
	r.SetBroadcaster(s.broadcaster)
	r.SetSaver(s.saver)
	return r
}

func (s *RegistrySuite) TestPlayerCannotLiftStartGating() {
	reg := s.gatedRegistry()
	mallory := s.register("mallory")

	_, err := reg.CreateRoom(s.ctx, mallory, "Open", &model.RoomConfigOverrides{
		RequireAdminToStart: boolPtr(false),
	})
	s.ErrorIs(err, model.ErrForbidden)

	_, err = reg.CreateRoom(s.ctx, mallory, "Open", &model.RoomConfigOverrides{
		RequireAllReady: boolPtr(false),
	})
	s.ErrorIs(err, model.ErrForbidden)
	s.Equal(0, reg.RoomCount())

	// the gating sticks, so a lone player still cannot start
	rm, err := reg.CreateRoom(s.ctx, mallory, "Gated", &model.RoomConfigOverrides{
		RequireAdminToStart: boolPtr(true),
		MaxYears:            intPtr(2),
	})
	s.Require().NoError(err)
	s.True(rm.Config.RequireAdminToStart)
	s.True(rm.Config.RequireAllReady)

	_, err = reg.JoinGame(s.ctx, mallory, rm.ID, model.CountryUSA)
	s.Require().NoError(err)
	_, err = reg.StartGame(s.ctx, mallory, rm.ID)
	s.ErrorIs(err, model.ErrForbidden)

	got, err := reg.GetRoom(s.ctx, rm.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseLobby, got.Phase)
}

func (s *RegistrySuite) TestSuperadminCanChangeStartGating() {
	reg := s.gatedRegistry()
	admin := s.register("admin")

	rm, err := reg.CreateRoom(s.ctx, admin, "Open", &model.RoomConfigOverrides{
		RequireAdminToStart: boolPtr(false),
		RequireAllReady:     boolPtr(false),
	})
	s.Require().NoError(err)
	s.False(rm.Config.RequireAdminToStart)
	s.False(rm.Config.RequireAllReady)
}

func (s *RegistrySuite) TestGetRoomNotFound() {
	_, err := s.registry.GetRoom(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestListRoomsOldestFirst() {
	host := s.register("alice")
	first := s.createRoom(host)
	s.clock.Advance(time.Minute)
	second := s.createRoom(host)

	list := s.registry.ListRooms(s.ctx)
	s.Require().Len(list, 2)
	s.Equal(first.ID, list[0].ID)
	s.Equal(second.ID, list[1].ID)
}

func (s *RegistrySuite) TestSoloRoundResolves() {
	host := s.register("alice")
	rm := s.createRoom(host)

	_, err := s.registry.JoinGame(s.ctx, host, rm.ID, model.CountryUSA)
	s.Require().NoError(err)
	upd, err := s.registry.StartGame(s.ctx, host, rm.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseVoting, upd.Room.Phase)

	upd, err = s.registry.SubmitVote(s.ctx, host, rm.ID, firstOption(1))
	s.Require().NoError(err)
	s.False(upd.Waiting)
	s.Equal(model.PhaseResults, upd.Room.Phase)
	s.Equal(model.PhaseResults, s.broadcaster.LastRoom().Phase)
}

func (s *RegistrySuite) TestVoteWaitsForRoster() {
	host := s.register("alice")
	bob := s.register("bob")
	rm := s.createRoom(host)

	_, err := s.registry.JoinGame(s.ctx, host, rm.ID, model.CountryUSA)
	s.Require().NoError(err)
	_, err = s.registry.JoinGame(s.ctx, bob, rm.ID, model.CountryUK)
	s.Require().NoError(err)
	_, err = s.registry.StartGame(s.ctx, host, rm.ID)
	s.Require().NoError(err)

	upd, err := s.registry.SubmitVote(s.ctx, host, rm.ID, firstOption(1))
	s.Require().NoError(err)
	s.True(upd.Waiting)
	s.Equal(model.PhaseVoting, upd.Room.Phase)
	s.Equal(1, s.metrics.results["submitVote/waiting"])

	// bob leaving the game completes the quorum
	upd, err = s.registry.LeaveGame(s.ctx, bob, rm.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseResults, upd.Room.Phase)
}

func (s *RegistrySuite) TestRejectedActionNeitherSavesNorBroadcasts() {
	host := s.register("alice")
	bob := s.register("bob")
	rm := s.createRoom(host)
	s.broadcaster.Reset()
	saves := s.saver.count()

	_, err := s.registry.StartGame(s.ctx, bob, rm.ID)
	s.ErrorIs(err, model.ErrNotHost)

	_, err = s.registry.StartGame(s.ctx, host, rm.ID)
	s.ErrorIs(err, model.ErrNotEnoughPlayers)
	s.Equal(model.KindQuorum, model.KindOf(err))

	s.Equal(0, s.broadcaster.RoomCount())
	s.Equal(0, s.broadcaster.ListCount())
	s.Equal(saves, s.saver.count())
	s.Equal(2, s.metrics.results["startGame/error"])

	got, err := s.registry.GetRoom(s.ctx, rm.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseLobby, got.Phase)
}

func (s *RegistrySuite) TestSnapshotIsIsolated() {
	host := s.register("alice")
	rm := s.createRoom(host)

	snap, err := s.registry.GetRoom(s.ctx, rm.ID)
	s.Require().NoError(err)
	snap.Name = "Changed"
	snap.Members = nil

	got, err := s.registry.GetRoom(s.ctx, rm.ID)
	s.Require().NoError(err)
	s.Equal("Conference", got.Name)
	s.Len(got.Members, 1)
}

func (s *RegistrySuite) TestDeleteRoom() {
	host := s.register("alice")
	bob := s.register("bob")
	rm := s.createRoom(host)

	s.ErrorIs(s.registry.DeleteRoom(s.ctx, bob, rm.ID), model.ErrNotHost)
	s.Require().NoError(s.registry.DeleteRoom(s.ctx, host, rm.ID))

	_, err := s.registry.GetRoom(s.ctx, rm.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.Equal([]model.RoomID{rm.ID}, s.broadcaster.Closed)
	s.Equal(0, s.metrics.rooms)

	s.ErrorIs(s.registry.DeleteRoom(s.ctx, host, rm.ID), model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestSuperadminCanDeleteAnyRoom() {
	host := s.register("alice")
	admin := s.register("admin")
	rm := s.createRoom(host)

	s.NoError(s.registry.DeleteRoom(s.ctx, admin, rm.ID))
}

func (s *RegistrySuite) TestDisconnectAcrossRooms() {
	host := s.register("alice")
	a := s.createRoom(host)
	b := s.createRoom(host)
	for _, id := range []model.RoomID{a.ID, b.ID} {
		_, err := s.registry.JoinGame(s.ctx, host, id, model.CountryUSA)
		s.Require().NoError(err)
	}
	s.broadcaster.Reset()

	s.registry.Disconnect(s.ctx, host.PlayerID)

	for _, id := range []model.RoomID{a.ID, b.ID} {
		got, err := s.registry.GetRoom(s.ctx, id)
		s.Require().NoError(err)
		s.False(got.GetPlayer(host.PlayerID).Connected)
	}
	s.Equal(2, s.broadcaster.RoomCount())

	// rejoining the same country resumes
	upd, err := s.registry.JoinGame(s.ctx, host, a.ID, model.CountryUSA)
	s.Require().NoError(err)
	s.True(upd.Room.GetPlayer(host.PlayerID).Connected)
}

func (s *RegistrySuite) TestAdminClear() {
	admin := s.register("admin")
	host := s.register("alice")
	s.createRoom(host)
	s.createRoom(host)

	_, _, err := s.registry.AdminClear(s.ctx, host)
	s.ErrorIs(err, model.ErrForbidden)
	s.Equal(2, s.registry.RoomCount())

	rooms, users, err := s.registry.AdminClear(s.ctx, admin)
	s.Require().NoError(err)
	s.Equal(2, rooms)
	s.Equal(1, users)
	s.Equal(0, s.registry.RoomCount())
	s.Len(s.broadcaster.Closed, 2)

	_, err = s.registry.Login(s.ctx, "alice", "password")
	s.ErrorIs(err, model.ErrInvalidCredentials)
	_, err = s.registry.Login(s.ctx, "admin", "password")
	s.NoError(err)
}

func (s *RegistrySuite) TestSnapshotRestoreRoundTrip() {
	host := s.register("alice")
	rm := s.createRoom(host)
	_, err := s.registry.JoinGame(s.ctx, host, rm.ID, model.CountryUSA)
	s.Require().NoError(err)
	_, err = s.registry.StartGame(s.ctx, host, rm.ID)
	s.Require().NoError(err)

	state := s.registry.Snapshot()
	s.Len(state.Users, 1)
	s.Require().Len(state.Rooms, 1)

	s.auth = auth.New(s.clock, auth.Config{BcryptCost: bcrypt.MinCost})
	restored := s.newRegistry()
	restored.Restore(state)

	got, err := restored.GetRoom(s.ctx, rm.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseVoting, got.Phase)
	s.False(got.GetPlayer(host.PlayerID).Connected)

	session, err := restored.Login(s.ctx, "alice", "password")
	s.Require().NoError(err)
	s.Equal(host.PlayerID, session.User.PlayerID)

	// the restored room keeps working
	upd, err := restored.SubmitVote(s.ctx, host, rm.ID, firstOption(1))
	s.Require().NoError(err)
	s.Equal(model.PhaseResults, upd.Room.Phase)
}

func (s *RegistrySuite) TestConcurrentJoins() {
	host := s.register("alice")
	rm := s.createRoom(host)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := room.Actor{PlayerID: model.PlayerID(fmt.Sprintf("p%d", i)), Username: fmt.Sprintf("p%d", i), Role: model.RolePlayer}
			_, err := s.registry.JoinRoom(s.ctx, actor, rm.ID)
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	got, err := s.registry.GetRoom(s.ctx, rm.ID)
	s.Require().NoError(err)
	s.Len(got.Members, 21)
}

func (s *RegistrySuite) TestConcurrentSeatingKeepsCountriesUnique() {
	host := s.register("alice")
	rm := s.createRoom(host)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := room.Actor{PlayerID: model.PlayerID(fmt.Sprintf("p%d", i)), Username: fmt.Sprintf("p%d", i), Role: model.RolePlayer}
			_, err := s.registry.JoinGame(s.ctx, actor, rm.ID, model.CountryFrance)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			s.ErrorIs(err, model.ErrCountryTaken)
		}
	}
	s.Equal(1, ok)
}
