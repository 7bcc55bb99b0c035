package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/brettonwoods/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) room(id model.RoomID, name string) *model.Room {
	host := model.RoomMember{PlayerID: "p1", Username: "alice", JoinedAt: s.now}
	return model.NewRoom(id, name, host, model.DefaultRoomConfig(), s.now)
}

func (s *StorageSuite) user(name string) model.User {
	return model.User{Username: name, PlayerID: model.PlayerID("id-" + name), Role: model.RolePlayer, CreatedAt: s.now}
}

func (s *StorageSuite) TestLoadWithNothingSaved() {
	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrNoState)
}

func (s *StorageSuite) TestSaveAndLoad() {
	r := s.room("room-1", "First")
	r.Scores[model.CountryUSA] = 10
	state := &model.GlobalState{
		Users:   []model.User{s.user("alice"), s.user("bob")},
		Rooms:   []*model.Room{r},
		SavedAt: s.now,
	}
	s.Require().NoError(s.storage.Save(s.ctx, state))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(state.Users, loaded.Users)
	s.Require().Len(loaded.Rooms, 1)
	s.Equal("First", loaded.Rooms[0].Name)
	s.Equal(10, loaded.Rooms[0].Scores[model.CountryUSA])
	s.True(s.now.Equal(loaded.SavedAt))
}

func (s *StorageSuite) TestSaveUsesPrefixedKeys() {
	state := &model.GlobalState{Users: []model.User{s.user("Alice")}, Rooms: []*model.Room{s.room("r1", "Room")}}
	s.Require().NoError(s.storage.Save(s.ctx, state))

	s.True(s.mini.Exists("bwgame:user:alice"))
	s.True(s.mini.Exists("bwgame:room:r1"))
	members, err := s.mini.Members("bwgame:idx:rooms")
	s.Require().NoError(err)
	s.Equal([]string{"r1"}, members)
}

func (s *StorageSuite) TestSaveRemovesStaleEntries() {
	first := &model.GlobalState{
		Users: []model.User{s.user("alice"), s.user("bob")},
		Rooms: []*model.Room{s.room("r1", "One"), s.room("r2", "Two")},
	}
	s.Require().NoError(s.storage.Save(s.ctx, first))

	second := &model.GlobalState{
		Users: []model.User{s.user("alice")},
		Rooms: []*model.Room{s.room("r2", "Two")},
	}
	s.Require().NoError(s.storage.Save(s.ctx, second))

	s.False(s.mini.Exists("bwgame:user:bob"))
	s.False(s.mini.Exists("bwgame:room:r1"))

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Len(loaded.Users, 1)
	s.Require().Len(loaded.Rooms, 1)
	s.Equal(model.RoomID("r2"), loaded.Rooms[0].ID)
}

func (s *StorageSuite) TestLoadSkipsDanglingIndexEntries() {
	s.Require().NoError(s.storage.Save(s.ctx, &model.GlobalState{Rooms: []*model.Room{s.room("r1", "One")}}))
	s.mini.Del("bwgame:room:r1")

	loaded, err := s.storage.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(loaded.Rooms)
}

func (s *StorageSuite) TestLoadCorruptRecord() {
	s.Require().NoError(s.storage.Save(s.ctx, &model.GlobalState{Rooms: []*model.Room{s.room("r1", "One")}}))
	s.Require().NoError(s.mini.Set("bwgame:room:r1", "{broken"))

	_, err := s.storage.Load(s.ctx)
	s.ErrorIs(err, model.ErrPersistence)
}

func (s *StorageSuite) TestSaveFailsWhenServerDown() {
	s.mini.Close()
	err := s.storage.Save(s.ctx, &model.GlobalState{})
	s.ErrorIs(err, model.ErrPersistence)
	s.mini = nil
}
