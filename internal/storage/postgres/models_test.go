package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/brettonwoods/internal/model"
)

func TestUserRecordConversion(t *testing.T) {
	u := model.User{
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
		PlayerID:     "p-1",
		Role:         model.RoleSuperadmin,
		CreatedAt:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	rec := toUserRecord(u)
	assert.Equal(t, "alice", rec.Username)
	assert.Equal(t, "superadmin", rec.Role)
	assert.Equal(t, u, fromUserRecord(rec))
}

func TestRoomRecordConversion(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	host := model.RoomMember{PlayerID: "p-1", Username: "alice", JoinedAt: now}
	room := model.NewRoom("room-1", "Bretton Woods", host, model.DefaultRoomConfig(), now)
	room.Phase = model.PhaseVoting
	room.Scores[model.CountryIndia] = 20

	rec, err := toRoomRecord(room)
	require.NoError(t, err)
	assert.Equal(t, "room-1", rec.ID)
	assert.Equal(t, "voting", rec.Phase)
	assert.Equal(t, "p-1", rec.HostID)
	assert.NotEmpty(t, rec.State)

	back, err := fromRoomRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, room.Name, back.Name)
	assert.Equal(t, model.PhaseVoting, back.Phase)
	assert.Equal(t, 20, back.Scores[model.CountryIndia])
}

func TestFromRoomRecordRejectsCorruptJSON(t *testing.T) {
	_, err := fromRoomRecord(RoomRecord{ID: "x", State: []byte("{oops")})
	assert.Error(t, err)
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "bw_users", UserRecord{}.TableName())
	assert.Equal(t, "bw_rooms", RoomRecord{}.TableName())
	assert.Equal(t, "bw_meta", MetaRecord{}.TableName())
}
