package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/mcoot/brettonwoods/internal/model"
)

// UserRecord is the users table row
type UserRecord struct {
	Username     string    `gorm:"primaryKey;size:32"`
	PasswordHash string    `gorm:"size:100;not null"`
	PlayerID     string    `gorm:"size:64;uniqueIndex;not null"`
	Role         string    `gorm:"size:16;not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserRecord) TableName() string { return "bw_users" }

// RoomRecord is the rooms table row. The full room lives in a JSON column;
// a few fields are lifted out for ad hoc querying.
type RoomRecord struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Name      string         `gorm:"size:64;not null"`
	Phase     string         `gorm:"size:16;index;not null"`
	HostID    string         `gorm:"size:64"`
	State     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (RoomRecord) TableName() string { return "bw_rooms" }

// MetaRecord holds the time of the last save in a single row
type MetaRecord struct {
	ID      int       `gorm:"primaryKey"`
	SavedAt time.Time `gorm:"not null"`
}

func (MetaRecord) TableName() string { return "bw_meta" }

const metaRowID = 1

func toUserRecord(u model.User) UserRecord {
	return UserRecord{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		PlayerID:     string(u.PlayerID),
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
	}
}

func fromUserRecord(r UserRecord) model.User {
	return model.User{
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		PlayerID:     model.PlayerID(r.PlayerID),
		Role:         model.Role(r.Role),
		CreatedAt:    r.CreatedAt,
	}
}

func toRoomRecord(r *model.Room) (RoomRecord, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return RoomRecord{}, err
	}
	return RoomRecord{
		ID:        string(r.ID),
		Name:      r.Name,
		Phase:     string(r.Phase),
		HostID:    string(r.HostID),
		State:     datatypes.JSON(data),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func fromRoomRecord(rec RoomRecord) (*model.Room, error) {
	var r model.Room
	if err := json.Unmarshal(rec.State, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
