// Package postgres persists global state to PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/storage"
)

// Config holds PostgreSQL connection settings
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible pool defaults
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Hour,
	}
}

// Storage is a PostgreSQL-backed implementation of the storage interface
type Storage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens a connection pool and migrates the schema
func New(cfg Config, log *slog.Logger) (*Storage, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return NewWithDB(db, log)
}

// NewWithDB wraps an existing gorm handle and migrates the schema
func NewWithDB(db *gorm.DB, log *slog.Logger) (*Storage, error) {
	if err := db.AutoMigrate(&UserRecord{}, &RoomRecord{}, &MetaRecord{}); err != nil {
		return nil, err
	}
	log.Info("postgres schema migrated")
	return &Storage{db: db, logger: log}, nil
}

func (s *Storage) Load(ctx context.Context) (*model.GlobalState, error) {
	db := s.db.WithContext(ctx)

	var meta MetaRecord
	if err := db.First(&meta, metaRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNoState
		}
		return nil, storage.Wrap("read meta", err)
	}

	var users []UserRecord
	if err := db.Order("created_at, username").Find(&users).Error; err != nil {
		return nil, storage.Wrap("read users", err)
	}
	var rooms []RoomRecord
	if err := db.Order("created_at, id").Find(&rooms).Error; err != nil {
		return nil, storage.Wrap("read rooms", err)
	}

	state := &model.GlobalState{SavedAt: meta.SavedAt}
	for _, u := range users {
		state.Users = append(state.Users, fromUserRecord(u))
	}
	for _, rec := range rooms {
		r, err := fromRoomRecord(rec)
		if err != nil {
			return nil, storage.Wrap("decode room", err)
		}
		state.Rooms = append(state.Rooms, r)
	}
	return state, nil
}

func (s *Storage) Save(ctx context.Context, state *model.GlobalState) error {
	users := make([]UserRecord, 0, len(state.Users))
	usernames := make([]string, 0, len(state.Users))
	for _, u := range state.Users {
		users = append(users, toUserRecord(u))
		usernames = append(usernames, u.Username)
	}
	rooms := make([]RoomRecord, 0, len(state.Rooms))
	roomIDs := make([]string, 0, len(state.Rooms))
	for _, r := range state.Rooms {
		rec, err := toRoomRecord(r)
		if err != nil {
			return storage.Wrap("encode room", err)
		}
		rooms = append(rooms, rec)
		roomIDs = append(roomIDs, rec.ID)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})
		if len(users) > 0 {
			if err := upsert.Create(&users).Error; err != nil {
				return err
			}
		}
		if len(rooms) > 0 {
			if err := upsert.Create(&rooms).Error; err != nil {
				return err
			}
		}
		if err := deleteMissing(tx, &UserRecord{}, "username", usernames); err != nil {
			return err
		}
		if err := deleteMissing(tx, &RoomRecord{}, "id", roomIDs); err != nil {
			return err
		}
		meta := MetaRecord{ID: metaRowID, SavedAt: state.SavedAt}
		return upsert.Create(&meta).Error
	})
	if err != nil {
		return storage.Wrap("write state", err)
	}
	return nil
}

// deleteMissing removes rows whose key is not in keep
func deleteMissing(tx *gorm.DB, table any, column string, keep []string) error {
	if len(keep) == 0 {
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error
	}
	return tx.Where(column+" NOT IN ?", keep).Delete(table).Error
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
