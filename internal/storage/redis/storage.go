package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface. Each
// user and room is its own key, tracked by an index SET so stale entries
// can be removed when they drop out of the saved state.
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: cfg.KeyPrefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (*model.GlobalState, error) {
	savedAt, err := s.client.Get(ctx, s.keys.meta()).Time()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoState
		}
		return nil, storage.Wrap("read save time", err)
	}

	state := &model.GlobalState{SavedAt: savedAt}

	usernames, err := s.client.SMembers(ctx, s.keys.userIndex()).Result()
	if err != nil {
		return nil, storage.Wrap("read user index", err)
	}
	if err := s.loadAll(ctx, usernames, s.keys.user, func(data []byte) error {
		var u model.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		state.Users = append(state.Users, u)
		return nil
	}); err != nil {
		return nil, err
	}

	roomIDs, err := s.client.SMembers(ctx, s.keys.roomIndex()).Result()
	if err != nil {
		return nil, storage.Wrap("read room index", err)
	}
	roomKey := func(id string) string { return s.keys.room(model.RoomID(id)) }
	if err := s.loadAll(ctx, roomIDs, roomKey, func(data []byte) error {
		var r model.Room
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		state.Rooms = append(state.Rooms, &r)
		return nil
	}); err != nil {
		return nil, err
	}

	return state, nil
}

// loadAll fetches every indexed key with a single MGET. Index entries whose
// key has gone are skipped.
func (s *Storage) loadAll(ctx context.Context, ids []string, keyFn func(string) string, decode func([]byte) error) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyFn(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return storage.Wrap("read records", err)
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if err := decode([]byte(str)); err != nil {
			return storage.Wrap("decode record", err)
		}
	}
	return nil
}

func (s *Storage) Save(ctx context.Context, state *model.GlobalState) error {
	users := make(map[string][]byte, len(state.Users))
	for _, u := range state.Users {
		data, err := json.Marshal(u)
		if err != nil {
			return storage.Wrap("encode user", err)
		}
		users[strings.ToLower(u.Username)] = data
	}
	rooms := make(map[string][]byte, len(state.Rooms))
	for _, r := range state.Rooms {
		data, err := json.Marshal(r)
		if err != nil {
			return storage.Wrap("encode room", err)
		}
		rooms[string(r.ID)] = data
	}

	staleUsers, err := s.stale(ctx, s.keys.userIndex(), users)
	if err != nil {
		return err
	}
	staleRooms, err := s.stale(ctx, s.keys.roomIndex(), rooms)
	if err != nil {
		return err
	}

	// MULTI/EXEC so readers never see a half-written state
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, data := range users {
			pipe.Set(ctx, s.keys.user(name), data, 0)
			pipe.SAdd(ctx, s.keys.userIndex(), name)
		}
		for _, name := range staleUsers {
			pipe.Del(ctx, s.keys.user(name))
			pipe.SRem(ctx, s.keys.userIndex(), name)
		}
		for id, data := range rooms {
			pipe.Set(ctx, s.keys.room(model.RoomID(id)), data, 0)
			pipe.SAdd(ctx, s.keys.roomIndex(), id)
		}
		for _, id := range staleRooms {
			pipe.Del(ctx, s.keys.room(model.RoomID(id)))
			pipe.SRem(ctx, s.keys.roomIndex(), id)
		}
		pipe.Set(ctx, s.keys.meta(), state.SavedAt, 0)
		return nil
	})
	if err != nil {
		return storage.Wrap("write state", err)
	}
	return nil
}

// stale returns index members that are not in the current set
func (s *Storage) stale(ctx context.Context, index string, current map[string][]byte) ([]string, error) {
	members, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return nil, storage.Wrap("read index", err)
	}
	var out []string
	for _, m := range members {
		if _, ok := current[m]; !ok {
			out = append(out, m)
		}
	}
	return out, nil
}
