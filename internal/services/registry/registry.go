// Package registry maps room ids to their state machines and is the single
// entry point for every room action. It serializes actions per room,
// persists and broadcasts whatever they change.
package registry

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/brettonwoods/internal/broadcast"
	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/dependencies/random"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/auth"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

const (
	roomIDLength      = 8
	maxRoomNameLength = 64
)

// Identity is the identity provider the registry authenticates against
type Identity interface {
	Register(username, password string) (*auth.Session, error)
	Login(username, password string) (*auth.Session, error)
	ValidateSession(token string) (*auth.Session, error)
	Users() []model.User
	Restore(users []model.User)
	ClearNonAdmins() int
}

var _ Identity = (*auth.Service)(nil)

// SaveTrigger requests a background save
type SaveTrigger interface {
	Trigger()
}

// Metrics receives per-action measurements
type Metrics interface {
	SetActiveRooms(count int)
	ObserveAction(action, result string, d time.Duration)
}

// Update is the result of an accepted room action
type Update struct {
	Room *model.Room
	// Waiting is set when the action was accepted but the transition it
	// asks for is held until the rest of the roster acts
	Waiting bool
}

type entry struct {
	mu      sync.Mutex
	machine *room.Machine
}

// Registry owns every live room
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*entry

	identity    Identity
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger
	broadcaster broadcast.Broadcaster
	saver       SaveTrigger
	metrics     Metrics
	defaults    model.RoomConfig
}

// Option configures a Registry
type Option func(*Registry)

// WithRoomDefaults sets the config new rooms start from
func WithRoomDefaults(cfg model.RoomConfig) Option {
	return func(r *Registry) { r.defaults = cfg }
}

// WithMetrics reports action counts and latency to m
func WithMetrics(m Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New creates an empty Registry. Broadcasting and saving are no-ops until
// SetBroadcaster and SetSaver are called.
func New(identity Identity, clock clock.Clock, random random.Random, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[model.RoomID]*entry),
		identity:    identity,
		clock:       clock,
		random:      random,
		logger:      logger.With(slog.String("component", "registry")),
		broadcaster: broadcast.Nop{},
		saver:       nopSaver{},
		metrics:     nopMetrics{},
		defaults:    model.DefaultRoomConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetBroadcaster installs the broadcast sink. Call before serving.
func (r *Registry) SetBroadcaster(b broadcast.Broadcaster) {
	r.broadcaster = b
}

// SetSaver installs the persistence trigger. Call before serving.
func (r *Registry) SetSaver(s SaveTrigger) {
	r.saver = s
}

// Authenticate resolves a session token to an actor
func (r *Registry) Authenticate(token string) (room.Actor, error) {
	session, err := r.identity.ValidateSession(token)
	if err != nil {
		return room.Actor{}, err
	}
	return actorFor(session.User), nil
}

func actorFor(u model.User) room.Actor {
	return room.Actor{PlayerID: u.PlayerID, Username: u.Username, Role: u.Role}
}

// Register creates a user and a session
func (r *Registry) Register(ctx context.Context, username, password string) (*auth.Session, error) {
	start := r.clock.Now()
	session, err := r.identity.Register(username, password)
	r.observe("register", start, Update{}, err)
	if err != nil {
		return nil, err
	}
	r.saver.Trigger()
	r.logger.Info("user registered",
		slog.String("username", session.User.Username),
		slog.String("player_id", string(session.User.PlayerID)),
		slog.String("role", string(session.User.Role)))
	return session, nil
}

// Login opens a session for an existing user
func (r *Registry) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	start := r.clock.Now()
	session, err := r.identity.Login(username, password)
	r.observe("login", start, Update{}, err)
	return session, err
}

func (r *Registry) newRoomID() model.RoomID {
	for {
		id := model.RoomID(strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLength])
		if _, exists := r.rooms[id]; !exists {
			return id
		}
	}
}

// CreateRoom creates a room with the actor as its host and first member.
// The room starts from the registry's defaults with cfg's set fields on
// top. Only a superadmin may change the start gating.
func (r *Registry) CreateRoom(ctx context.Context, actor room.Actor, name string, cfg *model.RoomConfigOverrides) (*model.Room, error) {
	start := r.clock.Now()
	rm, err := r.createRoom(actor, name, cfg)
	r.observe("createRoom", start, Update{}, err)
	if err != nil {
		return nil, err
	}
	r.saver.Trigger()
	r.broadcaster.PublishRoom(rm)
	r.publishList()
	return rm, nil
}

func (r *Registry) createRoom(actor room.Actor, name string, cfg *model.RoomConfigOverrides) (*model.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxRoomNameLength {
		return nil, model.ErrInvalidRoomName
	}
	config := r.defaults
	if cfg != nil {
		if cfg.ChangesGating(r.defaults) {
			if err := room.Authorize(actor, model.RoleSuperadmin); err != nil {
				return nil, err
			}
		}
		config = cfg.Apply(r.defaults)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	host := model.RoomMember{PlayerID: actor.PlayerID, Username: actor.Username, JoinedAt: now}

	r.mu.Lock()
	rm := model.NewRoom(r.newRoomID(), name, host, config, now)
	r.rooms[rm.ID] = &entry{machine: room.New(rm, r.clock, r.random, r.logger)}
	count := len(r.rooms)
	snapshot := rm.Clone()
	r.mu.Unlock()

	r.metrics.SetActiveRooms(count)
	r.logger.Info("room created",
		slog.String("room_id", string(rm.ID)),
		slog.String("player_id", string(actor.PlayerID)))
	return snapshot, nil
}

func (r *Registry) get(id model.RoomID) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return e, nil
}

// GetRoom returns a snapshot of a room
func (r *Registry) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	e, err := r.get(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Snapshot(), nil
}

func (r *Registry) entries() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.rooms))
	for _, e := range r.rooms {
		out = append(out, e)
	}
	return out
}

// ListRooms summarizes every room, oldest first
func (r *Registry) ListRooms(ctx context.Context) []model.RoomSummary {
	return r.listRooms()
}

func (r *Registry) listRooms() []model.RoomSummary {
	entries := r.entries()
	out := make([]model.RoomSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.machine.Room().Summary())
		e.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b model.RoomSummary) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

func (r *Registry) publishList() {
	r.broadcaster.PublishRoomList(r.listRooms())
}

// apply runs fn against one room under its lock. Accepted changes are
// saved and the room snapshot published before the lock is released, so
// subscribers see a room's snapshots in order.
func (r *Registry) apply(action string, id model.RoomID, fn func(m *room.Machine) (room.Outcome, error)) (Update, error) {
	start := r.clock.Now()
	e, err := r.get(id)
	if err != nil {
		r.observe(action, start, Update{}, err)
		return Update{}, err
	}

	e.mu.Lock()
	out, err := fn(e.machine)
	if err != nil {
		e.mu.Unlock()
		r.observe(action, start, Update{}, err)
		r.logger.Debug("room action rejected",
			slog.String("action", action),
			slog.String("room_id", string(id)),
			slog.Any("error", err))
		return Update{}, err
	}
	snapshot := e.machine.Snapshot()
	if out.Changed {
		r.saver.Trigger()
		r.broadcaster.PublishRoom(snapshot)
	}
	e.mu.Unlock()

	if out.ListChanged {
		r.publishList()
	}
	upd := Update{Room: snapshot, Waiting: out.Waiting}
	r.observe(action, start, upd, nil)
	return upd, nil
}

func (r *Registry) observe(action string, start time.Time, upd Update, err error) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case upd.Waiting:
		result = "waiting"
	}
	r.metrics.ObserveAction(action, result, r.clock.Since(start))
}

// JoinRoom adds the actor to the room as a member
func (r *Registry) JoinRoom(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("joinRoom", id, func(m *room.Machine) (room.Outcome, error) {
		return m.JoinRoom(actor)
	})
}

// LeaveRoom removes the actor from the room and frees any seat they held
func (r *Registry) LeaveRoom(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("leaveRoom", id, func(m *room.Machine) (room.Outcome, error) {
		return m.LeaveRoom(actor)
	})
}

// JoinGame seats the actor as country, or resumes their existing seat
func (r *Registry) JoinGame(ctx context.Context, actor room.Actor, id model.RoomID, country model.Country) (Update, error) {
	return r.apply("joinGame", id, func(m *room.Machine) (room.Outcome, error) {
		return m.JoinGame(actor, country)
	})
}

// LeaveGame frees the actor's seat
func (r *Registry) LeaveGame(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("leaveGame", id, func(m *room.Machine) (room.Outcome, error) {
		return m.LeaveGame(actor)
	})
}

// SetReady records whether the actor is ready to start or move on
func (r *Registry) SetReady(ctx context.Context, actor room.Actor, id model.RoomID, ready bool) (Update, error) {
	return r.apply("setReady", id, func(m *room.Machine) (room.Outcome, error) {
		return m.SetReady(actor, ready)
	})
}

// StartGame opens the first Phase 1 round
func (r *Registry) StartGame(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("startGame", id, func(m *room.Machine) (room.Outcome, error) {
		return m.StartGame(actor)
	})
}

// SubmitVote records the actor's vote, resolving the round once every
// seated player has voted
func (r *Registry) SubmitVote(ctx context.Context, actor room.Actor, id model.RoomID, choice string) (Update, error) {
	return r.apply("submitVote", id, func(m *room.Machine) (room.Outcome, error) {
		return m.SubmitVote(actor, choice)
	})
}

// NextRound moves past the results once every player is ready. Otherwise
// the update is waiting.
func (r *Registry) NextRound(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("nextRound", id, func(m *room.Machine) (room.Outcome, error) {
		return m.NextRound(actor)
	})
}

// ResetGame returns the room to the lobby. Superadmin only.
func (r *Registry) ResetGame(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("resetGame", id, func(m *room.Machine) (room.Outcome, error) {
		return m.ResetGame(actor)
	})
}

// SetPolicy stores the actor's policy for the current Phase 2 year
func (r *Registry) SetPolicy(ctx context.Context, actor room.Actor, id model.RoomID, policy model.Policy) (Update, error) {
	return r.apply("setPhase2Policies", id, func(m *room.Machine) (room.Outcome, error) {
		return m.SetPolicy(actor, policy)
	})
}

// AdvanceYear simulates the year once every country has a policy in
func (r *Registry) AdvanceYear(ctx context.Context, actor room.Actor, id model.RoomID) (Update, error) {
	return r.apply("advanceYear", id, func(m *room.Machine) (room.Outcome, error) {
		return m.AdvanceYear(actor)
	})
}

// DeleteRoom removes a room. Only its host or a superadmin may do so.
func (r *Registry) DeleteRoom(ctx context.Context, actor room.Actor, id model.RoomID) error {
	start := r.clock.Now()
	err := r.deleteRoom(actor, id)
	r.observe("deleteRoom", start, Update{}, err)
	if err != nil {
		return err
	}
	r.saver.Trigger()
	r.broadcaster.CloseRoom(id)
	r.publishList()
	return nil
}

func (r *Registry) deleteRoom(actor room.Actor, id model.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	e.mu.Lock()
	err := e.machine.CanDelete(actor)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	delete(r.rooms, id)
	r.metrics.SetActiveRooms(len(r.rooms))
	r.logger.Info("room deleted",
		slog.String("room_id", string(id)),
		slog.String("player_id", string(actor.PlayerID)))
	return nil
}

// Disconnect marks the player disconnected in every room they are seated in
func (r *Registry) Disconnect(ctx context.Context, id model.PlayerID) {
	start := r.clock.Now()
	changed := false
	for _, e := range r.entries() {
		e.mu.Lock()
		if out := e.machine.Disconnect(id); out.Changed {
			changed = true
			r.broadcaster.PublishRoom(e.machine.Snapshot())
		}
		e.mu.Unlock()
	}
	if changed {
		r.saver.Trigger()
	}
	r.observe("disconnect", start, Update{}, nil)
}

// AdminClear drops every room and every user who is not a superadmin.
// It returns how many rooms and users were removed.
func (r *Registry) AdminClear(ctx context.Context, actor room.Actor) (int, int, error) {
	start := r.clock.Now()
	if err := room.Authorize(actor, model.RoleSuperadmin); err != nil {
		r.observe("adminClear", start, Update{}, err)
		return 0, 0, err
	}

	r.mu.Lock()
	ids := make([]model.RoomID, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	r.rooms = make(map[model.RoomID]*entry)
	r.mu.Unlock()

	users := r.identity.ClearNonAdmins()
	r.metrics.SetActiveRooms(0)
	for _, id := range ids {
		r.broadcaster.CloseRoom(id)
	}
	r.saver.Trigger()
	r.publishList()
	r.observe("adminClear", start, Update{}, nil)

	r.logger.Warn("admin clear",
		slog.String("player_id", string(actor.PlayerID)),
		slog.Int("rooms", len(ids)),
		slog.Int("users", users))
	return len(ids), users, nil
}

// Restore replaces all users and rooms with persisted state. Every seated
// player starts disconnected since no connection survives a restart.
func (r *Registry) Restore(state *model.GlobalState) {
	r.identity.Restore(state.Users)

	rooms := make(map[model.RoomID]*entry, len(state.Rooms))
	for _, rm := range state.Rooms {
		if rm == nil {
			continue
		}
		rm = rm.Clone()
		for i := range rm.Players {
			rm.Players[i].Connected = false
		}
		rooms[rm.ID] = &entry{machine: room.New(rm, r.clock, r.random, r.logger)}
	}

	r.mu.Lock()
	r.rooms = rooms
	r.mu.Unlock()

	r.metrics.SetActiveRooms(len(rooms))
	r.logger.Info("state restored",
		slog.Int("rooms", len(rooms)),
		slog.Int("users", len(state.Users)),
		slog.Time("saved_at", state.SavedAt))
}

// Snapshot deep-copies every user and room
func (r *Registry) Snapshot() *model.GlobalState {
	state := &model.GlobalState{
		Users: r.identity.Users(),
		Rooms: []*model.Room{},
	}
	for _, e := range r.entries() {
		e.mu.Lock()
		state.Rooms = append(state.Rooms, e.machine.Snapshot())
		e.mu.Unlock()
	}
	slices.SortFunc(state.Rooms, func(a, b *model.Room) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return state
}

// RoomCount returns the number of live rooms
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

type nopSaver struct{}

func (nopSaver) Trigger() {}

type nopMetrics struct{}

func (nopMetrics) SetActiveRooms(int)                          {}
func (nopMetrics) ObserveAction(string, string, time.Duration) {}
