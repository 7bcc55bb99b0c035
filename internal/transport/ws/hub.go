// Package ws is the WebSocket action channel: clients send registry
// actions as JSON and receive results plus room events on one socket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/brettonwoods/internal/broadcast"
	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/registry"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

// Dispatcher runs actions on behalf of connections
type Dispatcher interface {
	Authenticate(token string) (room.Actor, error)
	Dispatch(ctx context.Context, actor room.Actor, action registry.Action) registry.Result
	Disconnect(ctx context.Context, id model.PlayerID)
}

var _ Dispatcher = (*registry.Registry)(nil)

// ConnObserver is told when sockets open and close
type ConnObserver interface {
	ClientConnected()
	ClientDisconnected()
}

// Message kinds
const (
	KindResult = "result"
	KindEvent  = "event"
)

// Message is everything the server writes to a socket
type Message struct {
	Kind   string           `json:"kind"`
	Result *registry.Result `json:"result,omitempty"`
	Event  *model.Event     `json:"event,omitempty"`
}

// Hub tracks open connections and which rooms each one follows
type Hub struct {
	dispatcher Dispatcher
	clock      clock.Clock
	logger     *slog.Logger
	observer   ConnObserver
	upgrader   websocket.Upgrader

	mu       sync.RWMutex
	conns    map[*Conn]struct{}
	rooms    map[model.RoomID]map[*Conn]struct{}
	byPlayer map[model.PlayerID]int
}

var _ broadcast.Broadcaster = (*Hub)(nil)

// NewHub creates a Hub. observer may be nil.
func NewHub(dispatcher Dispatcher, clock clock.Clock, logger *slog.Logger, observer ConnObserver) *Hub {
	return &Hub{
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger.With(slog.String("component", "ws")),
		observer:   observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns:    make(map[*Conn]struct{}),
		rooms:    make(map[model.RoomID]map[*Conn]struct{}),
		byPlayer: make(map[model.PlayerID]int),
	}
}

func tokenFrom(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ServeHTTP upgrades the request. A token is optional; a connection
// without one may only register, log in or read rooms until it does.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var actor room.Actor
	if token := tokenFrom(r); token != "" {
		a, err := h.dispatcher.Authenticate(token)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		actor = a
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	c := newConn(h, socket, actor)
	h.add(c)
	go c.writePump()
	c.readPump()
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	if id := c.Actor().PlayerID; id != "" {
		h.byPlayer[id]++
	}
	total := len(h.conns)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientConnected()
	}
	h.logger.Info("ws client connected",
		slog.String("player_id", string(c.Actor().PlayerID)),
		slog.Int("total_clients", total))
}

// remove forgets c and reports whether it was the player's last socket
func (h *Hub) remove(c *Conn) bool {
	h.mu.Lock()
	if _, ok := h.conns[c]; !ok {
		h.mu.Unlock()
		return false
	}
	delete(h.conns, c)
	for id, subs := range h.rooms {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.rooms, id)
		}
	}
	last := false
	if id := c.Actor().PlayerID; id != "" {
		h.byPlayer[id]--
		if h.byPlayer[id] <= 0 {
			delete(h.byPlayer, id)
			last = true
		}
	}
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
	return last
}

// identify attaches an identity to an anonymous connection after it
// registers or logs in
func (h *Hub) identify(c *Conn, actor room.Actor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev := c.Actor().PlayerID; prev != "" {
		if h.byPlayer[prev]--; h.byPlayer[prev] <= 0 {
			delete(h.byPlayer, prev)
		}
	}
	c.setActor(actor)
	h.byPlayer[actor.PlayerID]++
}

func (h *Hub) subscribe(c *Conn, id model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.rooms[id]
	if subs == nil {
		subs = make(map[*Conn]struct{})
		h.rooms[id] = subs
	}
	subs[c] = struct{}{}
}

func (h *Hub) unsubscribe(c *Conn, id model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.rooms[id]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.rooms, id)
		}
	}
}

// ClientCount returns the number of open sockets
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws failed to encode message", slog.Any("error", err))
		return nil
	}
	return data
}

func (h *Hub) sendTo(targets []*Conn, msg Message) {
	data := h.encode(msg)
	if data == nil {
		return
	}
	for _, c := range targets {
		c.enqueue(data)
	}
}

func (h *Hub) subscribers(id model.RoomID) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Conn, 0, len(h.rooms[id]))
	for c := range h.rooms[id] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) all() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		out = append(out, c)
	}
	return out
}

// PublishRoom sends a room snapshot to the sockets following the room
func (h *Hub) PublishRoom(rm *model.Room) {
	event := model.NewRoomEvent(rm, h.clock.Now())
	h.sendTo(h.subscribers(rm.ID), Message{Kind: KindEvent, Event: &event})
}

// PublishRoomList sends the room list to every socket
func (h *Hub) PublishRoomList(rooms []model.RoomSummary) {
	event := model.NewRoomListEvent(rooms, h.clock.Now())
	h.sendTo(h.all(), Message{Kind: KindEvent, Event: &event})
}

// CloseRoom tells followers the room is gone and drops the subscription
func (h *Hub) CloseRoom(id model.RoomID) {
	event := model.Event{Type: model.EventRoomClosed, Timestamp: h.clock.Now(), RoomID: id}
	h.sendTo(h.subscribers(id), Message{Kind: KindEvent, Event: &event})

	h.mu.Lock()
	delete(h.rooms, id)
	h.mu.Unlock()
}

// Close disconnects every socket
func (h *Hub) Close() {
	for _, c := range h.all() {
		c.close()
	}
}
