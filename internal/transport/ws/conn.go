package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/registry"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBufferSize = 64
)

// Conn is one open socket
type Conn struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte

	mu     sync.RWMutex
	actor  room.Actor
	closed bool
}

func newConn(hub *Hub, socket *websocket.Conn, actor room.Actor) *Conn {
	return &Conn{
		hub:    hub,
		socket: socket,
		send:   make(chan []byte, sendBufferSize),
		actor:  actor,
	}
}

// Actor returns the identity the connection acts as
func (c *Conn) Actor() room.Actor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.actor
}

func (c *Conn) setActor(a room.Actor) {
	c.mu.Lock()
	c.actor = a
	c.mu.Unlock()
}

// enqueue queues data without blocking; a full buffer drops the message
func (c *Conn) enqueue(data []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("ws message dropped - client buffer full",
			slog.String("player_id", string(c.actor.PlayerID)))
	}
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Conn) readPump() {
	defer func() {
		c.close()
		_ = c.socket.Close()
		last := c.hub.remove(c)
		actor := c.Actor()
		if last {
			c.hub.dispatcher.Disconnect(context.Background(), actor.PlayerID)
		}
		c.hub.logger.Info("ws client disconnected", slog.String("player_id", string(actor.PlayerID)))
	}()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws read failed", slog.Any("error", err))
			}
			return
		}
		c.handle(data)
	}
}

func (c *Conn) handle(data []byte) {
	var action registry.Action
	if err := json.Unmarshal(data, &action); err != nil || action.Type == "" {
		res := registry.Result{
			OK:    false,
			Error: &registry.ActionError{Kind: model.KindValidation, Message: "malformed action"},
		}
		c.reply(res)
		return
	}

	res := c.hub.dispatcher.Dispatch(context.Background(), c.Actor(), action)
	if res.OK {
		c.follow(action, res)
	}
	c.reply(res)
}

// follow updates identity and room subscriptions after a successful action
func (c *Conn) follow(action registry.Action, res registry.Result) {
	switch res.Type {
	case registry.ActionRegister, registry.ActionLogin:
		c.hub.identify(c, room.Actor{PlayerID: res.PlayerID, Username: res.Username, Role: res.Role})
	case registry.ActionLeaveRoom, registry.ActionDeleteRoom:
		c.hub.unsubscribe(c, action.RoomID)
	default:
		if res.Room != nil {
			c.hub.subscribe(c, res.Room.ID)
		}
	}
}

func (c *Conn) reply(res registry.Result) {
	if data := c.hub.encode(Message{Kind: KindResult, Result: &res}); data != nil {
		c.enqueue(data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
