package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/brettonwoods/internal/broadcast"
	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/model"
)

// Broadcaster publishes room events to SSE hubs as JSON
type Broadcaster struct {
	hubManager *HubManager
	clock      clock.Clock
	logger     *slog.Logger
}

var _ broadcast.Broadcaster = (*Broadcaster)(nil)

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, clock clock.Clock, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		clock:      clock,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// EncodeEvent renders an event as a complete SSE message
func EncodeEvent(event model.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(string(event.Type), string(data)), nil
}

func (b *Broadcaster) publish(topic string, event model.Event) {
	hub := b.hubManager.GetHub(topic)
	if hub == nil {
		return
	}
	msg, err := EncodeEvent(event)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("topic", topic),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(msg)
}

// PublishRoom sends a room snapshot to the room's subscribers
func (b *Broadcaster) PublishRoom(room *model.Room) {
	b.publish(string(room.ID), model.NewRoomEvent(room, b.clock.Now()))
}

// PublishRoomList sends the room list to list subscribers
func (b *Broadcaster) PublishRoomList(rooms []model.RoomSummary) {
	b.publish(ListTopic, model.NewRoomListEvent(rooms, b.clock.Now()))
}

// CloseRoom tells the room's subscribers it is gone and drops its hub
func (b *Broadcaster) CloseRoom(id model.RoomID) {
	b.publish(string(id), model.Event{
		Type:      model.EventRoomClosed,
		Timestamp: b.clock.Now(),
		RoomID:    id,
	})
	b.hubManager.RemoveHub(string(id))
}
