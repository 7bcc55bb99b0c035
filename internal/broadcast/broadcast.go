// Package broadcast defines how room changes reach connected clients.
package broadcast

import "github.com/mcoot/brettonwoods/internal/model"

// Broadcaster pushes room snapshots and the room list to subscribers.
// Implementations must not block the caller.
type Broadcaster interface {
	PublishRoom(room *model.Room)
	PublishRoomList(rooms []model.RoomSummary)
	CloseRoom(id model.RoomID)
}

// Fanout publishes to every broadcaster in order
type Fanout []Broadcaster

var _ Broadcaster = Fanout(nil)

func (f Fanout) PublishRoom(room *model.Room) {
	for _, b := range f {
		b.PublishRoom(room)
	}
}

func (f Fanout) PublishRoomList(rooms []model.RoomSummary) {
	for _, b := range f {
		b.PublishRoomList(rooms)
	}
}

func (f Fanout) CloseRoom(id model.RoomID) {
	for _, b := range f {
		b.CloseRoom(id)
	}
}

// Nop discards everything
type Nop struct{}

var _ Broadcaster = Nop{}

func (Nop) PublishRoom(*model.Room)             {}
func (Nop) PublishRoomList([]model.RoomSummary) {}
func (Nop) CloseRoom(model.RoomID)              {}
