package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventRoomUpdated EventType = "room_updated"
	EventRoomList    EventType = "room_list"
	EventRoomClosed  EventType = "room_closed"
)

// Event is a message pushed to subscribers of a room or of the room list
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	RoomID    RoomID        `json:"room_id,omitempty"`
	Room      *Room         `json:"room,omitempty"`  // room_updated
	Rooms     []RoomSummary `json:"rooms,omitempty"` // room_list
}

// NewRoomEvent builds a room_updated event from a snapshot
func NewRoomEvent(room *Room, now time.Time) Event {
	return Event{Type: EventRoomUpdated, Timestamp: now, RoomID: room.ID, Room: room}
}

// NewRoomListEvent builds a room_list event
func NewRoomListEvent(rooms []RoomSummary, now time.Time) Event {
	return Event{Type: EventRoomList, Timestamp: now, Rooms: rooms}
}
