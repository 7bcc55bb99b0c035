package mocks

import (
	"sync"

	"github.com/mcoot/brettonwoods/internal/model"
)

// MockBroadcaster records everything published to it
type MockBroadcaster struct {
	mu         sync.Mutex
	RoomEvents []*model.Room
	ListEvents [][]model.RoomSummary
	Closed     []model.RoomID
}

// NewMockBroadcaster creates an empty MockBroadcaster
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (b *MockBroadcaster) PublishRoom(room *model.Room) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.RoomEvents = append(b.RoomEvents, room)
}

func (b *MockBroadcaster) PublishRoomList(rooms []model.RoomSummary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ListEvents = append(b.ListEvents, rooms)
}

func (b *MockBroadcaster) CloseRoom(id model.RoomID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = append(b.Closed, id)
}

// RoomCount returns how many room snapshots were published
func (b *MockBroadcaster) RoomCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.RoomEvents)
}

// ListCount returns how many room lists were published
func (b *MockBroadcaster) ListCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ListEvents)
}

// LastRoom returns the most recent room snapshot, or nil
func (b *MockBroadcaster) LastRoom() *model.Room {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.RoomEvents) == 0 {
		return nil
	}
	return b.RoomEvents[len(b.RoomEvents)-1]
}

// Reset forgets everything recorded so far
func (b *MockBroadcaster) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.RoomEvents = nil
	b.ListEvents = nil
	b.Closed = nil
}
