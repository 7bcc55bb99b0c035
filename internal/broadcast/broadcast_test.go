package broadcast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/brettonwoods/internal/broadcast"
	"github.com/mcoot/brettonwoods/internal/dependencies/mocks"
	"github.com/mcoot/brettonwoods/internal/model"
)

func TestFanoutReachesEverySink(t *testing.T) {
	a := mocks.NewMockBroadcaster()
	b := mocks.NewMockBroadcaster()
	f := broadcast.Fanout{a, b}

	f.PublishRoom(&model.Room{ID: "r1"})
	f.PublishRoomList([]model.RoomSummary{{ID: "r1"}})
	f.CloseRoom("r1")

	for _, sink := range []*mocks.MockBroadcaster{a, b} {
		assert.Equal(t, 1, sink.RoomCount())
		assert.Equal(t, 1, sink.ListCount())
		assert.Equal(t, []model.RoomID{"r1"}, sink.Closed)
	}
}

func TestNopAcceptsAnything(t *testing.T) {
	var b broadcast.Broadcaster = broadcast.Nop{}
	assert.NotPanics(t, func() {
		b.PublishRoom(nil)
		b.PublishRoomList(nil)
		b.CloseRoom("")
	})
}
