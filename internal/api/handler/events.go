package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/brettonwoods/internal/api/middleware"
	"github.com/mcoot/brettonwoods/internal/broadcast/sse"
	"github.com/mcoot/brettonwoods/internal/dependencies/clock"
	"github.com/mcoot/brettonwoods/internal/model"
)

// Snapshots provides the current view used to prime a new stream
type Snapshots interface {
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	ListRooms(ctx context.Context) []model.RoomSummary
}

// EventsHandler streams room events over SSE
type EventsHandler struct {
	snapshots  Snapshots
	hubManager *sse.HubManager
	clock      clock.Clock
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(snapshots Snapshots, hubManager *sse.HubManager, clock clock.Clock, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		snapshots:  snapshots,
		hubManager: hubManager,
		clock:      clock,
		logger:     logger,
	}
}

func viewerID(r *http.Request) model.PlayerID {
	if actor, ok := middleware.GetActor(r.Context()); ok {
		return actor.PlayerID
	}
	return ""
}

func (h *EventsHandler) encode(event model.Event) []byte {
	msg, err := sse.EncodeEvent(event)
	if err != nil {
		h.logger.Error("failed to encode initial event", slog.Any("error", err))
		return nil
	}
	return msg
}

// Room handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) Room(w http.ResponseWriter, r *http.Request) {
	id := roomID(r)
	rm, err := h.snapshots.GetRoom(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(string(id))
	initial := h.encode(model.NewRoomEvent(rm, h.clock.Now()))
	sse.ServeSSE(w, r, hub, viewerID(r), initial)
}

// List handles GET /api/v1/rooms/events
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	hub := h.hubManager.GetOrCreateHub(sse.ListTopic)
	initial := h.encode(model.NewRoomListEvent(h.snapshots.ListRooms(r.Context()), h.clock.Now()))
	sse.ServeSSE(w, r, hub, viewerID(r), initial)
}
