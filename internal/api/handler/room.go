package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/brettonwoods/internal/api/apierr"
	"github.com/mcoot/brettonwoods/internal/api/middleware"
	"github.com/mcoot/brettonwoods/internal/api/request"
	"github.com/mcoot/brettonwoods/internal/api/response"
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/registry"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

// Rooms is the room surface of the registry
type Rooms interface {
	ListRooms(ctx context.Context) []model.RoomSummary
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	CreateRoom(ctx context.Context, actor room.Actor, name string, cfg *model.RoomConfigOverrides) (*model.Room, error)
	DeleteRoom(ctx context.Context, actor room.Actor, id model.RoomID) error
	JoinRoom(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
	LeaveRoom(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
	JoinGame(ctx context.Context, actor room.Actor, id model.RoomID, country model.Country) (registry.Update, error)
	LeaveGame(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
	SetReady(ctx context.Context, actor room.Actor, id model.RoomID, ready bool) (registry.Update, error)
	StartGame(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
	SubmitVote(ctx context.Context, actor room.Actor, id model.RoomID, choice string) (registry.Update, error)
	NextRound(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
	ResetGame(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
	SetPolicy(ctx context.Context, actor room.Actor, id model.RoomID, policy model.Policy) (registry.Update, error)
	AdvanceYear(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)
}

// RoomHandler handles room and game endpoints
type RoomHandler struct {
	rooms Rooms
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms Rooms) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
	}
}

func roomID(r *http.Request) model.RoomID {
	return model.RoomID(mux.Vars(r)["id"])
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms := h.rooms.ListRooms(r.Context())
	if rooms == nil {
		rooms = []model.RoomSummary{}
	}
	response.JSON(w, http.StatusOK, response.RoomList{Rooms: rooms})
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	rm, err := h.rooms.CreateRoom(r.Context(), middleware.MustGetActor(r.Context()), req.Name, req.Config)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, rm)
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := h.rooms.GetRoom(r.Context(), roomID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rm)
}

// Delete handles DELETE /api/v1/rooms/{id}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.rooms.DeleteRoom(r.Context(), middleware.MustGetActor(r.Context()), roomID(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

type roomAction func(ctx context.Context, actor room.Actor, id model.RoomID) (registry.Update, error)

// run executes a body-less room action and writes the update
func (h *RoomHandler) run(w http.ResponseWriter, r *http.Request, action roomAction) {
	upd, err := action(r.Context(), middleware.MustGetActor(r.Context()), roomID(r))
	writeUpdate(w, upd, err)
}

func writeUpdate(w http.ResponseWriter, upd registry.Update, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RoomUpdateFrom(upd))
}

// Join handles POST /api/v1/rooms/{id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.JoinRoom)
}

// Leave handles POST /api/v1/rooms/{id}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.LeaveRoom)
}

// Seat handles POST /api/v1/rooms/{id}/seat
func (h *RoomHandler) Seat(w http.ResponseWriter, r *http.Request) {
	var req request.SeatRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Country == "" {
		WriteError(w, apierr.NewInvalidRequestError("country is required"))
		return
	}

	upd, err := h.rooms.JoinGame(r.Context(), middleware.MustGetActor(r.Context()), roomID(r), req.Country)
	writeUpdate(w, upd, err)
}

// Unseat handles POST /api/v1/rooms/{id}/unseat
func (h *RoomHandler) Unseat(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.LeaveGame)
}

// Ready handles POST /api/v1/rooms/{id}/ready. An empty body marks the
// player ready.
func (h *RoomHandler) Ready(w http.ResponseWriter, r *http.Request) {
	var req request.ReadyRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}
	ready := req.Ready == nil || *req.Ready

	upd, err := h.rooms.SetReady(r.Context(), middleware.MustGetActor(r.Context()), roomID(r), ready)
	writeUpdate(w, upd, err)
}

// Start handles POST /api/v1/rooms/{id}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.StartGame)
}

// Vote handles POST /api/v1/rooms/{id}/vote
func (h *RoomHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req request.VoteRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	if req.Choice == "" {
		WriteError(w, apierr.NewInvalidRequestError("choice is required"))
		return
	}

	upd, err := h.rooms.SubmitVote(r.Context(), middleware.MustGetActor(r.Context()), roomID(r), req.Choice)
	writeUpdate(w, upd, err)
}

// NextRound handles POST /api/v1/rooms/{id}/next-round
func (h *RoomHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.NextRound)
}

// Reset handles POST /api/v1/rooms/{id}/reset
func (h *RoomHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.ResetGame)
}

// Policies handles POST /api/v1/rooms/{id}/policies
func (h *RoomHandler) Policies(w http.ResponseWriter, r *http.Request) {
	var req request.PolicyRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}
	policy, ok := req.Policy()
	if !ok {
		WriteError(w, apierr.NewInvalidRequestError("cb_rate, exchange_rate and tariff_rate are required"))
		return
	}

	upd, err := h.rooms.SetPolicy(r.Context(), middleware.MustGetActor(r.Context()), roomID(r), policy)
	writeUpdate(w, upd, err)
}

// AdvanceYear handles POST /api/v1/rooms/{id}/advance-year
func (h *RoomHandler) AdvanceYear(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.rooms.AdvanceYear)
}
