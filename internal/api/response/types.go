package response

import (
	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/auth"
	"github.com/mcoot/brettonwoods/internal/services/registry"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

// Player represents a player in API responses
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// PlayerFromActor converts an authenticated actor
func PlayerFromActor(a room.Actor) Player {
	return Player{
		ID:       string(a.PlayerID),
		Username: a.Username,
		Role:     string(a.Role),
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player: Player{
			ID:       string(s.User.PlayerID),
			Username: s.User.Username,
			Role:     string(s.User.Role),
		},
		SessionToken: s.Token,
	}
}

// RoomList is the response for listing rooms
type RoomList struct {
	Rooms []model.RoomSummary `json:"rooms"`
}

// RoomUpdate is the response for every room action. Waiting is true when
// the action was recorded but its quorum has not been met yet.
type RoomUpdate struct {
	Room    *model.Room `json:"room"`
	Waiting bool        `json:"waiting"`
}

// RoomUpdateFrom converts a registry update
func RoomUpdateFrom(u registry.Update) RoomUpdate {
	return RoomUpdate{Room: u.Room, Waiting: u.Waiting}
}

// ClearResponse is the response for an admin clear
type ClearResponse struct {
	RemovedRooms int `json:"removed_rooms"`
	RemovedUsers int `json:"removed_users"`
}

// Health is the health check payload
type Health struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}
