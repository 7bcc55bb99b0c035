package model

import "time"

// GlobalState is everything the server persists: users and rooms
type GlobalState struct {
	Users   []User    `json:"users"`
	Rooms   []*Room   `json:"rooms"`
	SavedAt time.Time `json:"saved_at"`
}
