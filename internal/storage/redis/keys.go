package redis

import (
	"fmt"
	"strings"

	"github.com/mcoot/brettonwoods/internal/model"
)

type keys struct {
	prefix string
}

// user returns the key for a user record
func (k keys) user(username string) string {
	return fmt.Sprintf("%s:user:%s", k.prefix, strings.ToLower(username))
}

// room returns the key for a room record
func (k keys) room(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", k.prefix, id)
}

// userIndex returns the key of the SET of saved usernames
func (k keys) userIndex() string {
	return fmt.Sprintf("%s:idx:users", k.prefix)
}

// roomIndex returns the key of the SET of saved room ids
func (k keys) roomIndex() string {
	return fmt.Sprintf("%s:idx:rooms", k.prefix)
}

// meta returns the key holding the last save time
func (k keys) meta() string {
	return fmt.Sprintf("%s:meta:saved_at", k.prefix)
}
