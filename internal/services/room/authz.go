package room

import "github.com/mcoot/brettonwoods/internal/model"

// Authorize checks that the actor holds at least the required role
func Authorize(actor Actor, required model.Role) error {
	if !actor.Role.Satisfies(required) {
		return model.ErrForbidden
	}
	return nil
}

// AuthorizeOwner checks that the actor is the room's host or a superadmin
func AuthorizeOwner(actor Actor, room *model.Room) error {
	if room.IsHost(actor.PlayerID) {
		return nil
	}
	if Authorize(actor, model.RoleSuperadmin) == nil {
		return nil
	}
	return model.ErrNotHost
}
