package storage

import (
	"fmt"

	"github.com/mcoot/brettonwoods/internal/model"
)

// CloneState deep-copies a global state so a backend never shares memory
// with the registry
func CloneState(state *model.GlobalState) *model.GlobalState {
	if state == nil {
		return nil
	}
	out := &model.GlobalState{
		Users:   append([]model.User(nil), state.Users...),
		Rooms:   make([]*model.Room, 0, len(state.Rooms)),
		SavedAt: state.SavedAt,
	}
	for _, r := range state.Rooms {
		out.Rooms = append(out.Rooms, r.Clone())
	}
	return out
}

// Wrap marks a backend failure as a persistence error
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", model.ErrPersistence, op, err)
}
