package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every specific error below wraps exactly one kind so callers
// can classify failures with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrConflict     = errors.New("conflict")
	ErrQuorumNotMet = errors.New("quorum not met")
	ErrPersistence  = errors.New("persistence failed")
)

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidSession     = fmt.Errorf("%w: invalid or expired session", ErrUnauthorized)
	ErrInvalidUsername    = fmt.Errorf("%w: username must be 3-32 characters", ErrValidation)
	ErrInvalidPassword    = fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)

	// Room errors
	ErrRoomNotFound     = fmt.Errorf("%w: room not found", ErrNotFound)
	ErrRoomFull         = fmt.Errorf("%w: room is full", ErrConflict)
	ErrCountryTaken     = fmt.Errorf("%w: country already taken", ErrConflict)
	ErrAlreadySeated    = fmt.Errorf("%w: player already holds a country", ErrConflict)
	ErrUnknownCountry   = fmt.Errorf("%w: unknown country", ErrValidation)
	ErrInvalidRoomName  = fmt.Errorf("%w: room name must be 1-64 characters", ErrValidation)
	ErrInvalidConfig    = fmt.Errorf("%w: invalid room config", ErrValidation)
	ErrNotInRoom        = fmt.Errorf("%w: player is not in room", ErrNotFound)
	ErrNotSeated        = fmt.Errorf("%w: player has not joined the game", ErrNotFound)
	ErrNotHost          = fmt.Errorf("%w: player is not the host", ErrUnauthorized)
	ErrForbidden        = fmt.Errorf("%w: role does not permit this action", ErrUnauthorized)
	ErrGameStarted      = fmt.Errorf("%w: game already started", ErrConflict)
	ErrWrongPhase       = fmt.Errorf("%w: action not allowed in current phase", ErrConflict)
	ErrNotEnoughPlayers = fmt.Errorf("%w: not enough players to start", ErrQuorumNotMet)
	ErrPlayersNotReady  = fmt.Errorf("%w: not all players are ready", ErrQuorumNotMet)

	// Vote and policy errors
	ErrInvalidChoice = fmt.Errorf("%w: invalid vote choice", ErrValidation)
	ErrInvalidPolicy = fmt.Errorf("%w: policy out of range", ErrValidation)
	ErrUnknownAction = fmt.Errorf("%w: unknown action", ErrValidation)
	ErrMissingField  = fmt.Errorf("%w: required field missing", ErrValidation)

	// Storage errors
	ErrNoState = fmt.Errorf("%w: no saved state", ErrNotFound)
)

// ErrorKind names the category of an error for transports
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindConflict     ErrorKind = "conflict"
	KindQuorum       ErrorKind = "quorum_not_met"
	KindPersistence  ErrorKind = "persistence"
	KindInternal     ErrorKind = "internal"
)

// KindOf classifies an error by the kind it wraps
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrQuorumNotMet):
		return KindQuorum
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return KindInternal
	}
}
