package registry

import (
	"context"
	"fmt"

	"github.com/mcoot/brettonwoods/internal/model"
	"github.com/mcoot/brettonwoods/internal/services/room"
)

// ActionType names a message-style action
type ActionType string

const (
	ActionRegister    ActionType = "register"
	ActionLogin       ActionType = "login"
	ActionListRooms   ActionType = "listRooms"
	ActionGetRoom     ActionType = "getRoom"
	ActionCreateRoom  ActionType = "createRoom"
	ActionJoinRoom    ActionType = "joinRoom"
	ActionLeaveRoom   ActionType = "leaveRoom"
	ActionDeleteRoom  ActionType = "deleteRoom"
	ActionJoinGame    ActionType = "joinGame"
	ActionLeaveGame   ActionType = "leaveGame"
	ActionSetReady    ActionType = "setReady"
	ActionStartGame   ActionType = "startGame"
	ActionSubmitVote  ActionType = "submitVote"
	ActionNextRound   ActionType = "nextRound"
	ActionResetGame   ActionType = "resetGame"
	ActionSetPolicies ActionType = "setPhase2Policies"
	ActionAdvanceYear ActionType = "advanceYear"
	ActionDisconnect  ActionType = "disconnect"
	ActionAdminClear  ActionType = "adminClear"
)

// aliases accepted from older clients
var aliases = map[ActionType]ActionType{
	"vote":         ActionSubmitVote,
	"advanceRound": ActionNextRound,
	"resetRoom":    ActionResetGame,
}

// Canonical resolves aliases to their canonical action type
func (t ActionType) Canonical() ActionType {
	if c, ok := aliases[t]; ok {
		return c
	}
	return t
}

func (t ActionType) anonymous() bool {
	switch t {
	case ActionRegister, ActionLogin, ActionListRooms, ActionGetRoom:
		return true
	}
	return false
}

// Action is one inbound request. Only the fields its type uses are read.
type Action struct {
	Type      ActionType                 `json:"type"`
	RequestID string                     `json:"request_id,omitempty"`
	RoomID    model.RoomID               `json:"room_id,omitempty"`
	Name      string                     `json:"name,omitempty"`
	Config    *model.RoomConfigOverrides `json:"config,omitempty"`
	Country   model.Country              `json:"country,omitempty"`
	Choice    string                     `json:"choice,omitempty"`
	Ready     *bool                      `json:"ready,omitempty"` // nil means true
	Policy    *model.Policy              `json:"policy,omitempty"`
	Username  string                     `json:"username,omitempty"`
	Password  string                     `json:"password,omitempty"`
}

// ActionError is the wire form of a rejected action
type ActionError struct {
	Kind    model.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

// Result is the reply to one Action
type Result struct {
	Type      ActionType          `json:"type"`
	RequestID string              `json:"request_id,omitempty"`
	OK        bool                `json:"ok"`
	Waiting   bool                `json:"waiting,omitempty"`
	Room      *model.Room         `json:"room,omitempty"`
	Rooms     []model.RoomSummary `json:"rooms,omitempty"`
	Token     string              `json:"token,omitempty"`
	PlayerID  model.PlayerID      `json:"player_id,omitempty"`
	Username  string              `json:"username,omitempty"`
	Role      model.Role          `json:"role,omitempty"`
	Removed   *ClearCounts        `json:"removed,omitempty"`
	Error     *ActionError        `json:"error,omitempty"`
}

// ClearCounts reports what adminClear removed
type ClearCounts struct {
	Rooms int `json:"rooms"`
	Users int `json:"users"`
}

func (res *Result) fail(err error) Result {
	res.OK = false
	res.Error = &ActionError{Kind: model.KindOf(err), Message: err.Error()}
	return *res
}

// Err returns the rejection as an error carrying its kind, or nil
func (res Result) Err() error {
	if res.Error == nil {
		return nil
	}
	return fmt.Errorf("%s: %s", res.Error.Kind, res.Error.Message)
}

// Dispatch runs a message-style action. Rejections are reported in the
// Result, never as a Go error. Register and login return the new session
// token; the transport decides what to do with it.
func (r *Registry) Dispatch(ctx context.Context, actor room.Actor, action Action) Result {
	action.Type = action.Type.Canonical()
	res := Result{Type: action.Type, RequestID: action.RequestID, OK: true}

	if actor.PlayerID == "" && !action.Type.anonymous() {
		return res.fail(model.ErrInvalidSession)
	}

	var (
		upd Update
		err error
	)
	switch action.Type {
	case ActionRegister, ActionLogin:
		login := r.Register
		if action.Type == ActionLogin {
			login = r.Login
		}
		session, err := login(ctx, action.Username, action.Password)
		if err != nil {
			return res.fail(err)
		}
		res.Token = session.Token
		res.PlayerID = session.User.PlayerID
		res.Username = session.User.Username
		res.Role = session.User.Role
		return res

	case ActionListRooms:
		res.Rooms = r.ListRooms(ctx)
		return res

	case ActionGetRoom:
		rm, err := r.GetRoom(ctx, action.RoomID)
		if err != nil {
			return res.fail(err)
		}
		res.Room = rm
		return res

	case ActionCreateRoom:
		rm, err := r.CreateRoom(ctx, actor, action.Name, action.Config)
		if err != nil {
			return res.fail(err)
		}
		res.Room = rm
		return res

	case ActionDeleteRoom:
		if err := r.DeleteRoom(ctx, actor, action.RoomID); err != nil {
			return res.fail(err)
		}
		return res

	case ActionDisconnect:
		r.Disconnect(ctx, actor.PlayerID)
		return res

	case ActionAdminClear:
		rooms, users, err := r.AdminClear(ctx, actor)
		if err != nil {
			return res.fail(err)
		}
		res.Removed = &ClearCounts{Rooms: rooms, Users: users}
		return res

	case ActionJoinRoom:
		upd, err = r.JoinRoom(ctx, actor, action.RoomID)
	case ActionLeaveRoom:
		upd, err = r.LeaveRoom(ctx, actor, action.RoomID)
	case ActionJoinGame:
		if action.Country == "" {
			return res.fail(model.ErrMissingField)
		}
		upd, err = r.JoinGame(ctx, actor, action.RoomID, action.Country)
	case ActionLeaveGame:
		upd, err = r.LeaveGame(ctx, actor, action.RoomID)
	case ActionSetReady:
		ready := action.Ready == nil || *action.Ready
		upd, err = r.SetReady(ctx, actor, action.RoomID, ready)
	case ActionStartGame:
		upd, err = r.StartGame(ctx, actor, action.RoomID)
	case ActionSubmitVote:
		upd, err = r.SubmitVote(ctx, actor, action.RoomID, action.Choice)
	case ActionNextRound:
		upd, err = r.NextRound(ctx, actor, action.RoomID)
	case ActionResetGame:
		upd, err = r.ResetGame(ctx, actor, action.RoomID)
	case ActionSetPolicies:
		if action.Policy == nil {
			return res.fail(model.ErrMissingField)
		}
		upd, err = r.SetPolicy(ctx, actor, action.RoomID, *action.Policy)
	case ActionAdvanceYear:
		upd, err = r.AdvanceYear(ctx, actor, action.RoomID)
	default:
		r.observe("unknown", r.clock.Now(), Update{}, model.ErrUnknownAction)
		return res.fail(model.ErrUnknownAction)
	}

	if err != nil {
		return res.fail(err)
	}
	res.Room = upd.Room
	res.Waiting = upd.Waiting
	return res
}
