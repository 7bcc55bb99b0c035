package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mcoot/brettonwoods/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case model.Room:
		o.printRoom(&v)
	case RoomList:
		o.printRoomList(v)
	case RoomUpdate:
		o.printRoomUpdate(v)
	case ClearResult:
		fmt.Fprintf(o.w, "Removed %d rooms and %d users\n", v.RemovedRooms, v.RemovedUsers)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		fmt.Fprintf(o.w, "Open rooms: %d\n", v.Rooms)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// RoomList response type
type RoomList struct {
	Rooms []model.RoomSummary `json:"rooms"`
}

// RoomUpdate is the response to every room action
type RoomUpdate struct {
	Room    *model.Room `json:"room"`
	Waiting bool        `json:"waiting"`
}

// ClearResult response type
type ClearResult struct {
	RemovedRooms int `json:"removed_rooms"`
	RemovedUsers int `json:"removed_users"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Username, p.ID)
	fmt.Fprintf(o.w, "Role: %s\n", p.Role)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printRoomList(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "%s  %-24s %-9s %d/%d players\n", r.ID, r.Name, r.Phase, r.PlayerCount, r.MaxPlayers)
	}
}

func (o *Output) printRoomUpdate(u RoomUpdate) {
	if u.Waiting {
		fmt.Fprintln(o.w, "Recorded; waiting for other players")
	}
	if u.Room != nil {
		o.printRoom(u.Room)
	}
}

func (o *Output) printRoom(r *model.Room) {
	fmt.Fprintf(o.w, "Room: %s (%s)\n", r.Name, r.ID)
	fmt.Fprintf(o.w, "Phase: %s\n", r.Phase)
	fmt.Fprintf(o.w, "Host: %s\n", r.HostID)

	fmt.Fprintf(o.w, "Members (%d):\n", len(r.Members))
	for _, m := range r.Members {
		fmt.Fprintf(o.w, "  - %s (%s)\n", m.Username, m.PlayerID)
	}

	if len(r.Players) > 0 {
		fmt.Fprintf(o.w, "Players (%d/%d):\n", len(r.Players), r.Config.MaxPlayers)
		for _, p := range r.Players {
			flags := []string{}
			if r.Ready[p.PlayerID] {
				flags = append(flags, "ready")
			}
			if !p.Connected {
				flags = append(flags, "offline")
			}
			suffix := ""
			if len(flags) > 0 {
				suffix = " [" + strings.Join(flags, ", ") + "]"
			}
			fmt.Fprintf(o.w, "  - %s: %s%s\n", p.Country, p.Username, suffix)
		}
	}

	switch r.Phase {
	case model.PhaseVoting, model.PhaseResults:
		fmt.Fprintf(o.w, "Round: %d\n", r.Round)
		if r.Phase == model.PhaseVoting {
			fmt.Fprintf(o.w, "Votes in: %d/%d\n", len(r.Votes), len(r.Players))
		}
		if n := len(r.History); n > 0 {
			last := r.History[n-1]
			fmt.Fprintf(o.w, "Last result: %s -> %s\n", last.IssueID, last.Winner)
		}
	case model.PhasePhase2, model.PhaseComplete:
		fmt.Fprintf(o.w, "Year: %d\n", r.CurrentYear)
	}

	if len(r.Scores) > 0 {
		fmt.Fprintln(o.w, "Scores:")
		countries := make([]model.Country, 0, len(r.Scores))
		for c := range r.Scores {
			countries = append(countries, c)
		}
		sort.Slice(countries, func(i, j int) bool {
			if r.Scores[countries[i]] != r.Scores[countries[j]] {
				return r.Scores[countries[i]] > r.Scores[countries[j]]
			}
			return countries[i] < countries[j]
		})
		for _, c := range countries {
			fmt.Fprintf(o.w, "  %s: %d\n", c, r.Scores[c])
		}
	}

	if r.Phase == model.PhaseComplete && r.Phase2 != nil {
		fmt.Fprintln(o.w, "Achievements:")
		for _, c := range model.Countries() {
			for _, a := range r.Phase2.Achievements[c] {
				fmt.Fprintf(o.w, "  %s: %s (+%d)\n", c, a.Name, a.Points)
			}
		}
	}
}
