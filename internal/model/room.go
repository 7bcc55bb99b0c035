package model

import (
	"maps"
	"slices"
	"time"
)

// RoomID uniquely identifies a room
type RoomID string

// Phase is the current stage of a room's game
type Phase string

const (
	PhaseLobby    Phase = "lobby"    // Players choosing countries
	PhaseVoting   Phase = "voting"   // Phase 1 round open for votes
	PhaseResults  Phase = "results"  // Round resolved, waiting for ready quorum
	PhasePhase2   Phase = "phase2"   // Economic management, year by year
	PhaseComplete Phase = "complete" // Achievements awarded, game over
)

// RoomConfig holds the rules a room's game runs under
type RoomConfig struct {
	MaxPlayers int      `json:"max_players"`
	VoteMode   VoteMode `json:"vote_mode"`
	StartYear  int      `json:"start_year"`
	MaxYears   int      `json:"max_years"`

	// RequireAdminToStart restricts startGame to superadmins and raises
	// the minimum roster to two players.
	RequireAdminToStart bool `json:"require_admin_to_start"`
	// RequireAllReady makes startGame wait for every seated player to be ready.
	RequireAllReady bool `json:"require_all_ready"`
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers: 7,
		VoteMode:   VoteModeOptions,
		StartYear:  1946,
		MaxYears:   7,
	}
}

// Bounds on the Phase 2 calendar. The scripted shocks and country
// achievements are written against the post-war years.
const (
	MinStartYear = 1944
	MaxStartYear = 1971
	MaxGameYears = 25
)

// Validate checks the config's ranges
func (c RoomConfig) Validate() error {
	if c.MaxPlayers < 1 || c.MaxPlayers > len(Countries()) {
		return ErrInvalidConfig
	}
	if !c.VoteMode.IsValid() {
		return ErrInvalidConfig
	}
	if c.StartYear < MinStartYear || c.StartYear > MaxStartYear {
		return ErrInvalidConfig
	}
	if c.MaxYears < 1 || c.MaxYears > MaxGameYears {
		return ErrInvalidConfig
	}
	return nil
}

// RoomConfigOverrides is a partial RoomConfig sent by a room's creator.
// Nil fields keep the server's default.
type RoomConfigOverrides struct {
	MaxPlayers          *int      `json:"max_players,omitempty"`
	VoteMode            *VoteMode `json:"vote_mode,omitempty"`
	StartYear           *int      `json:"start_year,omitempty"`
	MaxYears            *int      `json:"max_years,omitempty"`
	RequireAdminToStart *bool     `json:"require_admin_to_start,omitempty"`
	RequireAllReady     *bool     `json:"require_all_ready,omitempty"`
}

// Apply overlays the set fields onto base
func (o RoomConfigOverrides) Apply(base RoomConfig) RoomConfig {
	if o.MaxPlayers != nil {
		base.MaxPlayers = *o.MaxPlayers
	}
	if o.VoteMode != nil {
		base.VoteMode = *o.VoteMode
	}
	if o.StartYear != nil {
		base.StartYear = *o.StartYear
	}
	if o.MaxYears != nil {
		base.MaxYears = *o.MaxYears
	}
	if o.RequireAdminToStart != nil {
		base.RequireAdminToStart = *o.RequireAdminToStart
	}
	if o.RequireAllReady != nil {
		base.RequireAllReady = *o.RequireAllReady
	}
	return base
}

// ChangesGating reports whether applying o to base would change who may
// start the game or when
func (o RoomConfigOverrides) ChangesGating(base RoomConfig) bool {
	if o.RequireAdminToStart != nil && *o.RequireAdminToStart != base.RequireAdminToStart {
		return true
	}
	return o.RequireAllReady != nil && *o.RequireAllReady != base.RequireAllReady
}

// MinPlayers returns the roster size startGame requires
func (c RoomConfig) MinPlayers() int {
	if c.RequireAdminToStart {
		return 2
	}
	return 1
}

// RoomMember is anyone who has entered the room, seated or not
type RoomMember struct {
	PlayerID PlayerID  `json:"player_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoomPlayer binds a member to the country they play
type RoomPlayer struct {
	PlayerID  PlayerID  `json:"player_id"`
	Username  string    `json:"username"`
	Country   Country   `json:"country"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Phase2State is the economic simulation state of a room
type Phase2State struct {
	YearsAdvanced int                              `json:"years_advanced"`
	Records       map[Country][]EconomicYearRecord `json:"records"`
	Pending       map[Country]Policy               `json:"pending"`
	Policies      map[Country][]PolicyRecord       `json:"policies"`
	YearScores    map[Country][]YearScore          `json:"year_scores"`
	Achievements  map[Country][]Achievement        `json:"achievements"`
}

// NewPhase2State creates an empty Phase 2 state
func NewPhase2State() *Phase2State {
	return &Phase2State{
		Records:      make(map[Country][]EconomicYearRecord),
		Pending:      make(map[Country]Policy),
		Policies:     make(map[Country][]PolicyRecord),
		YearScores:   make(map[Country][]YearScore),
		Achievements: make(map[Country][]Achievement),
	}
}

// LatestRecord returns the most recent record for a country
func (p *Phase2State) LatestRecord(country Country) (EconomicYearRecord, bool) {
	records := p.Records[country]
	if len(records) == 0 {
		return EconomicYearRecord{}, false
	}
	return records[len(records)-1], true
}

// Room is a single game session
type Room struct {
	ID          RoomID     `json:"id"`
	Name        string     `json:"name"`
	HostID      PlayerID   `json:"host_id"`
	Config      RoomConfig `json:"config"`
	Phase       Phase      `json:"phase"`
	Round       int        `json:"round"`        // 1-indexed, 0 before the game starts
	CurrentYear int        `json:"current_year"` // 0 before Phase 2
	Started     bool       `json:"started"`

	Members []RoomMember `json:"members"`
	Players []RoomPlayer `json:"players"`

	// Phase 1
	Votes    []VoteEntry       `json:"votes"` // insertion ordered
	Ready    map[PlayerID]bool `json:"ready"`
	Resolved bool              `json:"resolved"` // current round already tallied
	History  []RoundResult     `json:"history"`

	// Scoring
	Scores map[Country]int `json:"scores"`
	Ledger []ScoreDelta    `json:"ledger"`

	Phase2 *Phase2State `json:"phase2,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoom creates a room in the lobby phase with the host as its first member
func NewRoom(id RoomID, name string, host RoomMember, cfg RoomConfig, now time.Time) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		HostID:    host.PlayerID,
		Config:    cfg,
		Phase:     PhaseLobby,
		Members:   []RoomMember{host},
		Players:   []RoomPlayer{},
		Votes:     []VoteEntry{},
		Ready:     make(map[PlayerID]bool),
		History:   []RoundResult{},
		Scores:    make(map[Country]int),
		Ledger:    []ScoreDelta{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetMember returns the member with the given id, or nil
func (r *Room) GetMember(id PlayerID) *RoomMember {
	for i := range r.Members {
		if r.Members[i].PlayerID == id {
			return &r.Members[i]
		}
	}
	return nil
}

// GetPlayer returns the seated player with the given id, or nil
func (r *Room) GetPlayer(id PlayerID) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].PlayerID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerByCountry returns the player holding a country, or nil
func (r *Room) PlayerByCountry(country Country) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].Country == country {
			return &r.Players[i]
		}
	}
	return nil
}

// IsHost returns true if id is the room host
func (r *Room) IsHost(id PlayerID) bool {
	return r.HostID == id
}

// SeatedCountries returns the countries held by players in seating order
func (r *Room) SeatedCountries() []Country {
	countries := make([]Country, 0, len(r.Players))
	for _, p := range r.Players {
		countries = append(countries, p.Country)
	}
	return countries
}

// AllReady returns true if every seated player is ready
func (r *Room) AllReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if !r.Ready[p.PlayerID] {
			return false
		}
	}
	return true
}

// VoteOf returns the index of a player's live vote, or -1
func (r *Room) VoteOf(id PlayerID) int {
	for i, v := range r.Votes {
		if v.PlayerID == id {
			return i
		}
	}
	return -1
}

// AllVoted returns true if every seated player has a live vote
func (r *Room) AllVoted() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if r.VoteOf(p.PlayerID) < 0 {
			return false
		}
	}
	return true
}

// AllPoliciesSubmitted returns true if every seated player's country has a
// pending policy for the current year
func (r *Room) AllPoliciesSubmitted() bool {
	if r.Phase2 == nil || len(r.Players) == 0 {
		return false
	}
	for _, p := range r.Players {
		if _, ok := r.Phase2.Pending[p.Country]; !ok {
			return false
		}
	}
	return true
}

// Summary returns the lightweight listing entry for this room
func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		HostID:      r.HostID,
		Phase:       r.Phase,
		PlayerCount: len(r.Players),
		MaxPlayers:  r.Config.MaxPlayers,
		Started:     r.Started,
		CreatedAt:   r.CreatedAt,
	}
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	c.Members = slices.Clone(r.Members)
	c.Players = slices.Clone(r.Players)
	c.Votes = slices.Clone(r.Votes)
	c.Ready = maps.Clone(r.Ready)
	c.Scores = maps.Clone(r.Scores)
	c.Ledger = slices.Clone(r.Ledger)

	c.History = make([]RoundResult, len(r.History))
	for i, h := range r.History {
		h.Votes = slices.Clone(h.Votes)
		h.Counts = maps.Clone(h.Counts)
		h.Deltas = slices.Clone(h.Deltas)
		c.History[i] = h
	}

	if r.Phase2 != nil {
		p := NewPhase2State()
		p.YearsAdvanced = r.Phase2.YearsAdvanced
		for k, v := range r.Phase2.Records {
			p.Records[k] = slices.Clone(v)
		}
		maps.Copy(p.Pending, r.Phase2.Pending)
		for k, v := range r.Phase2.Policies {
			p.Policies[k] = slices.Clone(v)
		}
		for k, v := range r.Phase2.YearScores {
			p.YearScores[k] = slices.Clone(v)
		}
		for k, v := range r.Phase2.Achievements {
			p.Achievements[k] = slices.Clone(v)
		}
		c.Phase2 = p
	}
	return &c
}

// RoomSummary is a lightweight record for room listings
type RoomSummary struct {
	ID          RoomID    `json:"id"`
	Name        string    `json:"name"`
	HostID      PlayerID  `json:"host_id"`
	Phase       Phase     `json:"phase"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	Started     bool      `json:"started"`
	CreatedAt   time.Time `json:"created_at"`
}
