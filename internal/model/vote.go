package model

// VoteMode selects which resolution contract a room uses in Phase 1
type VoteMode string

const (
	// VoteModeOptions resolves each round by counting votes per option;
	// the winning option's favoured and opposed countries gain and lose points.
	VoteModeOptions VoteMode = "options"
	// VoteModeMotion resolves each round as a for/against/abstain motion
	// with per-voter participation and alignment awards.
	VoteModeMotion VoteMode = "motion"
)

// IsValid returns true for known vote modes
func (m VoteMode) IsValid() bool {
	return m == VoteModeOptions || m == VoteModeMotion
}

// Motion choices
const (
	ChoiceFor     = "for"
	ChoiceAgainst = "against"
	ChoiceAbstain = "abstain"
)

// Motion outcomes
const (
	OutcomePassed   = "passed"
	OutcomeRejected = "rejected"
)

// IssueOption is one answer to a Phase 1 issue
type IssueOption struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Favors  []Country `json:"favors"`
	Opposes []Country `json:"opposes"`
}

// Issue is the question put to the room in one voting round
type Issue struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Summary string        `json:"summary"`
	Options []IssueOption `json:"options"`
}

// Option returns the option with the given id, or nil
func (i *Issue) Option(id string) *IssueOption {
	for idx := range i.Options {
		if i.Options[idx].ID == id {
			return &i.Options[idx]
		}
	}
	return nil
}

// VoteEntry is one live vote in the current round's ledger
type VoteEntry struct {
	PlayerID PlayerID `json:"player_id"`
	Country  Country  `json:"country"`
	Choice   string   `json:"choice"`
}

// ScoreSource names what produced a score delta
type ScoreSource string

const (
	SourceVote        ScoreSource = "vote"
	SourceMotion      ScoreSource = "motion"
	SourceEconomy     ScoreSource = "economy"
	SourceAchievement ScoreSource = "achievement"
)

// ScoreDelta is one auditable change to a country's score
type ScoreDelta struct {
	Country Country     `json:"country"`
	Points  int         `json:"points"`
	Source  ScoreSource `json:"source"`
	Round   int         `json:"round,omitempty"`
	Year    int         `json:"year,omitempty"`
	Reason  string      `json:"reason"`
}

// RoundResult is the resolved outcome of one voting round
type RoundResult struct {
	Round   int            `json:"round"`
	IssueID string         `json:"issue_id"`
	Mode    VoteMode       `json:"mode"`
	Votes   []VoteEntry    `json:"votes"`
	Counts  map[string]int `json:"counts"`
	Winner  string         `json:"winner"` // option id, or motion outcome
	Deltas  []ScoreDelta   `json:"deltas"`
}
