package match

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Side identifies one of the two teams in a match.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

type Stage string

const (
	StageGroup        Stage = "Group"
	StageQuarterFinal Stage = "Quarter Final"
	StageSemiFinal    Stage = "Semi Final"
	StageFinal        Stage = "Final"
)

type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// WicketType for cricket dismissals.
type WicketType string

const (
	WicketBowled    WicketType = "bowled"
	WicketCaught    WicketType = "caught"
	WicketLBW       WicketType = "lbw"
	WicketRunOut    WicketType = "run_out"
	WicketStumped   WicketType = "stumped"
	WicketHitWicket WicketType = "hit_wicket"
)

// BallType classifies a recorded delivery in the ball log.
type BallType string

const (
	BallLegal  BallType = "legal"
	BallWicket BallType = "wicket"
	BallWide   BallType = "wide"
	BallNoBall BallType = "no-ball"
)

// ExtraKind is the operator-facing name of an illegal delivery.
type ExtraKind string

const (
	ExtraWide   ExtraKind = "Wide"
	ExtraNoBall ExtraKind = "No-ball"
)

// BallType maps the extra kind onto the ball event type it produces.
func (k ExtraKind) BallType() BallType {
	if k == ExtraNoBall {
		return BallNoBall
	}
	return BallWide
}

// Score is one innings' running total. Balls counts legal deliveries only;
// extras never advance it.
type Score struct {
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"`
	Balls   int `json:"balls"`
}

// OversDisplay renders the balls count in cricket "X.Y" notation.
func (s Score) OversDisplay() string {
	return strconv.Itoa(s.Balls/6) + "." + strconv.Itoa(s.Balls%6)
}

func (s Score) Display() string {
	return strconv.Itoa(s.Runs) + "/" + strconv.Itoa(s.Wickets)
}

// BallEvent is one entry of the append-only ball log. Log order comes from
// the insertion keys; Timestamp is informational.
type BallEvent struct {
	Type       BallType    `json:"type"`
	Runs       int         `json:"runs"`
	Extra      int         `json:"extra"`
	WicketType *WicketType `json:"wicketType"`
	Striker    string      `json:"striker,omitempty"`
	Bowler     string      `json:"bowler,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// PlayerStat holds one player's cumulative counters for a match. Balls and
// BallsFaced have always been written with the same value, so both stay for
// compatibility with persisted data. A PlayerStat also serves as a delta
// applied through Add; counters only ever increase during a match.
type PlayerStat struct {
	Runs         int `json:"runs"`
	Balls        int `json:"balls"`
	BallsFaced   int `json:"ballsFaced"`
	Fours        int `json:"fours"`
	Sixes        int `json:"sixes"`
	Wickets      int `json:"wickets"`
	OversBalls   int `json:"oversBalls"`
	RunsConceded int `json:"runsConceded"`
}

func (s *PlayerStat) Add(d PlayerStat) {
	s.Runs += d.Runs
	s.Balls += d.Balls
	s.BallsFaced += d.BallsFaced
	s.Fours += d.Fours
	s.Sixes += d.Sixes
	s.Wickets += d.Wickets
	s.OversBalls += d.OversBalls
	s.RunsConceded += d.RunsConceded
}

// Player is one roster entry.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number,omitempty"`
	Role   string `json:"role,omitempty"`
}

// TeamRef is the canonical team reference. Persisted matches carry a team as
// either a plain name string or an object (name under "teamName" or "name"),
// and finalized matches fold the team's score into the same object.
// UnmarshalJSON absorbs every shape so nothing downstream branches on it.
type TeamRef struct {
	ID       string `json:"id,omitempty"`
	TeamName string `json:"teamName,omitempty"`
	Runs     *int   `json:"runs,omitempty"`
	Wickets  *int   `json:"wickets,omitempty"`
	Balls    *int   `json:"balls,omitempty"`
}

func (t *TeamRef) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*t = TeamRef{TeamName: name}
		return nil
	}
	var doc struct {
		ID         string `json:"id"`
		TeamName   string `json:"teamName"`
		LegacyName string `json:"name"`
		Runs       *int   `json:"runs"`
		Wickets    *int   `json:"wickets"`
		Balls      *int   `json:"balls"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	*t = TeamRef{ID: doc.ID, TeamName: doc.TeamName, Runs: doc.Runs, Wickets: doc.Wickets, Balls: doc.Balls}
	if t.TeamName == "" {
		t.TeamName = doc.LegacyName
	}
	return nil
}

func (t TeamRef) Name() string {
	return strings.TrimSpace(t.TeamName)
}

// Snapshot returns the score folded into the team object at finalization,
// when present.
func (t TeamRef) Snapshot() (Score, bool) {
	if t.Runs == nil && t.Wickets == nil && t.Balls == nil {
		return Score{}, false
	}
	var sc Score
	if t.Runs != nil {
		sc.Runs = *t.Runs
	}
	if t.Wickets != nil {
		sc.Wickets = *t.Wickets
	}
	if t.Balls != nil {
		sc.Balls = *t.Balls
	}
	return sc, true
}

// OverCount tolerates the overs limit being stored as a number or a numeric
// string; anything unparseable reads as 0.
type OverCount int

func (o *OverCount) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*o = OverCount(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		*o = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		n = 0
	}
	*o = OverCount(n)
	return nil
}

// LiveState is the scoring runtime sub-document, present only while a match
// is live. Finalization clears it after folding scores and stats into the
// match document.
type LiveState struct {
	CurrentInnings   Side                  `json:"currentInnings"`
	ScoreA           Score                 `json:"scoreA"`
	ScoreB           Score                 `json:"scoreB"`
	Target           *int                  `json:"target,omitempty"`
	CurrentOverBalls int                   `json:"currentOverBalls"`
	Striker          string                `json:"striker,omitempty"`
	NonStriker       string                `json:"nonStriker,omitempty"`
	CurrentBowler    string                `json:"currentBowler,omitempty"`
	LastBall         *BallEvent            `json:"lastBall,omitempty"`
	BallsHistory     map[string]BallEvent  `json:"ballsHistory,omitempty"`
	PlayerStats      map[string]PlayerStat `json:"playerStats,omitempty"`
}

// ActiveScore returns the batting side's score together with its field name
// in the live sub-document ("scoreA"/"scoreB").
func (l *LiveState) ActiveScore() (Score, string) {
	if l.CurrentInnings == SideB {
		return l.ScoreB, "scoreB"
	}
	return l.ScoreA, "scoreA"
}

// Chasing reports whether the second innings is underway. The target is nil
// for the whole first innings and fixed once the second starts.
func (l *LiveState) Chasing() bool {
	return l.Target != nil
}

// Match is the stored match document.
type Match struct {
	ID           string              `json:"-"`
	TournamentID string              `json:"tournamentId,omitempty"`
	Stage        Stage               `json:"stage,omitempty"`
	Status       MatchStatus         `json:"status,omitempty"`
	TeamA        TeamRef             `json:"teamA"`
	TeamB        TeamRef             `json:"teamB"`
	Overs        OverCount           `json:"overs,omitempty"`
	BallType     string              `json:"ballType,omitempty"`
	PitchType    string              `json:"pitchType,omitempty"`
	Venue        string              `json:"venue,omitempty"`
	MatchDate    string              `json:"matchDate,omitempty"`
	TossWinner   string              `json:"tossWinner,omitempty"`
	TossWonBy    Side                `json:"tossWonBy,omitempty"`
	ElectedTo    string              `json:"electedTo,omitempty"`
	BattingFirst Side                `json:"battingFirst,omitempty"`
	Winner       string              `json:"winner,omitempty"`
	IsTie        bool                `json:"isTie,omitempty"`
	ScoreA       *Score              `json:"scoreA,omitempty"`
	ScoreB       *Score              `json:"scoreB,omitempty"`
	Players      map[string][]Player `json:"players,omitempty"`
	Live         *LiveState          `json:"live,omitempty"`
	// PlayerStats is the per-match ledger folded out of the live
	// sub-document at finalization, kept for tournament leaderboards.
	PlayerStats map[string]PlayerStat `json:"playerStats,omitempty"`
	CreatedBy   string                `json:"createdBy,omitempty"`
	CreatedAt   string                `json:"createdAt,omitempty"`
	StartedAt   string                `json:"startedAt,omitempty"`
	CompletedAt string                `json:"completedAt,omitempty"`
}

// Completed tolerates both spellings present in persisted data.
func (m *Match) Completed() bool {
	return m.Status == StatusCompleted || m.Status == "complete"
}

func rosterKey(side Side) string {
	if side == SideB {
		return "teamB"
	}
	return "teamA"
}

// Roster returns the ordered player list for a side: registration order,
// captain first when one was synthesized.
func (m *Match) Roster(side Side) []Player {
	if m.Players == nil {
		return nil
	}
	return m.Players[rosterKey(side)]
}

func (m *Match) Team(side Side) TeamRef {
	if side == SideB {
		return m.TeamB
	}
	return m.TeamA
}

func (m *Match) TeamName(side Side) string {
	return m.Team(side).Name()
}

// PlayerName resolves a player id against both rosters, falling back to the
// id itself for players no roster knows.
func (m *Match) PlayerName(id string) string {
	for _, side := range []Side{SideA, SideB} {
		for _, p := range m.Roster(side) {
			if p.ID == id {
				return p.Name
			}
		}
	}
	return id
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
