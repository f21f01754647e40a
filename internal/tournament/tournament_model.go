package tournament

import (
	"time"

	"github.com/KiranBagal-17/gully/internal/match"
)

// Tournament is the stored tournament document.
type Tournament struct {
	ID          string `json:"-"`
	Name        string `json:"name,omitempty"`
	OrganizerID string `json:"organizerId,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	BallType    string `json:"ballType,omitempty"`
	PitchType   string `json:"pitchType,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Overs       int    `json:"overs,omitempty"`

	// PointsTable is replaced wholesale on every recomputation and kept in
	// standings order.
	PointsTable []PointsTableEntry `json:"pointsTable,omitempty"`

	KnockoutStage match.Stage `json:"knockoutStage,omitempty"`
	QuarterFinals []string    `json:"quarterFinals,omitempty"`
	SemiFinals    []string    `json:"semiFinals,omitempty"`
	FinalMatch    string      `json:"finalMatch,omitempty"`
	Champion      string      `json:"champion,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
}

// PointsTableEntry is one team's standings row. Overs are fractional
// (balls/6), net run rate is rounded to three decimals.
type PointsTableEntry struct {
	TeamName     string  `json:"teamName"`
	Played       int     `json:"played"`
	Won          int     `json:"won"`
	Lost         int     `json:"lost"`
	Tied         int     `json:"tied"`
	Points       int     `json:"points"`
	RunsScored   int     `json:"runsScored"`
	OversFaced   float64 `json:"oversFaced"`
	RunsConceded int     `json:"runsConceded"`
	OversBowled  float64 `json:"oversBowled"`
	NetRunRate   float64 `json:"nrr"`
}

// PlayerAggregate is one player's totals across a tournament.
type PlayerAggregate struct {
	PlayerID     string  `json:"playerId"`
	Name         string  `json:"name"`
	Team         string  `json:"team,omitempty"`
	Matches      int     `json:"matches"`
	Runs         int     `json:"runs"`
	BallsFaced   int     `json:"ballsFaced"`
	Fours        int     `json:"fours"`
	Sixes        int     `json:"sixes"`
	StrikeRate   float64 `json:"strikeRate"`
	Wickets      int     `json:"wickets"`
	RunsConceded int     `json:"runsConceded"`
	OversBowled  string  `json:"oversBowled"`
	Economy      float64 `json:"economy"`
}

// Leaderboard lists the tournament's leading batters and bowlers.
type Leaderboard struct {
	TopBatters []PlayerAggregate `json:"topBatters"`
	TopBowlers []PlayerAggregate `json:"topBowlers"`
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
