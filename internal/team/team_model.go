// team/model.go
package team

import (
	"time"

	"github.com/KiranBagal-17/gully/internal/match"
)

// Team is a saved squad. Its roster feeds the toss when a match between two
// registered teams goes live.
type Team struct {
	ID          string         `json:"-"`
	Name        string         `json:"name"`
	CaptainName string         `json:"captainName,omitempty"`
	Players     []match.Player `json:"players,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
}

// RosterInput converts the saved squad into the shape the toss expects.
func (t *Team) RosterInput() match.RosterInput {
	return match.RosterInput{
		ID:          t.ID,
		TeamName:    t.Name,
		CaptainName: t.CaptainName,
		Players:     t.Players,
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
