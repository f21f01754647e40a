package tournament

import (
	"context"
	"math"
	"sort"

	"github.com/KiranBagal-17/gully/internal/match"
)

// BuildPointsTable computes standings from completed matches. A win is two
// points, a tie one each, a loss none. Net run rate is run rate scored minus
// run rate conceded over fractional overs (balls divided by six), rounded to
// three decimals; a side that never faced or bowled a ball contributes zero
// to the corresponding rate. Matches missing either team name are skipped.
func BuildPointsTable(matches []*match.Match) []PointsTableEntry {
	rows := map[string]*PointsTableEntry{}
	row := func(name string) *PointsTableEntry {
		r, ok := rows[name]
		if !ok {
			r = &PointsTableEntry{TeamName: name}
			rows[name] = r
		}
		return r
	}

	for _, m := range matches {
		if !m.Completed() {
			continue
		}
		nameA, nameB := m.TeamA.Name(), m.TeamB.Name()
		if nameA == "" || nameB == "" {
			continue
		}
		scoreA := finalScore(m, match.SideA)
		scoreB := finalScore(m, match.SideB)

		a, b := row(nameA), row(nameB)
		a.Played++
		b.Played++
		a.RunsScored += scoreA.Runs
		a.OversFaced += float64(scoreA.Balls) / 6
		a.RunsConceded += scoreB.Runs
		a.OversBowled += float64(scoreB.Balls) / 6
		b.RunsScored += scoreB.Runs
		b.OversFaced += float64(scoreB.Balls) / 6
		b.RunsConceded += scoreA.Runs
		b.OversBowled += float64(scoreA.Balls) / 6

		switch {
		case m.IsTie || scoreA.Runs == scoreB.Runs:
			a.Tied++
			b.Tied++
			a.Points++
			b.Points++
		case scoreA.Runs > scoreB.Runs:
			a.Won++
			a.Points += 2
			b.Lost++
		default:
			b.Won++
			b.Points += 2
			a.Lost++
		}
	}

	out := make([]PointsTableEntry, 0, len(rows))
	for _, r := range rows {
		var scored, conceded float64
		if r.OversFaced > 0 {
			scored = float64(r.RunsScored) / r.OversFaced
		}
		if r.OversBowled > 0 {
			conceded = float64(r.RunsConceded) / r.OversBowled
		}
		r.NetRunRate = round3(scored - conceded)
		r.OversFaced = round3(r.OversFaced)
		r.OversBowled = round3(r.OversBowled)
		out = append(out, *r)
	}
	sortStandings(out)
	return out
}

// finalScore resolves a side's innings total from whatever shape the match
// carries: the live sub-document when present, else the denormalized
// top-level score, else the score folded into the team object.
func finalScore(m *match.Match, side match.Side) match.Score {
	if m.Live != nil {
		if side == match.SideB {
			return m.Live.ScoreB
		}
		return m.Live.ScoreA
	}
	top := m.ScoreA
	if side == match.SideB {
		top = m.ScoreB
	}
	if top != nil {
		return *top
	}
	if sc, ok := m.Team(side).Snapshot(); ok {
		return sc
	}
	return match.Score{}
}

func sortStandings(entries []PointsTableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].NetRunRate > entries[j].NetRunRate
	})
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// GeneratePointsTable recomputes the standings from the tournament's
// completed group-stage matches and replaces the stored table wholesale.
func (s *Service) GeneratePointsTable(ctx context.Context, id string) ([]PointsTableEntry, error) {
	t, err := s.repo.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTournamentNotFound
	}
	ms, err := s.matches.GetTournamentMatches(ctx, id)
	if err != nil {
		return nil, err
	}
	group := ms[:0:0]
	for _, m := range ms {
		if m.Stage == "" || m.Stage == match.StageGroup {
			group = append(group, m)
		}
	}
	entries := BuildPointsTable(group)
	if err := s.repo.PatchTournament(ctx, id, map[string]interface{}{"pointsTable": entries}); err != nil {
		return nil, err
	}
	return entries, nil
}
