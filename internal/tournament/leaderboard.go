package tournament

import (
	"context"
	"sort"
	"strconv"

	"github.com/KiranBagal-17/gully/internal/match"
)

const leaderboardSize = 10

// Leaderboard aggregates the per-match player ledgers of every completed
// tournament match. Names and teams are resolved from the match rosters;
// players no roster knows keep their id.
func (s *Service) Leaderboard(ctx context.Context, id string) (*Leaderboard, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ms, err := s.matches.GetTournamentMatches(ctx, t.ID)
	if err != nil {
		return nil, err
	}

	totals := map[string]*PlayerAggregate{}
	for _, m := range ms {
		if !m.Completed() {
			continue
		}
		for pid, stat := range m.PlayerStats {
			agg, ok := totals[pid]
			if !ok {
				agg = &PlayerAggregate{
					PlayerID: pid,
					Name:     m.PlayerName(pid),
					Team:     playerTeam(m, pid),
				}
				totals[pid] = agg
			}
			agg.Matches++
			agg.Runs += stat.Runs
			agg.BallsFaced += stat.BallsFaced
			agg.Fours += stat.Fours
			agg.Sixes += stat.Sixes
			agg.Wickets += stat.Wickets
			agg.RunsConceded += stat.RunsConceded
			agg.OversBowled = oversNotation(oversBalls(agg.OversBowled) + stat.OversBalls)
		}
	}

	all := make([]PlayerAggregate, 0, len(totals))
	for _, agg := range totals {
		if agg.BallsFaced > 0 {
			agg.StrikeRate = round3(float64(agg.Runs) / float64(agg.BallsFaced) * 100)
		}
		if balls := oversBalls(agg.OversBowled); balls > 0 {
			agg.Economy = round3(float64(agg.RunsConceded) / (float64(balls) / 6))
		}
		all = append(all, *agg)
	}

	batters := append([]PlayerAggregate(nil), all...)
	sort.SliceStable(batters, func(i, j int) bool { return batters[i].Runs > batters[j].Runs })
	bowlers := append([]PlayerAggregate(nil), all...)
	sort.SliceStable(bowlers, func(i, j int) bool { return bowlers[i].Wickets > bowlers[j].Wickets })

	return &Leaderboard{
		TopBatters: top(batters, leaderboardSize),
		TopBowlers: top(bowlers, leaderboardSize),
	}, nil
}

func top(entries []PlayerAggregate, n int) []PlayerAggregate {
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func playerTeam(m *match.Match, pid string) string {
	for _, side := range []match.Side{match.SideA, match.SideB} {
		for _, p := range m.Roster(side) {
			if p.ID == pid {
				return m.TeamName(side)
			}
		}
	}
	return ""
}

// oversNotation renders a balls count as "X.Y"; oversBalls parses it back.
// The aggregate stores the notation so API consumers read it directly.
func oversNotation(balls int) string {
	return strconv.Itoa(balls/6) + "." + strconv.Itoa(balls%6)
}

func oversBalls(notation string) int {
	if notation == "" {
		return 0
	}
	whole, frac := notation, "0"
	for i := 0; i < len(notation); i++ {
		if notation[i] == '.' {
			whole, frac = notation[:i], notation[i+1:]
			break
		}
	}
	w, _ := strconv.Atoi(whole)
	f, _ := strconv.Atoi(frac)
	return w*6 + f
}
