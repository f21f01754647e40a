package tournament

import (
	"context"
	"errors"

	"github.com/KiranBagal-17/gully/internal/match"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrPointsTableTooSmall = errors.New("points table needs at least eight teams")
	ErrStageAlreadyCreated = errors.New("knockout stage already created")
	ErrStageIncomplete     = errors.New("previous stage is not complete")
	ErrFinalNotCompleted   = errors.New("final is not completed")
	ErrFinalTied           = errors.New("final ended in a tie")
)

// Service runs tournament-level computations: standings, knockout
// progression and leaderboards.
type Service struct {
	repo    TournamentRepository
	matches match.MatchRepository
}

func NewService(repo TournamentRepository, matches match.MatchRepository) *Service {
	return &Service{repo: repo, matches: matches}
}

// GenerateQuarterFinals pairs the top eight standings rows consecutively
// (1v2, 3v4, 5v6, 7v8) into four fixtures. It refuses to run twice or on a
// table with fewer than eight teams.
func (s *Service) GenerateQuarterFinals(ctx context.Context, id string) ([]string, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(t.QuarterFinals) > 0 {
		return nil, ErrStageAlreadyCreated
	}
	if len(t.PointsTable) < 8 {
		return nil, ErrPointsTableTooSmall
	}
	top := append([]PointsTableEntry(nil), t.PointsTable...)
	sortStandings(top)
	top = top[:8]

	ids := make([]string, 0, 4)
	for i := 0; i < 8; i += 2 {
		fixtureID, err := s.createFixture(ctx, t, match.StageQuarterFinal, top[i].TeamName, top[i+1].TeamName)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fixtureID)
	}
	err = s.repo.PatchTournament(ctx, id, map[string]interface{}{
		"quarterFinals": ids,
		"knockoutStage": match.StageQuarterFinal,
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GenerateSemiFinals pairs the four quarter-final winners in fixture order.
// All quarter-finals must be completed with a winner; a tied knockout match
// blocks progression until it is resolved.
func (s *Service) GenerateSemiFinals(ctx context.Context, id string) ([]string, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(t.SemiFinals) > 0 {
		return nil, ErrStageAlreadyCreated
	}
	winners, err := s.stageWinners(ctx, t.QuarterFinals)
	if err != nil {
		return nil, err
	}
	if len(winners) != 4 {
		return nil, ErrStageIncomplete
	}

	ids := make([]string, 0, 2)
	for i := 0; i < 4; i += 2 {
		fixtureID, err := s.createFixture(ctx, t, match.StageSemiFinal, winners[i], winners[i+1])
		if err != nil {
			return nil, err
		}
		ids = append(ids, fixtureID)
	}
	err = s.repo.PatchTournament(ctx, id, map[string]interface{}{
		"semiFinals":    ids,
		"knockoutStage": match.StageSemiFinal,
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GenerateFinal pairs the two semi-final winners.
func (s *Service) GenerateFinal(ctx context.Context, id string) (string, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if t.FinalMatch != "" {
		return "", ErrStageAlreadyCreated
	}
	winners, err := s.stageWinners(ctx, t.SemiFinals)
	if err != nil {
		return "", err
	}
	if len(winners) != 2 {
		return "", ErrStageIncomplete
	}

	fixtureID, err := s.createFixture(ctx, t, match.StageFinal, winners[0], winners[1])
	if err != nil {
		return "", err
	}
	err = s.repo.PatchTournament(ctx, id, map[string]interface{}{
		"finalMatch":    fixtureID,
		"knockoutStage": match.StageFinal,
	})
	if err != nil {
		return "", err
	}
	return fixtureID, nil
}

// AnnounceChampion records the final's winner as tournament champion.
func (s *Service) AnnounceChampion(ctx context.Context, id string) (string, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if t.FinalMatch == "" {
		return "", ErrStageIncomplete
	}
	final, err := s.matches.GetMatchByID(ctx, t.FinalMatch)
	if err != nil {
		return "", err
	}
	if final == nil || !final.Completed() {
		return "", ErrFinalNotCompleted
	}
	if final.Winner == "" {
		return "", ErrFinalTied
	}
	err = s.repo.PatchTournament(ctx, id, map[string]interface{}{"champion": final.Winner})
	if err != nil {
		return "", err
	}
	return final.Winner, nil
}

func (s *Service) load(ctx context.Context, id string) (*Tournament, error) {
	t, err := s.repo.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

// stageWinners collects winners of the given fixtures in fixture order,
// skipping none: any fixture that is missing, unfinished or tied yields a
// short list and the caller treats the stage as incomplete.
func (s *Service) stageWinners(ctx context.Context, fixtureIDs []string) ([]string, error) {
	winners := make([]string, 0, len(fixtureIDs))
	for _, fid := range fixtureIDs {
		m, err := s.matches.GetMatchByID(ctx, fid)
		if err != nil {
			return nil, err
		}
		if m == nil || !m.Completed() || m.Winner == "" {
			continue
		}
		winners = append(winners, m.Winner)
	}
	return winners, nil
}

func (s *Service) createFixture(ctx context.Context, t *Tournament, stage match.Stage, teamA, teamB string) (string, error) {
	m := &match.Match{
		TournamentID: t.ID,
		Stage:        stage,
		Status:       match.StatusUpcoming,
		TeamA:        match.TeamRef{TeamName: teamA},
		TeamB:        match.TeamRef{TeamName: teamB},
		Overs:        match.OverCount(t.Overs),
		BallType:     t.BallType,
		PitchType:    t.PitchType,
		Venue:        t.Venue,
		CreatedBy:    t.OrganizerID,
		CreatedAt:    nowISO(),
	}
	return s.matches.CreateMatch(ctx, m)
}
