package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KiranBagal-17/gully/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *StoreMatchRepository) {
	t.Helper()
	st := store.NewMemoryStore()
	repo := NewStoreMatchRepository(st)
	return NewEngine(repo), repo
}

func scheduleMatch(t *testing.T, repo *StoreMatchRepository, overs int) string {
	t.Helper()
	id, err := repo.CreateMatch(context.Background(), &Match{
		Status: StatusUpcoming,
		TeamA:  TeamRef{TeamName: "Tigers"},
		TeamB:  TeamRef{TeamName: "Lions"},
		Overs:  OverCount(overs),
	})
	require.NoError(t, err)
	return id
}

func testToss() TossRequest {
	return TossRequest{
		TossWonBy: SideA,
		ElectedTo: "Bat",
		TeamA: RosterInput{
			TeamName: "Tigers",
			Players: []Player{
				{ID: "t1", Name: "Tushar"}, {ID: "t2", Name: "Tanay"},
				{ID: "t3", Name: "Tejas"}, {ID: "t4", Name: "Tarun"},
			},
		},
		TeamB: RosterInput{
			TeamName: "Lions",
			Players: []Player{
				{ID: "l1", Name: "Lalit"}, {ID: "l2", Name: "Lakshya"},
				{ID: "l3", Name: "Lokesh"}, {ID: "l4", Name: "Laksh"},
			},
		},
	}
}

func startLiveMatch(t *testing.T, e *Engine, repo *StoreMatchRepository, overs int) string {
	t.Helper()
	ctx := context.Background()
	id := scheduleMatch(t, repo, overs)
	_, err := e.ResolveToss(ctx, id, testToss())
	require.NoError(t, err)
	require.NoError(t, e.SelectBowler(ctx, id, "l1"))
	return id
}

func TestResolveTossElectedToBat(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)

	m, err := e.ResolveToss(ctx, id, testToss())
	require.NoError(t, err)

	assert.Equal(t, StatusLive, m.Status)
	assert.Equal(t, SideA, m.BattingFirst)
	assert.Equal(t, "Tigers", m.TossWinner)
	assert.Equal(t, "Bat", m.ElectedTo)
	require.NotNil(t, m.Live)
	assert.Equal(t, SideA, m.Live.CurrentInnings)
	assert.Equal(t, "t1", m.Live.Striker)
	assert.Equal(t, "t2", m.Live.NonStriker)
	assert.Empty(t, m.Live.CurrentBowler)
	assert.Nil(t, m.Live.Target)
	assert.Equal(t, Score{}, m.Live.ScoreA)
}

func TestResolveTossElectedToBowl(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)

	req := testToss()
	req.ElectedTo = "bowl"
	m, err := e.ResolveToss(ctx, id, req)
	require.NoError(t, err)

	assert.Equal(t, SideB, m.BattingFirst)
	assert.Equal(t, SideB, m.Live.CurrentInnings)
	assert.Equal(t, "l1", m.Live.Striker)
	assert.Equal(t, "l2", m.Live.NonStriker)
}

func TestResolveTossSynthesizesCaptain(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)

	req := testToss()
	req.TeamA.CaptainName = "Arun"
	m, err := e.ResolveToss(ctx, id, req)
	require.NoError(t, err)

	roster := m.Roster(SideA)
	require.NotEmpty(t, roster)
	assert.Equal(t, "Arun", roster[0].Name)
	assert.Equal(t, "captain-a", roster[0].ID)
	assert.Equal(t, "Captain", roster[0].Role)
	assert.Equal(t, "captain-a", m.Live.Striker, "synthesized captain opens the batting")
	assert.Len(t, roster, 5)
}

func TestResolveTossKeepsNamedCaptain(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)

	req := testToss()
	req.TeamA.CaptainName = "tushar" // already rostered, case-insensitive
	m, err := e.ResolveToss(ctx, id, req)
	require.NoError(t, err)
	assert.Len(t, m.Roster(SideA), 4)
	assert.Equal(t, "t1", m.Live.Striker)
}

func TestResolveTossRejectsRerun(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)

	_, err := e.ResolveToss(ctx, id, testToss())
	require.NoError(t, err)
	_, err = e.ResolveToss(ctx, id, testToss())
	assert.ErrorIs(t, err, ErrMatchAlreadyLive)
}

func TestResolveTossValidation(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	_, err := e.ResolveToss(ctx, "missing", testToss())
	assert.ErrorIs(t, err, ErrMatchNotFound)

	id := scheduleMatch(t, repo, 2)
	req := testToss()
	req.TossWonBy = "C"
	_, err = e.ResolveToss(ctx, id, req)
	assert.ErrorIs(t, err, ErrInvalidSide)

	req = testToss()
	req.ElectedTo = "field"
	_, err = e.ResolveToss(ctx, id, req)
	assert.ErrorIs(t, err, ErrInvalidElection)
}

type stubRosterSource map[string]RosterInput

func (s stubRosterSource) Roster(_ context.Context, teamID string) (*RosterInput, error) {
	in, ok := s[teamID]
	if !ok {
		return nil, nil
	}
	return &in, nil
}

func TestResolveTossFromSavedRoster(t *testing.T) {
	st := store.NewMemoryStore()
	repo := NewStoreMatchRepository(st)
	saved := testToss()
	saved.TeamA.ID = "team-tigers"
	e := NewEngineWithRosters(repo, stubRosterSource{"team-tigers": saved.TeamA})
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)

	req := testToss()
	req.TeamA = RosterInput{ID: "team-tigers"}
	m, err := e.ResolveToss(ctx, id, req)
	require.NoError(t, err)

	assert.Equal(t, "Tigers", m.TeamA.Name(), "team name comes from the saved squad")
	assert.Len(t, m.Roster(SideA), 4)
	assert.Equal(t, "t1", m.Live.Striker)

	// An unknown id just leaves the registration empty, which the roster
	// size check then rejects.
	id2 := scheduleMatch(t, repo, 2)
	req = testToss()
	req.TeamA = RosterInput{ID: "nobody"}
	_, err = e.ResolveToss(ctx, id2, req)
	assert.ErrorIs(t, err, ErrRosterTooSmall)
}

func TestLegalDeliveryScoresAndRotatesStrike(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	out, err := e.RecordLegalDelivery(ctx, id, 4)
	require.NoError(t, err)
	assert.Equal(t, Score{Runs: 4, Balls: 1}, out.Score)
	assert.False(t, out.OverComplete)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t1", m.Live.Striker, "even runs keep the striker")
	assert.Equal(t, 1, m.Live.CurrentOverBalls)
	require.NotNil(t, m.Live.LastBall)
	assert.Equal(t, BallLegal, m.Live.LastBall.Type)

	_, err = e.RecordLegalDelivery(ctx, id, 1)
	require.NoError(t, err)
	m, err = repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t2", m.Live.Striker, "odd runs rotate strike")
	assert.Equal(t, "t1", m.Live.NonStriker)
	assert.Equal(t, Score{Runs: 5, Balls: 2}, m.Live.ScoreA)
}

func TestLegalDeliveryRejectsBadRuns(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	_, err := e.RecordLegalDelivery(ctx, id, 7)
	assert.ErrorIs(t, err, ErrInvalidRuns)
	_, err = e.RecordLegalDelivery(ctx, id, -1)
	assert.ErrorIs(t, err, ErrInvalidRuns)
}

func TestDeliveryRequiresBowlerAndStriker(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := scheduleMatch(t, repo, 2)
	_, err := e.ResolveToss(ctx, id, testToss())
	require.NoError(t, err)

	_, err = e.RecordLegalDelivery(ctx, id, 1)
	assert.ErrorIs(t, err, ErrNoBowler)

	require.NoError(t, e.SelectBowler(ctx, id, "l1"))
	require.NoError(t, repo.PatchLive(ctx, id, map[string]interface{}{"striker": nil}))
	_, err = e.RecordLegalDelivery(ctx, id, 1)
	assert.ErrorIs(t, err, ErrNoStriker)
}

func TestOverCompletionClearsBowler(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	var out *DeliveryOutcome
	var err error
	for i := 0; i < 6; i++ {
		out, err = e.RecordLegalDelivery(ctx, id, 0)
		require.NoError(t, err)
	}
	assert.True(t, out.OverComplete)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, m.Live.CurrentBowler)
	assert.Equal(t, 0, m.Live.CurrentOverBalls)

	_, err = e.RecordLegalDelivery(ctx, id, 0)
	assert.ErrorIs(t, err, ErrNoBowler, "next over needs a fresh bowler")
}

func TestWicket(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	out, err := e.RecordWicket(ctx, id, WicketBowled)
	require.NoError(t, err)
	assert.Equal(t, Score{Wickets: 1, Balls: 1}, out.Score)
	assert.True(t, out.NeedNewBatter)

	ids := make([]string, 0, len(out.AvailableBatters))
	for _, p := range out.AvailableBatters {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"t3", "t4"}, ids, "crease players are excluded")

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Live.PlayerStats["l1"].Wickets)
	assert.Equal(t, 1, m.Live.PlayerStats["t1"].BallsFaced)

	require.NoError(t, e.SelectNextBatter(ctx, id, "t3"))
	m, err = repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t3", m.Live.Striker)
	assert.Equal(t, "t2", m.Live.NonStriker)
}

func TestWicketRejectsUnknownType(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	_, err := e.RecordWicket(ctx, id, "retired")
	assert.ErrorIs(t, err, ErrInvalidWicketType)
}

func TestExtrasScoreWithoutBalls(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	out, err := e.RecordExtra(ctx, id, ExtraWide, 0)
	require.NoError(t, err)
	assert.Equal(t, Score{Runs: 1}, out.Score, "wide defaults to one run")
	assert.Equal(t, BallWide, out.Ball.Type)

	out, err = e.RecordExtra(ctx, id, ExtraNoBall, 2)
	require.NoError(t, err)
	assert.Equal(t, Score{Runs: 3}, out.Score)
	assert.Equal(t, BallNoBall, out.Ball.Type)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Live.ScoreA.Balls, "extras never advance the ball count")
	assert.Equal(t, 0, m.Live.CurrentOverBalls)
	assert.Equal(t, 3, m.Live.PlayerStats["l1"].RunsConceded)
	assert.Equal(t, 0, m.Live.PlayerStats["l1"].OversBalls)
}

func TestPlayerStatLedger(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	_, err := e.RecordLegalDelivery(ctx, id, 4)
	require.NoError(t, err)
	_, err = e.RecordLegalDelivery(ctx, id, 6)
	require.NoError(t, err)
	_, err = e.RecordLegalDelivery(ctx, id, 2)
	require.NoError(t, err)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	striker := m.Live.PlayerStats["t1"]
	assert.Equal(t, 12, striker.Runs)
	assert.Equal(t, 3, striker.Balls)
	assert.Equal(t, 3, striker.BallsFaced)
	assert.Equal(t, 1, striker.Fours)
	assert.Equal(t, 1, striker.Sixes)

	bowler := m.Live.PlayerStats["l1"]
	assert.Equal(t, 3, bowler.OversBalls)
	assert.Equal(t, 12, bowler.RunsConceded)
}

func playOutFirstInnings(t *testing.T, e *Engine, id string, runsPerBall int) *DeliveryOutcome {
	t.Helper()
	ctx := context.Background()
	var out *DeliveryOutcome
	var err error
	for i := 0; i < 6; i++ {
		out, err = e.RecordLegalDelivery(ctx, id, runsPerBall)
		require.NoError(t, err)
	}
	return out
}

func TestFirstInningsClosesByOvers(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 1)

	out := playOutFirstInnings(t, e, id, 2)
	assert.True(t, out.FirstInningsOver)
	assert.False(t, out.MatchOver, "first innings end awaits confirmation")
	require.NotNil(t, out.Summary)
	assert.Equal(t, "Tigers", out.Summary.BattingTeam)
	assert.Equal(t, "Lions", out.Summary.BowlingTeam)
	assert.Equal(t, 12, out.Summary.Runs)
	assert.Equal(t, "1.0", out.Summary.Overs)
	assert.Equal(t, 13, out.Summary.Target)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, m.Live.Target, "target is locked only when the chase starts")
}

func TestClosedFirstInningsBlocksScoring(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 1)
	playOutFirstInnings(t, e, id, 2) // 12/0, overs exhausted

	// The over wrap cleared the bowler; selecting a fresh one must not
	// reopen the innings.
	require.NoError(t, e.SelectBowler(ctx, id, "l2"))
	_, err := e.RecordLegalDelivery(ctx, id, 6)
	assert.ErrorIs(t, err, ErrFirstInningsOver)
	_, err = e.RecordWicket(ctx, id, WicketBowled)
	assert.ErrorIs(t, err, ErrFirstInningsOver)
	_, err = e.RecordExtra(ctx, id, ExtraWide, 0)
	assert.ErrorIs(t, err, ErrFirstInningsOver)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Score{Runs: 12, Balls: 6}, m.Live.ScoreA, "closed innings stays frozen")

	// Confirming the chase unblocks scoring.
	_, err = e.StartSecondInnings(ctx, id)
	require.NoError(t, err)
	require.NoError(t, e.SelectBowler(ctx, id, "t1"))
	_, err = e.RecordLegalDelivery(ctx, id, 1)
	require.NoError(t, err)
}

func TestFirstInningsClosesByWickets(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 20)
	require.NoError(t, repo.PatchLive(ctx, id, map[string]interface{}{"scoreA/wickets": 9}))

	out, err := e.RecordWicket(ctx, id, WicketCaught)
	require.NoError(t, err)
	assert.True(t, out.FirstInningsOver)
	assert.False(t, out.NeedNewBatter, "no batter is owed once the innings is over")
	require.NotNil(t, out.Summary)
	assert.Equal(t, 10, out.Summary.Wickets)

	_, err = e.RecordLegalDelivery(ctx, id, 1)
	assert.ErrorIs(t, err, ErrFirstInningsOver)
}

func TestChaseEndsWhenAllOut(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startChase(t, e, repo, 2) // Tigers 12, target 13
	require.NoError(t, repo.PatchLive(ctx, id, map[string]interface{}{"scoreB/wickets": 9}))

	out, err := e.RecordWicket(ctx, id, WicketBowled)
	require.NoError(t, err)
	assert.True(t, out.MatchOver)
	assert.False(t, out.NeedNewBatter)
	require.NotNil(t, out.Result)
	assert.Equal(t, "Tigers", out.Result.Winner)
	assert.Equal(t, "Tigers won by 12 runs", out.Result.Summary)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, m.Status)
	assert.Nil(t, m.Live)
}

func TestStartSecondInnings(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 1)

	_, err := e.StartSecondInnings(ctx, id)
	assert.ErrorIs(t, err, ErrFirstInningsNotOver)

	playOutFirstInnings(t, e, id, 2)
	live, err := e.StartSecondInnings(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, SideB, live.CurrentInnings)
	require.NotNil(t, live.Target)
	assert.Equal(t, 13, *live.Target)
	assert.Equal(t, "l1", live.Striker)
	assert.Equal(t, "l2", live.NonStriker)
	assert.Empty(t, live.CurrentBowler)
	assert.Equal(t, 0, live.CurrentOverBalls)
	assert.Equal(t, Score{}, live.ScoreB)

	_, err = e.StartSecondInnings(ctx, id)
	assert.ErrorIs(t, err, ErrSecondInningsStarted)
}

func startChase(t *testing.T, e *Engine, repo *StoreMatchRepository, firstInningsRunsPerBall int) string {
	t.Helper()
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 1)
	playOutFirstInnings(t, e, id, firstInningsRunsPerBall)
	_, err := e.StartSecondInnings(ctx, id)
	require.NoError(t, err)
	require.NoError(t, e.SelectBowler(ctx, id, "t1"))
	return id
}

func TestChaseWinFinalizesImmediately(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startChase(t, e, repo, 0) // target 1

	out, err := e.RecordLegalDelivery(ctx, id, 4)
	require.NoError(t, err)
	assert.True(t, out.MatchOver)
	require.NotNil(t, out.Result)
	assert.Equal(t, "Lions", out.Result.Winner)
	assert.False(t, out.Result.IsTie)
	assert.Equal(t, "Lions won by 10 wickets", out.Result.Summary)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, m.Status)
	assert.Nil(t, m.Live, "live state is cleared at finalization")
	assert.Equal(t, "Lions", m.Winner)
	require.NotNil(t, m.ScoreB)
	assert.Equal(t, Score{Runs: 4, Balls: 1}, *m.ScoreB)

	snap, ok := m.TeamB.Snapshot()
	require.True(t, ok, "final score folds into the team object")
	assert.Equal(t, 4, snap.Runs)
}

func TestChaseWinByExtra(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startChase(t, e, repo, 0) // target 1

	out, err := e.RecordExtra(ctx, id, ExtraWide, 0)
	require.NoError(t, err)
	assert.True(t, out.MatchOver, "an extra can complete a chase")
	assert.Equal(t, "Lions", out.Result.Winner)
}

func TestDefendingWinByRuns(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startChase(t, e, repo, 2) // Tigers 12, target 13

	var out *DeliveryOutcome
	var err error
	for i := 0; i < 6; i++ {
		out, err = e.RecordLegalDelivery(ctx, id, 1)
		require.NoError(t, err)
	}
	assert.True(t, out.MatchOver)
	assert.Equal(t, "Tigers", out.Result.Winner)
	assert.Equal(t, "Tigers won by 6 runs", out.Result.Summary)
}

func TestTiedMatch(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startChase(t, e, repo, 1) // Tigers 6, target 7

	var out *DeliveryOutcome
	var err error
	for i := 0; i < 6; i++ {
		out, err = e.RecordLegalDelivery(ctx, id, 1)
		require.NoError(t, err)
	}
	assert.True(t, out.MatchOver)
	require.NotNil(t, out.Result)
	assert.True(t, out.Result.IsTie)
	assert.Empty(t, out.Result.Winner)
	assert.Equal(t, "Match tied", out.Result.Summary)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.IsTie)
	assert.Empty(t, m.Winner, "a tie stores no winner")
	assert.Equal(t, StatusCompleted, m.Status)
}

func TestFinalizeFoldsPlayerStats(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startChase(t, e, repo, 0)

	_, err := e.RecordLegalDelivery(ctx, id, 4)
	require.NoError(t, err)

	m, err := repo.GetMatchByID(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, m.PlayerStats)
	assert.Equal(t, 4, m.PlayerStats["l1"].Runs)

	_, err = e.EndMatch(ctx, id)
	assert.ErrorIs(t, err, ErrMatchCompleted, "finalize is not repeatable")
}

func TestLastBalls(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()
	id := startLiveMatch(t, e, repo, 2)

	for i := 0; i <= 5; i++ {
		_, err := e.RecordLegalDelivery(ctx, id, i%3)
		require.NoError(t, err)
	}
	require.NoError(t, e.SelectBowler(ctx, id, "l2"))
	_, err := e.RecordExtra(ctx, id, ExtraWide, 0)
	require.NoError(t, err)

	balls, err := e.LastBalls(ctx, id, 3)
	require.NoError(t, err)
	require.Len(t, balls, 3)
	assert.Equal(t, BallWide, balls[2].Type, "newest event comes last")
	assert.Equal(t, 2, balls[1].Runs)

	all, err := e.LastBalls(ctx, id, 50)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestOperationsRejectNonLiveMatch(t *testing.T) {
	e, repo := newTestEngine(t)
	ctx := context.Background()

	_, err := e.RecordLegalDelivery(ctx, "missing", 1)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	id := scheduleMatch(t, repo, 2)
	_, err = e.RecordLegalDelivery(ctx, id, 1)
	assert.ErrorIs(t, err, ErrMatchNotLive)
	_, err = e.RecordWicket(ctx, id, WicketBowled)
	assert.ErrorIs(t, err, ErrMatchNotLive)
	_, err = e.StartSecondInnings(ctx, id)
	assert.ErrorIs(t, err, ErrMatchNotLive)
}
