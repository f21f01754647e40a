package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchNotLive         = errors.New("match is not live")
	ErrMatchCompleted       = errors.New("match is already completed")
	ErrMatchAlreadyLive     = errors.New("toss already resolved")
	ErrInvalidSide          = errors.New("side must be A or B")
	ErrInvalidElection      = errors.New("toss election must be Bat or Bowl")
	ErrInvalidRuns          = errors.New("runs must be between 0 and 6")
	ErrInvalidWicketType    = errors.New("unknown wicket type")
	ErrInvalidExtra         = errors.New("extra must be Wide or No-ball")
	ErrNoStriker            = errors.New("striker not selected")
	ErrNoBowler             = errors.New("bowler not selected")
	ErrPlayerNotInRoster    = errors.New("player is not in the roster")
	ErrRosterTooSmall       = errors.New("roster needs at least two players")
	ErrFirstInningsNotOver  = errors.New("first innings is still in progress")
	ErrFirstInningsOver     = errors.New("first innings is over; start the second innings")
	ErrSecondInningsStarted = errors.New("second innings already started")
)

// Engine applies scoring operations to live matches. Every operation loads
// the match, validates, applies the state change and only then evaluates
// innings-end and match-end conditions on the post-application state.
type Engine struct {
	repo    MatchRepository
	rosters RosterSource
}

func NewEngine(repo MatchRepository) *Engine {
	return &Engine{repo: repo}
}

// NewEngineWithRosters lets the toss pull saved squads by team id, so a
// registered team can be named without restating its player list.
func NewEngineWithRosters(repo MatchRepository, rosters RosterSource) *Engine {
	return &Engine{repo: repo, rosters: rosters}
}

// RosterSource resolves a saved team's registration. A nil result means the
// id is unknown.
type RosterSource interface {
	Roster(ctx context.Context, teamID string) (*RosterInput, error)
}

// RosterInput carries one team's registration for the toss. A captain named
// here but absent from the player list is synthesized and prepended, so the
// captain always opens the batting by default.
type RosterInput struct {
	ID          string   `json:"id"`
	TeamName    string   `json:"teamName"`
	CaptainName string   `json:"captainName"`
	Players     []Player `json:"players"`
}

// TossRequest initializes a live match.
type TossRequest struct {
	TossWonBy Side        `json:"tossWonBy"`
	ElectedTo string      `json:"electedTo"`
	TeamA     RosterInput `json:"teamA"`
	TeamB     RosterInput `json:"teamB"`
	Overs     int         `json:"overs"`
}

// InningsSummary is handed to the operator when the first innings closes,
// pending explicit confirmation before the chase starts.
type InningsSummary struct {
	BattingTeam string `json:"battingTeam"`
	BowlingTeam string `json:"bowlingTeam"`
	Runs        int    `json:"runs"`
	Wickets     int    `json:"wickets"`
	Overs       string `json:"overs"`
	Target      int    `json:"target"`
}

// MatchResult is the settled outcome of a finalized match.
type MatchResult struct {
	Winner  string `json:"winner,omitempty"`
	IsTie   bool   `json:"isTie,omitempty"`
	Summary string `json:"summary"`
	ScoreA  Score  `json:"scoreA"`
	ScoreB  Score  `json:"scoreB"`
}

// DeliveryOutcome reports what a recorded delivery did to the match.
type DeliveryOutcome struct {
	Ball             BallEvent       `json:"ball"`
	Score            Score           `json:"score"`
	OverComplete     bool            `json:"overComplete,omitempty"`
	NeedNewBatter    bool            `json:"needNewBatter,omitempty"`
	AvailableBatters []Player        `json:"availableBatters,omitempty"`
	FirstInningsOver bool            `json:"firstInningsOver,omitempty"`
	Summary          *InningsSummary `json:"summary,omitempty"`
	MatchOver        bool            `json:"matchOver,omitempty"`
	Result           *MatchResult    `json:"result,omitempty"`
}

// ResolveToss records the toss, stores both rosters and opens the first
// innings with the batting side's first two players at the crease. Bowler
// selection is left to the operator.
func (e *Engine) ResolveToss(ctx context.Context, id string, req TossRequest) (*Match, error) {
	m, err := e.repo.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Completed() {
		return nil, ErrMatchCompleted
	}
	if m.Status == StatusLive || m.Live != nil {
		return nil, ErrMatchAlreadyLive
	}
	if req.TossWonBy != SideA && req.TossWonBy != SideB {
		return nil, ErrInvalidSide
	}
	var elected string
	switch strings.ToLower(strings.TrimSpace(req.ElectedTo)) {
	case "bat":
		elected = "Bat"
	case "bowl":
		elected = "Bowl"
	default:
		return nil, ErrInvalidElection
	}
	battingFirst := req.TossWonBy
	if elected == "Bowl" {
		battingFirst = req.TossWonBy.Other()
	}

	if err := e.resolveSavedRoster(ctx, &req.TeamA); err != nil {
		return nil, err
	}
	if err := e.resolveSavedRoster(ctx, &req.TeamB); err != nil {
		return nil, err
	}

	rosterA := buildRoster(req.TeamA, SideA)
	rosterB := buildRoster(req.TeamB, SideB)
	batting := rosterA
	if battingFirst == SideB {
		batting = rosterB
	}
	if len(batting) < 2 {
		return nil, ErrRosterTooSmall
	}

	tossWinner := req.TeamA.TeamName
	if req.TossWonBy == SideB {
		tossWinner = req.TeamB.TeamName
	}
	live := LiveState{
		CurrentInnings:   battingFirst,
		Striker:          batting[0].ID,
		NonStriker:       batting[1].ID,
		CurrentOverBalls: 0,
	}
	fields := map[string]interface{}{
		"status":       StatusLive,
		"tossWonBy":    req.TossWonBy,
		"tossWinner":   tossWinner,
		"electedTo":    elected,
		"battingFirst": battingFirst,
		"players":      map[string][]Player{"teamA": rosterA, "teamB": rosterB},
		"startedAt":    nowISO(),
		"live":         live,
	}
	if req.Overs > 0 {
		fields["overs"] = req.Overs
	}
	if req.TeamA.TeamName != "" {
		fields["teamA"] = TeamRef{ID: req.TeamA.ID, TeamName: req.TeamA.TeamName}
	}
	if req.TeamB.TeamName != "" {
		fields["teamB"] = TeamRef{ID: req.TeamB.ID, TeamName: req.TeamB.TeamName}
	}
	if err := e.repo.PatchMatch(ctx, id, fields); err != nil {
		return nil, err
	}
	for _, pid := range []string{live.Striker, live.NonStriker} {
		if err := e.repo.EnsurePlayerStat(ctx, id, pid); err != nil {
			return nil, err
		}
	}
	return e.repo.GetMatchByID(ctx, id)
}

// resolveSavedRoster fills an empty registration from the saved team named by
// its id. Fields sent explicitly win over the saved ones.
func (e *Engine) resolveSavedRoster(ctx context.Context, in *RosterInput) error {
	if e.rosters == nil || in.ID == "" || len(in.Players) > 0 {
		return nil
	}
	saved, err := e.rosters.Roster(ctx, in.ID)
	if err != nil || saved == nil {
		return err
	}
	in.Players = saved.Players
	if in.TeamName == "" {
		in.TeamName = saved.TeamName
	}
	if in.CaptainName == "" {
		in.CaptainName = saved.CaptainName
	}
	return nil
}

func buildRoster(in RosterInput, side Side) []Player {
	players := append([]Player(nil), in.Players...)
	captain := strings.TrimSpace(in.CaptainName)
	if captain == "" {
		return players
	}
	for _, p := range players {
		if strings.EqualFold(strings.TrimSpace(p.Name), captain) {
			return players
		}
	}
	synth := Player{ID: "captain-" + strings.ToLower(string(side)), Name: captain, Role: "Captain"}
	return append([]Player{synth}, players...)
}

// SelectStriker puts a batting-side player on strike.
func (e *Engine) SelectStriker(ctx context.Context, id, playerID string) error {
	m, err := e.loadLive(ctx, id)
	if err != nil {
		return err
	}
	if !inRoster(m, m.Live.CurrentInnings, playerID) {
		return ErrPlayerNotInRoster
	}
	if err := e.repo.PatchLive(ctx, id, map[string]interface{}{"striker": playerID}); err != nil {
		return err
	}
	return e.repo.EnsurePlayerStat(ctx, id, playerID)
}

// SelectBowler assigns the bowler for the current over.
func (e *Engine) SelectBowler(ctx context.Context, id, playerID string) error {
	m, err := e.loadLive(ctx, id)
	if err != nil {
		return err
	}
	if !inRoster(m, m.Live.CurrentInnings.Other(), playerID) {
		return ErrPlayerNotInRoster
	}
	if err := e.repo.PatchLive(ctx, id, map[string]interface{}{"currentBowler": playerID}); err != nil {
		return err
	}
	return e.repo.EnsurePlayerStat(ctx, id, playerID)
}

// SelectNextBatter replaces the dismissed striker. When the non-striker end
// is also empty the first available roster player fills it.
func (e *Engine) SelectNextBatter(ctx context.Context, id, playerID string) error {
	m, err := e.loadLive(ctx, id)
	if err != nil {
		return err
	}
	if !inRoster(m, m.Live.CurrentInnings, playerID) {
		return ErrPlayerNotInRoster
	}
	fields := map[string]interface{}{"striker": playerID}
	if m.Live.NonStriker == "" {
		for _, p := range m.Roster(m.Live.CurrentInnings) {
			if p.ID != playerID {
				fields["nonStriker"] = p.ID
				break
			}
		}
	}
	if err := e.repo.PatchLive(ctx, id, fields); err != nil {
		return err
	}
	return e.repo.EnsurePlayerStat(ctx, id, playerID)
}

// RecordLegalDelivery scores a legal ball: runs to the batting side, the
// ball count advances, odd runs rotate strike, and a completed over clears
// the bowler for reselection.
func (e *Engine) RecordLegalDelivery(ctx context.Context, id string, runs int) (*DeliveryOutcome, error) {
	if runs < 0 || runs > 6 {
		return nil, ErrInvalidRuns
	}
	m, err := e.loadLiveForBall(ctx, id)
	if err != nil {
		return nil, err
	}
	live := m.Live
	if live.Striker == "" {
		return nil, ErrNoStriker
	}
	if live.CurrentBowler == "" {
		return nil, ErrNoBowler
	}

	score, scoreKey := live.ActiveScore()
	score.Runs += runs
	score.Balls++
	newOverBalls := (live.CurrentOverBalls + 1) % 6
	ev := BallEvent{
		Type:      BallLegal,
		Runs:      runs,
		Striker:   live.Striker,
		Bowler:    live.CurrentBowler,
		Timestamp: time.Now().UTC(),
	}
	fields := map[string]interface{}{
		scoreKey + "/runs":  score.Runs,
		scoreKey + "/balls": score.Balls,
		"currentOverBalls":  newOverBalls,
		"lastBall":          ev,
	}
	if runs%2 == 1 {
		fields["striker"] = live.NonStriker
		fields["nonStriker"] = live.Striker
	}
	overComplete := newOverBalls == 0
	if overComplete {
		fields["currentBowler"] = nil
	}
	if err := e.repo.PatchLive(ctx, id, fields); err != nil {
		return nil, err
	}
	if _, err := e.repo.AppendBall(ctx, id, ev); err != nil {
		return nil, err
	}
	batDelta := PlayerStat{Runs: runs, Balls: 1, BallsFaced: 1}
	if runs == 4 {
		batDelta.Fours = 1
	}
	if runs == 6 {
		batDelta.Sixes = 1
	}
	if err := e.repo.IncrementPlayerStat(ctx, id, live.Striker, batDelta); err != nil {
		return nil, err
	}
	if err := e.repo.IncrementPlayerStat(ctx, id, live.CurrentBowler, PlayerStat{OversBalls: 1, RunsConceded: runs}); err != nil {
		return nil, err
	}

	out := &DeliveryOutcome{Ball: ev, Score: score, OverComplete: overComplete}
	return e.afterBall(ctx, m, score, out)
}

// RecordWicket scores a dismissal: a legal ball with a wicket, no runs. The
// new batter is chosen by the operator from the remaining roster.
func (e *Engine) RecordWicket(ctx context.Context, id string, wt WicketType) (*DeliveryOutcome, error) {
	switch wt {
	case WicketBowled, WicketCaught, WicketLBW, WicketRunOut, WicketStumped, WicketHitWicket:
	default:
		return nil, ErrInvalidWicketType
	}
	m, err := e.loadLiveForBall(ctx, id)
	if err != nil {
		return nil, err
	}
	live := m.Live
	if live.Striker == "" {
		return nil, ErrNoStriker
	}
	if live.CurrentBowler == "" {
		return nil, ErrNoBowler
	}

	score, scoreKey := live.ActiveScore()
	score.Balls++
	score.Wickets++
	newOverBalls := (live.CurrentOverBalls + 1) % 6
	ev := BallEvent{
		Type:       BallWicket,
		WicketType: &wt,
		Striker:    live.Striker,
		Bowler:     live.CurrentBowler,
		Timestamp:  time.Now().UTC(),
	}
	fields := map[string]interface{}{
		scoreKey + "/balls":   score.Balls,
		scoreKey + "/wickets": score.Wickets,
		"currentOverBalls":    newOverBalls,
		"lastBall":            ev,
	}
	overComplete := newOverBalls == 0
	if overComplete {
		fields["currentBowler"] = nil
	}
	if err := e.repo.PatchLive(ctx, id, fields); err != nil {
		return nil, err
	}
	if _, err := e.repo.AppendBall(ctx, id, ev); err != nil {
		return nil, err
	}
	if err := e.repo.IncrementPlayerStat(ctx, id, live.Striker, PlayerStat{Balls: 1, BallsFaced: 1}); err != nil {
		return nil, err
	}
	if err := e.repo.IncrementPlayerStat(ctx, id, live.CurrentBowler, PlayerStat{OversBalls: 1, Wickets: 1}); err != nil {
		return nil, err
	}

	out := &DeliveryOutcome{Ball: ev, Score: score, OverComplete: overComplete}
	out, err = e.afterBall(ctx, m, score, out)
	if err != nil {
		return nil, err
	}
	if !out.FirstInningsOver && !out.MatchOver {
		out.NeedNewBatter = true
		out.AvailableBatters = availableBatters(m, live)
	}
	return out, nil
}

// RecordExtra scores a wide or no-ball: runs count, the ball does not, and
// the over does not advance. An extra can still win a chase.
func (e *Engine) RecordExtra(ctx context.Context, id string, kind ExtraKind, runs int) (*DeliveryOutcome, error) {
	if kind != ExtraWide && kind != ExtraNoBall {
		return nil, ErrInvalidExtra
	}
	if runs <= 0 {
		runs = 1
	}
	m, err := e.loadLiveForBall(ctx, id)
	if err != nil {
		return nil, err
	}
	live := m.Live
	if live.Striker == "" {
		return nil, ErrNoStriker
	}
	if live.CurrentBowler == "" {
		return nil, ErrNoBowler
	}

	score, scoreKey := live.ActiveScore()
	score.Runs += runs
	ev := BallEvent{
		Type:      kind.BallType(),
		Runs:      runs,
		Extra:     1,
		Striker:   live.Striker,
		Bowler:    live.CurrentBowler,
		Timestamp: time.Now().UTC(),
	}
	fields := map[string]interface{}{
		scoreKey + "/runs": score.Runs,
		"lastBall":         ev,
	}
	if err := e.repo.PatchLive(ctx, id, fields); err != nil {
		return nil, err
	}
	if _, err := e.repo.AppendBall(ctx, id, ev); err != nil {
		return nil, err
	}
	if err := e.repo.IncrementPlayerStat(ctx, id, live.CurrentBowler, PlayerStat{RunsConceded: runs}); err != nil {
		return nil, err
	}

	out := &DeliveryOutcome{Ball: ev, Score: score}
	return e.afterBall(ctx, m, score, out)
}

// StartSecondInnings flips the live state for the chase once the operator
// confirms the first innings is over. The target is locked here and never
// recomputed.
func (e *Engine) StartSecondInnings(ctx context.Context, id string) (*LiveState, error) {
	m, err := e.loadLive(ctx, id)
	if err != nil {
		return nil, err
	}
	live := m.Live
	if live.Chasing() {
		return nil, ErrSecondInningsStarted
	}
	score, _ := live.ActiveScore()
	if !inningsClosed(m, score) {
		return nil, ErrFirstInningsNotOver
	}

	next := live.CurrentInnings.Other()
	roster := m.Roster(next)
	if len(roster) < 2 {
		return nil, ErrRosterTooSmall
	}
	target := score.Runs + 1
	nextKey := "scoreA"
	if next == SideB {
		nextKey = "scoreB"
	}
	fields := map[string]interface{}{
		"currentInnings":   next,
		"target":           target,
		"currentOverBalls": 0,
		"striker":          roster[0].ID,
		"nonStriker":       roster[1].ID,
		"currentBowler":    nil,
		nextKey:            Score{},
	}
	if err := e.repo.PatchLive(ctx, id, fields); err != nil {
		return nil, err
	}
	for _, pid := range []string{roster[0].ID, roster[1].ID} {
		if err := e.repo.EnsurePlayerStat(ctx, id, pid); err != nil {
			return nil, err
		}
	}
	updated, err := e.repo.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil || updated.Live == nil {
		return nil, ErrMatchNotLive
	}
	return updated.Live, nil
}

// EndMatch finalizes a live match from its current scores: winner by runs,
// equal runs is a tie. Scores and player stats are folded into the match
// document and the live sub-document is cleared, all in one patch.
func (e *Engine) EndMatch(ctx context.Context, id string) (*MatchResult, error) {
	m, err := e.loadLive(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.finalize(ctx, m)
}

// LastBalls returns up to limit most recent deliveries, oldest first.
func (e *Engine) LastBalls(ctx context.Context, id string, limit int) ([]BallEvent, error) {
	if limit <= 0 {
		limit = 6
	}
	m, err := e.repo.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return e.repo.LastBalls(ctx, id, limit)
}

func (e *Engine) loadLive(ctx context.Context, id string) (*Match, error) {
	m, err := e.repo.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Completed() {
		return nil, ErrMatchCompleted
	}
	if m.Status != StatusLive || m.Live == nil {
		return nil, ErrMatchNotLive
	}
	return m, nil
}

// loadLiveForBall additionally rejects deliveries into a closed first
// innings: once the overs run out or ten wickets fall, no ball may be
// recorded until the second innings is confirmed.
func (e *Engine) loadLiveForBall(ctx context.Context, id string) (*Match, error) {
	m, err := e.loadLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.Live.Chasing() {
		score, _ := m.Live.ActiveScore()
		if inningsClosed(m, score) {
			return nil, ErrFirstInningsOver
		}
	}
	return m, nil
}

// afterBall evaluates end conditions on the post-application score. During
// the chase reaching the target, running out of overs or losing all wickets
// finalizes the match; in the first innings closure only flags a summary and
// waits for explicit confirmation.
func (e *Engine) afterBall(ctx context.Context, m *Match, score Score, out *DeliveryOutcome) (*DeliveryOutcome, error) {
	live := m.Live
	if live.Chasing() {
		if score.Runs >= *live.Target || inningsClosed(m, score) {
			if live.CurrentInnings == SideB {
				live.ScoreB = score
			} else {
				live.ScoreA = score
			}
			res, err := e.finalize(ctx, m)
			if err != nil {
				return nil, err
			}
			out.MatchOver = true
			out.Result = res
		}
		return out, nil
	}
	if inningsClosed(m, score) {
		batting := live.CurrentInnings
		out.FirstInningsOver = true
		out.Summary = &InningsSummary{
			BattingTeam: m.TeamName(batting),
			BowlingTeam: m.TeamName(batting.Other()),
			Runs:        score.Runs,
			Wickets:     score.Wickets,
			Overs:       score.OversDisplay(),
			Target:      score.Runs + 1,
		}
	}
	return out, nil
}

// inningsClosed reports whether the overs limit is exhausted or all ten
// wickets are down.
func inningsClosed(m *Match, score Score) bool {
	oversLimit := int(m.Overs) * 6
	if oversLimit > 0 && score.Balls >= oversLimit {
		return true
	}
	return score.Wickets >= 10
}

func (e *Engine) finalize(ctx context.Context, m *Match) (*MatchResult, error) {
	live := m.Live
	var a, b Score
	if live != nil {
		a, b = live.ScoreA, live.ScoreB
	}
	res := &MatchResult{ScoreA: a, ScoreB: b}
	var winner Side
	switch {
	case a.Runs > b.Runs:
		winner = SideA
		res.Winner = m.TeamName(SideA)
	case b.Runs > a.Runs:
		winner = SideB
		res.Winner = m.TeamName(SideB)
	default:
		res.IsTie = true
	}
	res.Summary = resultSummary(m, winner, res)

	fields := map[string]interface{}{
		"status":      StatusCompleted,
		"isTie":       res.IsTie,
		"scoreA":      a,
		"scoreB":      b,
		"teamA":       foldScore(m.TeamA, a),
		"teamB":       foldScore(m.TeamB, b),
		"completedAt": nowISO(),
		"live":        nil,
	}
	if res.IsTie {
		fields["winner"] = nil
	} else {
		fields["winner"] = res.Winner
	}
	if live != nil && len(live.PlayerStats) > 0 {
		fields["playerStats"] = live.PlayerStats
	}
	if err := e.repo.PatchMatch(ctx, m.ID, fields); err != nil {
		return nil, err
	}
	return res, nil
}

// foldScore denormalizes the final score into the team object so readers of
// the completed match never need the cleared live sub-document.
func foldScore(t TeamRef, sc Score) TeamRef {
	runs, wickets, balls := sc.Runs, sc.Wickets, sc.Balls
	t.Runs, t.Wickets, t.Balls = &runs, &wickets, &balls
	return t
}

func resultSummary(m *Match, winner Side, res *MatchResult) string {
	if res.IsTie {
		return "Match tied"
	}
	win, lose := res.ScoreA, res.ScoreB
	if winner == SideB {
		win, lose = res.ScoreB, res.ScoreA
	}
	if m.Live != nil && m.Live.Chasing() && winner == m.Live.CurrentInnings {
		return fmt.Sprintf("%s won by %d wickets", res.Winner, 10-win.Wickets)
	}
	return fmt.Sprintf("%s won by %d runs", res.Winner, win.Runs-lose.Runs)
}

func inRoster(m *Match, side Side, playerID string) bool {
	for _, p := range m.Roster(side) {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// availableBatters lists batting-side players not currently at the crease.
func availableBatters(m *Match, live *LiveState) []Player {
	var out []Player
	for _, p := range m.Roster(live.CurrentInnings) {
		if p.ID != live.Striker && p.ID != live.NonStriker {
			out = append(out, p)
		}
	}
	return out
}
