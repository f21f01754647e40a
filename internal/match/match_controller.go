package match

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KiranBagal-17/gully/pkg/responses"
)

// MatchController handles match-related HTTP requests.
type MatchController struct {
	repo   MatchRepository
	engine *Engine
}

func NewMatchController(repo MatchRepository, engine *Engine) *MatchController {
	return &MatchController{repo: repo, engine: engine}
}

func getCurrentUserID(c *gin.Context) (string, bool) {
	val, exists := c.Get("currentUserID")
	if !exists {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMatchNotLive),
		errors.Is(err, ErrMatchCompleted),
		errors.Is(err, ErrMatchAlreadyLive),
		errors.Is(err, ErrNoStriker),
		errors.Is(err, ErrNoBowler),
		errors.Is(err, ErrFirstInningsNotOver),
		errors.Is(err, ErrFirstInningsOver),
		errors.Is(err, ErrSecondInningsStarted):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSide),
		errors.Is(err, ErrInvalidElection),
		errors.Is(err, ErrInvalidRuns),
		errors.Is(err, ErrInvalidWicketType),
		errors.Is(err, ErrInvalidExtra),
		errors.Is(err, ErrPlayerNotInRoster),
		errors.Is(err, ErrRosterTooSmall):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (mc *MatchController) fail(c *gin.Context, err error) {
	responses.SendError(c, statusFor(err), err.Error())
}

// --- DTOs for requests ---

// TeamInput names a team when scheduling a match.
type TeamInput struct {
	ID       string `json:"id,omitempty"`
	TeamName string `json:"teamName" binding:"required,min=1,max=100"`
}

// CreateMatchRequest defines the request payload for scheduling a match.
type CreateMatchRequest struct {
	TournamentID string    `json:"tournamentId,omitempty"`
	Stage        Stage     `json:"stage,omitempty" binding:"omitempty,oneof=Group 'Quarter Final' 'Semi Final' Final"`
	TeamA        TeamInput `json:"teamA" binding:"required"`
	TeamB        TeamInput `json:"teamB" binding:"required"`
	Overs        int       `json:"overs" binding:"omitempty,min=1,max=50"`
	BallType     string    `json:"ballType,omitempty"`
	PitchType    string    `json:"pitchType,omitempty"`
	Venue        string    `json:"venue,omitempty"`
	MatchDate    string    `json:"matchDate,omitempty"`
}

type runsRequest struct {
	Runs int `json:"runs"`
}

type wicketRequest struct {
	WicketType WicketType `json:"wicketType" binding:"required"`
}

type extraRequest struct {
	Kind ExtraKind `json:"kind" binding:"required"`
	Runs int       `json:"runs"`
}

type playerRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// --- Handlers ---

// CreateMatch godoc
// @Summary Schedule a match
// @Description Creates an upcoming match, optionally attached to a tournament.
// @Tags matches
// @Accept json
// @Produce json
// @Param request body CreateMatchRequest true "Match details"
// @Success 201 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	userID, _ := getCurrentUserID(c)
	stage := req.Stage
	if stage == "" {
		stage = StageGroup
	}
	m := &Match{
		TournamentID: req.TournamentID,
		Stage:        stage,
		Status:       StatusUpcoming,
		TeamA:        TeamRef{ID: req.TeamA.ID, TeamName: req.TeamA.TeamName},
		TeamB:        TeamRef{ID: req.TeamB.ID, TeamName: req.TeamB.TeamName},
		Overs:        OverCount(req.Overs),
		BallType:     req.BallType,
		PitchType:    req.PitchType,
		Venue:        req.Venue,
		MatchDate:    req.MatchDate,
		CreatedBy:    userID,
		CreatedAt:    nowISO(),
	}
	if _, err := mc.repo.CreateMatch(c.Request.Context(), m); err != nil {
		responses.InternalServerError(c, "Failed to create match: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Match scheduled", matchView(m))
}

// GetMatches godoc
// @Summary List matches
// @Description Lists matches in creation order, optionally filtered by tournament.
// @Tags matches
// @Produce json
// @Param tournamentId query string false "Filter by tournament id"
// @Success 200 {object} responses.SuccessResponse{data=[]Match}
// @Router /matches [get]
func (mc *MatchController) GetMatches(c *gin.Context) {
	var (
		matches []*Match
		err     error
	)
	if tid := c.Query("tournamentId"); tid != "" {
		matches, err = mc.repo.GetTournamentMatches(c.Request.Context(), tid)
	} else {
		matches, err = mc.repo.GetMatches(c.Request.Context())
	}
	if err != nil {
		responses.InternalServerError(c, "Failed to list matches: "+err.Error())
		return
	}
	views := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView(m))
	}
	responses.SendSuccess(c, http.StatusOK, "Matches retrieved", views)
}

// GetMatchByID godoc
// @Summary Get a match
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 404 {object} responses.ErrorResponse
// @Router /matches/{id} [get]
func (mc *MatchController) GetMatchByID(c *gin.Context) {
	m, err := mc.repo.GetMatchByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to load match: "+err.Error())
		return
	}
	if m == nil {
		responses.NotFound(c, "Match")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match retrieved", matchView(m))
}

// ResolveToss godoc
// @Summary Resolve the toss and open the match
// @Description Stores the toss outcome and rosters, marks the match live and puts the opening pair at the crease.
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body TossRequest true "Toss outcome and rosters"
// @Success 200 {object} responses.SuccessResponse{data=Match}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches/{id}/toss [post]
func (mc *MatchController) ResolveToss(c *gin.Context) {
	var req TossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	m, err := mc.engine.ResolveToss(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Toss resolved", matchView(m))
}

// SelectStriker godoc
// @Summary Select the striker
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body playerRequest true "Player"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /matches/{id}/striker [post]
func (mc *MatchController) SelectStriker(c *gin.Context) {
	mc.selectPlayer(c, mc.engine.SelectStriker, "Striker selected")
}

// SelectBowler godoc
// @Summary Select the bowler for the current over
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body playerRequest true "Player"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /matches/{id}/bowler [post]
func (mc *MatchController) SelectBowler(c *gin.Context) {
	mc.selectPlayer(c, mc.engine.SelectBowler, "Bowler selected")
}

// SelectNextBatter godoc
// @Summary Send in the next batter after a wicket
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body playerRequest true "Player"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /matches/{id}/next-batter [post]
func (mc *MatchController) SelectNextBatter(c *gin.Context) {
	mc.selectPlayer(c, mc.engine.SelectNextBatter, "Next batter selected")
}

func (mc *MatchController) selectPlayer(c *gin.Context, op func(ctx context.Context, id, playerID string) error, msg string) {
	var req playerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	if err := op(c.Request.Context(), c.Param("id"), req.PlayerID); err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, msg, nil)
}

// RecordLegalDelivery godoc
// @Summary Record a legal delivery
// @Description Scores 0-6 runs off a legal ball; odd runs rotate strike and a sixth ball completes the over.
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body runsRequest true "Runs off the bat"
// @Success 200 {object} responses.SuccessResponse{data=DeliveryOutcome}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches/{id}/balls/legal [post]
func (mc *MatchController) RecordLegalDelivery(c *gin.Context) {
	var req runsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	out, err := mc.engine.RecordLegalDelivery(c.Request.Context(), c.Param("id"), req.Runs)
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Delivery recorded", out)
}

// RecordWicket godoc
// @Summary Record a wicket
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body wicketRequest true "Dismissal"
// @Success 200 {object} responses.SuccessResponse{data=DeliveryOutcome}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches/{id}/balls/wicket [post]
func (mc *MatchController) RecordWicket(c *gin.Context) {
	var req wicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	out, err := mc.engine.RecordWicket(c.Request.Context(), c.Param("id"), req.WicketType)
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Wicket recorded", out)
}

// RecordExtra godoc
// @Summary Record a wide or no-ball
// @Description Adds the extra runs without advancing the over; an extra can complete a chase.
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param request body extraRequest true "Extra"
// @Success 200 {object} responses.SuccessResponse{data=DeliveryOutcome}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches/{id}/balls/extra [post]
func (mc *MatchController) RecordExtra(c *gin.Context) {
	var req extraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	out, err := mc.engine.RecordExtra(c.Request.Context(), c.Param("id"), req.Kind, req.Runs)
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Extra recorded", out)
}

// StartSecondInnings godoc
// @Summary Confirm the innings break and start the chase
// @Tags scoring
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=LiveState}
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches/{id}/second-innings [post]
func (mc *MatchController) StartSecondInnings(c *gin.Context) {
	live, err := mc.engine.StartSecondInnings(c.Request.Context(), c.Param("id"))
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Second innings started", live)
}

// EndMatch godoc
// @Summary Finalize the match
// @Description Settles the winner from the current scores, folds scores and player stats into the match document and clears the live state.
// @Tags scoring
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} responses.SuccessResponse{data=MatchResult}
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /matches/{id}/finalize [post]
func (mc *MatchController) EndMatch(c *gin.Context) {
	res, err := mc.engine.EndMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match finalized", res)
}

// LastBalls godoc
// @Summary Recent deliveries
// @Description Returns the most recent deliveries, oldest first. Defaults to the last six.
// @Tags scoring
// @Produce json
// @Param id path string true "Match ID"
// @Param limit query int false "Number of deliveries"
// @Success 200 {object} responses.SuccessResponse{data=[]BallEvent}
// @Router /matches/{id}/balls/recent [get]
func (mc *MatchController) LastBalls(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))
	balls, err := mc.engine.LastBalls(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		mc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Recent deliveries", balls)
}

// WatchMatch godoc
// @Summary Stream live match updates
// @Description Server-sent events; emits the full match document immediately and on every change.
// @Tags scoring
// @Produce text/event-stream
// @Param id path string true "Match ID"
// @Router /matches/{id}/stream [get]
func (mc *MatchController) WatchMatch(c *gin.Context) {
	updates := make(chan *Match, 8)
	cancel, err := mc.repo.WatchMatch(c.Param("id"), func(m *Match) {
		pushLatest(updates, m)
	})
	if err != nil {
		responses.InternalServerError(c, "Failed to subscribe: "+err.Error())
		return
	}
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case m := <-updates:
			if m == nil {
				c.SSEvent("deleted", gin.H{})
				return false
			}
			c.SSEvent("match", matchView(m))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// pushLatest delivers a snapshot without blocking. Every snapshot is a full
// replacement, so when a slow client fills the buffer the oldest one is
// dropped to make room for the newest.
func pushLatest(updates chan *Match, m *Match) {
	select {
	case updates <- m:
		return
	default:
	}
	select {
	case <-updates:
	default:
	}
	select {
	case updates <- m:
	default:
	}
}

// matchView attaches the generated id, which the stored document does not
// carry, to the serialized match.
func matchView(m *Match) gin.H {
	return gin.H{"id": m.ID, "match": m}
}
