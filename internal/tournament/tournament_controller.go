package tournament

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KiranBagal-17/gully/internal/match"
	"github.com/KiranBagal-17/gully/pkg/responses"
)

// TournamentController handles tournament-related HTTP requests.
type TournamentController struct {
	repo    TournamentRepository
	matches match.MatchRepository
	service *Service
}

func NewTournamentController(repo TournamentRepository, matches match.MatchRepository, service *Service) *TournamentController {
	return &TournamentController{repo: repo, matches: matches, service: service}
}

func getCurrentUserID(c *gin.Context) (string, bool) {
	val, exists := c.Get("currentUserID")
	if !exists {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrTournamentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStageAlreadyCreated),
		errors.Is(err, ErrStageIncomplete),
		errors.Is(err, ErrFinalNotCompleted),
		errors.Is(err, ErrFinalTied):
		return http.StatusConflict
	case errors.Is(err, ErrPointsTableTooSmall):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (tc *TournamentController) fail(c *gin.Context, err error) {
	responses.SendError(c, statusFor(err), err.Error())
}

// requireOrganizer loads the tournament and checks the caller organizes it.
// Returns nil after writing the response when the check fails.
func (tc *TournamentController) requireOrganizer(c *gin.Context) *Tournament {
	t, err := tc.repo.GetTournamentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to load tournament: "+err.Error())
		return nil
	}
	if t == nil {
		responses.NotFound(c, "Tournament")
		return nil
	}
	userID, ok := getCurrentUserID(c)
	if !ok || (t.OrganizerID != "" && t.OrganizerID != userID) {
		responses.Forbidden(c, "Only the organizer can manage this tournament")
		return nil
	}
	return t
}

// CreateTournamentRequest defines the request payload for creating a
// tournament.
type CreateTournamentRequest struct {
	Name      string `json:"name" binding:"required,min=3,max=200"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	BallType  string `json:"ballType,omitempty"`
	PitchType string `json:"pitchType,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Overs     int    `json:"overs" binding:"omitempty,min=1,max=50"`
}

// CreateTournament godoc
// @Summary Create a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Param request body CreateTournamentRequest true "Tournament details"
// @Success 201 {object} responses.SuccessResponse{data=Tournament}
// @Failure 400 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /tournaments [post]
func (tc *TournamentController) CreateTournament(c *gin.Context) {
	var req CreateTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	userID, _ := getCurrentUserID(c)
	t := &Tournament{
		Name:        req.Name,
		OrganizerID: userID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		BallType:    req.BallType,
		PitchType:   req.PitchType,
		Venue:       req.Venue,
		Overs:       req.Overs,
		CreatedAt:   nowISO(),
	}
	if _, err := tc.repo.CreateTournament(c.Request.Context(), t); err != nil {
		responses.InternalServerError(c, "Failed to create tournament: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Tournament created", gin.H{"id": t.ID, "tournament": t})
}

// GetTournaments godoc
// @Summary List tournaments
// @Tags tournaments
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Tournament}
// @Router /tournaments [get]
func (tc *TournamentController) GetTournaments(c *gin.Context) {
	list, err := tc.repo.GetTournaments(c.Request.Context())
	if err != nil {
		responses.InternalServerError(c, "Failed to list tournaments: "+err.Error())
		return
	}
	views := make([]gin.H, 0, len(list))
	for _, t := range list {
		views = append(views, gin.H{"id": t.ID, "tournament": t})
	}
	responses.SendSuccess(c, http.StatusOK, "Tournaments retrieved", views)
}

// GetTournamentByID godoc
// @Summary Get a tournament
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=Tournament}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id} [get]
func (tc *TournamentController) GetTournamentByID(c *gin.Context) {
	t, err := tc.repo.GetTournamentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to load tournament: "+err.Error())
		return
	}
	if t == nil {
		responses.NotFound(c, "Tournament")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Tournament retrieved", gin.H{"id": t.ID, "tournament": t})
}

// GetPointsTable godoc
// @Summary Current standings
// @Description Returns the stored points table in standings order.
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=[]PointsTableEntry}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id}/points-table [get]
func (tc *TournamentController) GetPointsTable(c *gin.Context) {
	t, err := tc.repo.GetTournamentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to load tournament: "+err.Error())
		return
	}
	if t == nil {
		responses.NotFound(c, "Tournament")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Points table retrieved", t.PointsTable)
}

// GeneratePointsTable godoc
// @Summary Recompute standings
// @Description Rebuilds the points table from completed group matches and replaces it wholesale.
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=[]PointsTableEntry}
// @Failure 403 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /tournaments/{id}/points-table [post]
func (tc *TournamentController) GeneratePointsTable(c *gin.Context) {
	if tc.requireOrganizer(c) == nil {
		return
	}
	entries, err := tc.service.GeneratePointsTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Points table generated", entries)
}

// GenerateQuarterFinals godoc
// @Summary Create the quarter-finals
// @Description Pairs the top eight standings rows into four fixtures (1v2, 3v4, 5v6, 7v8).
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 201 {object} responses.SuccessResponse{data=[]string}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /tournaments/{id}/quarter-finals [post]
func (tc *TournamentController) GenerateQuarterFinals(c *gin.Context) {
	if tc.requireOrganizer(c) == nil {
		return
	}
	ids, err := tc.service.GenerateQuarterFinals(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Quarter-finals created", ids)
}

// GenerateSemiFinals godoc
// @Summary Create the semi-finals
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 201 {object} responses.SuccessResponse{data=[]string}
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /tournaments/{id}/semi-finals [post]
func (tc *TournamentController) GenerateSemiFinals(c *gin.Context) {
	if tc.requireOrganizer(c) == nil {
		return
	}
	ids, err := tc.service.GenerateSemiFinals(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Semi-finals created", ids)
}

// GenerateFinal godoc
// @Summary Create the final
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 201 {object} responses.SuccessResponse{data=string}
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /tournaments/{id}/final [post]
func (tc *TournamentController) GenerateFinal(c *gin.Context) {
	if tc.requireOrganizer(c) == nil {
		return
	}
	id, err := tc.service.GenerateFinal(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Final created", id)
}

// AnnounceChampion godoc
// @Summary Announce the champion
// @Description Records the final's winner as tournament champion.
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=string}
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /tournaments/{id}/champion [post]
func (tc *TournamentController) AnnounceChampion(c *gin.Context) {
	if tc.requireOrganizer(c) == nil {
		return
	}
	champion, err := tc.service.AnnounceChampion(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Champion announced", champion)
}

// GetLeaderboard godoc
// @Summary Tournament leaderboard
// @Description Aggregates player ledgers of completed matches into top batters and bowlers.
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=Leaderboard}
// @Failure 404 {object} responses.ErrorResponse
// @Router /tournaments/{id}/leaderboard [get]
func (tc *TournamentController) GetLeaderboard(c *gin.Context) {
	board, err := tc.service.Leaderboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		tc.fail(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Leaderboard retrieved", board)
}

// GetTournamentMatches godoc
// @Summary List a tournament's matches
// @Tags tournaments
// @Produce json
// @Param id path string true "Tournament ID"
// @Success 200 {object} responses.SuccessResponse{data=[]match.Match}
// @Router /tournaments/{id}/matches [get]
func (tc *TournamentController) GetTournamentMatches(c *gin.Context) {
	ms, err := tc.matches.GetTournamentMatches(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to list matches: "+err.Error())
		return
	}
	views := make([]gin.H, 0, len(ms))
	for _, m := range ms {
		views = append(views, gin.H{"id": m.ID, "match": m})
	}
	responses.SendSuccess(c, http.StatusOK, "Matches retrieved", views)
}
