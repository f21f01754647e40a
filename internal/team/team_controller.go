package team

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KiranBagal-17/gully/internal/match"
	"github.com/KiranBagal-17/gully/pkg/responses"
)

// TeamController handles team registry HTTP requests.
type TeamController struct {
	repo TeamRepository
}

func NewTeamController(repo TeamRepository) *TeamController {
	return &TeamController{repo: repo}
}

func currentUserID(c *gin.Context) string {
	if val, ok := c.Get("currentUserID"); ok {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}

// CreateTeamRequest defines the request payload for registering a team.
type CreateTeamRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=100"`
	CaptainName string         `json:"captainName,omitempty"`
	Players     []match.Player `json:"players,omitempty"`
}

// CreateTeam godoc
// @Summary Register a team
// @Description Saves a squad so its roster can be reused across matches.
// @Tags teams
// @Accept json
// @Produce json
// @Param request body CreateTeamRequest true "Team details"
// @Success 201 {object} responses.SuccessResponse{data=Team}
// @Failure 400 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	t := &Team{
		Name:        req.Name,
		CaptainName: req.CaptainName,
		Players:     req.Players,
		CreatedBy:   currentUserID(c),
		CreatedAt:   nowISO(),
	}
	if _, err := tc.repo.CreateTeam(c.Request.Context(), t); err != nil {
		responses.InternalServerError(c, "Failed to create team: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team registered", teamView(t))
}

// GetTeams godoc
// @Summary List registered teams
// @Tags teams
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Team}
// @Router /teams [get]
func (tc *TeamController) GetTeams(c *gin.Context) {
	teams, err := tc.repo.GetTeams(c.Request.Context())
	if err != nil {
		responses.InternalServerError(c, "Failed to list teams: "+err.Error())
		return
	}
	views := make([]gin.H, 0, len(teams))
	for _, t := range teams {
		views = append(views, teamView(t))
	}
	responses.SendSuccess(c, http.StatusOK, "Teams retrieved", views)
}

// GetTeamByID godoc
// @Summary Get a team
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 404 {object} responses.ErrorResponse
// @Router /teams/{id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	t, err := tc.repo.GetTeamByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to load team: "+err.Error())
		return
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved", teamView(t))
}

// UpdateTeam godoc
// @Summary Update a team
// @Description Replaces the team's name, captain or roster. Only the creator may update.
// @Tags teams
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param request body CreateTeamRequest true "Team details"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id} [put]
func (tc *TeamController) UpdateTeam(c *gin.Context) {
	t, ok := tc.requireOwner(c)
	if !ok {
		return
	}
	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, err.Error())
		return
	}
	fields := map[string]interface{}{
		"name":        req.Name,
		"captainName": req.CaptainName,
		"players":     req.Players,
	}
	if err := tc.repo.PatchTeam(c.Request.Context(), t.ID, fields); err != nil {
		responses.InternalServerError(c, "Failed to update team: "+err.Error())
		return
	}
	t.Name = req.Name
	t.CaptainName = req.CaptainName
	t.Players = req.Players
	responses.SendSuccess(c, http.StatusOK, "Team updated", teamView(t))
}

// DeleteTeam godoc
// @Summary Delete a team
// @Description Removes a registered team. Only the creator may delete.
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /teams/{id} [delete]
func (tc *TeamController) DeleteTeam(c *gin.Context) {
	t, ok := tc.requireOwner(c)
	if !ok {
		return
	}
	if err := tc.repo.DeleteTeam(c.Request.Context(), t.ID); err != nil {
		responses.InternalServerError(c, "Failed to delete team: "+err.Error())
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team deleted", nil)
}

// requireOwner loads the team and verifies the caller created it. Teams
// without a recorded creator are open to any authenticated user.
func (tc *TeamController) requireOwner(c *gin.Context) (*Team, bool) {
	t, err := tc.repo.GetTeamByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.InternalServerError(c, "Failed to load team: "+err.Error())
		return nil, false
	}
	if t == nil {
		responses.NotFound(c, "Team")
		return nil, false
	}
	if t.CreatedBy != "" && t.CreatedBy != currentUserID(c) {
		responses.Forbidden(c, "Only the team creator can modify this team")
		return nil, false
	}
	return t, true
}

func teamView(t *Team) gin.H {
	return gin.H{"id": t.ID, "team": t}
}
