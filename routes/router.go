package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/KiranBagal-17/gully/config"
	"github.com/KiranBagal-17/gully/internal/match"
	"github.com/KiranBagal-17/gully/internal/store"
	"github.com/KiranBagal-17/gully/internal/team"
	"github.com/KiranBagal-17/gully/internal/tournament"
	"github.com/KiranBagal-17/gully/pkg/responses"
	"github.com/KiranBagal-17/gully/pkg/token"
)

func SetupRoutes(st store.Store, cfg *config.Config) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>Gully</title></head>
				<body style="text-align:center; margin-top: 40px;">
				<h1>Gully cricket scoring 🏏</h1>
				<div>
					<a href="/swagger/index.html">swagger</a>
				</div>
				</body>
			</html>
		`))
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")

	jwtSecret := cfg.JWT.AccessTokenSecret
	match.MatchRoutes(api, st, jwtSecret, team.NewRosterSource(team.NewStoreTeamRepository(st)))
	team.TeamRoutes(api, st, jwtSecret)
	tournament.TournamentRoutes(api, st, jwtSecret)

	// Scorer tokens are minted freely in development. In production they
	// are provisioned out of band.
	if cfg.App.Env == "development" {
		api.POST("/auth/token", func(c *gin.Context) {
			var req struct {
				UserID string `json:"userId" binding:"required"`
				Name   string `json:"name"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				responses.BadRequest(c, err.Error())
				return
			}
			signed, err := token.GenerateJWT(req.UserID, req.Name, jwtSecret, cfg.JWT.AccessTokenExpiryMinutes)
			if err != nil {
				responses.InternalServerError(c, "Failed to sign token: "+err.Error())
				return
			}
			responses.SendSuccess(c, http.StatusOK, "Token issued", gin.H{"token": signed})
		})
	}

	return r
}
