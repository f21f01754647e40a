package team

import (
	"github.com/gin-gonic/gin"

	mw "github.com/KiranBagal-17/gully/internal/middleware"
	"github.com/KiranBagal-17/gully/internal/store"
)

// TeamRoutes registers the team registry endpoints.
func TeamRoutes(router *gin.RouterGroup, st store.Store, jwtSecret string) {
	repo := NewStoreTeamRepository(st)
	controller := NewTeamController(repo)

	teams := router.Group("/teams")
	{
		teams.GET("", controller.GetTeams)
		teams.GET("/:id", controller.GetTeamByID)

		authed := teams.Group("")
		authed.Use(mw.AuthMiddleware(jwtSecret))
		{
			authed.POST("", controller.CreateTeam)
			authed.PUT("/:id", controller.UpdateTeam)
			authed.DELETE("/:id", controller.DeleteTeam)
		}
	}
}
