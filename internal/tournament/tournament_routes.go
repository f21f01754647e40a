package tournament

import (
	"github.com/gin-gonic/gin"

	"github.com/KiranBagal-17/gully/internal/match"
	mw "github.com/KiranBagal-17/gully/internal/middleware"
	"github.com/KiranBagal-17/gully/internal/store"
)

// TournamentRoutes sets up all tournament routes. Reads are public;
// standings and knockout management require the organizer's token.
func TournamentRoutes(router *gin.RouterGroup, st store.Store, jwtSecret string) {
	repo := NewStoreTournamentRepository(st)
	matchRepo := match.NewStoreMatchRepository(st)
	service := NewService(repo, matchRepo)
	controller := NewTournamentController(repo, matchRepo, service)

	public := router.Group("/tournaments")
	{
		public.GET("", controller.GetTournaments)
		public.GET("/:id", controller.GetTournamentByID)
		public.GET("/:id/points-table", controller.GetPointsTable)
		public.GET("/:id/leaderboard", controller.GetLeaderboard)
		public.GET("/:id/matches", controller.GetTournamentMatches)
	}

	managed := router.Group("/tournaments")
	managed.Use(mw.AuthMiddleware(jwtSecret))
	{
		managed.POST("", controller.CreateTournament)
		managed.POST("/:id/points-table", controller.GeneratePointsTable)
		managed.POST("/:id/quarter-finals", controller.GenerateQuarterFinals)
		managed.POST("/:id/semi-finals", controller.GenerateSemiFinals)
		managed.POST("/:id/final", controller.GenerateFinal)
		managed.POST("/:id/champion", controller.AnnounceChampion)
	}
}
