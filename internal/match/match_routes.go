package match

import (
	"github.com/gin-gonic/gin"

	mw "github.com/KiranBagal-17/gully/internal/middleware"
	"github.com/KiranBagal-17/gully/internal/store"
)

// MatchRoutes sets up all match and scoring routes. Reads are public; every
// mutation requires a scorer token.
func MatchRoutes(router *gin.RouterGroup, st store.Store, jwtSecret string, rosters RosterSource) {
	repo := NewStoreMatchRepository(st)
	engine := NewEngineWithRosters(repo, rosters)
	controller := NewMatchController(repo, engine)

	public := router.Group("/matches")
	{
		public.GET("", controller.GetMatches)
		public.GET("/:id", controller.GetMatchByID)
		public.GET("/:id/balls/recent", controller.LastBalls)
		public.GET("/:id/stream", controller.WatchMatch)
	}

	scoring := router.Group("/matches")
	scoring.Use(mw.AuthMiddleware(jwtSecret))
	{
		scoring.POST("", controller.CreateMatch)
		scoring.POST("/:id/toss", controller.ResolveToss)
		scoring.POST("/:id/striker", controller.SelectStriker)
		scoring.POST("/:id/bowler", controller.SelectBowler)
		scoring.POST("/:id/next-batter", controller.SelectNextBatter)
		scoring.POST("/:id/balls/legal", controller.RecordLegalDelivery)
		scoring.POST("/:id/balls/wicket", controller.RecordWicket)
		scoring.POST("/:id/balls/extra", controller.RecordExtra)
		scoring.POST("/:id/second-innings", controller.StartSecondInnings)
		scoring.POST("/:id/finalize", controller.EndMatch)
	}
}
