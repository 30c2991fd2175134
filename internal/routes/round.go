package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoundRoutes sets up all routes related to sale round management
func SetupRoundRoutes(r *gin.Engine) {
	round := r.Group("/round")
	{
		round.GET("", handlers.ListRounds)
		round.GET("/:id", handlers.GetRound)
		round.POST("", handlers.CreateRound)
		round.POST("/:id/open", handlers.OpenRound)
		round.POST("/:id/close", handlers.CloseRound)
		round.POST("/:id/finalize", handlers.FinalizeRound)
		round.POST("/:id/reconcile", handlers.ReconcileRound)
		round.POST("/supply-preview", handlers.PreviewSupply)
		round.GET("/:id/proof", handlers.GetRoundProof)
		round.GET("/:id/vault", handlers.GetRoundVault)
		round.GET("/:id/stream", handlers.StreamRoundStats)
	}
}
