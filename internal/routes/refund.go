package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRefundRoutes sets up all routes related to refund processing
func SetupRefundRoutes(r *gin.Engine) {
	refund := r.Group("/refund")
	{
		refund.GET("/round/:id", handlers.ListRoundRefunds)
		refund.GET("/mine", handlers.GetMyRefunds)
		refund.POST("/:refund_id/claim", handlers.ClaimRefund)
		refund.POST("/:refund_id/complete", handlers.CompleteRefund)
	}
}
