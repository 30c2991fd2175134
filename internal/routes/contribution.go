package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupContributionRoutes sets up all routes related to contribution intake
func SetupContributionRoutes(r *gin.Engine) {
	contribution := r.Group("/contribution")
	{
		contribution.POST("", handlers.SubmitContribution)
		contribution.GET("/round/:id", handlers.ListContributions)
		contribution.GET("/mine", handlers.GetMyContributions)
	}
}
