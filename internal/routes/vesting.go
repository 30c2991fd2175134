package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupVestingRoutes sets up all routes related to vesting schedules and claims
func SetupVestingRoutes(r *gin.Engine) {
	vesting := r.Group("/vesting")
	{
		vesting.POST("", handlers.CreateVestingSchedule)
		vesting.GET("/round/:id/claim-info", handlers.GetClaimInfo)
		vesting.POST("/round/:id/claim", handlers.ClaimVested)
	}
}
