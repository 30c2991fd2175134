package routes

import (
	"launchcontrol/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupReferralRoutes sets up all routes related to the referral program
func SetupReferralRoutes(r *gin.Engine) {
	referral := r.Group("/referral")
	{
		referral.POST("", handlers.RegisterReferral)
		referral.GET("/summary", handlers.GetReferralSummary)
		referral.POST("/ledger/:entry_id/claim", handlers.ClaimReferralEntry)
	}
}
