package handlers

import (
	"net/http"
	"strconv"
	"time"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/utils"

	"github.com/gin-gonic/gin"
)

// VestingScheduleRequest creates the immutable unlock schedule for a round.
type VestingScheduleRequest struct {
	RoundID       uint      `json:"round_id" binding:"required"`
	TokenAddress  string    `json:"token_address" binding:"required"`
	TotalTokens   string    `json:"total_tokens" binding:"required"`
	TgePercentage int64     `json:"tge_percentage"`
	TgeAt         time.Time `json:"tge_at" binding:"required"`
	CliffMonths   int       `json:"cliff_months"`
	VestingMonths int       `json:"vesting_months"`
	IntervalType  string    `json:"interval_type"`
}

// CreateVestingSchedule creates a round's vesting schedule. One per round;
// immutable after creation.
func CreateVestingSchedule(c *gin.Context) {
	var request VestingScheduleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.TgePercentage < 0 || request.TgePercentage > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tge_percentage must be 0-100"})
		return
	}
	if _, err := utils.ParseBig(request.TotalTokens); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid total_tokens"})
		return
	}
	interval := request.IntervalType
	if interval == "" {
		interval = models.VestingIntervalMonthly
	}
	if interval != models.VestingIntervalDaily && interval != models.VestingIntervalMonthly {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval_type must be DAILY or MONTHLY"})
		return
	}

	schedule := models.VestingSchedule{
		RoundID:       request.RoundID,
		TokenAddress:  request.TokenAddress,
		TotalTokens:   request.TotalTokens,
		TgePercentage: request.TgePercentage,
		TgeAt:         request.TgeAt,
		CliffMonths:   request.CliffMonths,
		VestingMonths: request.VestingMonths,
		IntervalType:  interval,
	}
	if err := dbconfig.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// GetClaimInfo returns the caller's unlocked/claimable/next-unlock view for
// a round at the current time.
func GetClaimInfo(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	info, err := business.GetClaimInfo(dbconfig.DB, uint(roundID), caller.UserID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimInfoResp(info))
}

// ClaimVested advances the caller's claimed amount by whatever is claimable
// right now.
func ClaimVested(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	info, err := business.ClaimVested(dbconfig.DB, uint(roundID), caller.UserID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimInfoResp(info))
}

// claimInfoResp converts big integers to strings. Display percentages are
// derived at this boundary only; settlement values stay integers.
func claimInfoResp(info *business.ClaimInfo) gin.H {
	resp := gin.H{
		"schedule":         info.Schedule,
		"allocation":       info.Allocation,
		"unlocked":         info.Claimable.Unlocked.String(),
		"claimable":        info.Claimable.Claimable.String(),
		"progress_percent": float64(info.Claimable.ProgressBps) / 100.0,
		"fully_unlocked":   info.Claimable.FullyUnlocked,
	}
	if info.Claimable.NextUnlockAmount != nil {
		resp["next_unlock_amount"] = info.Claimable.NextUnlockAmount.String()
		resp["next_unlock_at"] = info.Claimable.NextUnlockAt
	}
	return resp
}
