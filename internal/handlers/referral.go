package handlers

import (
	"net/http"
	"strconv"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterReferralRequest links the caller to the referrer who invited them.
type RegisterReferralRequest struct {
	ReferrerID string `json:"referrer_id" binding:"required"`
}

// RegisterReferral creates the referral relationship. A referee has at most
// one referrer, ever; the relationship activates on their first confirmed
// contribution, not here.
func RegisterReferral(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var request RegisterReferralRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.ReferrerID == caller.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot refer yourself"})
		return
	}

	rel := models.ReferralRelationship{
		ReferrerID: request.ReferrerID,
		RefereeID:  caller.UserID,
	}
	res := dbconfig.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "referral relationship already exists"})
		return
	}
	c.JSON(http.StatusCreated, rel)
}

// GetReferralSummary returns the caller's referrer-side view: counters plus
// ledger entries.
func GetReferralSummary(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var stat models.ReferralStat
	if err := dbconfig.DB.Where("referrer_id = ?", caller.UserID).First(&stat).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		stat = models.ReferralStat{ReferrerID: caller.UserID, TotalEarned: "0"}
	}

	var ledger []models.ReferralLedger
	if err := dbconfig.DB.Where("referrer_id = ?", caller.UserID).
		Order("id DESC").Find(&ledger).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active_referrals": stat.ActiveReferrals,
		"total_earned":     stat.TotalEarned,
		"ledger":           ledger,
	})
}

// ClaimReferralEntry flips one ledger entry CLAIMABLE -> CLAIMED under the
// usual status precondition.
func ClaimReferralEntry(c *gin.Context) {
	entryID, err := strconv.Atoi(c.Param("entry_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	res := dbconfig.DB.Model(&models.ReferralLedger{}).
		Where("id = ? AND referrer_id = ? AND status = ?", entryID, caller.UserID, models.ReferralLedgerClaimable).
		Update("status", models.ReferralLedgerClaimed)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "entry is not claimable"})
		return
	}

	var entry models.ReferralLedger
	if err := dbconfig.DB.First(&entry, entryID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}
