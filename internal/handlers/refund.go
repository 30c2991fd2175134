package handlers

import (
	"net/http"
	"strconv"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	"github.com/gin-gonic/gin"
)

// ListRoundRefunds returns all refunds for a round.
func ListRoundRefunds(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var refunds []models.Refund
	if err := dbconfig.DB.Where("round_id = ?", roundID).Order("id").Find(&refunds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, refunds)
}

// GetMyRefunds returns the caller's refunds across rounds.
func GetMyRefunds(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var refunds []models.Refund
	if err := dbconfig.DB.Where("user_id = ?", caller.UserID).Order("id DESC").Find(&refunds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, refunds)
}

// ClaimRefund advances a refund PENDING -> PROCESSING; the losing side of a
// concurrent claim gets 409 and should poll.
func ClaimRefund(c *gin.Context) {
	refundID, err := strconv.Atoi(c.Param("refund_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var refund models.Refund
	if err := dbconfig.DB.First(&refund, refundID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if refund.UserID != caller.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "refund belongs to another user"})
		return
	}

	claimed, err := business.ClaimRefund(dbconfig.DB, uint(refundID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, claimed)
}

// CompleteRefundRequest records the payout transaction hash.
type CompleteRefundRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}

// CompleteRefund marks a PROCESSING refund COMPLETED. Called by the payout
// boundary once the on-chain transfer lands.
func CompleteRefund(c *gin.Context) {
	refundID, err := strconv.Atoi(c.Param("refund_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request CompleteRefundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := business.CompleteRefund(dbconfig.DB, uint(refundID), request.TxHash); err != nil {
		respondError(c, err)
		return
	}

	var refund models.Refund
	if err := dbconfig.DB.First(&refund, refundID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, refund)
}
