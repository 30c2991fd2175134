package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	lcsolana "launchcontrol/pkg/solana"
	"launchcontrol/pkg/utils"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ContributionSubmitRequest is what a wallet submits after sending funds to
// the round vault. Amount is an integer string in the raise asset's smallest
// unit; the worker verifies it against the transaction before recording.
type ContributionSubmitRequest struct {
	RoundID uint   `json:"round_id" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
	ChainID uint64 `json:"chain_id"`
	TxHash  string `json:"tx_hash" binding:"required"`
}

// SubmitContribution validates the submission and queues it for on-chain
// verification. The ledger entry is only written by the worker once the
// transaction checks out.
func SubmitContribution(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	if caller.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing wallet address"})
		return
	}
	if !lcsolana.ValidateAddress(caller.WalletAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	var request ContributionSubmitRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := utils.ParseBig(request.Amount)
	if err != nil || amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive integer string"})
		return
	}
	if _, err := solana.SignatureFromBase58(request.TxHash); err != nil {
		respondError(c, fmt.Errorf("%w: malformed transaction signature", business.ErrChainVerification))
		return
	}

	var round models.Round
	if err := dbconfig.DB.First(&round, request.RoundID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if round.Status != models.RoundStatusLive {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("round is %s, not accepting contributions", round.Status)})
		return
	}

	// Reject known duplicates early; the unique index is still the authority.
	var existing int64
	if err := dbconfig.DB.Model(&models.Contribution{}).
		Where("chain_id = ? AND tx_hash = ?", round.ChainID, request.TxHash).
		Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "transaction already submitted"})
		return
	}

	if dbconfig.RabbitMQ == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification queue unavailable"})
		return
	}

	message := lcsolana.ContributionSubmitMessage{
		RoundID:       request.RoundID,
		UserID:        caller.UserID,
		WalletAddress: normalizeAddress(caller.WalletAddress),
		Amount:        amount.String(),
		ChainID:       round.ChainID,
		TxHash:        request.TxHash,
	}

	publisher, err := dbconfig.NewPublisher()
	if err != nil {
		log.Errorf("Failed to create RabbitMQ publisher: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification queue unavailable"})
		return
	}
	defer publisher.Close()

	if err := publisher.Publish(dbconfig.QueueContributionSubmitted, message); err != nil {
		log.Errorf("Failed to publish contribution for tx %s: %v", request.TxHash, err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to queue contribution"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "tx_hash": request.TxHash})
}

// ListContributions returns a round's contributions, newest first.
func ListContributions(c *gin.Context) {
	roundID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	query := dbconfig.DB.Where("round_id = ?", roundID).Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var contributions []models.Contribution
	if err := query.Find(&contributions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contributions)
}

// GetMyContributions returns the caller's contributions across rounds.
func GetMyContributions(c *gin.Context) {
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}

	var contributions []models.Contribution
	if err := dbconfig.DB.Where("user_id = ?", caller.UserID).
		Order("id DESC").Find(&contributions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contributions)
}
