package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	"launchcontrol/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RoundRequest represents the request body for creating a round.
// All amounts are base-10 integer strings in the raise asset's smallest unit.
type RoundRequest struct {
	Name          string     `json:"name" binding:"required"`
	Kind          string     `json:"kind" binding:"required"`
	TokenAddress  string     `json:"token_address" binding:"required"`
	VaultAddress  string     `json:"vault_address" binding:"required"`
	RaiseAsset    string     `json:"raise_asset"`
	ChainID       uint64     `json:"chain_id"`
	Softcap       string     `json:"softcap" binding:"required"`
	Hardcap       string     `json:"hardcap" binding:"required"`
	Price         string     `json:"price"`
	TokenForSale  string     `json:"token_for_sale"`
	TokenDecimals uint8      `json:"token_decimals"`
	FeeBps        int64      `json:"fee_bps"`
	LpBps         int64      `json:"lp_bps"`
	TeamBps       int64      `json:"team_bps"`
	StartAt       *time.Time `json:"start_at"`
	EndAt         *time.Time `json:"end_at"`
}

// CreateRound creates a new round in DRAFT
func CreateRound(c *gin.Context) {
	var request RoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if request.Kind != models.RoundKindPresale && request.Kind != models.RoundKindFairlaunch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be PRESALE or FAIRLAUNCH"})
		return
	}
	for field, v := range map[string]string{
		"softcap": request.Softcap, "hardcap": request.Hardcap,
	} {
		if _, err := utils.ParseBig(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", field, err)})
			return
		}
	}
	if request.Kind == models.RoundKindPresale {
		price, err := utils.ParseBig(request.Price)
		if err != nil || price.Sign() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "presale rounds require a positive price"})
			return
		}
	}
	if request.Kind == models.RoundKindFairlaunch {
		tokenForSale, err := utils.ParseBig(request.TokenForSale)
		if err != nil || tokenForSale.Sign() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fairlaunch rounds require a positive token_for_sale"})
			return
		}
	}

	raiseAsset := request.RaiseAsset
	if raiseAsset == "" {
		raiseAsset = "sol"
	}
	chainID := request.ChainID
	if chainID == 0 {
		chainID = 101
	}
	decimals := request.TokenDecimals
	if decimals == 0 {
		decimals = 9
	}
	feeBps := request.FeeBps
	if feeBps == 0 {
		feeBps = 500
	}
	price := request.Price
	if price == "" {
		price = "0"
	}
	tokenForSale := request.TokenForSale
	if tokenForSale == "" {
		tokenForSale = "0"
	}

	round := models.Round{
		Name:          request.Name,
		Kind:          request.Kind,
		Status:        models.RoundStatusDraft,
		Result:        models.RoundResultNone,
		TokenAddress:  request.TokenAddress,
		VaultAddress:  request.VaultAddress,
		RaiseAsset:    raiseAsset,
		ChainID:       chainID,
		MerkleSalt:    uuid.NewString(),
		Softcap:       request.Softcap,
		Hardcap:       request.Hardcap,
		Price:         price,
		TokenForSale:  tokenForSale,
		TokenDecimals: decimals,
		FeeBps:        feeBps,
		LpBps:         request.LpBps,
		TeamBps:       request.TeamBps,
		TotalRaised:   "0",
		StartAt:       request.StartAt,
		EndAt:         request.EndAt,
	}

	if err := dbconfig.DB.Create(&round).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, round)
}

// ListRounds returns all rounds, optionally filtered by status
func ListRounds(c *gin.Context) {
	query := dbconfig.DB.Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var rounds []models.Round
	if err := query.Find(&rounds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rounds)
}

// GetRound returns a specific round by ID
func GetRound(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var round models.Round
	if err := dbconfig.DB.First(&round, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	c.JSON(http.StatusOK, round)
}

// transitionRound moves a round between pre-finalization statuses with a
// status precondition so concurrent admin actions race safely.
func transitionRound(c *gin.Context, from, to string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	res := dbconfig.DB.Model(&models.Round{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("round is not %s", from)})
		return
	}

	var round models.Round
	if err := dbconfig.DB.First(&round, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, round)
}

// OpenRound transitions DRAFT -> LIVE
func OpenRound(c *gin.Context) {
	transitionRound(c, models.RoundStatusDraft, models.RoundStatusLive)
}

// CloseRound transitions LIVE -> ENDED
func CloseRound(c *gin.Context) {
	transitionRound(c, models.RoundStatusLive, models.RoundStatusEnded)
}

// FinalizeRoundRequest carries the caller-supplied idempotency key.
type FinalizeRoundRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required"`
}

// FinalizeRound runs the finalization state machine for an ENDED round and
// publishes the outcome for the contract-submission boundary.
func FinalizeRound(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	caller, ok := callerIdentity(c)
	if !ok {
		return
	}
	var request FinalizeRoundRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := business.Finalize(dbconfig.DB, uint(id), request.IdempotencyKey, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	if !outcome.AlreadyFinalized && dbconfig.RabbitMQ != nil {
		publishFinalizeEvent(uint(id), outcome)
	}

	c.JSON(http.StatusOK, outcome)
}

// publishFinalizeEvent hands the settlement result to the on-chain
// submission boundary. Failures are logged only; the outcome is re-derivable
// and the boundary can poll.
func publishFinalizeEvent(roundID uint, outcome *business.FinalizeOutcome) {
	publisher, err := dbconfig.NewPublisher()
	if err != nil {
		log.Errorf("Failed to create RabbitMQ publisher: %v", err)
		return
	}
	defer publisher.Close()

	queue := dbconfig.QueueRoundFinalized
	payload := gin.H{
		"round_id":         roundID,
		"result":           outcome.Result,
		"merkle_root":      outcome.MerkleRoot,
		"total_allocation": outcome.TotalAllocation,
	}
	if outcome.Result == models.RoundResultFailed {
		queue = dbconfig.QueueRefundsCreated
		payload = gin.H{
			"round_id":        roundID,
			"result":          outcome.Result,
			"refunds_created": outcome.RefundsCreated,
		}
	}
	if err := publisher.Publish(queue, payload); err != nil {
		log.Errorf("Failed to publish finalize event for round %d: %v", roundID, err)
	}
}

// PreviewSupplyRequest mirrors SupplyParams with string amounts
type PreviewSupplyRequest struct {
	Hardcap       string `json:"hardcap" binding:"required"`
	Price         string `json:"price" binding:"required"`
	TokenDecimals uint8  `json:"token_decimals"`
	FeeBps        int64  `json:"fee_bps"`
	LpBps         int64  `json:"lp_bps"`
	TeamBps       int64  `json:"team_bps"`
	LpBufferBps   int64  `json:"lp_buffer_bps"`
}

// PreviewSupply computes the mint/escrow supply breakdown for round params
// without persisting anything.
func PreviewSupply(c *gin.Context) {
	var request PreviewSupplyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hardcap, err := utils.ParseBig(request.Hardcap)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid hardcap: %v", err)})
		return
	}
	price, err := utils.ParseBig(request.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid price: %v", err)})
		return
	}
	decimals := request.TokenDecimals
	if decimals == 0 {
		decimals = 9
	}

	result, err := business.CalculateSupply(business.SupplyParams{
		Hardcap:       hardcap,
		Price:         price,
		TokenDecimals: decimals,
		FeeBps:        request.FeeBps,
		LpBps:         request.LpBps,
		TeamBps:       request.TeamBps,
		LpBufferBps:   request.LpBufferBps,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sale_tokens":  result.SaleTokens.String(),
		"net_raise":    result.NetRaise.String(),
		"lp_raise":     result.LpRaise.String(),
		"lp_tokens":    result.LpTokens.String(),
		"team_tokens":  result.TeamTokens.String(),
		"total_supply": result.TotalSupply.String(),
	})
}

// GetRoundProof recomputes the commitment tree for a finalized SUCCESS round
// and returns the proof for one wallet address. Determinism of the builder
// guarantees the recomputed root matches the submitted one.
func GetRoundProof(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})
		return
	}

	var round models.Round
	if err := dbconfig.DB.First(&round, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if round.Result != models.RoundResultSuccess {
		c.JSON(http.StatusConflict, gin.H{"error": "round has no allocation commitment"})
		return
	}

	var contributions []models.Contribution
	if err := dbconfig.DB.Where("round_id = ? AND status = ?", round.ID, models.ContributionStatusConfirmed).
		Find(&contributions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	built, err := business.BuildAllocationTree(&round, contributions)
	if err != nil {
		respondError(c, err)
		return
	}

	proof, ok := built.Proofs[normalizeAddress(address)]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "address has no allocation in this round"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"root":    built.Root,
		"address": normalizeAddress(address),
		"proof":   proof,
	})
}

// ReconcileRound triggers reconciliation for one round on demand.
func ReconcileRound(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	report, err := business.Reconcile(dbconfig.DB, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
