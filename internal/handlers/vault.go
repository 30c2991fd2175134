package handlers

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"
	lcsolana "launchcontrol/pkg/solana"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
)

const vaultQueryTimeout = 15 * time.Second

func rpcEndpoint() string {
	if endpoint := os.Getenv("SOLANA_RPC_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return rpc.MainNetBeta_RPC
}

// GetRoundVault returns the round vault's live lamport balance alongside the
// cached ledger total, plus recent signatures for manual cross-checks.
func GetRoundVault(c *gin.Context) {
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

	ctx, cancel := context.WithTimeout(c.Request.Context(), vaultQueryTimeout)
	defer cancel()

	endpoint := rpcEndpoint()
	balance, err := lcsolana.GetVaultBalance(ctx, lcsolana.NewBalanceClient(endpoint), round.VaultAddress)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "vault balance unavailable: " + err.Error()})
		return
	}

	signatures, err := lcsolana.ListVaultSignatures(ctx, rpc.New(endpoint), round.VaultAddress, 20)
	if err != nil {
		// Balance alone is still useful; surface the partial failure.
		signatures = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"round_id":          round.ID,
		"vault_address":     round.VaultAddress,
		"vault_balance":     strconv.FormatUint(balance, 10),
		"ledger_total":      round.TotalRaised,
		"recent_signatures": signatures,
	})
}
