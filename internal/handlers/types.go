package handlers

import (
	"errors"
	"net/http"

	"launchcontrol/internal/handlers/business"

	"github.com/gin-gonic/gin"
)

// Identity extracted from gateway headers. Authentication happens upstream;
// this service trusts the forwarded identity.
type identity struct {
	UserID        string
	WalletAddress string
}

func callerIdentity(c *gin.Context) (identity, bool) {
	id := identity{
		UserID:        c.GetHeader("X-User-ID"),
		WalletAddress: c.GetHeader("X-Wallet-Address"),
	}
	if id.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return id, false
	}
	return id, true
}

// respondError maps the settlement error taxonomy onto HTTP statuses.
// State conflicts are 409 so callers can distinguish "already done" from
// genuine failures.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, business.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, business.ErrChainVerification):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
