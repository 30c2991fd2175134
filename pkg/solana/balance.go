package solana

import (
	"context"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	bloctocommon "github.com/blocto/solana-go-sdk/common"
)

// NewBalanceClient returns a client for vault balance probes.
func NewBalanceClient(endpoint string) *client.Client {
	return client.NewClient(endpoint)
}

// ValidateAddress reports whether s is a well-formed base58 Solana public key.
func ValidateAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	pk := bloctocommon.PublicKeyFromString(s)
	return pk != (bloctocommon.PublicKey{})
}

// GetVaultBalance returns a vault's lamport balance.
func GetVaultBalance(ctx context.Context, c *client.Client, vaultAddress string) (uint64, error) {
	if !ValidateAddress(vaultAddress) {
		return 0, fmt.Errorf("invalid vault address %q", vaultAddress)
	}
	balance, err := c.GetBalance(ctx, vaultAddress)
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	return balance, nil
}
