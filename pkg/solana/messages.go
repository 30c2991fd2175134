package solana

// ContributionSubmitMessage is the queue payload the API publishes for each
// declared deposit. The verification worker consumes it, checks the signature
// on chain and writes the ledger entry.
type ContributionSubmitMessage struct {
	RoundID       uint   `json:"round_id"`
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	Amount        string `json:"amount"`
	ChainID       uint64 `json:"chain_id"`
	TxHash        string `json:"tx_hash"`
}
