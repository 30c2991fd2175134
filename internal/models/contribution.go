package models

import (
	"time"
)

// Contribution statuses
const (
	ContributionStatusPending   = "PENDING"
	ContributionStatusConfirmed = "CONFIRMED"
)

// Contribution is a single confirmed-or-pending deposit into a round's vault.
// Rows are created by the contribution-confirmation boundary (worker); the
// settlement core only ever reads them. TxHash is unique per chain so a
// double-submitted transaction fails on insert instead of double-counting.
type Contribution struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	RoundID       uint   `gorm:"not null;index" json:"round_id"`
	UserID        string `gorm:"size:64;not null;index" json:"user_id"`
	WalletAddress string `gorm:"size:64;not null" json:"wallet_address"`
	Amount        string `gorm:"type:numeric(78,0);not null" json:"amount"`
	Status        string `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	ChainID       uint64 `gorm:"not null;default:101;uniqueIndex:idx_contribution_chain_tx" json:"chain_id"`
	TxHash        string `gorm:"size:128;not null;uniqueIndex:idx_contribution_chain_tx" json:"tx_hash"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Contribution) TableName() string {
	return "contribution"
}
