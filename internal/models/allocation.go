package models

import (
	"time"
)

// Refund statuses
const (
	RefundStatusPending    = "PENDING"
	RefundStatusProcessing = "PROCESSING"
	RefundStatusCompleted  = "COMPLETED"
)

// Allocation is the per-user settlement row written once at finalization of a
// SUCCESS round. Rows are re-derivable from confirmed contributions, so a
// failed insert is retried rather than rolled back.
type Allocation struct {
	ID                uint   `gorm:"primarykey" json:"id"`
	RoundID           uint   `gorm:"not null;uniqueIndex:idx_allocation_round_user" json:"round_id"`
	UserID            string `gorm:"size:64;not null;uniqueIndex:idx_allocation_round_user" json:"user_id"`
	WalletAddress     string `gorm:"size:64;not null" json:"wallet_address"`
	ContributedAmount string `gorm:"type:numeric(78,0);not null" json:"contributed_amount"`
	AllocationTokens  string `gorm:"type:numeric(78,0);not null" json:"allocation_tokens"`
	ClaimableTokens   string `gorm:"type:numeric(78,0);not null;default:0" json:"claimable_tokens"`
	RefundAmount      string `gorm:"type:numeric(78,0);not null;default:0" json:"refund_amount"`
	LeafIndex         int    `gorm:"not null;default:0" json:"leaf_index"` // position in the committed merkle leaf list

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Allocation) TableName() string {
	return "allocation"
}

// Refund is written once per contributor at finalization of a FAILED round.
// Status advances PENDING -> PROCESSING -> COMPLETED under optimistic locking.
type Refund struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	RoundID   uint   `gorm:"not null;uniqueIndex:idx_refund_round_user" json:"round_id"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:idx_refund_round_user" json:"user_id"`
	Amount    string `gorm:"type:numeric(78,0);not null" json:"amount"`
	Status    string `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Reference string `gorm:"size:64" json:"reference"` // payout idempotency reference
	TxHash    string `gorm:"size:128" json:"tx_hash"`  // payout transaction, set on completion

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Refund) TableName() string {
	return "refund"
}
