package models

import (
	"time"
)

// Round kinds
const (
	RoundKindPresale    = "PRESALE"
	RoundKindFairlaunch = "FAIRLAUNCH"
)

// Round statuses
const (
	RoundStatusDraft     = "DRAFT"
	RoundStatusLive      = "LIVE"
	RoundStatusEnded     = "ENDED"
	RoundStatusFinalized = "FINALIZED"
)

// Round results
const (
	RoundResultNone     = "NONE"
	RoundResultSuccess  = "SUCCESS"
	RoundResultFailed   = "FAILED"
	RoundResultCanceled = "CANCELED"
)

// Round represents a token sale round (fixed-price presale or fairlaunch).
// All monetary columns are exact-precision integers in the raise asset's
// smallest unit, stored as numeric strings so settlement math never touches
// floating point.
type Round struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `gorm:"size:64;not null" json:"name"`
	Kind         string `gorm:"size:20;not null" json:"kind"`                       // PRESALE / FAIRLAUNCH
	Status       string `gorm:"size:20;not null;default:'DRAFT'" json:"status"`     // DRAFT/LIVE/ENDED/FINALIZED
	Result       string `gorm:"size:20;not null;default:'NONE'" json:"result"`      // NONE/SUCCESS/FAILED/CANCELED
	TokenAddress string `gorm:"size:64;not null" json:"token_address"`              // mint of the sale token
	VaultAddress string `gorm:"size:64;not null" json:"vault_address"`              // on-chain vault receiving contributions
	RaiseAsset   string `gorm:"size:64;not null;default:'sol'" json:"raise_asset"`  // "sol" or token mint
	ChainID      uint64 `gorm:"not null;default:101" json:"chain_id"`               // 101 mainnet, 102 testnet, 103 devnet
	MerkleSalt   string `gorm:"size:64;not null" json:"merkle_salt"`                // binds commitment leaves to this round

	Softcap      string `gorm:"type:numeric(78,0);not null;default:0" json:"softcap"`
	Hardcap      string `gorm:"type:numeric(78,0);not null;default:0" json:"hardcap"`
	Price        string `gorm:"type:numeric(78,0);not null;default:0" json:"price"`          // raise units per whole token; 0 until fairlaunch finalizes
	TokenForSale string `gorm:"type:numeric(78,0);not null;default:0" json:"token_for_sale"` // smallest token units escrowed for sale

	TokenDecimals uint8 `gorm:"not null;default:9" json:"token_decimals"`
	FeeBps        int64 `gorm:"not null;default:500" json:"fee_bps"`
	LpBps         int64 `gorm:"not null;default:0" json:"lp_bps"`
	TeamBps       int64 `gorm:"not null;default:0" json:"team_bps"`

	// Cached aggregates, kept honest by the reconciliation job.
	TotalRaised       string `gorm:"type:numeric(78,0);not null;default:0" json:"total_raised"`
	TotalParticipants int64  `gorm:"not null;default:0" json:"total_participants"`

	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	FinalizeKey string     `gorm:"size:64" json:"finalize_key"`
	FinalizedBy string     `gorm:"size:64" json:"finalized_by"`
	FinalizedAt *time.Time `json:"finalized_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Round) TableName() string {
	return "round"
}
