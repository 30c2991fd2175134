package models

import (
	"time"
)

// Referral ledger statuses
const (
	ReferralLedgerClaimable = "CLAIMABLE"
	ReferralLedgerClaimed   = "CLAIMED"
)

// ReferralRelationship links a referee to the referrer who brought them in.
// ActivatedAt stays null until the referee's first confirmed contribution
// and is stamped exactly once.
type ReferralRelationship struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	ReferrerID  string     `gorm:"size:64;not null;index" json:"referrer_id"`
	RefereeID   string     `gorm:"size:64;not null;uniqueIndex" json:"referee_id"`
	ActivatedAt *time.Time `json:"activated_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ReferralRelationship) TableName() string {
	return "referral_relationship"
}

// ReferralStat caches per-referrer counters maintained by the fee splitter.
type ReferralStat struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	ReferrerID      string `gorm:"size:64;not null;uniqueIndex" json:"referrer_id"`
	ActiveReferrals int64  `gorm:"not null;default:0" json:"active_referrals"`
	TotalEarned     string `gorm:"type:numeric(78,0);not null;default:0" json:"total_earned"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ReferralStat) TableName() string {
	return "referral_stat"
}

// ReferralLedger holds one claimable reward entry per
// (source_type, source_id, referee_id); writes are upserts, never duplicates.
type ReferralLedger struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ReferrerID string `gorm:"size:64;not null;index" json:"referrer_id"`
	RefereeID  string `gorm:"size:64;not null;uniqueIndex:idx_referral_ledger_source" json:"referee_id"`
	SourceType string `gorm:"size:20;not null;uniqueIndex:idx_referral_ledger_source" json:"source_type"`
	SourceID   string `gorm:"size:128;not null;uniqueIndex:idx_referral_ledger_source" json:"source_id"`
	Amount     string `gorm:"type:numeric(78,0);not null" json:"amount"`
	Status     string `gorm:"size:20;not null;default:'CLAIMABLE'" json:"status"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ReferralLedger) TableName() string {
	return "referral_ledger"
}

// ReconciliationAnomaly is written when post-finalization totals drift from
// the contribution ledger. Never auto-corrected; cleared manually after review.
type ReconciliationAnomaly struct {
	ID                     uint   `gorm:"primarykey" json:"id"`
	RoundID                uint   `gorm:"not null;index" json:"round_id"`
	DBTotal                string `gorm:"type:numeric(78,0);not null" json:"db_total"`
	CalculatedTotal        string `gorm:"type:numeric(78,0);not null" json:"calculated_total"`
	DBParticipants         int64  `gorm:"not null" json:"db_participants"`
	CalculatedParticipants int64  `gorm:"not null" json:"calculated_participants"`
	Resolved               bool   `gorm:"not null;default:false" json:"resolved"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ReconciliationAnomaly) TableName() string {
	return "reconciliation_anomaly"
}
