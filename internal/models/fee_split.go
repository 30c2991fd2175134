package models

import (
	"time"
)

// Fee source types
const (
	FeeSourcePresale    = "PRESALE"
	FeeSourceFairlaunch = "FAIRLAUNCH"
	FeeSourceBonding    = "BONDING"
	FeeSourceBluecheck  = "BLUECHECK"
)

// FeeSplit records how one fee-bearing event was divided between the
// treasury, the referral pool and the staking pool. Exactly one row exists
// per (source_type, source_id); duplicate triggers are ignored on conflict.
// Invariant: treasury + referral_pool + staking_pool == total.
type FeeSplit struct {
	ID                 uint   `gorm:"primarykey" json:"id"`
	SourceType         string `gorm:"size:20;not null;uniqueIndex:idx_fee_split_source" json:"source_type"`
	SourceID           string `gorm:"size:128;not null;uniqueIndex:idx_fee_split_source" json:"source_id"`
	TotalAmount        string `gorm:"type:numeric(78,0);not null" json:"total_amount"`
	TreasuryAmount     string `gorm:"type:numeric(78,0);not null" json:"treasury_amount"`
	ReferralPoolAmount string `gorm:"type:numeric(78,0);not null" json:"referral_pool_amount"`
	StakingPoolAmount  string `gorm:"type:numeric(78,0);not null" json:"staking_pool_amount"`
	Processed          bool   `gorm:"not null;default:false" json:"processed"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (FeeSplit) TableName() string {
	return "fee_split"
}
