package models

import (
	"time"
)

// Vesting interval types
const (
	VestingIntervalDaily   = "DAILY"
	VestingIntervalMonthly = "MONTHLY"
)

// VestingSchedule describes how a round's sale tokens unlock over time.
// Immutable after creation; the claim-info query evaluates it against "now".
type VestingSchedule struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	RoundID       uint      `gorm:"not null;uniqueIndex" json:"round_id"`
	TokenAddress  string    `gorm:"size:64;not null" json:"token_address"`
	TotalTokens   string    `gorm:"type:numeric(78,0);not null" json:"total_tokens"`
	TgePercentage int64     `gorm:"not null;default:0" json:"tge_percentage"` // 0-100
	TgeAt         time.Time `gorm:"not null" json:"tge_at"`
	CliffMonths   int       `gorm:"not null;default:0" json:"cliff_months"`
	VestingMonths int       `gorm:"not null;default:0" json:"vesting_months"`
	IntervalType  string    `gorm:"size:10;not null;default:'MONTHLY'" json:"interval_type"` // DAILY / MONTHLY

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (VestingSchedule) TableName() string {
	return "vesting_schedule"
}

// VestingAllocation tracks one user's position against a schedule.
// ClaimedTokens is monotonically non-decreasing.
type VestingAllocation struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	ScheduleID       uint       `gorm:"not null;uniqueIndex:idx_vesting_schedule_user" json:"schedule_id"`
	UserID           string     `gorm:"size:64;not null;uniqueIndex:idx_vesting_schedule_user" json:"user_id"`
	AllocationTokens string     `gorm:"type:numeric(78,0);not null" json:"allocation_tokens"`
	ClaimedTokens    string     `gorm:"type:numeric(78,0);not null;default:0" json:"claimed_tokens"`
	LastClaimAt      *time.Time `json:"last_claim_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (VestingAllocation) TableName() string {
	return "vesting_allocation"
}
