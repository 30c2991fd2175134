package business

import (
	"fmt"
	"math/big"
	"time"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"

	"gorm.io/gorm"
)

// ClaimInfo bundles the schedule, the user's position and the computed
// claimable view for the claim-info query.
type ClaimInfo struct {
	Schedule   *models.VestingSchedule   `json:"schedule"`
	Allocation *models.VestingAllocation `json:"allocation"`
	Claimable  *ClaimableResult          `json:"claimable"`
}

// GetClaimInfo evaluates the round's vesting schedule against "now" for one
// user. Read-only; safe to call independently of finalization.
func GetClaimInfo(db *gorm.DB, roundID uint, userID string, now time.Time) (*ClaimInfo, error) {
	var schedule models.VestingSchedule
	if err := db.Where("round_id = ?", roundID).First(&schedule).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: vesting schedule for round %d", ErrNotFound, roundID)
		}
		return nil, err
	}
	var alloc models.VestingAllocation
	if err := db.Where("schedule_id = ? AND user_id = ?", schedule.ID, userID).First(&alloc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: vesting allocation for user %s", ErrNotFound, userID)
		}
		return nil, err
	}

	total, err := utils.ParseBig(alloc.AllocationTokens)
	if err != nil {
		return nil, validationErrorf("allocation %d tokens: %v", alloc.ID, err)
	}
	claimed, err := utils.ParseBig(alloc.ClaimedTokens)
	if err != nil {
		return nil, validationErrorf("allocation %d claimed: %v", alloc.ID, err)
	}

	claimable, err := CalculateClaimable(&schedule, total, claimed, now)
	if err != nil {
		return nil, err
	}
	return &ClaimInfo{Schedule: &schedule, Allocation: &alloc, Claimable: claimable}, nil
}

// ClaimVested advances the user's claimed_tokens by the currently claimable
// amount. The update is guarded on the claimed value read at calculation
// time, so two concurrent claims cannot both take the same tranche.
func ClaimVested(db *gorm.DB, roundID uint, userID string, now time.Time) (*ClaimInfo, error) {
	info, err := GetClaimInfo(db, roundID, userID, now)
	if err != nil {
		return nil, err
	}
	if info.Claimable.Claimable.Sign() == 0 {
		return nil, fmt.Errorf("%w: nothing claimable", ErrStateConflict)
	}

	claimed := utils.MustBig(info.Allocation.ClaimedTokens)
	newClaimed := new(big.Int).Add(claimed, info.Claimable.Claimable)

	res := db.Model(&models.VestingAllocation{}).
		Where("id = ? AND claimed_tokens = ?::numeric", info.Allocation.ID, info.Allocation.ClaimedTokens).
		Updates(map[string]interface{}{
			"claimed_tokens": newClaimed.String(),
			"last_claim_at":  now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: concurrent claim in progress, retry", ErrStateConflict)
	}

	info.Allocation.ClaimedTokens = newClaimed.String()
	info.Allocation.LastClaimAt = &now
	info.Claimable.Claimable.SetInt64(0)
	return info, nil
}
