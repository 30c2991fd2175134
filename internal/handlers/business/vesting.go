package business

import (
	"math/big"
	"time"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"
)

// ClaimableResult is the claim-info view of one vesting position at a point
// in time. Amounts are integers in the token's smallest unit; ProgressBps is
// unlocked/total scaled to basis points for 2-decimal percentage display.
type ClaimableResult struct {
	Unlocked         *big.Int   `json:"unlocked"`
	Claimable        *big.Int   `json:"claimable"`
	NextUnlockAmount *big.Int   `json:"next_unlock_amount"` // nil once fully unlocked
	NextUnlockAt     *time.Time `json:"next_unlock_at"`
	ProgressBps      int64      `json:"progress_bps"`
	FullyUnlocked    bool       `json:"fully_unlocked"`
}

// CalculateClaimable evaluates a vesting schedule against "now" for one
// allocation. unlocked(t) is non-decreasing in t; claimable never goes
// negative even if claimed somehow exceeds unlocked.
func CalculateClaimable(schedule *models.VestingSchedule, total, claimed *big.Int, now time.Time) (*ClaimableResult, error) {
	if schedule == nil {
		return nil, validationErrorf("schedule is nil")
	}
	if total == nil || total.Sign() < 0 || claimed == nil || claimed.Sign() < 0 {
		return nil, validationErrorf("allocation amounts must be non-negative")
	}
	if schedule.TgePercentage < 0 || schedule.TgePercentage > 100 {
		return nil, validationErrorf("tge_percentage %d out of range", schedule.TgePercentage)
	}

	tgeAt := schedule.TgeAt
	cliffEnd := tgeAt.AddDate(0, schedule.CliffMonths, 0)
	vestingEnd := cliffEnd.AddDate(0, schedule.VestingMonths, 0)

	tgeAmount := utils.MulDiv(total, big.NewInt(schedule.TgePercentage), big.NewInt(100))
	linearPool := new(big.Int).Sub(total, tgeAmount)

	res := &ClaimableResult{}

	switch {
	case now.Before(tgeAt):
		res.Unlocked = big.NewInt(0)
		res.NextUnlockAmount = tgeAmount
		at := tgeAt
		res.NextUnlockAt = &at

	case now.Before(cliffEnd):
		res.Unlocked = new(big.Int).Set(tgeAmount)
		at, amount := firstLinearUnlock(schedule, cliffEnd, vestingEnd, linearPool)
		res.NextUnlockAt = at
		res.NextUnlockAmount = amount

	case !now.Before(vestingEnd):
		res.Unlocked = new(big.Int).Set(total)
		res.FullyUnlocked = true

	default:
		elapsed, totalUnits := vestingProgress(schedule, cliffEnd, vestingEnd, now)
		if totalUnits == 0 {
			res.Unlocked = new(big.Int).Set(total)
			res.FullyUnlocked = true
			break
		}
		unlockedLinear := utils.MulDiv(linearPool, big.NewInt(elapsed), big.NewInt(totalUnits))
		res.Unlocked = new(big.Int).Add(tgeAmount, unlockedLinear)
		if elapsed+1 <= totalUnits {
			nextLinear := utils.MulDiv(linearPool, big.NewInt(elapsed+1), big.NewInt(totalUnits))
			tranche := new(big.Int).Sub(nextLinear, unlockedLinear)
			at := addIntervals(schedule, cliffEnd, elapsed+1)
			res.NextUnlockAt = &at
			res.NextUnlockAmount = tranche
		}
	}

	claimable := new(big.Int).Sub(res.Unlocked, claimed)
	if claimable.Sign() < 0 {
		claimable = big.NewInt(0)
	}
	res.Claimable = claimable

	if total.Sign() > 0 {
		res.ProgressBps = utils.MulDiv(res.Unlocked, big.NewInt(utils.BpsDenominator), total).Int64()
	}
	return res, nil
}

// vestingProgress returns elapsed and total vesting units at day granularity
// for DAILY schedules and whole-month granularity for MONTHLY ones. Elapsed
// and total are always measured in the same unit.
func vestingProgress(schedule *models.VestingSchedule, cliffEnd, vestingEnd, now time.Time) (elapsed, total int64) {
	if schedule.IntervalType == models.VestingIntervalDaily {
		total = int64(vestingEnd.Sub(cliffEnd) / (24 * time.Hour))
		elapsed = int64(now.Sub(cliffEnd) / (24 * time.Hour))
	} else {
		total = int64(schedule.VestingMonths)
		elapsed = wholeMonthsBetween(cliffEnd, now)
	}
	if elapsed > total {
		elapsed = total
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, total
}

// wholeMonthsBetween counts complete calendar months from start to now.
func wholeMonthsBetween(start, now time.Time) int64 {
	var months int64
	for !start.AddDate(0, int(months)+1, 0).After(now) {
		months++
	}
	return months
}

// addIntervals returns the wall-clock time of the n-th unlock after the cliff.
func addIntervals(schedule *models.VestingSchedule, cliffEnd time.Time, n int64) time.Time {
	if schedule.IntervalType == models.VestingIntervalDaily {
		return cliffEnd.Add(time.Duration(n) * 24 * time.Hour)
	}
	return cliffEnd.AddDate(0, int(n), 0)
}

// firstLinearUnlock describes the first post-cliff tranche for positions
// still inside the cliff window.
func firstLinearUnlock(schedule *models.VestingSchedule, cliffEnd, vestingEnd time.Time, linearPool *big.Int) (*time.Time, *big.Int) {
	var totalUnits int64
	if schedule.IntervalType == models.VestingIntervalDaily {
		totalUnits = int64(vestingEnd.Sub(cliffEnd) / (24 * time.Hour))
	} else {
		totalUnits = int64(schedule.VestingMonths)
	}
	if totalUnits == 0 {
		// No linear phase: everything left unlocks at the cliff boundary.
		at := cliffEnd
		return &at, new(big.Int).Set(linearPool)
	}
	at := addIntervals(schedule, cliffEnd, 1)
	return &at, utils.MulDiv(linearPool, big.NewInt(1), big.NewInt(totalUnits))
}
