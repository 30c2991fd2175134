package business

import (
	"math/big"
	"testing"
	"time"

	"launchcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vestingBase = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func monthlySchedule() *models.VestingSchedule {
	return &models.VestingSchedule{
		TgePercentage: 10,
		TgeAt:         vestingBase,
		CliffMonths:   1,
		VestingMonths: 10,
		IntervalType:  models.VestingIntervalMonthly,
	}
}

func TestCalculateClaimable(t *testing.T) {
	total := big.NewInt(1000)
	zero := big.NewInt(0)

	t.Run("before tge nothing unlocks", func(t *testing.T) {
		res, err := CalculateClaimable(monthlySchedule(), total, zero, vestingBase.Add(-time.Hour))
		require.NoError(t, err)

		assert.Zero(t, res.Unlocked.Sign())
		assert.Zero(t, res.Claimable.Sign())
		assert.False(t, res.FullyUnlocked)
		require.NotNil(t, res.NextUnlockAt)
		assert.True(t, res.NextUnlockAt.Equal(vestingBase))
		assert.Equal(t, int64(100), res.NextUnlockAmount.Int64())
	})

	t.Run("tge tranche inside cliff", func(t *testing.T) {
		res, err := CalculateClaimable(monthlySchedule(), total, zero, vestingBase)
		require.NoError(t, err)

		assert.Equal(t, int64(100), res.Unlocked.Int64())
		assert.Equal(t, int64(100), res.Claimable.Int64())
		assert.Equal(t, int64(1000), res.ProgressBps)

		// First linear tranche lands one interval after the cliff ends.
		cliffEnd := vestingBase.AddDate(0, 1, 0)
		require.NotNil(t, res.NextUnlockAt)
		assert.True(t, res.NextUnlockAt.Equal(cliffEnd.AddDate(0, 1, 0)))
		assert.Equal(t, int64(90), res.NextUnlockAmount.Int64())
	})

	t.Run("linear phase mid vesting", func(t *testing.T) {
		// 3 whole months past the cliff.
		now := vestingBase.AddDate(0, 4, 0).Add(time.Hour)
		claimed := big.NewInt(100)
		res, err := CalculateClaimable(monthlySchedule(), total, claimed, now)
		require.NoError(t, err)

		// 100 TGE + floor(900*3/10)
		assert.Equal(t, int64(370), res.Unlocked.Int64())
		assert.Equal(t, int64(270), res.Claimable.Int64())
		assert.Equal(t, int64(3700), res.ProgressBps)
		require.NotNil(t, res.NextUnlockAmount)
		assert.Equal(t, int64(90), res.NextUnlockAmount.Int64())
	})

	t.Run("after vesting end everything unlocks", func(t *testing.T) {
		now := vestingBase.AddDate(0, 11, 0)
		claimed := big.NewInt(370)
		res, err := CalculateClaimable(monthlySchedule(), total, claimed, now)
		require.NoError(t, err)

		assert.True(t, res.FullyUnlocked)
		assert.Equal(t, int64(1000), res.Unlocked.Int64())
		assert.Equal(t, int64(630), res.Claimable.Int64())
		assert.Nil(t, res.NextUnlockAmount)
		assert.Equal(t, int64(10000), res.ProgressBps)
	})

	t.Run("full tge no vesting", func(t *testing.T) {
		schedule := &models.VestingSchedule{
			TgePercentage: 100,
			TgeAt:         vestingBase,
			IntervalType:  models.VestingIntervalMonthly,
		}
		res, err := CalculateClaimable(schedule, total, zero, vestingBase)
		require.NoError(t, err)
		assert.True(t, res.FullyUnlocked)
		assert.Equal(t, int64(1000), res.Claimable.Int64())
	})

	t.Run("overclaimed position floors at zero", func(t *testing.T) {
		res, err := CalculateClaimable(monthlySchedule(), total, big.NewInt(5000), vestingBase)
		require.NoError(t, err)
		assert.Zero(t, res.Claimable.Sign())
	})

	t.Run("invalid inputs rejected", func(t *testing.T) {
		_, err := CalculateClaimable(nil, total, zero, vestingBase)
		assert.ErrorIs(t, err, ErrValidation)

		_, err = CalculateClaimable(monthlySchedule(), nil, zero, vestingBase)
		assert.ErrorIs(t, err, ErrValidation)

		bad := monthlySchedule()
		bad.TgePercentage = 101
		_, err = CalculateClaimable(bad, total, zero, vestingBase)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCalculateClaimableDaily(t *testing.T) {
	schedule := &models.VestingSchedule{
		TgePercentage: 0,
		TgeAt:         vestingBase,
		CliffMonths:   0,
		VestingMonths: 1,
		IntervalType:  models.VestingIntervalDaily,
	}
	total := big.NewInt(31000)

	// January has 31 days, so one tranche of 1000 per day.
	res, err := CalculateClaimable(schedule, total, big.NewInt(0), vestingBase.Add(10*24*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.Unlocked.Int64())
	require.NotNil(t, res.NextUnlockAmount)
	assert.Equal(t, int64(1000), res.NextUnlockAmount.Int64())
	require.NotNil(t, res.NextUnlockAt)
	assert.True(t, res.NextUnlockAt.Equal(vestingBase.Add(11*24*time.Hour)))
}

func TestUnlockedIsMonotone(t *testing.T) {
	schedule := monthlySchedule()
	total := big.NewInt(999983) // prime-ish, forces uneven tranches
	prev := big.NewInt(-1)

	for day := 0; day < 400; day += 3 {
		now := vestingBase.Add(time.Duration(day) * 24 * time.Hour)
		res, err := CalculateClaimable(schedule, total, big.NewInt(0), now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Unlocked.Cmp(prev), 0, "unlocked regressed at day %d", day)
		assert.LessOrEqual(t, res.Unlocked.Cmp(total), 0)
		prev = res.Unlocked
	}

	final, err := CalculateClaimable(schedule, total, big.NewInt(0), vestingBase.AddDate(2, 0, 0))
	require.NoError(t, err)
	assert.Zero(t, final.Unlocked.Cmp(total))
}
