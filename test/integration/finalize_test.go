package integration

import (
	"errors"
	"sync"
	"testing"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeIdempotence(t *testing.T) {
	requireDB(t)

	round := seedRound(t, models.RoundStatusLive, models.RoundResultNone)
	contribute(t, round.ID, "user-a", "WalletAAA111", "1500000000", "tx-fin-a")
	contribute(t, round.ID, "user-b", "WalletBBB222", "500000000", "tx-fin-b")
	setRoundStatus(t, round.ID, models.RoundStatusEnded)

	first, err := business.Finalize(testDB, round.ID, "key-1", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.RoundResultSuccess, first.Result)
	assert.Equal(t, 2, first.AllocationsCreated)
	assert.False(t, first.AlreadyFinalized)
	assert.NotEmpty(t, first.MerkleRoot)

	// A repeat with a different key reports the same settled outcome.
	second, err := business.Finalize(testDB, round.ID, "key-2", "tester")
	require.NoError(t, err)
	assert.True(t, second.AlreadyFinalized)
	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.AllocationsCreated, second.AllocationsCreated)
	assert.Equal(t, first.MerkleRoot, second.MerkleRoot)

	var allocations int64
	require.NoError(t, testDB.Model(&models.Allocation{}).
		Where("round_id = ?", round.ID).Count(&allocations).Error)
	assert.EqualValues(t, 2, allocations)

	var reloaded models.Round
	require.NoError(t, testDB.First(&reloaded, round.ID).Error)
	assert.Equal(t, models.RoundStatusFinalized, reloaded.Status)
	assert.Equal(t, "key-1", reloaded.FinalizeKey)
}

func TestFinalizeConcurrent(t *testing.T) {
	requireDB(t)

	round := seedRound(t, models.RoundStatusLive, models.RoundResultNone)
	contribute(t, round.ID, "user-a", "WalletAAA111", "100000000", "tx-race-a")
	setRoundStatus(t, round.ID, models.RoundStatusEnded)

	outcomes := make([]*business.FinalizeOutcome, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, key := range []string{"race-1", "race-2"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			outcomes[i], errs[i] = business.Finalize(testDB, round.ID, key, "tester")
		}(i, key)
	}
	wg.Wait()

	// Both callers succeed; the loser adopts the winner's outcome.
	for i := range outcomes {
		require.NoError(t, errs[i])
		assert.Equal(t, models.RoundResultFailed, outcomes[i].Result)
		assert.Equal(t, 1, outcomes[i].RefundsCreated)
	}

	var refunds int64
	require.NoError(t, testDB.Model(&models.Refund{}).
		Where("round_id = ?", round.ID).Count(&refunds).Error)
	assert.EqualValues(t, 1, refunds)

	var reloaded models.Round
	require.NoError(t, testDB.First(&reloaded, round.ID).Error)
	assert.Contains(t, []string{"race-1", "race-2"}, reloaded.FinalizeKey)
}

func TestLateContributionSettles(t *testing.T) {
	requireDB(t)

	round := seedRound(t, models.RoundStatusLive, models.RoundResultNone)
	contribute(t, round.ID, "user-a", "WalletAAA111", "800000000", "tx-late-a")
	setRoundStatus(t, round.ID, models.RoundStatusEnded)

	// A deposit whose verification lands after the close is still recorded
	// as long as the round has not been finalized.
	contribute(t, round.ID, "user-b", "WalletBBB222", "400000000", "tx-late-b")

	outcome, err := business.Finalize(testDB, round.ID, "late-key", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.RoundResultSuccess, outcome.Result)
	assert.Equal(t, 2, outcome.AllocationsCreated)

	// Finalization seals the ledger.
	err = business.RecordContribution(testDB, business.RecordContributionInput{
		RoundID:       round.ID,
		UserID:        "user-c",
		WalletAddress: "WalletCCC333",
		Amount:        mustBig(t, "100000000"),
		ChainID:       101,
		TxHash:        "tx-late-c",
	})
	assert.True(t, errors.Is(err, business.ErrStateConflict))
}

func TestDraftRoundRejectsContributions(t *testing.T) {
	requireDB(t)

	round := seedRound(t, models.RoundStatusDraft, models.RoundResultNone)
	err := business.RecordContribution(testDB, business.RecordContributionInput{
		RoundID:       round.ID,
		UserID:        "user-a",
		WalletAddress: "WalletAAA111",
		Amount:        mustBig(t, "100000000"),
		ChainID:       101,
		TxHash:        "tx-draft-a",
	})
	assert.True(t, errors.Is(err, business.ErrStateConflict))
}
