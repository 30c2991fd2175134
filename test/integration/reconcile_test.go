package integration

import (
	"testing"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileSelfHeal(t *testing.T) {
	requireDB(t)

	round := seedRound(t, models.RoundStatusLive, models.RoundResultNone)
	contribute(t, round.ID, "user-a", "WalletAAA111", "300000000", "tx-rec-a")
	contribute(t, round.ID, "user-b", "WalletBBB222", "200000000", "tx-rec-b")

	// Corrupt the cached aggregates.
	require.NoError(t, testDB.Model(&models.Round{}).Where("id = ?", round.ID).
		Updates(map[string]interface{}{
			"total_raised":       "1",
			"total_participants": 99,
		}).Error)

	report, err := business.Reconcile(testDB, round.ID)
	require.NoError(t, err)
	assert.True(t, report.Mismatch)
	assert.True(t, report.Healed)
	assert.False(t, report.Flagged)
	assert.Equal(t, "500000000", report.CalculatedTotal)

	var reloaded models.Round
	require.NoError(t, testDB.First(&reloaded, round.ID).Error)
	assert.Equal(t, "500000000", reloaded.TotalRaised)
	assert.EqualValues(t, 2, reloaded.TotalParticipants)
}

func TestReconcileFinalizedFlagsOnce(t *testing.T) {
	requireDB(t)

	// A finalized round whose cached total no longer matches its ledger.
	round := seedRound(t, models.RoundStatusFinalized, models.RoundResultSuccess)
	require.NoError(t, testDB.Model(&models.Round{}).Where("id = ?", round.ID).
		Update("total_raised", "5000000000").Error)

	first, err := business.Reconcile(testDB, round.ID)
	require.NoError(t, err)
	assert.True(t, first.Flagged)
	assert.False(t, first.Healed)

	// The next sweep sees the same drift and does not add another row.
	second, err := business.Reconcile(testDB, round.ID)
	require.NoError(t, err)
	assert.True(t, second.Flagged)

	var anomalies int64
	require.NoError(t, testDB.Model(&models.ReconciliationAnomaly{}).
		Where("round_id = ?", round.ID).Count(&anomalies).Error)
	assert.EqualValues(t, 1, anomalies)

	// Resolving the open anomaly re-arms the flag for future drift.
	require.NoError(t, testDB.Model(&models.ReconciliationAnomaly{}).
		Where("round_id = ?", round.ID).Update("resolved", true).Error)

	_, err = business.Reconcile(testDB, round.ID)
	require.NoError(t, err)
	require.NoError(t, testDB.Model(&models.ReconciliationAnomaly{}).
		Where("round_id = ?", round.ID).Count(&anomalies).Error)
	assert.EqualValues(t, 2, anomalies)
}
