package business

import (
	"fmt"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReconciliationReport compares a round's cached totals with the
// authoritative aggregate over confirmed contributions.
type ReconciliationReport struct {
	RoundID                uint   `json:"round_id"`
	Status                 string `json:"status"`
	DBTotal                string `json:"db_total"`
	CalculatedTotal        string `json:"calculated_total"`
	DBParticipants         int64  `json:"db_participants"`
	CalculatedParticipants int64  `json:"calculated_participants"`
	Mismatch               bool   `json:"mismatch"`
	Healed                 bool   `json:"healed"`
	Flagged                bool   `json:"flagged"`
}

// Reconcile recomputes one round's totals from its confirmed contributions.
// Non-finalized rounds are self-healed by overwriting the cached columns;
// finalized rounds are contractually frozen, so drift only raises an anomaly
// row for manual review. Amounts are exact integers, so any difference at all
// is a mismatch.
func Reconcile(db *gorm.DB, roundID uint) (*ReconciliationReport, error) {
	var round models.Round
	if err := db.First(&round, roundID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: round %d", ErrNotFound, roundID)
		}
		return nil, err
	}

	var agg struct {
		Total        string
		Participants int64
	}
	err := db.Model(&models.Contribution{}).
		Select("COALESCE(SUM(amount), 0)::text AS total, COUNT(DISTINCT user_id) AS participants").
		Where("round_id = ? AND status = ?", roundID, models.ContributionStatusConfirmed).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	dbTotal, err := utils.ParseBig(round.TotalRaised)
	if err != nil {
		return nil, validationErrorf("round %d total_raised: %v", roundID, err)
	}
	calcTotal, err := utils.ParseBig(agg.Total)
	if err != nil {
		return nil, validationErrorf("round %d calculated total: %v", roundID, err)
	}

	report := &ReconciliationReport{
		RoundID:                roundID,
		Status:                 round.Status,
		DBTotal:                dbTotal.String(),
		CalculatedTotal:        calcTotal.String(),
		DBParticipants:         round.TotalParticipants,
		CalculatedParticipants: agg.Participants,
	}
	report.Mismatch = dbTotal.Cmp(calcTotal) != 0 || round.TotalParticipants != agg.Participants
	if !report.Mismatch {
		return report, nil
	}

	if round.Status == models.RoundStatusFinalized {
		// Frozen: record the anomaly, touch nothing. One unresolved row per
		// round is enough; repeated sweeps over the same drift add nothing.
		var open int64
		if err := db.Model(&models.ReconciliationAnomaly{}).
			Where("round_id = ? AND resolved = ?", roundID, false).
			Count(&open).Error; err != nil {
			return nil, err
		}
		if open == 0 {
			anomaly := models.ReconciliationAnomaly{
				RoundID:                roundID,
				DBTotal:                dbTotal.String(),
				CalculatedTotal:        calcTotal.String(),
				DBParticipants:         round.TotalParticipants,
				CalculatedParticipants: agg.Participants,
			}
			if err := db.Create(&anomaly).Error; err != nil {
				return nil, err
			}
		}
		report.Flagged = true
		logrus.Errorf("round %d: post-finalization drift db_total=%s calculated=%s (%v)",
			roundID, dbTotal, calcTotal, ErrIntegrity)
		return report, nil
	}

	if err := db.Model(&models.Round{}).Where("id = ?", roundID).Updates(map[string]interface{}{
		"total_raised":       calcTotal.String(),
		"total_participants": agg.Participants,
	}).Error; err != nil {
		return nil, err
	}
	report.Healed = true
	logrus.Warnf("round %d: totals drifted (db=%s calculated=%s), self-healed", roundID, dbTotal, calcTotal)
	return report, nil
}

// ReconcileAll sweeps every round the job cares about (LIVE, ENDED,
// FINALIZED). Each round is an independent unit of work; one failure does not
// stop the sweep.
func ReconcileAll(db *gorm.DB) ([]ReconciliationReport, error) {
	var rounds []models.Round
	if err := db.Where("status IN ?", []string{
		models.RoundStatusLive, models.RoundStatusEnded, models.RoundStatusFinalized,
	}).Find(&rounds).Error; err != nil {
		return nil, err
	}

	reports := make([]ReconciliationReport, 0, len(rounds))
	for _, round := range rounds {
		report, err := Reconcile(db, round.ID)
		if err != nil {
			logrus.Errorf("reconcile round %d failed: %v", round.ID, err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}
