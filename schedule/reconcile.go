package main

import (
	"fmt"
	"os"
	"time"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/internal/models"
	dbconfig "launchcontrol/pkg/config"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"
)

// CloseExpiredRounds moves LIVE rounds past their end time to ENDED.
func CloseExpiredRounds() error {
	now := time.Now().UTC()
	res := dbconfig.DB.Model(&models.Round{}).
		Where("status = ? AND end_at IS NOT NULL AND end_at <= ?", models.RoundStatusLive, now).
		Update("status", models.RoundStatusEnded)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Infof("> closed %d expired rounds", res.RowsAffected)
	}
	return nil
}

// AutoFinalizeEndedRounds settles rounds that have been ENDED longer than the
// grace period. The delay leaves room for in-flight contribution verification
// to drain before totals are snapshotted.
func AutoFinalizeEndedRounds(grace time.Duration) error {
	cutoff := time.Now().UTC().Add(-grace)

	var rounds []models.Round
	if err := dbconfig.DB.
		Where("status = ? AND end_at IS NOT NULL AND end_at <= ?", models.RoundStatusEnded, cutoff).
		Find(&rounds).Error; err != nil {
		return err
	}

	for _, round := range rounds {
		key := fmt.Sprintf("auto-finalize-%d", round.ID)
		outcome, err := business.Finalize(dbconfig.DB, round.ID, key, "scheduler")
		if err != nil {
			logger.Errorf("> auto-finalize round %d failed: %v", round.ID, err)
			continue
		}
		logger.Infof("> round %d finalized: result=%s allocations=%d refunds=%d",
			round.ID, outcome.Result, outcome.AllocationsCreated, outcome.RefundsCreated)
	}
	return nil
}

// RunReconciliation sweeps every active round for ledger drift.
func RunReconciliation() error {
	reports, err := business.ReconcileAll(dbconfig.DB)
	if err != nil {
		return err
	}
	for _, report := range reports {
		if report.Mismatch {
			logger.Warnf("> round %d reconciliation mismatch: raised %s -> %s, participants %d -> %d (healed=%v flagged=%v)",
				report.RoundID, report.DBTotal, report.CalculatedTotal,
				report.DBParticipants, report.CalculatedParticipants, report.Healed, report.Flagged)
		}
	}
	return nil
}

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/reconcile.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("cannot open log file, logging to stdout")
	}

	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)
	logger.Info("> starting scheduler...")

	dbconfig.InitDB()
	logger.Info("> database connection initialized")

	grace := 2 * time.Minute
	if s := os.Getenv("FINALIZE_GRACE_MINUTES"); s != "" {
		if d, err := time.ParseDuration(s + "m"); err == nil && d >= 0 {
			grace = d
		}
	}

	c := cron.New(cron.WithSeconds())

	// Every minute: expire rounds, then settle the ones past the grace period.
	_, err = c.AddFunc("0 * * * * *", func() {
		if err := CloseExpiredRounds(); err != nil {
			logger.Errorf("> close expired rounds failed: %v", err)
		}
		if err := AutoFinalizeEndedRounds(grace); err != nil {
			logger.Errorf("> auto-finalize sweep failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> failed to add finalize task: %v", err)
	}

	// Every 5 minutes: reconcile cached totals against the ledger.
	_, err = c.AddFunc("0 */5 * * * *", func() {
		if err := RunReconciliation(); err != nil {
			logger.Errorf("> reconciliation sweep failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> failed to add reconciliation task: %v", err)
	}

	logger.Info("> scheduler started")
	c.Start()

	select {}
}
