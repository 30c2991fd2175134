package business

import (
	"fmt"
	"time"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FinalizeOutcome reports what one finalize call (or a prior winning call)
// settled. AllocationsCreated/RefundsCreated are the round's row totals, so
// repeated calls with any key return the same numbers. Root and
// TotalAllocation are the exact values handed to the contract-submission
// boundary on success.
type FinalizeOutcome struct {
	Result             string `json:"result"`
	AllocationsCreated int    `json:"allocations_created"`
	RefundsCreated     int    `json:"refunds_created"`
	MerkleRoot         string `json:"merkle_root,omitempty"`
	TotalAllocation    string `json:"total_allocation,omitempty"`
	FinalPrice         string `json:"final_price,omitempty"`
	AlreadyFinalized   bool   `json:"already_finalized"`
}

// Finalize runs the ENDED -> {SUCCESS,FAILED} -> FINALIZED transition for a
// round. The round update guarded by result == NONE is the commit point;
// concurrent calls race on it and the loser adopts the winner's outcome.
// Allocation/refund rows are created after the commit point and are
// re-derivable from contributions, so a partial failure there is retried by
// calling Finalize again with any key.
func Finalize(db *gorm.DB, roundID uint, idempotencyKey, finalizedBy string) (*FinalizeOutcome, error) {
	var round models.Round
	if err := db.First(&round, roundID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: round %d", ErrNotFound, roundID)
		}
		return nil, err
	}

	if round.Result != models.RoundResultNone {
		// Already finalized: idempotent success with the recorded outcome,
		// completing any allocation/refund rows a crashed run left behind.
		return settleRows(db, &round, true)
	}
	if round.Status != models.RoundStatusEnded {
		return nil, fmt.Errorf("%w: round %d is %s, finalize requires ENDED", ErrStateConflict, roundID, round.Status)
	}

	totalRaised, err := utils.ParseBig(round.TotalRaised)
	if err != nil {
		return nil, validationErrorf("round %d total_raised: %v", roundID, err)
	}
	softcap, err := utils.ParseBig(round.Softcap)
	if err != nil {
		return nil, validationErrorf("round %d softcap: %v", roundID, err)
	}

	result := models.RoundResultFailed
	if totalRaised.Cmp(softcap) >= 0 {
		result = models.RoundResultSuccess
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.RoundStatusFinalized,
		"result":       result,
		"finalize_key": idempotencyKey,
		"finalized_by": finalizedBy,
		"finalized_at": now,
	}

	// Fairlaunch discovers its price at the close: raise units per whole token.
	if round.Kind == models.RoundKindFairlaunch && result == models.RoundResultSuccess {
		tokenForSale, err := utils.ParseBig(round.TokenForSale)
		if err != nil {
			return nil, validationErrorf("round %d token_for_sale: %v", roundID, err)
		}
		if tokenForSale.Sign() == 0 {
			return nil, validationErrorf("fairlaunch round %d has no token_for_sale", roundID)
		}
		finalPrice := utils.MulDiv(totalRaised, utils.Pow10(round.TokenDecimals), tokenForSale)
		updates["price"] = finalPrice.String()
	}

	res := db.Model(&models.Round{}).
		Where("id = ? AND result = ?", roundID, models.RoundResultNone).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race: reload and report the winner's result as success.
		if err := db.First(&round, roundID).Error; err != nil {
			return nil, err
		}
		return settleRows(db, &round, true)
	}

	logrus.Infof("round %d finalized as %s by %s (key %s)", roundID, result, finalizedBy, idempotencyKey)
	if err := db.First(&round, roundID).Error; err != nil {
		return nil, err
	}
	return settleRows(db, &round, false)
}

// settleRows makes sure the allocation (SUCCESS) or refund (FAILED) rows for
// a finalized round exist. Inserts ignore conflicts, so this is safe to run
// any number of times; failures here never undo the status transition.
func settleRows(db *gorm.DB, round *models.Round, priorResult bool) (*FinalizeOutcome, error) {
	outcome := &FinalizeOutcome{
		Result:           round.Result,
		AlreadyFinalized: priorResult,
	}

	var contributions []models.Contribution
	if err := db.Where("round_id = ? AND status = ?", round.ID, models.ContributionStatusConfirmed).
		Find(&contributions).Error; err != nil {
		return nil, err
	}

	switch round.Result {
	case models.RoundResultSuccess:
		if len(contributions) == 0 {
			return outcome, nil // softcap 0 round with nobody in it
		}
		built, err := BuildAllocationTree(round, contributions)
		if err != nil {
			return nil, err
		}
		rows := make([]models.Allocation, 0, len(built.Entries))
		for _, e := range built.Entries {
			rows = append(rows, models.Allocation{
				RoundID:           round.ID,
				UserID:            e.UserID,
				WalletAddress:     e.WalletAddress,
				ContributedAmount: e.Contributed.String(),
				AllocationTokens:  e.AllocationTokens.String(),
				ClaimableTokens:   "0",
				RefundAmount:      "0",
				LeafIndex:         e.LeafIndex,
			})
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 200)
		if res.Error != nil {
			// Rows stay derivable from contributions; report and let the
			// caller retry instead of rolling back the finalized status.
			logrus.Errorf("round %d: allocation insert failed (retryable): %v", round.ID, res.Error)
			return nil, res.Error
		}
		var total int64
		if err := db.Model(&models.Allocation{}).Where("round_id = ?", round.ID).Count(&total).Error; err != nil {
			return nil, err
		}
		outcome.AllocationsCreated = int(total)
		outcome.MerkleRoot = built.Root
		outcome.TotalAllocation = built.TotalAllocated.String()
		outcome.FinalPrice = round.Price

	case models.RoundResultFailed:
		rows := make([]models.Refund, 0)
		perUser := make(map[string]*models.Refund)
		for _, c := range contributions {
			amount, err := utils.ParseBig(c.Amount)
			if err != nil {
				return nil, validationErrorf("contribution %d: %v", c.ID, err)
			}
			if r, ok := perUser[c.UserID]; ok {
				prev := utils.MustBig(r.Amount)
				r.Amount = prev.Add(prev, amount).String()
				continue
			}
			r := &models.Refund{
				RoundID:   round.ID,
				UserID:    c.UserID,
				Amount:    amount.String(),
				Status:    models.RefundStatusPending,
				Reference: refundReference(round.ID, c.UserID),
			}
			perUser[c.UserID] = r
		}
		for _, r := range perUser {
			rows = append(rows, *r)
		}
		if len(rows) > 0 {
			res := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 200)
			if res.Error != nil {
				logrus.Errorf("round %d: refund insert failed (retryable): %v", round.ID, res.Error)
				return nil, res.Error
			}
		}
		var total int64
		if err := db.Model(&models.Refund{}).Where("round_id = ?", round.ID).Count(&total).Error; err != nil {
			return nil, err
		}
		outcome.RefundsCreated = int(total)
	}

	return outcome, nil
}

func refundReference(roundID uint, userID string) string {
	return fmt.Sprintf("refund-%d-%s", roundID, userID)
}

// ClaimRefund advances one refund PENDING -> PROCESSING under optimistic
// locking. A lost race returns ErrStateConflict so the caller polls.
func ClaimRefund(db *gorm.DB, refundID uint) (*models.Refund, error) {
	res := db.Model(&models.Refund{}).
		Where("id = ? AND status = ?", refundID, models.RefundStatusPending).
		Update("status", models.RefundStatusProcessing)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var refund models.Refund
		if err := db.First(&refund, refundID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("%w: refund %d", ErrNotFound, refundID)
			}
			return nil, err
		}
		return nil, fmt.Errorf("%w: refund %d is %s", ErrStateConflict, refundID, refund.Status)
	}
	var refund models.Refund
	if err := db.First(&refund, refundID).Error; err != nil {
		return nil, err
	}
	return &refund, nil
}

// CompleteRefund marks a PROCESSING refund COMPLETED with its payout hash.
func CompleteRefund(db *gorm.DB, refundID uint, txHash string) error {
	res := db.Model(&models.Refund{}).
		Where("id = ? AND status = ?", refundID, models.RefundStatusProcessing).
		Updates(map[string]interface{}{
			"status":  models.RefundStatusCompleted,
			"tx_hash": txHash,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: refund %d is not PROCESSING", ErrStateConflict, refundID)
	}
	return nil
}
