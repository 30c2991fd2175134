package business

import (
	"fmt"
	"math/big"
	"time"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// feeRule is one row of the protocol fee table, all in basis points.
// feeBps is the share of the event amount taken as fee; the pool shares are
// taken from that fee amount.
type feeRule struct {
	feeBps      int64
	treasuryBps int64
	referralBps int64
	stakingBps  int64
}

var feeTable = map[string]feeRule{
	models.FeeSourcePresale:    {feeBps: 500, treasuryBps: 5000, referralBps: 4000, stakingBps: 1000},
	models.FeeSourceFairlaunch: {feeBps: 500, treasuryBps: 5000, referralBps: 4000, stakingBps: 1000},
	models.FeeSourceBonding:    {feeBps: 150, treasuryBps: 5000, referralBps: 5000, stakingBps: 0},
	models.FeeSourceBluecheck:  {feeBps: utils.BpsDenominator, treasuryBps: 7000, referralBps: 3000, stakingBps: 0},
}

// FeeBreakdown is a computed fee split. Treasury absorbs the integer
// remainder so Treasury+Referral+Staking always equals Fee exactly.
type FeeBreakdown struct {
	Fee      *big.Int
	Treasury *big.Int
	Referral *big.Int
	Staking  *big.Int
}

// SplitFee computes the fee taken from an event amount and its pool shares
// for the given source type. BLUECHECK amounts are flat fees, so the whole
// amount is the fee.
func SplitFee(sourceType string, amount *big.Int) (*FeeBreakdown, error) {
	rule, ok := feeTable[sourceType]
	if !ok {
		return nil, validationErrorf("unknown fee source type %q", sourceType)
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, validationErrorf("amount must be non-negative")
	}
	fee := utils.BpsShare(amount, rule.feeBps)
	referral := utils.BpsShare(fee, rule.referralBps)
	staking := utils.BpsShare(fee, rule.stakingBps)
	// Treasury takes its floor share plus whatever floor division left over.
	treasury := new(big.Int).Sub(fee, referral)
	treasury.Sub(treasury, staking)
	return &FeeBreakdown{Fee: fee, Treasury: treasury, Referral: referral, Staking: staking}, nil
}

// RecordContributionInput is a verified contribution ready for ledger entry.
type RecordContributionInput struct {
	RoundID       uint
	UserID        string
	WalletAddress string
	Amount        *big.Int
	ChainID       uint64
	TxHash        string
}

// RecordContribution writes one confirmed contribution and its side effects:
// the fee split row, round total increments, referral activation and the
// referral ledger entry. The contribution insert is the idempotency gate: a
// duplicate (chain_id, tx_hash) applies nothing and returns ErrStateConflict.
func RecordContribution(db *gorm.DB, in RecordContributionInput) error {
	if in.Amount == nil || in.Amount.Sign() <= 0 {
		return validationErrorf("amount must be positive")
	}
	if in.TxHash == "" || in.UserID == "" || in.WalletAddress == "" {
		return validationErrorf("tx_hash, user_id and wallet_address are required")
	}

	var round models.Round
	if err := db.First(&round, in.RoundID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: round %d", ErrNotFound, in.RoundID)
		}
		return err
	}
	// ENDED rounds keep accepting until finalization seals the ledger, so
	// deposits whose on-chain verification lands after the close still count.
	accepting := round.Status == models.RoundStatusLive ||
		(round.Status == models.RoundStatusEnded && round.Result == models.RoundResultNone)
	if !accepting {
		return fmt.Errorf("%w: round %d is %s, not accepting contributions", ErrStateConflict, round.ID, round.Status)
	}

	sourceType := models.FeeSourcePresale
	if round.Kind == models.RoundKindFairlaunch {
		sourceType = models.FeeSourceFairlaunch
	}
	breakdown, err := SplitFee(sourceType, in.Amount)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		contribution := models.Contribution{
			RoundID:       in.RoundID,
			UserID:        in.UserID,
			WalletAddress: in.WalletAddress,
			Amount:        in.Amount.String(),
			Status:        models.ContributionStatusConfirmed,
			ChainID:       in.ChainID,
			TxHash:        in.TxHash,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&contribution)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %s already recorded", ErrStateConflict, in.TxHash)
		}

		// First confirmed contribution by this user in this round counts a
		// new participant.
		var prior int64
		if err := tx.Model(&models.Contribution{}).
			Where("round_id = ? AND user_id = ? AND status = ? AND id <> ?",
				in.RoundID, in.UserID, models.ContributionStatusConfirmed, contribution.ID).
			Count(&prior).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"total_raised": gorm.Expr("total_raised + ?::numeric", in.Amount.String()),
		}
		if prior == 0 {
			updates["total_participants"] = gorm.Expr("total_participants + 1")
		}
		if err := tx.Model(&models.Round{}).Where("id = ?", in.RoundID).Updates(updates).Error; err != nil {
			return err
		}

		if err := insertFeeSplit(tx, sourceType, in.TxHash, breakdown); err != nil {
			return err
		}
		return applyReferral(tx, sourceType, in.TxHash, in.UserID, breakdown.Referral)
	})
}

// insertFeeSplit writes the fee split row once per (source_type, source_id).
func insertFeeSplit(tx *gorm.DB, sourceType, sourceID string, b *FeeBreakdown) error {
	split := models.FeeSplit{
		SourceType:         sourceType,
		SourceID:           sourceID,
		TotalAmount:        b.Fee.String(),
		TreasuryAmount:     b.Treasury.String(),
		ReferralPoolAmount: b.Referral.String(),
		StakingPoolAmount:  b.Staking.String(),
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&split).Error
}

// applyReferral activates the referee's relationship on their first confirmed
// contribution and upserts the referrer's ledger entry for this source event.
func applyReferral(tx *gorm.DB, sourceType, sourceID, refereeID string, referralShare *big.Int) error {
	var rel models.ReferralRelationship
	if err := tx.Where("referee_id = ?", refereeID).First(&rel).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil // no referrer, referral share stays in the pool
		}
		return err
	}

	if rel.ActivatedAt == nil {
		// Conditional update so concurrent first contributions stamp the
		// activation and bump the counter exactly once.
		now := time.Now()
		res := tx.Model(&models.ReferralRelationship{}).
			Where("id = ? AND activated_at IS NULL", rel.ID).
			Update("activated_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			if err := bumpReferralStat(tx, rel.ReferrerID); err != nil {
				return err
			}
			logrus.Infof("referral relationship %d activated by referee %s", rel.ID, refereeID)
		}
	}

	if utils.IsZero(referralShare) {
		return nil
	}
	entry := models.ReferralLedger{
		ReferrerID: rel.ReferrerID,
		RefereeID:  refereeID,
		SourceType: sourceType,
		SourceID:   sourceID,
		Amount:     referralShare.String(),
		Status:     models.ReferralLedgerClaimable,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return tx.Model(&models.ReferralStat{}).
			Where("referrer_id = ?", rel.ReferrerID).
			Update("total_earned", gorm.Expr("total_earned + ?::numeric", referralShare.String())).Error
	}
	return nil
}

// bumpReferralStat increments the referrer's active-referral counter,
// creating the stat row on first use.
func bumpReferralStat(tx *gorm.DB, referrerID string) error {
	stat := models.ReferralStat{ReferrerID: referrerID, ActiveReferrals: 0, TotalEarned: "0"}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stat).Error; err != nil {
		return err
	}
	return tx.Model(&models.ReferralStat{}).
		Where("referrer_id = ?", referrerID).
		Update("active_referrals", gorm.Expr("active_referrals + 1")).Error
}
