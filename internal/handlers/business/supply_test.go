package business

import (
	"math/big"
	"testing"

	"launchcontrol/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSupply(t *testing.T) {
	t.Run("full breakdown", func(t *testing.T) {
		// hardcap 1 raise unit at 18 decimals, price 0.001 per whole token,
		// 5% fee, 60% of net raise to LP, team ends at 36% of supply.
		res, err := CalculateSupply(SupplyParams{
			Hardcap:       utils.MustBig("1000000000000000000"),
			Price:         utils.MustBig("1000000000000000"),
			TokenDecimals: 18,
			FeeBps:        500,
			LpBps:         6000,
			TeamBps:       3600,
		})
		require.NoError(t, err)

		assert.Equal(t, "1000000000000000000000", res.SaleTokens.String())
		assert.Equal(t, "950000000000000000", res.NetRaise.String())
		assert.Equal(t, "570000000000000000", res.LpRaise.String())
		// 570 whole tokens padded by the 1% LP buffer.
		assert.Equal(t, "575700000000000000000", res.LpTokens.String())
		assert.Equal(t, "886331250000000000000", res.TeamTokens.String())
		assert.Equal(t, "2462031250000000000000", res.TotalSupply.String())

		// team_bps of total supply belongs to the team, exactly.
		teamShare := new(big.Int).Mul(res.TotalSupply, big.NewInt(3600))
		teamShare.Div(teamShare, big.NewInt(utils.BpsDenominator))
		assert.Zero(t, teamShare.Cmp(res.TeamTokens))
	})

	t.Run("no lp no team", func(t *testing.T) {
		res, err := CalculateSupply(SupplyParams{
			Hardcap:       utils.MustBig("500000000000"),
			Price:         utils.MustBig("250000"),
			TokenDecimals: 9,
			FeeBps:        500,
		})
		require.NoError(t, err)

		assert.Equal(t, "2000000000000000", res.SaleTokens.String())
		assert.Zero(t, res.LpRaise.Sign())
		assert.Zero(t, res.LpTokens.Sign())
		assert.Zero(t, res.TeamTokens.Sign())
		assert.Zero(t, res.TotalSupply.Cmp(res.SaleTokens))
	})

	t.Run("sale tokens round up", func(t *testing.T) {
		// 10 raise units at price 3: 10/3 whole tokens must ceil.
		res, err := CalculateSupply(SupplyParams{
			Hardcap:       big.NewInt(10),
			Price:         big.NewInt(3),
			TokenDecimals: 0,
			FeeBps:        0,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), res.SaleTokens.Int64())
	})

	t.Run("zero price rejected", func(t *testing.T) {
		_, err := CalculateSupply(SupplyParams{
			Hardcap: big.NewInt(100),
			Price:   big.NewInt(0),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("zero hardcap rejected", func(t *testing.T) {
		_, err := CalculateSupply(SupplyParams{
			Hardcap: big.NewInt(0),
			Price:   big.NewInt(1),
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("team bps at 100 percent rejected", func(t *testing.T) {
		_, err := CalculateSupply(SupplyParams{
			Hardcap: big.NewInt(100),
			Price:   big.NewInt(1),
			TeamBps: 10000,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bps out of range rejected", func(t *testing.T) {
		_, err := CalculateSupply(SupplyParams{
			Hardcap: big.NewInt(100),
			Price:   big.NewInt(1),
			FeeBps:  10001,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
