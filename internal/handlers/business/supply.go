package business

import (
	"math/big"

	"launchcontrol/pkg/utils"
)

// DefaultLpBufferBps pads the LP token reserve by 1% so AMM rounding during
// pool creation can never underfund the pair at full hardcap fill.
const DefaultLpBufferBps = 100

// SupplyParams are the inputs for sizing a round's token supply. All amounts
// are integers in smallest units.
type SupplyParams struct {
	Hardcap       *big.Int
	Price         *big.Int // raise units per one whole token
	TokenDecimals uint8
	FeeBps        int64
	LpBps         int64
	TeamBps       int64
	LpBufferBps   int64 // 0 means DefaultLpBufferBps
}

// SupplyResult is the minimum integer supply breakdown for a round.
type SupplyResult struct {
	SaleTokens  *big.Int `json:"sale_tokens"`
	NetRaise    *big.Int `json:"net_raise"`
	LpRaise     *big.Int `json:"lp_raise"`
	LpTokens    *big.Int `json:"lp_tokens"`
	TeamTokens  *big.Int `json:"team_tokens"`
	TotalSupply *big.Int `json:"total_supply"`
}

// CalculateSupply sizes the token supply that must be minted and escrowed for
// a round: sale tokens cover the full hardcap at the fixed price (ceiled),
// LP tokens cover the LP share of the post-fee raise plus the buffer, and
// team tokens are sized so the team ends up with exactly team_bps of total
// supply, rounding in the protocol's favor.
func CalculateSupply(p SupplyParams) (*SupplyResult, error) {
	if p.Price == nil || p.Price.Sign() == 0 {
		return nil, validationErrorf("price must be positive")
	}
	if p.Hardcap == nil || p.Hardcap.Sign() <= 0 {
		return nil, validationErrorf("hardcap must be positive")
	}
	if p.TeamBps >= utils.BpsDenominator {
		return nil, validationErrorf("team_bps %d out of range", p.TeamBps)
	}
	if p.FeeBps < 0 || p.FeeBps > utils.BpsDenominator || p.LpBps < 0 || p.LpBps > utils.BpsDenominator || p.TeamBps < 0 {
		return nil, validationErrorf("basis points out of range")
	}
	bufferBps := p.LpBufferBps
	if bufferBps == 0 {
		bufferBps = DefaultLpBufferBps
	}

	scale := utils.Pow10(p.TokenDecimals)
	den := big.NewInt(utils.BpsDenominator)

	saleTokens := utils.CeilMulDiv(p.Hardcap, scale, p.Price)
	netRaise := utils.MulDiv(p.Hardcap, big.NewInt(utils.BpsDenominator-p.FeeBps), den)
	lpRaise := utils.MulDiv(netRaise, big.NewInt(p.LpBps), den)
	lpTokensRaw := utils.CeilMulDiv(lpRaise, scale, p.Price)
	lpTokens := utils.CeilMulDiv(lpTokensRaw, big.NewInt(utils.BpsDenominator+bufferBps), den)

	teamTokens := big.NewInt(0)
	if p.TeamBps > 0 {
		base := new(big.Int).Add(saleTokens, lpTokens)
		teamTokens = utils.CeilMulDiv(base, big.NewInt(p.TeamBps), big.NewInt(utils.BpsDenominator-p.TeamBps))
	}

	total := new(big.Int).Add(saleTokens, lpTokens)
	total.Add(total, teamTokens)

	return &SupplyResult{
		SaleTokens:  saleTokens,
		NetRaise:    netRaise,
		LpRaise:     lpRaise,
		LpTokens:    lpTokens,
		TeamTokens:  teamTokens,
		TotalSupply: total,
	}, nil
}
