package business

import (
	"math/big"
	"sort"
	"strings"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/merkle"
	"launchcontrol/pkg/utils"
)

// AllocationEntry is one pre-aggregated (wallet, contributed) pair with its
// computed token allocation.
type AllocationEntry struct {
	WalletAddress    string
	UserID           string
	Contributed      *big.Int
	AllocationTokens *big.Int
	LeafIndex        int
}

// AllocationTree is the output of the commitment builder: the root that goes
// on-chain, the per-address proofs, and the leaf list. Dust is the fairlaunch
// floor-division remainder that stays in the vault.
type AllocationTree struct {
	Root           string
	TotalAllocated *big.Int
	Dust           *big.Int
	Entries        []AllocationEntry
	Leaves         []merkle.Leaf
	Proofs         map[string][]string
	tree           *merkle.Tree
}

// aggregated is one wallet's summed contribution across all its casings.
type aggregated struct {
	wallet string
	userID string
	amount *big.Int
}

// aggregateByWallet sums confirmed contributions per lower-cased wallet
// address and returns them sorted by that key. Duplicate casings of an
// address are one entrant, and the fixed ordering makes tree construction
// reproducible from the same contribution set.
func aggregateByWallet(contributions []models.Contribution) ([]aggregated, error) {
	byWallet := make(map[string]*aggregated)
	for _, c := range contributions {
		amount, err := utils.ParseBig(c.Amount)
		if err != nil {
			return nil, validationErrorf("contribution %d: %v", c.ID, err)
		}
		key := strings.ToLower(c.WalletAddress)
		if entry, ok := byWallet[key]; ok {
			entry.amount.Add(entry.amount, amount)
		} else {
			byWallet[key] = &aggregated{wallet: key, userID: c.UserID, amount: amount}
		}
	}
	out := make([]aggregated, 0, len(byWallet))
	for _, e := range byWallet {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].wallet < out[j].wallet })
	return out, nil
}

// BuildAllocationTree computes per-address token allocations for a round and
// commits them into a merkle tree.
//
// PRESALE uses the fixed price: floor(contributed * 10^decimals / price), so
// the sum can never exceed the escrowed sale supply. FAIRLAUNCH allocates
// proportionally: floor(token_for_sale * contributed / total_raised); the
// floor remainder is reported as Dust and is not redistributed.
func BuildAllocationTree(round *models.Round, contributions []models.Contribution) (*AllocationTree, error) {
	if round == nil {
		return nil, validationErrorf("round is nil")
	}
	entries, err := aggregateByWallet(contributions)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, validationErrorf("round %d has no confirmed contributions", round.ID)
	}

	totalRaised := big.NewInt(0)
	for _, e := range entries {
		totalRaised.Add(totalRaised, e.amount)
	}

	price, err := utils.ParseBig(round.Price)
	if err != nil {
		return nil, validationErrorf("round %d price: %v", round.ID, err)
	}
	tokenForSale, err := utils.ParseBig(round.TokenForSale)
	if err != nil {
		return nil, validationErrorf("round %d token_for_sale: %v", round.ID, err)
	}

	scale := utils.Pow10(round.TokenDecimals)
	allocated := big.NewInt(0)
	result := &AllocationTree{
		Entries: make([]AllocationEntry, 0, len(entries)),
		Leaves:  make([]merkle.Leaf, 0, len(entries)),
		Proofs:  make(map[string][]string, len(entries)),
	}

	for i, e := range entries {
		var tokens *big.Int
		switch round.Kind {
		case models.RoundKindPresale:
			if price.Sign() == 0 {
				return nil, validationErrorf("presale round %d has zero price", round.ID)
			}
			tokens = utils.MulDiv(e.amount, scale, price)
		case models.RoundKindFairlaunch:
			if totalRaised.Sign() == 0 {
				return nil, validationErrorf("fairlaunch round %d has zero total raised", round.ID)
			}
			tokens = utils.MulDiv(tokenForSale, e.amount, totalRaised)
		default:
			return nil, validationErrorf("unknown round kind %q", round.Kind)
		}
		allocated.Add(allocated, tokens)
		result.Entries = append(result.Entries, AllocationEntry{
			WalletAddress:    e.wallet,
			UserID:           e.userID,
			Contributed:      e.amount,
			AllocationTokens: tokens,
			LeafIndex:        i,
		})
		result.Leaves = append(result.Leaves, merkle.Leaf{
			VaultAddress: round.VaultAddress,
			ChainID:      round.ChainID,
			Salt:         round.MerkleSalt,
			Beneficiary:  e.wallet,
			Amount:       tokens,
		})
	}

	tree, err := merkle.NewTree(result.Leaves)
	if err != nil {
		return nil, err
	}
	for i, e := range result.Entries {
		proof, err := tree.Proof(i)
		if err != nil {
			return nil, err
		}
		result.Proofs[e.WalletAddress] = merkle.ProofHex(proof)
	}

	result.Root = tree.RootHex()
	result.TotalAllocated = allocated
	result.tree = tree
	if round.Kind == models.RoundKindFairlaunch {
		result.Dust = new(big.Int).Sub(tokenForSale, allocated)
	} else {
		result.Dust = big.NewInt(0)
	}
	return result, nil
}

// Tree exposes the underlying merkle tree for proof re-verification.
func (a *AllocationTree) Tree() *merkle.Tree {
	return a.tree
}
