package business

import (
	"math/big"
	"testing"

	"launchcontrol/internal/models"
	"launchcontrol/pkg/merkle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presaleRound() *models.Round {
	return &models.Round{
		ID:            1,
		Kind:          models.RoundKindPresale,
		VaultAddress:  "Vault1111111111111111111111111111111111111",
		ChainID:       101,
		MerkleSalt:    "salt-1",
		Price:         "1000000",
		TokenDecimals: 9,
	}
}

func fairlaunchRound() *models.Round {
	return &models.Round{
		ID:            2,
		Kind:          models.RoundKindFairlaunch,
		VaultAddress:  "Vault2222222222222222222222222222222222222",
		ChainID:       101,
		MerkleSalt:    "salt-2",
		TokenForSale:  "1000000000",
		TokenDecimals: 9,
	}
}

func contribution(wallet, userID, amount string) models.Contribution {
	return models.Contribution{
		WalletAddress: wallet,
		UserID:        userID,
		Amount:        amount,
		Status:        models.ContributionStatusConfirmed,
	}
}

func TestBuildAllocationTreePresale(t *testing.T) {
	tree, err := BuildAllocationTree(presaleRound(), []models.Contribution{
		contribution("walletB", "u2", "3000000"),
		contribution("walletA", "u1", "2000000"),
		contribution("walletC", "u3", "500001"),
	})
	require.NoError(t, err)

	// Sorted by wallet, tokens = floor(amount * 10^9 / price).
	require.Len(t, tree.Entries, 3)
	assert.Equal(t, "walleta", tree.Entries[0].WalletAddress)
	assert.Equal(t, "2000000000", tree.Entries[0].AllocationTokens.String())
	assert.Equal(t, "walletb", tree.Entries[1].WalletAddress)
	assert.Equal(t, "3000000000", tree.Entries[1].AllocationTokens.String())
	assert.Equal(t, "walletc", tree.Entries[2].WalletAddress)
	assert.Equal(t, "500001000", tree.Entries[2].AllocationTokens.String())

	assert.Zero(t, tree.Dust.Sign())
	assert.Equal(t, "5500001000", tree.TotalAllocated.String())
	for i, e := range tree.Entries {
		assert.Equal(t, i, e.LeafIndex)
	}
}

func TestBuildAllocationTreePresaleFloors(t *testing.T) {
	round := presaleRound()
	round.Price = "3000000"
	tree, err := BuildAllocationTree(round, []models.Contribution{
		contribution("walletA", "u1", "1000000"),
	})
	require.NoError(t, err)

	// floor(1e6 * 1e9 / 3e6), never rounded up past the escrowed supply.
	assert.Equal(t, "333333333", tree.Entries[0].AllocationTokens.String())
}

func TestBuildAllocationTreeCasing(t *testing.T) {
	// The same wallet in two casings is one entrant with the summed amount.
	tree, err := BuildAllocationTree(presaleRound(), []models.Contribution{
		contribution("WalletA", "u1", "1000000"),
		contribution("walleta", "u1", "2000000"),
	})
	require.NoError(t, err)

	require.Len(t, tree.Entries, 1)
	assert.Equal(t, "walleta", tree.Entries[0].WalletAddress)
	assert.Equal(t, "3000000", tree.Entries[0].Contributed.String())
	assert.Equal(t, "3000000000", tree.Entries[0].AllocationTokens.String())
}

func TestBuildAllocationTreeFairlaunch(t *testing.T) {
	tree, err := BuildAllocationTree(fairlaunchRound(), []models.Contribution{
		contribution("walletA", "u1", "100"),
		contribution("walletB", "u2", "200"),
		contribution("walletC", "u3", "33"),
	})
	require.NoError(t, err)

	// Proportional floor split of 1e9 tokens over 333 raised.
	require.Len(t, tree.Entries, 3)
	assert.Equal(t, "300300300", tree.Entries[0].AllocationTokens.String())
	assert.Equal(t, "600600600", tree.Entries[1].AllocationTokens.String())
	assert.Equal(t, "99099099", tree.Entries[2].AllocationTokens.String())

	// Floor remainder stays in the vault and is reported, not redistributed.
	sum := new(big.Int).Add(tree.Entries[0].AllocationTokens, tree.Entries[1].AllocationTokens)
	sum.Add(sum, tree.Entries[2].AllocationTokens)
	assert.Zero(t, sum.Cmp(tree.TotalAllocated))
	assert.Equal(t, "1", tree.Dust.String())
	total := new(big.Int).Add(tree.TotalAllocated, tree.Dust)
	assert.Equal(t, "1000000000", total.String())
}

func TestBuildAllocationTreeProofs(t *testing.T) {
	round := fairlaunchRound()
	tree, err := BuildAllocationTree(round, []models.Contribution{
		contribution("walletA", "u1", "100"),
		contribution("walletB", "u2", "200"),
		contribution("walletC", "u3", "300"),
		contribution("walletD", "u4", "400"),
		contribution("walletE", "u5", "500"),
	})
	require.NoError(t, err)
	require.Len(t, tree.Proofs, 5)

	root := tree.Tree().Root()
	for i, e := range tree.Entries {
		proof, err := tree.Tree().Proof(i)
		require.NoError(t, err)
		leaf := merkle.Leaf{
			VaultAddress: round.VaultAddress,
			ChainID:      round.ChainID,
			Salt:         round.MerkleSalt,
			Beneficiary:  e.WalletAddress,
			Amount:       e.AllocationTokens,
		}
		assert.True(t, merkle.Verify(root, leaf, proof), "entry %d", i)
		assert.Equal(t, merkle.ProofHex(proof), tree.Proofs[e.WalletAddress])
	}
}

func TestBuildAllocationTreeDeterministic(t *testing.T) {
	contributions := []models.Contribution{
		contribution("walletB", "u2", "200"),
		contribution("walletA", "u1", "100"),
		contribution("walletC", "u3", "300"),
	}
	a, err := BuildAllocationTree(fairlaunchRound(), contributions)
	require.NoError(t, err)

	// Same set, different submission order.
	reordered := []models.Contribution{contributions[2], contributions[0], contributions[1]}
	b, err := BuildAllocationTree(fairlaunchRound(), reordered)
	require.NoError(t, err)

	assert.Equal(t, a.Root, b.Root)
}

func TestBuildAllocationTreeErrors(t *testing.T) {
	t.Run("no contributions", func(t *testing.T) {
		_, err := BuildAllocationTree(presaleRound(), nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("nil round", func(t *testing.T) {
		_, err := BuildAllocationTree(nil, []models.Contribution{contribution("w", "u", "1")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("presale zero price", func(t *testing.T) {
		round := presaleRound()
		round.Price = "0"
		_, err := BuildAllocationTree(round, []models.Contribution{contribution("w", "u", "1")})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad amount string", func(t *testing.T) {
		_, err := BuildAllocationTree(presaleRound(), []models.Contribution{contribution("w", "u", "xyz")})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
