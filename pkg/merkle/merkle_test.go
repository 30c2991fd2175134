package merkle

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLeaves(n int) []Leaf {
	leaves := make([]Leaf, n)
	for i := 0; i < n; i++ {
		leaves[i] = Leaf{
			VaultAddress: "VaultAddr1111111111111111111111111111111111",
			ChainID:      101,
			Salt:         "round-salt",
			Beneficiary:  fmt.Sprintf("wallet%02d", i),
			Amount:       big.NewInt(int64(1000 * (i + 1))),
		}
	}
	return leaves
}

func TestNewTree(t *testing.T) {
	t.Run("empty leaf list rejected", func(t *testing.T) {
		_, err := NewTree(nil)
		assert.Error(t, err)
	})

	t.Run("nil amount rejected", func(t *testing.T) {
		leaves := testLeaves(2)
		leaves[1].Amount = nil
		_, err := NewTree(leaves)
		assert.Error(t, err)
	})

	t.Run("deterministic root", func(t *testing.T) {
		a, err := NewTree(testLeaves(5))
		require.NoError(t, err)
		b, err := NewTree(testLeaves(5))
		require.NoError(t, err)
		assert.Equal(t, a.RootHex(), b.RootHex())
	})

	t.Run("root changes with any leaf", func(t *testing.T) {
		base, err := NewTree(testLeaves(4))
		require.NoError(t, err)

		leaves := testLeaves(4)
		leaves[2].Amount = big.NewInt(1)
		mutated, err := NewTree(leaves)
		require.NoError(t, err)
		assert.NotEqual(t, base.RootHex(), mutated.RootHex())
	})
}

func TestProofVerify(t *testing.T) {
	// Odd counts exercise the carried-up node path.
	for _, n := range []int{1, 2, 3, 4, 5, 7, 8} {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			tree, err := NewTree(testLeaves(n))
			require.NoError(t, err)
			root := tree.Root()

			for i, leaf := range tree.Leaves {
				proof, err := tree.Proof(i)
				require.NoError(t, err)
				assert.True(t, Verify(root, leaf, proof), "leaf %d", i)
			}
		})
	}

	t.Run("index out of range", func(t *testing.T) {
		tree, err := NewTree(testLeaves(3))
		require.NoError(t, err)
		_, err = tree.Proof(3)
		assert.Error(t, err)
		_, err = tree.Proof(-1)
		assert.Error(t, err)
	})

	t.Run("wrong amount fails verification", func(t *testing.T) {
		tree, err := NewTree(testLeaves(4))
		require.NoError(t, err)
		proof, err := tree.Proof(1)
		require.NoError(t, err)

		forged := tree.Leaves[1]
		forged.Amount = big.NewInt(999999)
		assert.False(t, Verify(tree.Root(), forged, proof))
	})

	t.Run("proof bound to salt and chain", func(t *testing.T) {
		tree, err := NewTree(testLeaves(4))
		require.NoError(t, err)
		proof, err := tree.Proof(0)
		require.NoError(t, err)

		replayed := tree.Leaves[0]
		replayed.Salt = "other-round"
		assert.False(t, Verify(tree.Root(), replayed, proof))

		replayed = tree.Leaves[0]
		replayed.ChainID = 103
		assert.False(t, Verify(tree.Root(), replayed, proof))
	})

	t.Run("tampered proof fails", func(t *testing.T) {
		tree, err := NewTree(testLeaves(4))
		require.NoError(t, err)
		proof, err := tree.Proof(2)
		require.NoError(t, err)
		proof[0][0] ^= 0xff
		assert.False(t, Verify(tree.Root(), tree.Leaves[2], proof))
	})
}

func TestLeafHashCasing(t *testing.T) {
	a := Leaf{VaultAddress: "v", ChainID: 101, Salt: "s", Beneficiary: "WalletABC", Amount: big.NewInt(5)}
	b := Leaf{VaultAddress: "v", ChainID: 101, Salt: "s", Beneficiary: "walletabc", Amount: big.NewInt(5)}
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestProofHex(t *testing.T) {
	tree, err := NewTree(testLeaves(4))
	require.NoError(t, err)
	proof, err := tree.Proof(0)
	require.NoError(t, err)

	hexProof := ProofHex(proof)
	require.Len(t, hexProof, len(proof))
	for i, h := range hexProof {
		assert.Len(t, h, 64)
		assert.Equal(t, fmt.Sprintf("%x", proof[i][:]), h)
	}
}
