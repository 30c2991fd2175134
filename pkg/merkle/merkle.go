package merkle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Domain-separation prefixes keep leaf hashes from ever colliding with
// interior node hashes.
const (
	leafPrefix = 0x00
	nodePrefix = 0x01
)

// Leaf binds one (beneficiary, amount) pair to a specific claim vault, chain
// and salt so a proof issued for one round can never be replayed against
// another round or another chain.
type Leaf struct {
	VaultAddress string
	ChainID      uint64
	Salt         string
	Beneficiary  string
	Amount       *big.Int
}

// Hash returns the leaf digest. Beneficiary casing is normalized so the same
// wallet written two ways always hashes identically.
func (l Leaf) Hash() [32]byte {
	h := sha256.New()
	h.Write([]byte{leafPrefix})
	h.Write([]byte(l.VaultAddress))
	var chain [8]byte
	binary.BigEndian.PutUint64(chain[:], l.ChainID)
	h.Write(chain[:])
	h.Write([]byte(l.Salt))
	h.Write([]byte(strings.ToLower(l.Beneficiary)))
	h.Write(l.Amount.FillBytes(make([]byte, 32)))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hashNode combines two child digests pair-sorted, so the root does not
// depend on left/right ordering and verification needs no position bits.
func hashNode(a, b [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{nodePrefix})
	if lessHash(a, b) {
		h.Write(a[:])
		h.Write(b[:])
	} else {
		h.Write(b[:])
		h.Write(a[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func lessHash(a, b [32]byte) bool {
	for i := 0; i < 32; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// Tree is a binary merkle tree over a fixed leaf list. Levels[0] holds the
// leaf digests; an odd node at any level is carried up unchanged.
type Tree struct {
	Leaves []Leaf
	levels [][][32]byte
}

// NewTree builds the tree. The caller fixes the leaf order; building twice
// from the same ordered leaves always reproduces the same root.
func NewTree(leaves []Leaf) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("merkle: no leaves")
	}
	level := make([][32]byte, len(leaves))
	for i, l := range leaves {
		if l.Amount == nil || l.Amount.Sign() < 0 {
			return nil, fmt.Errorf("merkle: leaf %d has invalid amount", i)
		}
		level[i] = l.Hash()
	}
	levels := [][][32]byte{level}
	for len(level) > 1 {
		next := make([][32]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashNode(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		levels = append(levels, next)
		level = next
	}
	return &Tree{Leaves: leaves, levels: levels}, nil
}

// Root returns the commitment root digest.
func (t *Tree) Root() [32]byte {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// RootHex returns the root as a lowercase hex string, the form submitted to
// the claim contract.
func (t *Tree) RootHex() string {
	r := t.Root()
	return hex.EncodeToString(r[:])
}

// Proof returns the ordered sibling digests for the leaf at index i.
func (t *Tree) Proof(i int) ([][32]byte, error) {
	if i < 0 || i >= len(t.Leaves) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range", i)
	}
	var proof [][32]byte
	idx := i
	for depth := 0; depth < len(t.levels)-1; depth++ {
		level := t.levels[depth]
		sibling := idx ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		idx /= 2
	}
	return proof, nil
}

// Verify checks a leaf against a root using the sibling path produced by
// Proof. Uses the same pair-sorted node rule as tree construction.
func Verify(root [32]byte, leaf Leaf, proof [][32]byte) bool {
	h := leaf.Hash()
	for _, sib := range proof {
		h = hashNode(h, sib)
	}
	return h == root
}

// ProofHex renders a proof as hex strings for API responses.
func ProofHex(proof [][32]byte) []string {
	out := make([]string, len(proof))
	for i, p := range proof {
		out[i] = hex.EncodeToString(p[:])
	}
	return out
}
