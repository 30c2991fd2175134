package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBig(t *testing.T) {
	t.Run("empty string is zero", func(t *testing.T) {
		v, err := ParseBig("")
		require.NoError(t, err)
		assert.Zero(t, v.Sign())
	})

	t.Run("decimal string", func(t *testing.T) {
		v, err := ParseBig("123456789012345678901234567890")
		require.NoError(t, err)
		assert.Equal(t, "123456789012345678901234567890", v.String())
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ParseBig("12.5")
		assert.Error(t, err)
		_, err = ParseBig("0x1f")
		assert.Error(t, err)
	})
}

func TestMulDiv(t *testing.T) {
	t.Run("floors", func(t *testing.T) {
		// 7*3/2 = 10.5 -> 10
		got := MulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2))
		assert.Equal(t, int64(10), got.Int64())
	})

	t.Run("exact", func(t *testing.T) {
		got := MulDiv(big.NewInt(8), big.NewInt(3), big.NewInt(2))
		assert.Equal(t, int64(12), got.Int64())
	})

	t.Run("no precision loss on large operands", func(t *testing.T) {
		a := MustBig("999999999999999999999999999999")
		got := MulDiv(a, big.NewInt(10000), big.NewInt(10000))
		assert.Zero(t, got.Cmp(a))
	})
}

func TestCeilMulDiv(t *testing.T) {
	// 7*3/2 = 10.5 -> 11
	assert.Equal(t, int64(11), CeilMulDiv(big.NewInt(7), big.NewInt(3), big.NewInt(2)).Int64())
	// exact division does not round up
	assert.Equal(t, int64(12), CeilMulDiv(big.NewInt(8), big.NewInt(3), big.NewInt(2)).Int64())
}

func TestBpsShare(t *testing.T) {
	assert.Equal(t, int64(500), BpsShare(big.NewInt(10000), 500).Int64())
	// floor: 999 * 500 / 10000 = 49.95 -> 49
	assert.Equal(t, int64(49), BpsShare(big.NewInt(999), 500).Int64())
	assert.Equal(t, int64(0), BpsShare(big.NewInt(10000), 0).Int64())
}

func TestPow10(t *testing.T) {
	assert.Equal(t, "1", Pow10(0).String())
	assert.Equal(t, "1000000000", Pow10(9).String())
	assert.Equal(t, "1000000000000000000", Pow10(18).String())
}

func TestIsZeroAndMax(t *testing.T) {
	assert.True(t, IsZero(nil))
	assert.True(t, IsZero(big.NewInt(0)))
	assert.False(t, IsZero(big.NewInt(1)))

	assert.Equal(t, int64(5), MaxBig(big.NewInt(5), big.NewInt(3)).Int64())
	assert.Equal(t, int64(5), MaxBig(big.NewInt(3), big.NewInt(5)).Int64())
}
