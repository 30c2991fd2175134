package utils

import (
	"fmt"
	"math/big"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

var (
	bigZero   = big.NewInt(0)
	bigBpsDen = big.NewInt(BpsDenominator)
)

// ParseBig parses a base-10 numeric string (the storage format of every
// amount column) into a big.Int. Empty strings parse to zero so freshly
// zero-defaulted rows round-trip cleanly.
func ParseBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric string %q", s)
	}
	return v, nil
}

// MustBig is ParseBig for trusted inputs (constants, test fixtures).
func MustBig(s string) *big.Int {
	v, err := ParseBig(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Pow10 returns 10^n.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// MulDiv returns floor(a * b / d).
func MulDiv(a, b, d *big.Int) *big.Int {
	if d.Sign() == 0 {
		panic("MulDiv: division by zero")
	}
	r := new(big.Int).Mul(a, b)
	return r.Div(r, d)
}

// CeilMulDiv returns ceil(a * b / d).
func CeilMulDiv(a, b, d *big.Int) *big.Int {
	if d.Sign() == 0 {
		panic("CeilMulDiv: division by zero")
	}
	num := new(big.Int).Mul(a, b)
	q, m := new(big.Int).DivMod(num, d, new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// BpsShare returns floor(amount * bps / 10000).
func BpsShare(amount *big.Int, bps int64) *big.Int {
	return MulDiv(amount, big.NewInt(bps), bigBpsDen)
}

// IsZero reports whether v is zero or nil.
func IsZero(v *big.Int) bool {
	return v == nil || v.Sign() == 0
}

// MaxBig returns the larger of a and b.
func MaxBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
