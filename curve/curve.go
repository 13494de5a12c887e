// Package curve implements the bonding-curve pricer for creator keys.
//
// The cumulative price of a block of keys is the sum of squares of the curve
// positions covered by the block, scaled to base units and divided by a
// constant denominator. All arithmetic is 256-bit unsigned with truncating
// division, so prices are bit-exact and reproducible.
package curve

import (
	"github.com/holiman/uint256"

	"github.com/fanbase-labs/keymarket/types"
)

// Denominator flattens the raw sum-of-squares curve into token prices.
const Denominator = 16000

// Price returns the cumulative price of amount keys starting at curve
// position supply, i.e. Σ k² for k in [supply, supply+amount), scaled by
// 10^18 and divided by Denominator with the result truncated toward zero.
//
// Buy flows anchor at the current supply; sell flows anchor at
// supply - amount, so a block sold right after it was bought prices
// identically before fees.
func Price(supply, amount uint64) types.Amount {
	if amount == 0 {
		return types.Zero()
	}

	lower := sumOfSquares(uint256.NewInt(supply))
	upper := sumOfSquares(new(uint256.Int).AddUint64(uint256.NewInt(supply), amount))

	price := upper.Sub(upper, lower)
	price.Mul(price, types.Unit)
	price.Div(price, uint256.NewInt(Denominator))

	return types.FromUint256(price)
}

// sumOfSquares returns Σ k² for k in [0, n), i.e. (n-1)·n·(2n-1)/6 for n ≥ 1.
// The division by 6 is always exact. Intermediates stay within 256 bits for
// any uint64 n.
func sumOfSquares(n *uint256.Int) *uint256.Int {
	if n.IsZero() {
		return uint256.NewInt(0)
	}

	m := new(uint256.Int).SubUint64(n, 1) // highest squared term

	sum := new(uint256.Int).Set(m)
	sum.Mul(sum, n)

	odd := new(uint256.Int).Mul(m, uint256.NewInt(2))
	odd.AddUint64(odd, 1)

	sum.Mul(sum, odd)
	sum.Div(sum, uint256.NewInt(6))

	return sum
}
