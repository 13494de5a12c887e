// Package tax implements the transfer-tax assessment.
//
// Every non-exempt token transfer is taxed on top of its face value: part of
// the tax is burned outright and the remainder is routed to the platform fee
// pool. Rates use a 1000 denominator so sub-percent rates stay exact.
package tax

import "github.com/fanbase-labs/keymarket/types"

// Default policy constants: 5% tax, of which 3/5 is burned (3% of the
// transferred amount) and 2/5 goes to the fee pool (2%).
const (
	DefaultRateNumerator = 50
	RateDenominator      = 1000
	BurnShareNumerator   = 3
	BurnShareDenominator = 5
)

// Policy holds the tax rate applied to transfers.
type Policy struct {
	// RateNumerator over RateDenominator is the total tax rate.
	RateNumerator uint64
}

// DefaultPolicy returns the stock 5% policy.
func DefaultPolicy() Policy {
	return Policy{RateNumerator: DefaultRateNumerator}
}

// Breakdown is the result of assessing tax on one transfer.
// Tax == Burn + Vault exactly; all divisions truncate toward zero.
type Breakdown struct {
	Tax   types.Amount // total levy on top of the transferred amount
	Burn  types.Amount // destroyed, reduces total supply
	Vault types.Amount // credited to the platform fee pool
}

// Assess computes the tax breakdown for a transfer of amount.
// The transfer itself proceeds at full face value; the sender is debited
// amount + Burn in total and the pool is credited Vault.
func (p Policy) Assess(amount types.Amount) Breakdown {
	levy := amount.MulDiv(p.RateNumerator, RateDenominator)
	burn := levy.MulDiv(BurnShareNumerator, BurnShareDenominator)

	return Breakdown{
		Tax:   levy,
		Burn:  burn,
		Vault: levy.Sub(burn),
	}
}
