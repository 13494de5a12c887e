// Package token defines the fungible-token ledger primitive that the market
// settles against: per-account balances of a single 10^18-scaled asset with
// mint, burn, and exact transfer semantics.
//
// The market treats the ledger as a trusted collateral store. Total supply is
// mint/burn conserved at all times and no balance ever goes negative.
package token

import (
	"context"
	"errors"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// Sentinel errors surfaced by ledger implementations.
var (
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	ErrNilAccount          = errors.New("token: nil account")
)

// Ledger is the boundary to the fungible-token primitive.
//
// Transfers addressed to id.Nil burn the amount instead of crediting an
// account. Mint to id.Nil is rejected.
type Ledger interface {
	// BalanceOf returns the balance of an account. Unknown accounts hold zero.
	BalanceOf(ctx context.Context, account id.AccountID) (types.Amount, error)

	// Mint creates amount new base units and credits them to account.
	Mint(ctx context.Context, account id.AccountID, amount types.Amount) error

	// Burn destroys amount base units held by account.
	// Fails with ErrInsufficientBalance if the account holds less.
	Burn(ctx context.Context, account id.AccountID, amount types.Amount) error

	// Transfer moves amount base units from one account to another.
	// Fails with ErrInsufficientBalance if from holds less than amount.
	Transfer(ctx context.Context, from, to id.AccountID, amount types.Amount) error

	// TotalSupply returns cumulative minted minus cumulative burned.
	TotalSupply(ctx context.Context) (types.Amount, error)

	// TotalMinted returns the cumulative amount ever minted.
	TotalMinted(ctx context.Context) (types.Amount, error)

	// TotalBurned returns the cumulative amount ever burned.
	TotalBurned(ctx context.Context) (types.Amount, error)
}
