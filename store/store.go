package store

import (
	"context"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/keys"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Params are the admin-mutable global parameters. Both values are always
// positive after any successful update.
type Params struct {
	RegistrationFee types.Amount `json:"registration_fee"`
	MaxCreatorKeys  uint64       `json:"max_creator_keys"`
}

// DefaultParams returns the parameters a fresh market starts with.
func DefaultParams() Params {
	return Params{
		RegistrationFee: types.Tokens(100),
		MaxCreatorKeys:  1000,
	}
}

// TradeApplication is the compound mutation applied when a trade executes:
// the trade record, the updated creator snapshot, the holder's key-balance
// delta, and the platform-fee credit. Implementations apply all four
// all-or-nothing.
type TradeApplication struct {
	Trade        *trade.Trade
	Creator      *creator.Creator
	HoldingDelta int64
	FeePoolAdd   types.Amount
}

// Store is the unified storage interface for all market state other than
// token balances (those live in the token ledger collaborator).
// Instead of embedding sub-interfaces, all methods are declared explicitly
// to avoid naming conflicts.
type Store interface {
	// Creator registry
	CreateCreator(ctx context.Context, c *creator.Creator) error
	GetCreator(ctx context.Context, creatorID id.AccountID) (*creator.Creator, error)
	ListCreators(ctx context.Context, opts creator.ListOpts) ([]*creator.Creator, error)
	UpdateCreator(ctx context.Context, c *creator.Creator) error

	// Key holdings. Unknown (holder, creator) pairs hold zero.
	GetHolding(ctx context.Context, holder, creatorID id.AccountID) (*keys.Holding, error)
	ListHoldings(ctx context.Context, holder id.AccountID) ([]*keys.Holding, error)

	// Trades
	ApplyTrade(ctx context.Context, app TradeApplication) error
	ListTrades(ctx context.Context, creatorID id.AccountID, opts trade.ListOpts) ([]*trade.Trade, error)

	// Global parameters
	GetParams(ctx context.Context) (Params, error)
	SetParams(ctx context.Context, p Params) error

	// Platform fee pool
	FeePool(ctx context.Context) (types.Amount, error)
	CreditFeePool(ctx context.Context, amount types.Amount) error
	DebitFeePool(ctx context.Context, amount types.Amount) error
	DrainFeePool(ctx context.Context) (types.Amount, error)

	// Tax exemption set
	SetTaxExempt(ctx context.Context, account id.AccountID, exempt bool) error
	IsTaxExempt(ctx context.Context, account id.AccountID) (bool, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
