// Package trade defines key trade records and price quotes.
package trade

import (
	"time"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// Side distinguishes primary buys from sells back into the curve.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Trade is the persisted record of one executed buy or sell.
type Trade struct {
	types.Entity
	ID          id.TradeID   `json:"id"`
	Creator     id.AccountID `json:"creator"`
	Trader      id.AccountID `json:"trader"`
	Side        Side         `json:"side"`
	Amount      uint64       `json:"amount"`
	Price       types.Amount `json:"price"`
	PlatformFee types.Amount `json:"platform_fee"`
	CreatorFee  types.Amount `json:"creator_fee"`
	ExecutedAt  time.Time    `json:"executed_at"`
}

// Quote is a fee-inclusive price estimate. Quotes are bit-identical to what
// the mutating call would charge given the same state.
type Quote struct {
	Side        Side         `json:"side"`
	Amount      uint64       `json:"amount"`
	Price       types.Amount `json:"price"`
	PlatformFee types.Amount `json:"platform_fee"`
	CreatorFee  types.Amount `json:"creator_fee"`
	// Total is the full debit for a buy (price + fees) or the net credit to
	// the seller for a sell (price - fees).
	Total types.Amount `json:"total"`
}

// ListOpts controls pagination when listing trades.
type ListOpts struct {
	Side   Side // empty matches both sides
	Limit  int
	Offset int
}
