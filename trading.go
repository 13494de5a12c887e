package keymarket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fanbase-labs/keymarket/curve"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/keys"
	"github.com/fanbase-labs/keymarket/store"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Fee rates, in whole percent of the raw curve price.
const (
	platformFeePercent        = 5
	creatorFeePercent         = 5
	firstBuyCreatorFeePercent = 20
)

// buyQuote prices a buy of amount keys at the given supply, including fees.
// The first issuance of a creator's keys carries the elevated creator fee.
func buyQuote(supply, amount uint64) trade.Quote {
	price := curve.Price(supply, amount)

	creatorRate := uint64(creatorFeePercent)
	if supply == 0 {
		creatorRate = firstBuyCreatorFeePercent
	}

	platformFee := price.MulDiv(platformFeePercent, 100)
	creatorFee := price.MulDiv(creatorRate, 100)

	return trade.Quote{
		Side:        trade.SideBuy,
		Amount:      amount,
		Price:       price,
		PlatformFee: platformFee,
		CreatorFee:  creatorFee,
		Total:       price.Add(platformFee).Add(creatorFee),
	}
}

// sellQuote prices a sell of amount keys at the given supply, net of fees.
// The caller guarantees amount <= supply.
func sellQuote(supply, amount uint64) trade.Quote {
	price := curve.Price(supply-amount, amount)

	platformFee := price.MulDiv(platformFeePercent, 100)
	creatorFee := price.MulDiv(creatorFeePercent, 100)

	return trade.Quote{
		Side:        trade.SideSell,
		Amount:      amount,
		Price:       price,
		PlatformFee: platformFee,
		CreatorFee:  creatorFee,
		Total:       price.Sub(platformFee).Sub(creatorFee),
	}
}

// BuyKeys buys amount keys of a creator directly from the bonding curve.
//
// The buyer is debited the curve price plus platform and creator fees. The
// platform fee accrues to the fee pool, the creator fee is paid out
// immediately, and the price remains in custody backing future sells.
// Direct issuance is capped per creator; once keysSoldDirectly reaches the
// global limit, buys fail with ErrScarcityLimit.
func (m *Market) BuyKeys(ctx context.Context, buyer, creatorID id.AccountID, amount uint64) (*trade.Trade, error) {
	if err := m.guard.enter(); err != nil {
		return nil, err
	}
	defer m.guard.exit()

	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if buyer.IsNil() {
		return nil, ErrInvalidAddress
	}

	c, err := m.store.GetCreator(ctx, creatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotACreator
		}
		return nil, err
	}

	params, err := m.store.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	if c.KeysSoldDirectly+amount > params.MaxCreatorKeys {
		return nil, ErrScarcityLimit
	}

	q := buyQuote(c.KeysSupply, amount)

	balance, err := m.ledger.BalanceOf(ctx, buyer)
	if err != nil {
		return nil, err
	}
	if balance.Less(q.Total) {
		return nil, fmt.Errorf("%w: buy costs %s", ErrInsufficientFunds, q.Total)
	}

	// Collateral in, creator fee out. Both have clean inverses, so a store
	// failure below can unwind them.
	if err := m.ledger.Transfer(ctx, buyer, m.custody, q.Total); err != nil {
		return nil, err
	}
	if err := m.ledger.Transfer(ctx, m.custody, creatorID, q.CreatorFee); err != nil {
		m.compensate(ctx, m.custody, buyer, q.Total)
		return nil, err
	}

	t := &trade.Trade{
		Entity:      types.NewEntity(),
		ID:          id.NewTradeID(),
		Creator:     creatorID,
		Trader:      buyer,
		Side:        trade.SideBuy,
		Amount:      amount,
		Price:       q.Price,
		PlatformFee: q.PlatformFee,
		CreatorFee:  q.CreatorFee,
		ExecutedAt:  time.Now().UTC(),
	}

	updated := *c
	updated.KeysSupply += amount
	updated.KeysSoldDirectly += amount
	updated.TotalVolume = updated.TotalVolume.Add(q.Price)
	updated.Touch()

	app := store.TradeApplication{
		Trade:        t,
		Creator:      &updated,
		HoldingDelta: int64(amount),
		FeePoolAdd:   q.PlatformFee,
	}
	if err := m.store.ApplyTrade(ctx, app); err != nil {
		m.compensate(ctx, creatorID, m.custody, q.CreatorFee)
		m.compensate(ctx, m.custody, buyer, q.Total)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	m.logger.Info("keys purchased",
		"buyer", buyer,
		"creator", creatorID,
		"amount", amount,
		"price", q.Price,
		"platform_fee", q.PlatformFee,
		"creator_fee", q.CreatorFee,
	)

	m.plugins.EmitKeysPurchased(ctx, t)

	return t, nil
}

// SellKeys sells amount keys of a creator back into the bonding curve.
//
// The seller receives the curve price net of platform and creator fees, paid
// from custody. keysSoldDirectly is not reduced: selling never restores
// direct-sale headroom.
func (m *Market) SellKeys(ctx context.Context, seller, creatorID id.AccountID, amount uint64) (*trade.Trade, error) {
	if err := m.guard.enter(); err != nil {
		return nil, err
	}
	defer m.guard.exit()

	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	c, err := m.store.GetCreator(ctx, creatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotACreator
		}
		return nil, err
	}

	holding, err := m.store.GetHolding(ctx, seller, creatorID)
	if err != nil {
		return nil, err
	}
	if holding.Balance < amount {
		return nil, ErrInsufficientKeys
	}
	// The balance check already implies this, but guard the pricer against
	// underflow regardless.
	if amount > c.KeysSupply {
		return nil, ErrInsufficientKeys
	}

	q := sellQuote(c.KeysSupply, amount)

	if err := m.ledger.Transfer(ctx, m.custody, creatorID, q.CreatorFee); err != nil {
		return nil, err
	}
	if err := m.ledger.Transfer(ctx, m.custody, seller, q.Total); err != nil {
		m.compensate(ctx, creatorID, m.custody, q.CreatorFee)
		return nil, err
	}

	t := &trade.Trade{
		Entity:      types.NewEntity(),
		ID:          id.NewTradeID(),
		Creator:     creatorID,
		Trader:      seller,
		Side:        trade.SideSell,
		Amount:      amount,
		Price:       q.Price,
		PlatformFee: q.PlatformFee,
		CreatorFee:  q.CreatorFee,
		ExecutedAt:  time.Now().UTC(),
	}

	updated := *c
	updated.KeysSupply -= amount
	updated.TotalVolume = updated.TotalVolume.Add(q.Price)
	updated.Touch()

	app := store.TradeApplication{
		Trade:        t,
		Creator:      &updated,
		HoldingDelta: -int64(amount),
		FeePoolAdd:   q.PlatformFee,
	}
	if err := m.store.ApplyTrade(ctx, app); err != nil {
		m.compensate(ctx, seller, m.custody, q.Total)
		m.compensate(ctx, creatorID, m.custody, q.CreatorFee)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	m.logger.Info("keys sold",
		"seller", seller,
		"creator", creatorID,
		"amount", amount,
		"price", q.Price,
		"platform_fee", q.PlatformFee,
		"creator_fee", q.CreatorFee,
	)

	m.plugins.EmitKeysSold(ctx, t)

	return t, nil
}

// compensate reverses a prior ledger transfer after a downstream failure.
// A compensation failure leaves the ledger and registry inconsistent and is
// logged at error level.
func (m *Market) compensate(ctx context.Context, from, to id.AccountID, amount types.Amount) {
	if amount.IsZero() {
		return
	}
	if err := m.ledger.Transfer(ctx, from, to, amount); err != nil {
		m.logger.Error("compensating transfer failed",
			"from", from,
			"to", to,
			"amount", amount,
			"error", err,
		)
	}
}

// ──────────────────────────────────────────────────
// Quotes and read accessors
// ──────────────────────────────────────────────────

// QuoteBuy returns the fee-inclusive cost of buying amount keys at the
// creator's current supply. The result is bit-identical to what BuyKeys
// would charge given the same state.
func (m *Market) QuoteBuy(ctx context.Context, creatorID id.AccountID, amount uint64) (*trade.Quote, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	c, err := m.GetCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	q := buyQuote(c.KeysSupply, amount)

	return &q, nil
}

// QuoteSell returns the net proceeds of selling amount keys at the creator's
// current supply. The result is bit-identical to what SellKeys would pay
// given the same state.
func (m *Market) QuoteSell(ctx context.Context, creatorID id.AccountID, amount uint64) (*trade.Quote, error) {
	if amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	c, err := m.GetCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if amount > c.KeysSupply {
		return nil, ErrInsufficientKeys
	}

	q := sellQuote(c.KeysSupply, amount)

	return &q, nil
}

// KeyBalance returns how many of a creator's keys an account holds.
func (m *Market) KeyBalance(ctx context.Context, holder, creatorID id.AccountID) (uint64, error) {
	holding, err := m.store.GetHolding(ctx, holder, creatorID)
	if err != nil {
		return 0, err
	}

	return holding.Balance, nil
}

// ListHoldings returns all non-zero key holdings of one account.
func (m *Market) ListHoldings(ctx context.Context, holder id.AccountID) ([]*keys.Holding, error) {
	return m.store.ListHoldings(ctx, holder)
}

// ListTrades returns executed trades for one creator in execution order.
func (m *Market) ListTrades(ctx context.Context, creatorID id.AccountID, opts trade.ListOpts) ([]*trade.Trade, error) {
	return m.store.ListTrades(ctx, creatorID, opts)
}
