// Package memory provides the in-process reference implementation of the
// Keymarket store. It is the default for tests and embedded use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	keymarket "github.com/fanbase-labs/keymarket"
	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/keys"
	ledgerstore "github.com/fanbase-labs/keymarket/store"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store with mutex-guarded maps.
type Store struct {
	mu sync.RWMutex

	// Creator registry, plus insertion order for stable enumeration
	creators     map[string]*creator.Creator
	creatorOrder []string

	// (holder, creator) → key balance
	holdings map[holdingKey]*keys.Holding

	// Trade log, append-only
	trades []*trade.Trade

	// Global scalars
	params  ledgerstore.Params
	feePool types.Amount

	// Tax exemption set
	exempt map[string]bool
}

type holdingKey struct {
	holder  string
	creator string
}

// New creates an empty in-memory store with default parameters.
func New() *Store {
	return &Store{
		creators: make(map[string]*creator.Creator),
		holdings: make(map[holdingKey]*keys.Holding),
		params:   ledgerstore.DefaultParams(),
		exempt:   make(map[string]bool),
	}
}

// ──────────────────────────────────────────────────
// Creator registry
// ──────────────────────────────────────────────────

func (s *Store) CreateCreator(_ context.Context, c *creator.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.ID.String()
	if _, exists := s.creators[key]; exists {
		return keymarket.ErrAlreadyExists
	}

	cp := *c
	s.creators[key] = &cp
	s.creatorOrder = append(s.creatorOrder, key)

	return nil
}

func (s *Store) GetCreator(_ context.Context, creatorID id.AccountID) (*creator.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creators[creatorID.String()]
	if !ok {
		return nil, keymarket.ErrNotFound
	}

	cp := *c

	return &cp, nil
}

func (s *Store) ListCreators(_ context.Context, opts creator.ListOpts) ([]*creator.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*creator.Creator, 0, len(s.creatorOrder))
	for _, key := range s.creatorOrder {
		cp := *s.creators[key]
		out = append(out, &cp)
	}

	return paginate(out, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateCreator(_ context.Context, c *creator.Creator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCreatorLocked(c)
}

func (s *Store) updateCreatorLocked(c *creator.Creator) error {
	key := c.ID.String()
	if _, exists := s.creators[key]; !exists {
		return keymarket.ErrNotFound
	}

	cp := *c
	cp.Touch()
	s.creators[key] = &cp

	return nil
}

// ──────────────────────────────────────────────────
// Key holdings
// ──────────────────────────────────────────────────

func (s *Store) GetHolding(_ context.Context, holder, creatorID id.AccountID) (*keys.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.holdingLocked(holder, creatorID), nil
}

func (s *Store) holdingLocked(holder, creatorID id.AccountID) *keys.Holding {
	h, ok := s.holdings[holdingKey{holder.String(), creatorID.String()}]
	if !ok {
		// Implicit zero balance
		return &keys.Holding{
			Entity:  types.NewEntity(),
			Holder:  holder,
			Creator: creatorID,
		}
	}

	cp := *h

	return &cp
}

func (s *Store) ListHoldings(_ context.Context, holder id.AccountID) ([]*keys.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*keys.Holding, 0)
	for _, h := range s.holdings {
		if h.Holder == holder && h.Balance > 0 {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Creator.String() < out[j].Creator.String() })

	return out, nil
}

// ──────────────────────────────────────────────────
// Trades
// ──────────────────────────────────────────────────

func (s *Store) ApplyTrade(_ context.Context, app ledgerstore.TradeApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := holdingKey{app.Trade.Trader.String(), app.Trade.Creator.String()}
	h, ok := s.holdings[key]
	if !ok {
		h = &keys.Holding{
			Entity:  types.NewEntity(),
			Holder:  app.Trade.Trader,
			Creator: app.Trade.Creator,
		}
	}

	newBalance := int64(h.Balance) + app.HoldingDelta
	if newBalance < 0 {
		return fmt.Errorf("%w: holding balance would go negative", keymarket.ErrInsufficientKeys)
	}

	if err := s.updateCreatorLocked(app.Creator); err != nil {
		return err
	}

	h.Balance = uint64(newBalance)
	h.Touch()
	s.holdings[key] = h

	tr := *app.Trade
	s.trades = append(s.trades, &tr)
	s.feePool = s.feePool.Add(app.FeePoolAdd)

	return nil
}

func (s *Store) ListTrades(_ context.Context, creatorID id.AccountID, opts trade.ListOpts) ([]*trade.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*trade.Trade, 0)
	for _, tr := range s.trades {
		if tr.Creator != creatorID {
			continue
		}
		if opts.Side != "" && tr.Side != opts.Side {
			continue
		}
		cp := *tr
		out = append(out, &cp)
	}

	return paginate(out, opts.Offset, opts.Limit), nil
}

// ──────────────────────────────────────────────────
// Parameters and fee pool
// ──────────────────────────────────────────────────

func (s *Store) GetParams(_ context.Context) (ledgerstore.Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.params, nil
}

func (s *Store) SetParams(_ context.Context, p ledgerstore.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.params = p

	return nil
}

func (s *Store) FeePool(_ context.Context) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.feePool, nil
}

func (s *Store) CreditFeePool(_ context.Context, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feePool = s.feePool.Add(amount)

	return nil
}

func (s *Store) DebitFeePool(_ context.Context, amount types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feePool.Less(amount) {
		return keymarket.ErrInsufficientFunds
	}
	s.feePool = s.feePool.Sub(amount)

	return nil
}

func (s *Store) DrainFeePool(_ context.Context) (types.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained := s.feePool
	s.feePool = types.Zero()

	return drained, nil
}

// ──────────────────────────────────────────────────
// Tax exemptions
// ──────────────────────────────────────────────────

func (s *Store) SetTaxExempt(_ context.Context, account id.AccountID, exempt bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exempt {
		s.exempt[account.String()] = true
	} else {
		delete(s.exempt, account.String())
	}

	return nil
}

func (s *Store) IsTaxExempt(_ context.Context, account id.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.exempt[account.String()], nil
}

// ──────────────────────────────────────────────────
// Core methods
// ──────────────────────────────────────────────────

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
