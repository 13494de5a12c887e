package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	keymarket "github.com/fanbase-labs/keymarket"
	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/store"
	"github.com/fanbase-labs/keymarket/store/memory"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

func newCreator(name string) *creator.Creator {
	return &creator.Creator{
		Entity:       types.NewEntity(),
		ID:           id.NewAccountID(),
		Name:         name,
		IsActive:     true,
		RegisteredAt: time.Now().UTC(),
	}
}

func newTrade(creatorID, trader id.AccountID, side trade.Side, amount uint64) *trade.Trade {
	return &trade.Trade{
		Entity:     types.NewEntity(),
		ID:         id.NewTradeID(),
		Creator:    creatorID,
		Trader:     trader,
		Side:       side,
		Amount:     amount,
		Price:      types.Tokens(1),
		ExecutedAt: time.Now().UTC(),
	}
}

func TestCreatorRegistry(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	c := newCreator("Alice")
	if err := s.CreateCreator(ctx, c); err != nil {
		t.Fatalf("CreateCreator() error = %v", err)
	}
	if err := s.CreateCreator(ctx, c); !errors.Is(err, keymarket.ErrAlreadyExists) {
		t.Errorf("duplicate error = %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetCreator(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCreator() error = %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("name = %q, want Alice", got.Name)
	}

	// Returned records are copies; mutating them must not affect the store.
	got.Name = "mutated"
	again, _ := s.GetCreator(ctx, c.ID)
	if again.Name != "Alice" {
		t.Error("store returned a shared reference")
	}

	if _, err := s.GetCreator(ctx, id.NewAccountID()); !errors.Is(err, keymarket.ErrNotFound) {
		t.Errorf("missing error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateCreator(ctx, newCreator("Ghost")); !errors.Is(err, keymarket.ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}
}

func TestListCreatorsOrderAndPagination(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	var ids []id.AccountID
	for _, name := range []string{"One", "Two", "Three"} {
		c := newCreator(name)
		ids = append(ids, c.ID)
		if err := s.CreateCreator(ctx, c); err != nil {
			t.Fatalf("CreateCreator() error = %v", err)
		}
	}

	all, err := s.ListCreators(ctx, creator.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("ListCreators() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i, c := range all {
		if c.ID != ids[i] {
			t.Errorf("position %d = %s, want %s", i, c.ID, ids[i])
		}
	}

	page, err := s.ListCreators(ctx, creator.ListOpts{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListCreators() error = %v", err)
	}
	if len(page) != 1 || page[0].ID != ids[1] {
		t.Errorf("page = %v, want the second creator only", page)
	}
}

func TestApplyTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("BuyCreditsEverything", func(t *testing.T) {
		s := memory.New()
		c := newCreator("Alice")
		if err := s.CreateCreator(ctx, c); err != nil {
			t.Fatalf("CreateCreator() error = %v", err)
		}

		trader := id.NewAccountID()
		updated := *c
		updated.KeysSupply = 5
		updated.KeysSoldDirectly = 5

		err := s.ApplyTrade(ctx, store.TradeApplication{
			Trade:        newTrade(c.ID, trader, trade.SideBuy, 5),
			Creator:      &updated,
			HoldingDelta: 5,
			FeePoolAdd:   types.Tokens(1),
		})
		if err != nil {
			t.Fatalf("ApplyTrade() error = %v", err)
		}

		h, err := s.GetHolding(ctx, trader, c.ID)
		if err != nil {
			t.Fatalf("GetHolding() error = %v", err)
		}
		if h.Balance != 5 {
			t.Errorf("holding balance = %d, want 5", h.Balance)
		}
		stored, _ := s.GetCreator(ctx, c.ID)
		if stored.KeysSupply != 5 {
			t.Errorf("keys supply = %d, want 5", stored.KeysSupply)
		}
		pool, _ := s.FeePool(ctx)
		if !pool.Equal(types.Tokens(1)) {
			t.Errorf("fee pool = %s, want %s", pool, types.Tokens(1))
		}
		trades, _ := s.ListTrades(ctx, c.ID, trade.ListOpts{Limit: 10})
		if len(trades) != 1 {
			t.Errorf("trade log has %d entries, want 1", len(trades))
		}
	})

	t.Run("NegativeHoldingRejectedAtomically", func(t *testing.T) {
		s := memory.New()
		c := newCreator("Alice")
		if err := s.CreateCreator(ctx, c); err != nil {
			t.Fatalf("CreateCreator() error = %v", err)
		}

		trader := id.NewAccountID()
		updated := *c
		err := s.ApplyTrade(ctx, store.TradeApplication{
			Trade:        newTrade(c.ID, trader, trade.SideSell, 1),
			Creator:      &updated,
			HoldingDelta: -1,
			FeePoolAdd:   types.Tokens(1),
		})
		if !errors.Is(err, keymarket.ErrInsufficientKeys) {
			t.Fatalf("error = %v, want ErrInsufficientKeys", err)
		}

		pool, _ := s.FeePool(ctx)
		if !pool.IsZero() {
			t.Errorf("fee pool = %s, want zero after rejected trade", pool)
		}
		trades, _ := s.ListTrades(ctx, c.ID, trade.ListOpts{Limit: 10})
		if len(trades) != 0 {
			t.Errorf("trade log has %d entries, want 0", len(trades))
		}
	})
}

func TestHoldings(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	holder := id.NewAccountID()

	// Unknown pairs read as zero without error.
	h, err := s.GetHolding(ctx, holder, id.NewAccountID())
	if err != nil {
		t.Fatalf("GetHolding() error = %v", err)
	}
	if h.Balance != 0 {
		t.Errorf("balance = %d, want 0", h.Balance)
	}

	list, err := s.ListHoldings(ctx, holder)
	if err != nil {
		t.Fatalf("ListHoldings() error = %v", err)
	}
	if len(list) != 0 {
		t.Errorf("len = %d, want 0", len(list))
	}
}

func TestParamsAndFeePool(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	params, err := s.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams() error = %v", err)
	}
	if params.MaxCreatorKeys != 1000 || !params.RegistrationFee.Equal(types.Tokens(100)) {
		t.Errorf("defaults = %+v", params)
	}

	params.MaxCreatorKeys = 42
	if err := s.SetParams(ctx, params); err != nil {
		t.Fatalf("SetParams() error = %v", err)
	}
	params, _ = s.GetParams(ctx)
	if params.MaxCreatorKeys != 42 {
		t.Errorf("max creator keys = %d, want 42", params.MaxCreatorKeys)
	}

	if err := s.CreditFeePool(ctx, types.Tokens(10)); err != nil {
		t.Fatalf("CreditFeePool() error = %v", err)
	}
	if err := s.DebitFeePool(ctx, types.Tokens(3)); err != nil {
		t.Fatalf("DebitFeePool() error = %v", err)
	}
	if err := s.DebitFeePool(ctx, types.Tokens(100)); !errors.Is(err, keymarket.ErrInsufficientFunds) {
		t.Errorf("over-debit error = %v, want ErrInsufficientFunds", err)
	}

	drained, err := s.DrainFeePool(ctx)
	if err != nil {
		t.Fatalf("DrainFeePool() error = %v", err)
	}
	if !drained.Equal(types.Tokens(7)) {
		t.Errorf("drained = %s, want %s", drained, types.Tokens(7))
	}
	pool, _ := s.FeePool(ctx)
	if !pool.IsZero() {
		t.Errorf("fee pool = %s, want zero", pool)
	}
}

func TestTaxExemption(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	account := id.NewAccountID()
	exempt, err := s.IsTaxExempt(ctx, account)
	if err != nil || exempt {
		t.Errorf("IsTaxExempt() = (%v, %v), want (false, nil)", exempt, err)
	}

	if err := s.SetTaxExempt(ctx, account, true); err != nil {
		t.Fatalf("SetTaxExempt() error = %v", err)
	}
	exempt, _ = s.IsTaxExempt(ctx, account)
	if !exempt {
		t.Error("account not exempt after SetTaxExempt(true)")
	}

	if err := s.SetTaxExempt(ctx, account, false); err != nil {
		t.Fatalf("SetTaxExempt() error = %v", err)
	}
	exempt, _ = s.IsTaxExempt(ctx, account)
	if exempt {
		t.Error("account still exempt after SetTaxExempt(false)")
	}
}
