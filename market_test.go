package keymarket_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fanbase-labs/keymarket"
	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/store/memory"
	"github.com/fanbase-labs/keymarket/token"
	"github.com/fanbase-labs/keymarket/types"
)

// genesisSupply seeds each test market.
var genesisSupply = keymarket.Tokens(21_000_000)

type harness struct {
	market   *keymarket.Market
	ledger   *token.MemoryLedger
	deployer keymarket.AccountID
}

func newHarness(t *testing.T, opts ...keymarket.Option) *harness {
	t.Helper()

	deployer := keymarket.NewAccountID()
	ledger := token.NewMemoryLedger()

	opts = append([]keymarket.Option{
		keymarket.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		keymarket.WithOwner(deployer),
		keymarket.WithGenesisMint(deployer, genesisSupply),
	}, opts...)

	m := keymarket.New(memory.New(), ledger, opts...)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Stop() })

	return &harness{market: m, ledger: ledger, deployer: deployer}
}

// fund mints tokens to a fresh account and returns its identity.
func (h *harness) fund(t *testing.T, amount types.Amount) keymarket.AccountID {
	t.Helper()

	account := keymarket.NewAccountID()
	if err := h.ledger.Mint(context.Background(), account, amount); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	return account
}

// balance is a test shorthand for the ledger balance of one account.
func (h *harness) balance(t *testing.T, account keymarket.AccountID) types.Amount {
	t.Helper()

	b, err := h.ledger.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	return b
}

// checkConservation verifies totalSupply == totalMinted - totalBurned and
// that the named accounts plus custody hold exactly the total supply.
func (h *harness) checkConservation(t *testing.T, accounts ...keymarket.AccountID) {
	t.Helper()
	ctx := context.Background()

	supply, err := h.ledger.TotalSupply(ctx)
	if err != nil {
		t.Fatalf("TotalSupply() error = %v", err)
	}
	minted, err := h.ledger.TotalMinted(ctx)
	if err != nil {
		t.Fatalf("TotalMinted() error = %v", err)
	}
	burned, err := h.ledger.TotalBurned(ctx)
	if err != nil {
		t.Fatalf("TotalBurned() error = %v", err)
	}

	if !supply.Equal(minted.Sub(burned)) {
		t.Errorf("supply = %s, want minted - burned = %s", supply, minted.Sub(burned))
	}

	held := h.balance(t, h.market.Custody())
	for _, account := range accounts {
		held = held.Add(h.balance(t, account))
	}
	if !held.Equal(supply) {
		t.Errorf("sum of balances = %s, want total supply %s", held, supply)
	}
}

func TestMarketStart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("GenesisMint", func(t *testing.T) {
		if got := h.balance(t, h.deployer); !got.Equal(genesisSupply) {
			t.Errorf("deployer balance = %s, want %s", got, genesisSupply)
		}
	})

	t.Run("DefaultParams", func(t *testing.T) {
		params, err := h.market.Params(ctx)
		if err != nil {
			t.Fatalf("Params() error = %v", err)
		}
		if !params.RegistrationFee.Equal(keymarket.Tokens(100)) {
			t.Errorf("registration fee = %s, want %s", params.RegistrationFee, keymarket.Tokens(100))
		}
		if params.MaxCreatorKeys != 1000 {
			t.Errorf("max creator keys = %d, want 1000", params.MaxCreatorKeys)
		}
	})

	t.Run("EmptyFeePool", func(t *testing.T) {
		pool, err := h.market.PlatformFeePool(ctx)
		if err != nil {
			t.Fatalf("PlatformFeePool() error = %v", err)
		}
		if !pool.IsZero() {
			t.Errorf("fee pool = %s, want zero", pool)
		}
	})
}

func TestRegisterCreator(t *testing.T) {
	ctx := context.Background()

	t.Run("BurnsRegistrationFee", func(t *testing.T) {
		h := newHarness(t)

		supplyBefore, _ := h.ledger.TotalSupply(ctx)
		balanceBefore := h.balance(t, h.deployer)

		c, err := h.market.RegisterCreator(ctx, h.deployer, "Alice", "painter")
		if err != nil {
			t.Fatalf("RegisterCreator() error = %v", err)
		}
		if c.Name != "Alice" || !c.IsActive {
			t.Errorf("creator = %+v, want active Alice", c)
		}
		if c.KeysSupply != 0 || c.KeysSoldDirectly != 0 || !c.TotalVolume.IsZero() {
			t.Errorf("new creator has non-zero trading state: %+v", c)
		}

		fee := keymarket.Tokens(100)
		if got := h.balance(t, h.deployer); !got.Equal(balanceBefore.Sub(fee)) {
			t.Errorf("balance = %s, want %s", got, balanceBefore.Sub(fee))
		}
		supplyAfter, _ := h.ledger.TotalSupply(ctx)
		if !supplyAfter.Equal(supplyBefore.Sub(fee)) {
			t.Errorf("total supply = %s, want %s", supplyAfter, supplyBefore.Sub(fee))
		}

		isCreator, err := h.market.IsCreator(ctx, h.deployer)
		if err != nil || !isCreator {
			t.Errorf("IsCreator() = (%v, %v), want (true, nil)", isCreator, err)
		}

		h.checkConservation(t, h.deployer)
	})

	t.Run("DuplicateRejected", func(t *testing.T) {
		h := newHarness(t)

		if _, err := h.market.RegisterCreator(ctx, h.deployer, "Alice", ""); err != nil {
			t.Fatalf("RegisterCreator() error = %v", err)
		}
		_, err := h.market.RegisterCreator(ctx, h.deployer, "Alice again", "")
		if !errors.Is(err, keymarket.ErrAlreadyRegistered) {
			t.Errorf("error = %v, want ErrAlreadyRegistered", err)
		}
	})

	t.Run("EmptyNameRejected", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.market.RegisterCreator(ctx, h.deployer, "   ", "")
		if !errors.Is(err, keymarket.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		h := newHarness(t)

		poor := h.fund(t, keymarket.Tokens(99))
		_, err := h.market.RegisterCreator(ctx, poor, "Broke", "")
		if !errors.Is(err, keymarket.ErrInsufficientFunds) {
			t.Errorf("error = %v, want ErrInsufficientFunds", err)
		}
		// Nothing burned on the failed path.
		if got := h.balance(t, poor); !got.Equal(keymarket.Tokens(99)) {
			t.Errorf("balance = %s, want unchanged %s", got, keymarket.Tokens(99))
		}
	})

	t.Run("ListInRegistrationOrder", func(t *testing.T) {
		h := newHarness(t)

		first := h.fund(t, keymarket.Tokens(1000))
		second := h.fund(t, keymarket.Tokens(1000))
		for i, account := range []keymarket.AccountID{first, second} {
			name := []string{"One", "Two"}[i]
			if _, err := h.market.RegisterCreator(ctx, account, name, ""); err != nil {
				t.Fatalf("RegisterCreator(%s) error = %v", name, err)
			}
		}

		list, err := h.market.ListCreators(ctx, creator.ListOpts{Limit: 10})
		if err != nil {
			t.Fatalf("ListCreators() error = %v", err)
		}
		if len(list) != 2 || list[0].ID != first || list[1].ID != second {
			t.Errorf("ListCreators() returned wrong order or count: %d entries", len(list))
		}
	})
}

func TestDeactivateCreator(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.market.RegisterCreator(ctx, h.deployer, "Alice", ""); err != nil {
		t.Fatalf("RegisterCreator() error = %v", err)
	}

	t.Run("NonOwnerRejected", func(t *testing.T) {
		stranger := keymarket.NewAccountID()
		err := h.market.DeactivateCreator(ctx, stranger, h.deployer)
		if !errors.Is(err, keymarket.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("UnknownCreator", func(t *testing.T) {
		err := h.market.DeactivateCreator(ctx, h.deployer, keymarket.NewAccountID())
		if !errors.Is(err, keymarket.ErrNotACreator) {
			t.Errorf("error = %v, want ErrNotACreator", err)
		}
	})

	t.Run("MarksInactive", func(t *testing.T) {
		if err := h.market.DeactivateCreator(ctx, h.deployer, h.deployer); err != nil {
			t.Fatalf("DeactivateCreator() error = %v", err)
		}
		c, err := h.market.GetCreator(ctx, h.deployer)
		if err != nil {
			t.Fatalf("GetCreator() error = %v", err)
		}
		if c.IsActive {
			t.Error("creator still active after deactivation")
		}
	})

	t.Run("TradingStillAllowed", func(t *testing.T) {
		// Deactivation does not gate the trading path.
		buyer := h.fund(t, keymarket.Tokens(1000))
		if _, err := h.market.BuyKeys(ctx, buyer, h.deployer, 1); err != nil {
			t.Fatalf("BuyKeys() on deactivated creator error = %v", err)
		}
		if _, err := h.market.SellKeys(ctx, buyer, h.deployer, 1); err != nil {
			t.Fatalf("SellKeys() on deactivated creator error = %v", err)
		}
	})
}

func TestUpdateCreatorProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.market.RegisterCreator(ctx, h.deployer, "Alice", "painter"); err != nil {
		t.Fatalf("RegisterCreator() error = %v", err)
	}

	c, err := h.market.UpdateCreatorProfile(ctx, h.deployer, "Alice B", "sculptor")
	if err != nil {
		t.Fatalf("UpdateCreatorProfile() error = %v", err)
	}
	if c.Name != "Alice B" || c.Bio != "sculptor" {
		t.Errorf("profile = (%q, %q), want (Alice B, sculptor)", c.Name, c.Bio)
	}

	if _, err := h.market.UpdateCreatorProfile(ctx, keymarket.NewAccountID(), "X", ""); !errors.Is(err, keymarket.ErrNotACreator) {
		t.Errorf("error = %v, want ErrNotACreator", err)
	}
}
