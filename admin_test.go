package keymarket_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fanbase-labs/keymarket"
)

func TestUpdateMaxCreatorKeys(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("NonOwnerRejected", func(t *testing.T) {
		err := h.market.UpdateMaxCreatorKeys(ctx, keymarket.NewAccountID(), 500)
		if !errors.Is(err, keymarket.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("ZeroRejected", func(t *testing.T) {
		err := h.market.UpdateMaxCreatorKeys(ctx, h.deployer, 0)
		if !errors.Is(err, keymarket.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("Updates", func(t *testing.T) {
		if err := h.market.UpdateMaxCreatorKeys(ctx, h.deployer, 500); err != nil {
			t.Fatalf("UpdateMaxCreatorKeys() error = %v", err)
		}
		params, err := h.market.Params(ctx)
		if err != nil {
			t.Fatalf("Params() error = %v", err)
		}
		if params.MaxCreatorKeys != 500 {
			t.Errorf("max creator keys = %d, want 500", params.MaxCreatorKeys)
		}
	})
}

func TestUpdateRegistrationFee(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.market.UpdateRegistrationFee(ctx, h.deployer, keymarket.Zero()); !errors.Is(err, keymarket.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}

	fee := keymarket.Tokens(250)
	if err := h.market.UpdateRegistrationFee(ctx, h.deployer, fee); err != nil {
		t.Fatalf("UpdateRegistrationFee() error = %v", err)
	}
	params, _ := h.market.Params(ctx)
	if !params.RegistrationFee.Equal(fee) {
		t.Errorf("registration fee = %s, want %s", params.RegistrationFee, fee)
	}

	// The new fee gates registration immediately.
	poor := h.fund(t, keymarket.Tokens(100))
	if _, err := h.market.RegisterCreator(ctx, poor, "Poor", ""); !errors.Is(err, keymarket.ErrInsufficientFunds) {
		t.Errorf("error = %v, want ErrInsufficientFunds under raised fee", err)
	}
}

func TestSetStakingVault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.market.SetStakingVault(ctx, h.deployer, keymarket.BurnIdentity); !errors.Is(err, keymarket.ErrInvalidAddress) {
		t.Errorf("error = %v, want ErrInvalidAddress", err)
	}

	vault := keymarket.NewAccountID()
	if err := h.market.SetStakingVault(ctx, h.deployer, vault); err != nil {
		t.Fatalf("SetStakingVault() error = %v", err)
	}
	if got := h.market.Vault(); got != vault {
		t.Errorf("Vault() = %s, want %s", got, vault)
	}
}

func TestWithdrawPlatformFees(t *testing.T) {
	ctx := context.Background()

	t.Run("TransfersPoolToVault", func(t *testing.T) {
		h := newHarness(t)
		vault := keymarket.NewAccountID()
		if err := h.market.SetStakingVault(ctx, h.deployer, vault); err != nil {
			t.Fatalf("SetStakingVault() error = %v", err)
		}

		// Accrue a platform fee through a buy.
		alice := h.registerCreator(t, "Alice")
		buyer := h.fund(t, keymarket.Tokens(10_000))
		tr, err := h.market.BuyKeys(ctx, buyer, alice, 10)
		if err != nil {
			t.Fatalf("BuyKeys() error = %v", err)
		}

		amount, err := h.market.WithdrawPlatformFees(ctx, h.deployer)
		if err != nil {
			t.Fatalf("WithdrawPlatformFees() error = %v", err)
		}
		if !amount.Equal(tr.PlatformFee) {
			t.Errorf("withdrawn = %s, want %s", amount, tr.PlatformFee)
		}
		if got := h.balance(t, vault); !got.Equal(tr.PlatformFee) {
			t.Errorf("vault balance = %s, want %s", got, tr.PlatformFee)
		}

		pool, _ := h.market.PlatformFeePool(ctx)
		if !pool.IsZero() {
			t.Errorf("fee pool = %s, want zero after withdrawal", pool)
		}

		// Draining twice cannot double-pay.
		if _, err := h.market.WithdrawPlatformFees(ctx, h.deployer); !errors.Is(err, keymarket.ErrInsufficientFunds) {
			t.Errorf("second withdrawal error = %v, want ErrInsufficientFunds", err)
		}
	})

	t.Run("NoVaultConfigured", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.market.WithdrawPlatformFees(ctx, h.deployer); !errors.Is(err, keymarket.ErrInvalidAddress) {
			t.Errorf("error = %v, want ErrInvalidAddress", err)
		}
	})

	t.Run("NonOwnerRejected", func(t *testing.T) {
		h := newHarness(t)
		if _, err := h.market.WithdrawPlatformFees(ctx, keymarket.NewAccountID()); !errors.Is(err, keymarket.ErrUnauthorized) {
			t.Errorf("error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestBurnPlatformFees(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	alice := h.registerCreator(t, "Alice")
	buyer := h.fund(t, keymarket.Tokens(10_000))
	tr, err := h.market.BuyKeys(ctx, buyer, alice, 10)
	if err != nil {
		t.Fatalf("BuyKeys() error = %v", err)
	}

	t.Run("MoreThanPoolRejected", func(t *testing.T) {
		err := h.market.BurnPlatformFees(ctx, h.deployer, tr.PlatformFee.Add(keymarket.Wei(1)))
		if !errors.Is(err, keymarket.ErrInsufficientFunds) {
			t.Errorf("error = %v, want ErrInsufficientFunds", err)
		}
	})

	t.Run("BurnsFromPoolAndSupply", func(t *testing.T) {
		supplyBefore, _ := h.ledger.TotalSupply(ctx)

		if err := h.market.BurnPlatformFees(ctx, h.deployer, tr.PlatformFee); err != nil {
			t.Fatalf("BurnPlatformFees() error = %v", err)
		}

		pool, _ := h.market.PlatformFeePool(ctx)
		if !pool.IsZero() {
			t.Errorf("fee pool = %s, want zero", pool)
		}
		supplyAfter, _ := h.ledger.TotalSupply(ctx)
		if want := supplyBefore.Sub(tr.PlatformFee); !supplyAfter.Equal(want) {
			t.Errorf("total supply = %s, want %s", supplyAfter, want)
		}
	})
}

func TestTransferOwnership(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("NilNewOwnerRejected", func(t *testing.T) {
		if err := h.market.TransferOwnership(ctx, h.deployer, keymarket.BurnIdentity); !errors.Is(err, keymarket.ErrInvalidAddress) {
			t.Errorf("error = %v, want ErrInvalidAddress", err)
		}
	})

	t.Run("HandsOverControl", func(t *testing.T) {
		successor := keymarket.NewAccountID()
		if err := h.market.TransferOwnership(ctx, h.deployer, successor); err != nil {
			t.Fatalf("TransferOwnership() error = %v", err)
		}
		if got := h.market.Owner(); got != successor {
			t.Errorf("Owner() = %s, want %s", got, successor)
		}

		// The old owner no longer passes the gate; the new one does.
		if err := h.market.UpdateMaxCreatorKeys(ctx, h.deployer, 2000); !errors.Is(err, keymarket.ErrUnauthorized) {
			t.Errorf("old owner error = %v, want ErrUnauthorized", err)
		}
		if err := h.market.UpdateMaxCreatorKeys(ctx, successor, 2000); err != nil {
			t.Errorf("new owner error = %v", err)
		}
	})
}

func TestSetTaxExempt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	account := keymarket.NewAccountID()

	if err := h.market.SetTaxExempt(ctx, keymarket.NewAccountID(), account, true); !errors.Is(err, keymarket.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}

	for _, exempt := range []bool{true, false, true} {
		if err := h.market.SetTaxExempt(ctx, h.deployer, account, exempt); err != nil {
			t.Fatalf("SetTaxExempt(%v) error = %v", exempt, err)
		}
		got, err := h.market.IsTaxExempt(ctx, account)
		if err != nil || got != exempt {
			t.Errorf("IsTaxExempt() = (%v, %v), want (%v, nil)", got, err, exempt)
		}
	}
}
