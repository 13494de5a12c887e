package keymarket_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fanbase-labs/keymarket"
)

func TestTransferWithTax(t *testing.T) {
	ctx := context.Background()

	t.Run("StandardSplit", func(t *testing.T) {
		h := newHarness(t)
		recipient := keymarket.NewAccountID()

		senderBefore := h.balance(t, h.deployer)
		supplyBefore, _ := h.ledger.TotalSupply(ctx)

		amount := keymarket.Tokens(1000)
		breakdown, err := h.market.TransferWithTax(ctx, h.deployer, recipient, amount)
		if err != nil {
			t.Fatalf("TransferWithTax() error = %v", err)
		}

		// 5% levy: 3% of the amount is burned, 2% accrues to the pool.
		if want := keymarket.Tokens(50); !breakdown.Tax.Equal(want) {
			t.Errorf("tax = %s, want %s", breakdown.Tax, want)
		}
		if want := keymarket.Tokens(30); !breakdown.Burn.Equal(want) {
			t.Errorf("burn = %s, want %s", breakdown.Burn, want)
		}
		if want := keymarket.Tokens(20); !breakdown.Vault.Equal(want) {
			t.Errorf("vault = %s, want %s", breakdown.Vault, want)
		}

		// Sender pays the face value plus the burn share.
		wantSender := senderBefore.Sub(amount).Sub(keymarket.Tokens(30))
		if got := h.balance(t, h.deployer); !got.Equal(wantSender) {
			t.Errorf("sender balance = %s, want %s", got, wantSender)
		}
		if got := h.balance(t, recipient); !got.Equal(amount) {
			t.Errorf("recipient balance = %s, want %s", got, amount)
		}

		pool, _ := h.market.PlatformFeePool(ctx)
		if !pool.Equal(keymarket.Tokens(20)) {
			t.Errorf("fee pool = %s, want %s", pool, keymarket.Tokens(20))
		}

		supplyAfter, _ := h.ledger.TotalSupply(ctx)
		if want := supplyBefore.Sub(keymarket.Tokens(30)); !supplyAfter.Equal(want) {
			t.Errorf("total supply = %s, want %s", supplyAfter, want)
		}
	})

	t.Run("ExemptSender", func(t *testing.T) {
		h := newHarness(t)
		recipient := keymarket.NewAccountID()

		if err := h.market.SetTaxExempt(ctx, h.deployer, h.deployer, true); err != nil {
			t.Fatalf("SetTaxExempt() error = %v", err)
		}

		amount := keymarket.Tokens(1000)
		breakdown, err := h.market.TransferWithTax(ctx, h.deployer, recipient, amount)
		if err != nil {
			t.Fatalf("TransferWithTax() error = %v", err)
		}
		if !breakdown.Tax.IsZero() {
			t.Errorf("tax = %s, want zero for exempt sender", breakdown.Tax)
		}
		if got := h.balance(t, h.deployer); !got.Equal(genesisSupply.Sub(amount)) {
			t.Errorf("sender debited %s, want face value only", genesisSupply.Sub(got))
		}
	})

	t.Run("ExemptRecipient", func(t *testing.T) {
		h := newHarness(t)
		recipient := keymarket.NewAccountID()

		if err := h.market.SetTaxExempt(ctx, h.deployer, recipient, true); err != nil {
			t.Fatalf("SetTaxExempt() error = %v", err)
		}

		breakdown, err := h.market.TransferWithTax(ctx, h.deployer, recipient, keymarket.Tokens(500))
		if err != nil {
			t.Fatalf("TransferWithTax() error = %v", err)
		}
		if !breakdown.Tax.IsZero() {
			t.Errorf("tax = %s, want zero for exempt recipient", breakdown.Tax)
		}
	})

	t.Run("TransferToBurnIdentity", func(t *testing.T) {
		h := newHarness(t)

		supplyBefore, _ := h.ledger.TotalSupply(ctx)
		amount := keymarket.Tokens(100)

		breakdown, err := h.market.TransferWithTax(ctx, h.deployer, keymarket.BurnIdentity, amount)
		if err != nil {
			t.Fatalf("TransferWithTax() error = %v", err)
		}
		if !breakdown.Tax.IsZero() {
			t.Errorf("tax = %s, want zero for burn transfer", breakdown.Tax)
		}

		// Transfers to the burn identity destroy the full face value, untaxed.
		supplyAfter, _ := h.ledger.TotalSupply(ctx)
		if want := supplyBefore.Sub(amount); !supplyAfter.Equal(want) {
			t.Errorf("total supply = %s, want %s", supplyAfter, want)
		}
	})

	t.Run("ZeroAmountUntaxed", func(t *testing.T) {
		h := newHarness(t)

		breakdown, err := h.market.TransferWithTax(ctx, h.deployer, keymarket.NewAccountID(), keymarket.Zero())
		if err != nil {
			t.Fatalf("TransferWithTax() error = %v", err)
		}
		if !breakdown.Tax.IsZero() {
			t.Errorf("tax = %s, want zero", breakdown.Tax)
		}
	})

	t.Run("InsufficientForBurnShare", func(t *testing.T) {
		h := newHarness(t)

		// Enough for the face value but not the 3% burn on top.
		sender := h.fund(t, keymarket.Tokens(1000))
		recipient := keymarket.NewAccountID()

		_, err := h.market.TransferWithTax(ctx, sender, recipient, keymarket.Tokens(1000))
		if !errors.Is(err, keymarket.ErrInsufficientFunds) {
			t.Fatalf("error = %v, want ErrInsufficientFunds", err)
		}
		// Nothing moved or burned on the failed path.
		if got := h.balance(t, sender); !got.Equal(keymarket.Tokens(1000)) {
			t.Errorf("sender balance = %s, want unchanged", got)
		}
		if got := h.balance(t, recipient); !got.IsZero() {
			t.Errorf("recipient balance = %s, want zero", got)
		}
	})

	t.Run("NilSenderRejected", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.market.TransferWithTax(ctx, keymarket.BurnIdentity, keymarket.NewAccountID(), keymarket.Tokens(1))
		if !errors.Is(err, keymarket.ErrInvalidAddress) {
			t.Errorf("error = %v, want ErrInvalidAddress", err)
		}
	})
}
