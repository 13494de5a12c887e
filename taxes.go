package keymarket

import (
	"context"
	"fmt"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/tax"
	"github.com/fanbase-labs/keymarket/types"
)

// TransferWithTax moves amount from one account to another, levying the
// transfer tax on top of the face value.
//
// The recipient is always credited the full amount. When tax applies, the
// burn share is destroyed from the sender's balance in addition to the
// transfer, and the vault share accrues to the platform fee pool. Transfers
// involving the burn identity or a tax-exempt party are untaxed.
func (m *Market) TransferWithTax(ctx context.Context, from, to id.AccountID, amount types.Amount) (*tax.Breakdown, error) {
	if err := m.guard.enter(); err != nil {
		return nil, err
	}
	defer m.guard.exit()

	if from.IsNil() {
		return nil, ErrInvalidAddress
	}

	breakdown, err := m.assessTax(ctx, from, to, amount)
	if err != nil {
		return nil, err
	}

	balance, err := m.ledger.BalanceOf(ctx, from)
	if err != nil {
		return nil, err
	}
	if balance.Less(amount.Add(breakdown.Burn)) {
		return nil, fmt.Errorf("%w: transfer needs %s plus %s burn tax",
			ErrInsufficientFunds, amount, breakdown.Burn)
	}

	if breakdown.Burn.IsPositive() {
		if err := m.ledger.Burn(ctx, from, breakdown.Burn); err != nil {
			return nil, err
		}
	}

	if err := m.ledger.Transfer(ctx, from, to, amount); err != nil {
		if breakdown.Burn.IsPositive() {
			if mintErr := m.ledger.Mint(ctx, from, breakdown.Burn); mintErr != nil {
				m.logger.Error("failed to restore burned tax after transfer failure",
					"from", from,
					"amount", breakdown.Burn,
					"error", mintErr,
				)
			}
		}
		return nil, err
	}

	if breakdown.Vault.IsPositive() {
		if err := m.store.CreditFeePool(ctx, breakdown.Vault); err != nil {
			m.compensate(ctx, to, from, amount)
			if breakdown.Burn.IsPositive() {
				if mintErr := m.ledger.Mint(ctx, from, breakdown.Burn); mintErr != nil {
					m.logger.Error("failed to restore burned tax after pool failure",
						"from", from,
						"amount", breakdown.Burn,
						"error", mintErr,
					)
				}
			}
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
	}

	if breakdown.Tax.IsPositive() {
		m.logger.Info("transfer tax applied",
			"from", from,
			"to", to,
			"amount", amount,
			"burned", breakdown.Burn,
			"to_pool", breakdown.Vault,
		)

		m.plugins.EmitTaxApplied(ctx, from, to, amount, breakdown)
	}

	return &breakdown, nil
}

// assessTax computes the tax breakdown for one transfer, honoring the
// untaxed cases: zero amount, burn-identity endpoints, and exempt parties.
func (m *Market) assessTax(ctx context.Context, from, to id.AccountID, amount types.Amount) (tax.Breakdown, error) {
	if amount.IsZero() || from.IsNil() || to.IsNil() {
		return tax.Breakdown{}, nil
	}

	fromExempt, err := m.store.IsTaxExempt(ctx, from)
	if err != nil {
		return tax.Breakdown{}, err
	}
	if fromExempt {
		return tax.Breakdown{}, nil
	}

	toExempt, err := m.store.IsTaxExempt(ctx, to)
	if err != nil {
		return tax.Breakdown{}, err
	}
	if toExempt {
		return tax.Breakdown{}, nil
	}

	return m.taxPolicy.Assess(amount), nil
}
