package keymarket

import (
	"context"
	"fmt"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// UpdateMaxCreatorKeys sets the per-creator direct-sale limit. Owner only,
// and the limit must be positive.
func (m *Market) UpdateMaxCreatorKeys(ctx context.Context, caller id.AccountID, maxKeys uint64) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}
	if maxKeys == 0 {
		return fmt.Errorf("%w: max creator keys must be positive", ErrInvalidInput)
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	params, err := m.store.GetParams(ctx)
	if err != nil {
		return err
	}

	old := params.MaxCreatorKeys
	params.MaxCreatorKeys = maxKeys

	if err := m.store.SetParams(ctx, params); err != nil {
		return err
	}

	m.logger.Info("max creator keys updated", "old", old, "new", maxKeys)

	m.plugins.EmitMaxKeysUpdated(ctx, old, maxKeys)

	return nil
}

// UpdateRegistrationFee sets the creator registration fee. Owner only, and
// the fee must be positive.
func (m *Market) UpdateRegistrationFee(ctx context.Context, caller id.AccountID, fee types.Amount) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}
	if fee.IsZero() {
		return fmt.Errorf("%w: registration fee must be positive", ErrInvalidInput)
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	params, err := m.store.GetParams(ctx)
	if err != nil {
		return err
	}

	old := params.RegistrationFee
	params.RegistrationFee = fee

	if err := m.store.SetParams(ctx, params); err != nil {
		return err
	}

	m.logger.Info("registration fee updated", "old", old, "new", fee)

	m.plugins.EmitRegistrationFeeUpdated(ctx, old, fee)

	return nil
}

// SetStakingVault sets the vault identity that receives fee withdrawals.
// Owner only, and the vault cannot be the burn identity.
func (m *Market) SetStakingVault(ctx context.Context, caller, vault id.AccountID) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}
	if vault.IsNil() {
		return ErrInvalidAddress
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	m.adminMu.Lock()
	old := m.vault
	m.vault = vault
	m.adminMu.Unlock()

	m.logger.Info("staking vault updated", "old", old, "new", vault)

	m.plugins.EmitVaultUpdated(ctx, old, vault)

	return nil
}

// SetTaxExempt toggles transfer-tax exemption for an account. Owner only.
func (m *Market) SetTaxExempt(ctx context.Context, caller, account id.AccountID, exempt bool) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}
	if account.IsNil() {
		return ErrInvalidAddress
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	if err := m.store.SetTaxExempt(ctx, account, exempt); err != nil {
		return err
	}

	m.logger.Info("tax exemption updated", "account", account, "exempt", exempt)

	m.plugins.EmitTaxExemptionUpdated(ctx, account, exempt)

	return nil
}

// WithdrawPlatformFees transfers the entire fee pool from custody to the
// staking vault and zeroes the pool. Owner only. The pool is drained before
// the transfer so a re-entrant withdrawal cannot double-pay.
func (m *Market) WithdrawPlatformFees(ctx context.Context, caller id.AccountID) (types.Amount, error) {
	if !m.isOwner(caller) {
		return types.Zero(), ErrUnauthorized
	}

	vault := m.Vault()
	if vault.IsNil() {
		return types.Zero(), ErrInvalidAddress
	}

	if err := m.guard.enter(); err != nil {
		return types.Zero(), err
	}
	defer m.guard.exit()

	amount, err := m.store.DrainFeePool(ctx)
	if err != nil {
		return types.Zero(), err
	}
	if amount.IsZero() {
		return types.Zero(), fmt.Errorf("%w: fee pool is empty", ErrInsufficientFunds)
	}

	if err := m.ledger.Transfer(ctx, m.custody, vault, amount); err != nil {
		// Restore the drained pool; nothing left custody.
		if creditErr := m.store.CreditFeePool(ctx, amount); creditErr != nil {
			m.logger.Error("failed to restore fee pool after withdrawal failure",
				"amount", amount,
				"error", creditErr,
			)
		}
		return types.Zero(), err
	}

	m.logger.Info("platform fees withdrawn", "vault", vault, "amount", amount)

	m.plugins.EmitFeesWithdrawn(ctx, vault, amount)

	return amount, nil
}

// BurnPlatformFees destroys amount from the fee pool, reducing total supply
// without paying anyone. Owner only.
func (m *Market) BurnPlatformFees(ctx context.Context, caller id.AccountID, amount types.Amount) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}
	if amount.IsZero() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	if err := m.store.DebitFeePool(ctx, amount); err != nil {
		return err
	}

	if err := m.ledger.Burn(ctx, m.custody, amount); err != nil {
		if creditErr := m.store.CreditFeePool(ctx, amount); creditErr != nil {
			m.logger.Error("failed to restore fee pool after burn failure",
				"amount", amount,
				"error", creditErr,
			)
		}
		return err
	}

	m.logger.Info("platform fees burned", "amount", amount)

	m.plugins.EmitFeesBurned(ctx, amount)

	return nil
}

// TransferOwnership hands admin control to a new owner. Owner only, and the
// new owner cannot be the burn identity.
func (m *Market) TransferOwnership(ctx context.Context, caller, newOwner id.AccountID) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}
	if newOwner.IsNil() {
		return ErrInvalidAddress
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	m.adminMu.Lock()
	old := m.owner
	m.owner = newOwner
	m.adminMu.Unlock()

	m.logger.Info("ownership transferred", "old", old, "new", newOwner)

	m.plugins.EmitOwnershipTransferred(ctx, old, newOwner)

	return nil
}
