package keymarket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// RegisterCreator registers identity as a creator, burning the registration
// fee from its token balance. The fee is irrecoverable and reduces total
// supply.
func (m *Market) RegisterCreator(ctx context.Context, identity id.AccountID, name, bio string) (*creator.Creator, error) {
	if err := m.guard.enter(); err != nil {
		return nil, err
	}
	defer m.guard.exit()

	if identity.IsNil() {
		return nil, ErrInvalidAddress
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	if _, err := m.store.GetCreator(ctx, identity); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	params, err := m.store.GetParams(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := m.ledger.BalanceOf(ctx, identity)
	if err != nil {
		return nil, err
	}
	if balance.Less(params.RegistrationFee) {
		return nil, fmt.Errorf("%w: registration fee is %s", ErrInsufficientFunds, params.RegistrationFee)
	}

	if err := m.ledger.Burn(ctx, identity, params.RegistrationFee); err != nil {
		return nil, err
	}

	c := &creator.Creator{
		Entity:       types.NewEntity(),
		ID:           identity,
		Name:         name,
		Bio:          bio,
		IsActive:     true,
		RegisteredAt: time.Now().UTC(),
	}

	if err := m.store.CreateCreator(ctx, c); err != nil {
		// The fee was already burned; restore it before surfacing the error.
		if mintErr := m.ledger.Mint(ctx, identity, params.RegistrationFee); mintErr != nil {
			m.logger.Error("failed to restore registration fee after store failure",
				"identity", identity,
				"fee", params.RegistrationFee,
				"error", mintErr,
			)
		}
		return nil, err
	}

	m.logger.Info("creator registered",
		"identity", identity,
		"name", name,
		"fee_burned", params.RegistrationFee,
	)

	m.plugins.EmitCreatorRegistered(ctx, c)

	return c, nil
}

// DeactivateCreator marks a creator inactive. Owner only.
//
// Deactivation does not block trading: existing holders can still sell, and
// buys still succeed, matching the registry's historical behavior.
func (m *Market) DeactivateCreator(ctx context.Context, caller, creatorID id.AccountID) error {
	if !m.isOwner(caller) {
		return ErrUnauthorized
	}

	if err := m.guard.enter(); err != nil {
		return err
	}
	defer m.guard.exit()

	c, err := m.store.GetCreator(ctx, creatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotACreator
		}
		return err
	}

	if !c.IsActive {
		return nil
	}

	c.IsActive = false
	c.Touch()

	if err := m.store.UpdateCreator(ctx, c); err != nil {
		return err
	}

	m.logger.Info("creator deactivated", "creator", creatorID)

	m.plugins.EmitCreatorDeactivated(ctx, c)

	return nil
}

// UpdateCreatorProfile updates a creator's display name and bio. Only the
// creator itself may update its profile.
func (m *Market) UpdateCreatorProfile(ctx context.Context, identity id.AccountID, name, bio string) (*creator.Creator, error) {
	if err := m.guard.enter(); err != nil {
		return nil, err
	}
	defer m.guard.exit()

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	c, err := m.store.GetCreator(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotACreator
		}
		return nil, err
	}

	old := *c
	c.Name = name
	c.Bio = bio
	c.Touch()

	if err := m.store.UpdateCreator(ctx, c); err != nil {
		return nil, err
	}

	m.plugins.EmitCreatorProfileUpdated(ctx, &old, c)

	return c, nil
}

// GetCreator returns the registry record for one creator.
func (m *Market) GetCreator(ctx context.Context, creatorID id.AccountID) (*creator.Creator, error) {
	c, err := m.store.GetCreator(ctx, creatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotACreator
		}
		return nil, err
	}

	return c, nil
}

// IsCreator reports whether identity has a registered creator profile.
func (m *Market) IsCreator(ctx context.Context, identity id.AccountID) (bool, error) {
	_, err := m.store.GetCreator(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// ListCreators returns registered creators in registration order.
func (m *Market) ListCreators(ctx context.Context, opts creator.ListOpts) ([]*creator.Creator, error) {
	return m.store.ListCreators(ctx, opts)
}

// RemainingDirectSlots returns how many keys can still be bought directly
// from the curve for one creator under the current global limit.
func (m *Market) RemainingDirectSlots(ctx context.Context, creatorID id.AccountID) (uint64, error) {
	c, err := m.GetCreator(ctx, creatorID)
	if err != nil {
		return 0, err
	}

	params, err := m.store.GetParams(ctx)
	if err != nil {
		return 0, err
	}

	return c.RemainingDirectSlots(params.MaxCreatorKeys), nil
}
