// Package plugin provides an extensible plugin system for Keymarket.
// Plugins can hook into market lifecycle events to extend functionality —
// external indexers, audit trails, and metrics all attach here.
package plugin

import (
	"context"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/tax"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized. The market instance is
// passed as an opaque value to avoid an import cycle with the root package.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, market interface{}) error
}

// OnShutdown is called when the market is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Registry hooks
// ──────────────────────────────────────────────────

// OnCreatorRegistered is called when a new creator registers.
type OnCreatorRegistered interface {
	Plugin
	OnCreatorRegistered(ctx context.Context, c *creator.Creator) error
}

// OnCreatorDeactivated is called when an admin deactivates a creator.
type OnCreatorDeactivated interface {
	Plugin
	OnCreatorDeactivated(ctx context.Context, c *creator.Creator) error
}

// OnCreatorProfileUpdated is called when a creator amends name or bio.
type OnCreatorProfileUpdated interface {
	Plugin
	OnCreatorProfileUpdated(ctx context.Context, old, updated *creator.Creator) error
}

// ──────────────────────────────────────────────────
// Trading hooks
// ──────────────────────────────────────────────────

// OnKeysPurchased is called after a buy settles.
type OnKeysPurchased interface {
	Plugin
	OnKeysPurchased(ctx context.Context, t *trade.Trade) error
}

// OnKeysSold is called after a sell settles.
type OnKeysSold interface {
	Plugin
	OnKeysSold(ctx context.Context, t *trade.Trade) error
}

// ──────────────────────────────────────────────────
// Tax hooks
// ──────────────────────────────────────────────────

// OnTaxApplied is called after a taxed transfer settles.
type OnTaxApplied interface {
	Plugin
	OnTaxApplied(ctx context.Context, from, to id.AccountID, amount types.Amount, breakdown tax.Breakdown) error
}

// ──────────────────────────────────────────────────
// Admin hooks
// ──────────────────────────────────────────────────

// OnFeesWithdrawn is called when the platform fee pool is paid to the vault.
type OnFeesWithdrawn interface {
	Plugin
	OnFeesWithdrawn(ctx context.Context, vault id.AccountID, amount types.Amount) error
}

// OnFeesBurned is called when platform fees are destroyed.
type OnFeesBurned interface {
	Plugin
	OnFeesBurned(ctx context.Context, amount types.Amount) error
}

// OnMaxKeysUpdated is called when the per-creator direct-sale limit changes.
type OnMaxKeysUpdated interface {
	Plugin
	OnMaxKeysUpdated(ctx context.Context, old, updated uint64) error
}

// OnRegistrationFeeUpdated is called when the registration fee changes.
type OnRegistrationFeeUpdated interface {
	Plugin
	OnRegistrationFeeUpdated(ctx context.Context, old, updated types.Amount) error
}

// OnVaultUpdated is called when the staking vault identity changes.
type OnVaultUpdated interface {
	Plugin
	OnVaultUpdated(ctx context.Context, old, updated id.AccountID) error
}

// OnOwnershipTransferred is called when the market owner changes.
type OnOwnershipTransferred interface {
	Plugin
	OnOwnershipTransferred(ctx context.Context, old, updated id.AccountID) error
}

// OnTaxExemptionUpdated is called when an account's tax exemption toggles.
type OnTaxExemptionUpdated interface {
	Plugin
	OnTaxExemptionUpdated(ctx context.Context, account id.AccountID, exempt bool) error
}
