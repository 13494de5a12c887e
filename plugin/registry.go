package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/tax"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// Hook lists are cached at registration time so emission does no reflection.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit                   []OnInit
	onShutdown               []OnShutdown
	onCreatorRegistered      []OnCreatorRegistered
	onCreatorDeactivated     []OnCreatorDeactivated
	onCreatorProfileUpdated  []OnCreatorProfileUpdated
	onKeysPurchased          []OnKeysPurchased
	onKeysSold               []OnKeysSold
	onTaxApplied             []OnTaxApplied
	onFeesWithdrawn          []OnFeesWithdrawn
	onFeesBurned             []OnFeesBurned
	onMaxKeysUpdated         []OnMaxKeysUpdated
	onRegistrationFeeUpdated []OnRegistrationFeeUpdated
	onVaultUpdated           []OnVaultUpdated
	onOwnershipTransferred   []OnOwnershipTransferred
	onTaxExemptionUpdated    []OnTaxExemptionUpdated
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCreatorRegistered); ok {
		r.onCreatorRegistered = append(r.onCreatorRegistered, v)
	}
	if v, ok := p.(OnCreatorDeactivated); ok {
		r.onCreatorDeactivated = append(r.onCreatorDeactivated, v)
	}
	if v, ok := p.(OnCreatorProfileUpdated); ok {
		r.onCreatorProfileUpdated = append(r.onCreatorProfileUpdated, v)
	}
	if v, ok := p.(OnKeysPurchased); ok {
		r.onKeysPurchased = append(r.onKeysPurchased, v)
	}
	if v, ok := p.(OnKeysSold); ok {
		r.onKeysSold = append(r.onKeysSold, v)
	}
	if v, ok := p.(OnTaxApplied); ok {
		r.onTaxApplied = append(r.onTaxApplied, v)
	}
	if v, ok := p.(OnFeesWithdrawn); ok {
		r.onFeesWithdrawn = append(r.onFeesWithdrawn, v)
	}
	if v, ok := p.(OnFeesBurned); ok {
		r.onFeesBurned = append(r.onFeesBurned, v)
	}
	if v, ok := p.(OnMaxKeysUpdated); ok {
		r.onMaxKeysUpdated = append(r.onMaxKeysUpdated, v)
	}
	if v, ok := p.(OnRegistrationFeeUpdated); ok {
		r.onRegistrationFeeUpdated = append(r.onRegistrationFeeUpdated, v)
	}
	if v, ok := p.(OnVaultUpdated); ok {
		r.onVaultUpdated = append(r.onVaultUpdated, v)
	}
	if v, ok := p.(OnOwnershipTransferred); ok {
		r.onOwnershipTransferred = append(r.onOwnershipTransferred, v)
	}
	if v, ok := p.(OnTaxExemptionUpdated); ok {
		r.onTaxExemptionUpdated = append(r.onTaxExemptionUpdated, v)
	}

	return nil
}

// Plugins returns the names of all registered plugins.
func (r *Registry) Plugins() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}

	return names
}

func (r *Registry) hookErr(plugin Plugin, hook string, err error) {
	if err != nil {
		r.logger.Error("plugin hook failed",
			"plugin", plugin.Name(),
			"hook", hook,
			"error", err,
		)
	}
}

// ──────────────────────────────────────────────────
// Emitters
// ──────────────────────────────────────────────────

// EmitInit notifies all OnInit plugins.
func (r *Registry) EmitInit(ctx context.Context, market interface{}) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onInit {
		r.hookErr(p, "OnInit", p.OnInit(ctx, market))
	}
}

// EmitShutdown notifies all OnShutdown plugins.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onShutdown {
		r.hookErr(p, "OnShutdown", p.OnShutdown(ctx))
	}
}

// EmitCreatorRegistered notifies all OnCreatorRegistered plugins.
func (r *Registry) EmitCreatorRegistered(ctx context.Context, c *creator.Creator) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onCreatorRegistered {
		r.hookErr(p, "OnCreatorRegistered", p.OnCreatorRegistered(ctx, c))
	}
}

// EmitCreatorDeactivated notifies all OnCreatorDeactivated plugins.
func (r *Registry) EmitCreatorDeactivated(ctx context.Context, c *creator.Creator) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onCreatorDeactivated {
		r.hookErr(p, "OnCreatorDeactivated", p.OnCreatorDeactivated(ctx, c))
	}
}

// EmitCreatorProfileUpdated notifies all OnCreatorProfileUpdated plugins.
func (r *Registry) EmitCreatorProfileUpdated(ctx context.Context, old, updated *creator.Creator) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onCreatorProfileUpdated {
		r.hookErr(p, "OnCreatorProfileUpdated", p.OnCreatorProfileUpdated(ctx, old, updated))
	}
}

// EmitKeysPurchased notifies all OnKeysPurchased plugins.
func (r *Registry) EmitKeysPurchased(ctx context.Context, t *trade.Trade) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onKeysPurchased {
		r.hookErr(p, "OnKeysPurchased", p.OnKeysPurchased(ctx, t))
	}
}

// EmitKeysSold notifies all OnKeysSold plugins.
func (r *Registry) EmitKeysSold(ctx context.Context, t *trade.Trade) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onKeysSold {
		r.hookErr(p, "OnKeysSold", p.OnKeysSold(ctx, t))
	}
}

// EmitTaxApplied notifies all OnTaxApplied plugins.
func (r *Registry) EmitTaxApplied(ctx context.Context, from, to id.AccountID, amount types.Amount, breakdown tax.Breakdown) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onTaxApplied {
		r.hookErr(p, "OnTaxApplied", p.OnTaxApplied(ctx, from, to, amount, breakdown))
	}
}

// EmitFeesWithdrawn notifies all OnFeesWithdrawn plugins.
func (r *Registry) EmitFeesWithdrawn(ctx context.Context, vault id.AccountID, amount types.Amount) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onFeesWithdrawn {
		r.hookErr(p, "OnFeesWithdrawn", p.OnFeesWithdrawn(ctx, vault, amount))
	}
}

// EmitFeesBurned notifies all OnFeesBurned plugins.
func (r *Registry) EmitFeesBurned(ctx context.Context, amount types.Amount) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onFeesBurned {
		r.hookErr(p, "OnFeesBurned", p.OnFeesBurned(ctx, amount))
	}
}

// EmitMaxKeysUpdated notifies all OnMaxKeysUpdated plugins.
func (r *Registry) EmitMaxKeysUpdated(ctx context.Context, old, updated uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onMaxKeysUpdated {
		r.hookErr(p, "OnMaxKeysUpdated", p.OnMaxKeysUpdated(ctx, old, updated))
	}
}

// EmitRegistrationFeeUpdated notifies all OnRegistrationFeeUpdated plugins.
func (r *Registry) EmitRegistrationFeeUpdated(ctx context.Context, old, updated types.Amount) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onRegistrationFeeUpdated {
		r.hookErr(p, "OnRegistrationFeeUpdated", p.OnRegistrationFeeUpdated(ctx, old, updated))
	}
}

// EmitVaultUpdated notifies all OnVaultUpdated plugins.
func (r *Registry) EmitVaultUpdated(ctx context.Context, old, updated id.AccountID) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onVaultUpdated {
		r.hookErr(p, "OnVaultUpdated", p.OnVaultUpdated(ctx, old, updated))
	}
}

// EmitOwnershipTransferred notifies all OnOwnershipTransferred plugins.
func (r *Registry) EmitOwnershipTransferred(ctx context.Context, old, updated id.AccountID) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onOwnershipTransferred {
		r.hookErr(p, "OnOwnershipTransferred", p.OnOwnershipTransferred(ctx, old, updated))
	}
}

// EmitTaxExemptionUpdated notifies all OnTaxExemptionUpdated plugins.
func (r *Registry) EmitTaxExemptionUpdated(ctx context.Context, account id.AccountID, exempt bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.onTaxExemptionUpdated {
		r.hookErr(p, "OnTaxExemptionUpdated", p.OnTaxExemptionUpdated(ctx, account, exempt))
	}
}
