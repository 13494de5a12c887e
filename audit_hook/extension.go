// Package audithook bridges market lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit store. Callers inject a RecorderFunc adapter, or use
// the JSONL file recorder, at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/plugin"
	"github.com/fanbase-labs/keymarket/tax"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                   = (*Extension)(nil)
	_ plugin.OnCreatorRegistered      = (*Extension)(nil)
	_ plugin.OnCreatorDeactivated     = (*Extension)(nil)
	_ plugin.OnCreatorProfileUpdated  = (*Extension)(nil)
	_ plugin.OnKeysPurchased          = (*Extension)(nil)
	_ plugin.OnKeysSold               = (*Extension)(nil)
	_ plugin.OnTaxApplied             = (*Extension)(nil)
	_ plugin.OnFeesWithdrawn          = (*Extension)(nil)
	_ plugin.OnFeesBurned             = (*Extension)(nil)
	_ plugin.OnMaxKeysUpdated         = (*Extension)(nil)
	_ plugin.OnRegistrationFeeUpdated = (*Extension)(nil)
	_ plugin.OnVaultUpdated           = (*Extension)(nil)
	_ plugin.OnOwnershipTransferred   = (*Extension)(nil)
	_ plugin.OnTaxExemptionUpdated    = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is the record handed to the audit backend.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges market lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Registry hooks
// ──────────────────────────────────────────────────

// OnCreatorRegistered implements plugin.OnCreatorRegistered.
func (e *Extension) OnCreatorRegistered(ctx context.Context, c *creator.Creator) error {
	return e.record(ctx, ActionCreatorRegistered, SeverityInfo, OutcomeSuccess,
		ResourceCreator, c.ID.String(), CategoryRegistry,
		"name", c.Name,
	)
}

// OnCreatorDeactivated implements plugin.OnCreatorDeactivated.
func (e *Extension) OnCreatorDeactivated(ctx context.Context, c *creator.Creator) error {
	return e.record(ctx, ActionCreatorDeactivated, SeverityWarning, OutcomeSuccess,
		ResourceCreator, c.ID.String(), CategoryRegistry,
		"name", c.Name,
		"keys_supply", c.KeysSupply,
	)
}

// OnCreatorProfileUpdated implements plugin.OnCreatorProfileUpdated.
func (e *Extension) OnCreatorProfileUpdated(ctx context.Context, old, updated *creator.Creator) error {
	return e.record(ctx, ActionProfileUpdated, SeverityInfo, OutcomeSuccess,
		ResourceCreator, updated.ID.String(), CategoryRegistry,
		"old_name", old.Name,
		"new_name", updated.Name,
	)
}

// ──────────────────────────────────────────────────
// Trading hooks
// ──────────────────────────────────────────────────

// OnKeysPurchased implements plugin.OnKeysPurchased.
func (e *Extension) OnKeysPurchased(ctx context.Context, t *trade.Trade) error {
	return e.record(ctx, ActionKeysPurchased, SeverityInfo, OutcomeSuccess,
		ResourceTrade, t.ID.String(), CategoryTrading,
		"buyer", t.Trader.String(),
		"creator", t.Creator.String(),
		"amount", t.Amount,
		"price", t.Price.String(),
		"platform_fee", t.PlatformFee.String(),
		"creator_fee", t.CreatorFee.String(),
	)
}

// OnKeysSold implements plugin.OnKeysSold.
func (e *Extension) OnKeysSold(ctx context.Context, t *trade.Trade) error {
	return e.record(ctx, ActionKeysSold, SeverityInfo, OutcomeSuccess,
		ResourceTrade, t.ID.String(), CategoryTrading,
		"seller", t.Trader.String(),
		"creator", t.Creator.String(),
		"amount", t.Amount,
		"price", t.Price.String(),
		"platform_fee", t.PlatformFee.String(),
		"creator_fee", t.CreatorFee.String(),
	)
}

// ──────────────────────────────────────────────────
// Tax and treasury hooks
// ──────────────────────────────────────────────────

// OnTaxApplied implements plugin.OnTaxApplied.
func (e *Extension) OnTaxApplied(ctx context.Context, from, to id.AccountID, amount types.Amount, breakdown tax.Breakdown) error {
	return e.record(ctx, ActionTaxApplied, SeverityInfo, OutcomeSuccess,
		ResourceTransfer, "", CategoryTax,
		"from", from.String(),
		"to", to.String(),
		"amount", amount.String(),
		"burned", breakdown.Burn.String(),
		"to_pool", breakdown.Vault.String(),
	)
}

// OnFeesWithdrawn implements plugin.OnFeesWithdrawn.
func (e *Extension) OnFeesWithdrawn(ctx context.Context, vault id.AccountID, amount types.Amount) error {
	return e.record(ctx, ActionFeesWithdrawn, SeverityWarning, OutcomeSuccess,
		ResourceFeePool, "", CategoryTreasury,
		"vault", vault.String(),
		"amount", amount.String(),
	)
}

// OnFeesBurned implements plugin.OnFeesBurned.
func (e *Extension) OnFeesBurned(ctx context.Context, amount types.Amount) error {
	return e.record(ctx, ActionFeesBurned, SeverityWarning, OutcomeSuccess,
		ResourceFeePool, "", CategoryTreasury,
		"amount", amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Governance hooks
// ──────────────────────────────────────────────────

// OnMaxKeysUpdated implements plugin.OnMaxKeysUpdated.
func (e *Extension) OnMaxKeysUpdated(ctx context.Context, old, updated uint64) error {
	return e.record(ctx, ActionMaxKeysUpdated, SeverityWarning, OutcomeSuccess,
		ResourceParams, "", CategoryGovernance,
		"old", old,
		"new", updated,
	)
}

// OnRegistrationFeeUpdated implements plugin.OnRegistrationFeeUpdated.
func (e *Extension) OnRegistrationFeeUpdated(ctx context.Context, old, updated types.Amount) error {
	return e.record(ctx, ActionRegistrationFeeUpdated, SeverityWarning, OutcomeSuccess,
		ResourceParams, "", CategoryGovernance,
		"old", old.String(),
		"new", updated.String(),
	)
}

// OnVaultUpdated implements plugin.OnVaultUpdated.
func (e *Extension) OnVaultUpdated(ctx context.Context, old, updated id.AccountID) error {
	return e.record(ctx, ActionVaultUpdated, SeverityWarning, OutcomeSuccess,
		ResourceAdmin, "", CategoryGovernance,
		"old", old.String(),
		"new", updated.String(),
	)
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (e *Extension) OnOwnershipTransferred(ctx context.Context, old, updated id.AccountID) error {
	return e.record(ctx, ActionOwnershipTransferred, SeverityCritical, OutcomeSuccess,
		ResourceAdmin, "", CategoryGovernance,
		"old", old.String(),
		"new", updated.String(),
	)
}

// OnTaxExemptionUpdated implements plugin.OnTaxExemptionUpdated.
func (e *Extension) OnTaxExemptionUpdated(ctx context.Context, account id.AccountID, exempt bool) error {
	return e.record(ctx, ActionTaxExemptionUpdated, SeverityWarning, OutcomeSuccess,
		ResourceAdmin, account.String(), CategoryGovernance,
		"account", account.String(),
		"exempt", exempt,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
