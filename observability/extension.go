// Package observability provides a metrics extension for the keys market
// that records lifecycle event counts and trade value distributions via a
// pluggable MetricFactory.
package observability

import (
	"context"
	"math/big"

	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/plugin"
	"github.com/fanbase-labs/keymarket/tax"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                   = (*MetricsExtension)(nil)
	_ plugin.OnInit                   = (*MetricsExtension)(nil)
	_ plugin.OnCreatorRegistered      = (*MetricsExtension)(nil)
	_ plugin.OnCreatorDeactivated     = (*MetricsExtension)(nil)
	_ plugin.OnKeysPurchased          = (*MetricsExtension)(nil)
	_ plugin.OnKeysSold               = (*MetricsExtension)(nil)
	_ plugin.OnTaxApplied             = (*MetricsExtension)(nil)
	_ plugin.OnFeesWithdrawn          = (*MetricsExtension)(nil)
	_ plugin.OnFeesBurned             = (*MetricsExtension)(nil)
	_ plugin.OnMaxKeysUpdated         = (*MetricsExtension)(nil)
	_ plugin.OnRegistrationFeeUpdated = (*MetricsExtension)(nil)
	_ plugin.OnOwnershipTransferred   = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records market-wide lifecycle metrics.
// Register it as a market plugin to automatically track trading activity.
type MetricsExtension struct {
	factory MetricFactory

	// Registry metrics
	CreatorsRegistered  Counter
	CreatorsDeactivated Counter

	// Trading metrics
	KeysPurchased Counter
	KeysSold      Counter
	BuyVolume     Histogram
	SellVolume    Histogram
	KeysPerTrade  Histogram
	PlatformFees  Counter
	CreatorFees   Counter

	// Tax metrics
	TaxedTransfers Counter
	TaxBurned      Histogram

	// Treasury metrics
	FeeWithdrawals Counter
	FeeBurns       Counter

	// Governance metrics
	ParamUpdates       Counter
	OwnershipTransfers Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Registry metrics
		CreatorsRegistered:  factory.Counter("keymarket.creators.registered"),
		CreatorsDeactivated: factory.Counter("keymarket.creators.deactivated"),

		// Trading metrics
		KeysPurchased: factory.Counter("keymarket.keys.purchased"),
		KeysSold:      factory.Counter("keymarket.keys.sold"),
		BuyVolume:     factory.Histogram("keymarket.trades.buy_volume_tokens"),
		SellVolume:    factory.Histogram("keymarket.trades.sell_volume_tokens"),
		KeysPerTrade:  factory.Histogram("keymarket.trades.keys_per_trade"),
		PlatformFees:  factory.Counter("keymarket.fees.platform"),
		CreatorFees:   factory.Counter("keymarket.fees.creator"),

		// Tax metrics
		TaxedTransfers: factory.Counter("keymarket.tax.transfers"),
		TaxBurned:      factory.Histogram("keymarket.tax.burned_tokens"),

		// Treasury metrics
		FeeWithdrawals: factory.Counter("keymarket.treasury.withdrawals"),
		FeeBurns:       factory.Counter("keymarket.treasury.burns"),

		// Governance metrics
		ParamUpdates:       factory.Counter("keymarket.governance.param_updates"),
		OwnershipTransfers: factory.Counter("keymarket.governance.ownership_transfers"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Registry lifecycle hooks
// ──────────────────────────────────────────────────

// OnCreatorRegistered implements plugin.OnCreatorRegistered.
func (m *MetricsExtension) OnCreatorRegistered(_ context.Context, _ *creator.Creator) error {
	m.CreatorsRegistered.Inc()
	return nil
}

// OnCreatorDeactivated implements plugin.OnCreatorDeactivated.
func (m *MetricsExtension) OnCreatorDeactivated(_ context.Context, _ *creator.Creator) error {
	m.CreatorsDeactivated.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Trading lifecycle hooks
// ──────────────────────────────────────────────────

// OnKeysPurchased implements plugin.OnKeysPurchased.
func (m *MetricsExtension) OnKeysPurchased(_ context.Context, t *trade.Trade) error {
	m.KeysPurchased.Add(float64(t.Amount))
	m.KeysPerTrade.Observe(float64(t.Amount))
	m.BuyVolume.Observe(tokensFloat(t.Price))
	m.PlatformFees.Add(tokensFloat(t.PlatformFee))
	m.CreatorFees.Add(tokensFloat(t.CreatorFee))
	return nil
}

// OnKeysSold implements plugin.OnKeysSold.
func (m *MetricsExtension) OnKeysSold(_ context.Context, t *trade.Trade) error {
	m.KeysSold.Add(float64(t.Amount))
	m.KeysPerTrade.Observe(float64(t.Amount))
	m.SellVolume.Observe(tokensFloat(t.Price))
	m.PlatformFees.Add(tokensFloat(t.PlatformFee))
	m.CreatorFees.Add(tokensFloat(t.CreatorFee))
	return nil
}

// ──────────────────────────────────────────────────
// Tax and treasury lifecycle hooks
// ──────────────────────────────────────────────────

// OnTaxApplied implements plugin.OnTaxApplied.
func (m *MetricsExtension) OnTaxApplied(_ context.Context, _, _ id.AccountID, _ types.Amount, breakdown tax.Breakdown) error {
	m.TaxedTransfers.Inc()
	m.TaxBurned.Observe(tokensFloat(breakdown.Burn))
	return nil
}

// OnFeesWithdrawn implements plugin.OnFeesWithdrawn.
func (m *MetricsExtension) OnFeesWithdrawn(_ context.Context, _ id.AccountID, _ types.Amount) error {
	m.FeeWithdrawals.Inc()
	return nil
}

// OnFeesBurned implements plugin.OnFeesBurned.
func (m *MetricsExtension) OnFeesBurned(_ context.Context, _ types.Amount) error {
	m.FeeBurns.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Governance lifecycle hooks
// ──────────────────────────────────────────────────

// OnMaxKeysUpdated implements plugin.OnMaxKeysUpdated.
func (m *MetricsExtension) OnMaxKeysUpdated(_ context.Context, _, _ uint64) error {
	m.ParamUpdates.Inc()
	return nil
}

// OnRegistrationFeeUpdated implements plugin.OnRegistrationFeeUpdated.
func (m *MetricsExtension) OnRegistrationFeeUpdated(_ context.Context, _, _ types.Amount) error {
	m.ParamUpdates.Inc()
	return nil
}

// OnOwnershipTransferred implements plugin.OnOwnershipTransferred.
func (m *MetricsExtension) OnOwnershipTransferred(_ context.Context, _, _ id.AccountID) error {
	m.OwnershipTransfers.Inc()
	return nil
}

// tokensFloat converts an exact base-unit amount to whole tokens for metric
// observation. Metrics tolerate float rounding; the books do not.
func tokensFloat(a types.Amount) float64 {
	f, _ := new(big.Float).Quo(
		new(big.Float).SetInt(a.Uint256().ToBig()),
		new(big.Float).SetInt(types.Unit.ToBig()),
	).Float64()
	return f
}
