package keymarket

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/plugin"
	"github.com/fanbase-labs/keymarket/store"
	"github.com/fanbase-labs/keymarket/tax"
	"github.com/fanbase-labs/keymarket/token"
	"github.com/fanbase-labs/keymarket/types"
)

// Market is the main keys-market engine: a taxed fungible token plus a
// bonding-curve marketplace for per-creator keys, settled against a token
// ledger and persisted through a pluggable store.
//
// All state-mutating operations are guarded by a single re-entrancy lock: a
// mutating call made while another is in flight — including calls made from
// plugin hooks — fails with ErrReentrantCall. Read-only operations take no
// lock and reflect one consistent store snapshot per call.
type Market struct {
	store   store.Store
	ledger  token.Ledger
	plugins *plugin.Registry
	logger  *slog.Logger

	guard entryGuard

	// custody holds trade collateral and undistributed fees on the token
	// ledger. Fixed at construction.
	custody id.AccountID

	taxPolicy tax.Policy

	// Admin identities, mutated only through owner-gated operations.
	adminMu sync.RWMutex
	owner   id.AccountID
	vault   id.AccountID

	// Optional genesis mint applied once on Start.
	genesisTo     id.AccountID
	genesisAmount types.Amount
}

// New creates a new Market settling against the given token ledger and
// persisting registry state in the given store.
func New(s store.Store, ledger token.Ledger, opts ...Option) *Market {
	m := &Market{
		store:     s,
		ledger:    ledger,
		plugins:   plugin.NewRegistry(),
		logger:    slog.Default(),
		custody:   id.NewAccountID(),
		taxPolicy: tax.DefaultPolicy(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Option configures a Market instance.
type Option func(*Market)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Market) {
		m.logger = logger
		m.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(m *Market) {
		// Duplicate registrations are dropped.
		_ = m.plugins.Register(p)
	}
}

// WithOwner sets the owner identity authorized for admin operations.
func WithOwner(owner id.AccountID) Option {
	return func(m *Market) {
		m.owner = owner
	}
}

// WithVault sets the staking vault that receives fee-pool withdrawals.
func WithVault(vault id.AccountID) Option {
	return func(m *Market) {
		m.vault = vault
	}
}

// WithCustody overrides the generated custody account identity.
func WithCustody(custody id.AccountID) Option {
	return func(m *Market) {
		m.custody = custody
	}
}

// WithTaxPolicy overrides the default 5% transfer-tax policy.
func WithTaxPolicy(p tax.Policy) Option {
	return func(m *Market) {
		m.taxPolicy = p
	}
}

// WithGenesisMint mints amount to account when Start runs against a ledger
// that has never minted. Used to seed a fresh deployment.
func WithGenesisMint(account id.AccountID, amount types.Amount) Option {
	return func(m *Market) {
		m.genesisTo = account
		m.genesisAmount = amount
	}
}

// Start migrates the store, applies the genesis mint if configured, and
// initializes plugins.
func (m *Market) Start(ctx context.Context) error {
	if err := m.store.Migrate(ctx); err != nil {
		return err
	}

	if !m.genesisTo.IsNil() && m.genesisAmount.IsPositive() {
		minted, err := m.ledger.TotalMinted(ctx)
		if err != nil {
			return fmt.Errorf("keymarket: genesis mint: %w", err)
		}
		if minted.IsZero() {
			if err := m.ledger.Mint(ctx, m.genesisTo, m.genesisAmount); err != nil {
				return fmt.Errorf("keymarket: genesis mint: %w", err)
			}
			m.logger.Info("genesis supply minted",
				"account", m.genesisTo,
				"amount", m.genesisAmount,
			)
		}
	}

	m.plugins.EmitInit(ctx, m)

	m.logger.Info("market started",
		"custody", m.custody,
		"owner", m.Owner(),
		"vault", m.Vault(),
		"plugins", m.plugins.Plugins(),
	)

	return nil
}

// Stop shuts down the Market and closes the store.
func (m *Market) Stop() error {
	m.plugins.EmitShutdown(context.Background())

	return m.store.Close()
}

// ──────────────────────────────────────────────────
// Read accessors
// ──────────────────────────────────────────────────

// Custody returns the custody account identity.
func (m *Market) Custody() id.AccountID { return m.custody }

// Owner returns the current owner identity.
func (m *Market) Owner() id.AccountID {
	m.adminMu.RLock()
	defer m.adminMu.RUnlock()

	return m.owner
}

// Vault returns the current staking vault identity.
func (m *Market) Vault() id.AccountID {
	m.adminMu.RLock()
	defer m.adminMu.RUnlock()

	return m.vault
}

// Params returns the current global parameters.
func (m *Market) Params(ctx context.Context) (store.Params, error) {
	return m.store.GetParams(ctx)
}

// PlatformFeePool returns the undistributed platform fee balance.
func (m *Market) PlatformFeePool(ctx context.Context) (types.Amount, error) {
	return m.store.FeePool(ctx)
}

// IsTaxExempt reports whether an account is exempt from transfer tax.
func (m *Market) IsTaxExempt(ctx context.Context, account id.AccountID) (bool, error) {
	return m.store.IsTaxExempt(ctx, account)
}

// isOwner reports whether caller is the current owner. The Nil identity is
// never authorized.
func (m *Market) isOwner(caller id.AccountID) bool {
	if caller.IsNil() {
		return false
	}

	return caller == m.Owner()
}
