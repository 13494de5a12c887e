// Package sqlite provides a SQLite-backed Keymarket store using the pure-Go
// modernc.org/sqlite driver. Suitable for single-process deployments that
// need the market state to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	keymarket "github.com/fanbase-labs/keymarket"
	"github.com/fanbase-labs/keymarket/creator"
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/keys"
	ledgerstore "github.com/fanbase-labs/keymarket/store"
	"github.com/fanbase-labs/keymarket/trade"
	"github.com/fanbase-labs/keymarket/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

const timeLayout = time.RFC3339Nano

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer; SQLite serializes writes anyway and this avoids
	// SQLITE_BUSY under concurrent readers.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate applies the schema and seeds default parameters if absent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", keymarket.ErrMigrationFailed, err)
		}
	}

	defaults := ledgerstore.DefaultParams()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keymarket_globals (id, registration_fee, max_creator_keys, fee_pool)
		 VALUES (1, ?, ?, '0') ON CONFLICT (id) DO NOTHING`,
		defaults.RegistrationFee, int64(defaults.MaxCreatorKeys))
	if err != nil {
		return fmt.Errorf("%w: seed globals: %v", keymarket.ErrMigrationFailed, err)
	}

	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// ──────────────────────────────────────────────────
// Creator registry
// ──────────────────────────────────────────────────

func (s *Store) CreateCreator(ctx context.Context, c *creator.Creator) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM keymarket_creators WHERE id = ?`, c.ID).Scan(&count); err != nil {
		return fmt.Errorf("sqlite: create creator: %w", err)
	}
	if count > 0 {
		return keymarket.ErrAlreadyExists
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO keymarket_creators
		 (id, name, bio, is_active, keys_supply, total_volume, registered_at, keys_sold_directly, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Bio, boolToInt(c.IsActive), int64(c.KeysSupply), c.TotalVolume,
		c.RegisteredAt.UTC().Format(timeLayout), int64(c.KeysSoldDirectly),
		c.CreatedAt.UTC().Format(timeLayout), c.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("sqlite: create creator: %w", err)
	}

	return nil
}

func (s *Store) GetCreator(ctx context.Context, creatorID id.AccountID) (*creator.Creator, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, bio, is_active, keys_supply, total_volume, registered_at, keys_sold_directly, created_at, updated_at
		 FROM keymarket_creators WHERE id = ?`, creatorID)

	return scanCreator(row)
}

func (s *Store) ListCreators(ctx context.Context, opts creator.ListOpts) ([]*creator.Creator, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, bio, is_active, keys_supply, total_volume, registered_at, keys_sold_directly, created_at, updated_at
		 FROM keymarket_creators ORDER BY registered_at, id LIMIT ? OFFSET ?`,
		limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list creators: %w", err)
	}
	defer rows.Close()

	out := make([]*creator.Creator, 0)
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) UpdateCreator(ctx context.Context, c *creator.Creator) error {
	return s.updateCreatorExec(ctx, s.db, c)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) updateCreatorExec(ctx context.Context, ex execer, c *creator.Creator) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE keymarket_creators
		 SET name = ?, bio = ?, is_active = ?, keys_supply = ?, total_volume = ?, keys_sold_directly = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name, c.Bio, boolToInt(c.IsActive), int64(c.KeysSupply), c.TotalVolume,
		int64(c.KeysSoldDirectly), time.Now().UTC().Format(timeLayout), c.ID)
	if err != nil {
		return fmt.Errorf("sqlite: update creator: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update creator: %w", err)
	}
	if affected == 0 {
		return keymarket.ErrNotFound
	}

	return nil
}

// ──────────────────────────────────────────────────
// Key holdings
// ──────────────────────────────────────────────────

func (s *Store) GetHolding(ctx context.Context, holder, creatorID id.AccountID) (*keys.Holding, error) {
	h := &keys.Holding{Entity: types.NewEntity(), Holder: holder, Creator: creatorID}

	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM keymarket_holdings WHERE holder = ? AND creator = ?`,
		holder, creatorID).Scan(&balance)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return h, nil // implicit zero
	case err != nil:
		return nil, fmt.Errorf("sqlite: get holding: %w", err)
	}

	h.Balance = uint64(balance)

	return h, nil
}

func (s *Store) ListHoldings(ctx context.Context, holder id.AccountID) ([]*keys.Holding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT creator, balance FROM keymarket_holdings
		 WHERE holder = ? AND balance > 0 ORDER BY creator`, holder)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list holdings: %w", err)
	}
	defer rows.Close()

	out := make([]*keys.Holding, 0)
	for rows.Next() {
		h := &keys.Holding{Entity: types.NewEntity(), Holder: holder}
		var balance int64
		if err := rows.Scan(&h.Creator, &balance); err != nil {
			return nil, fmt.Errorf("sqlite: list holdings: %w", err)
		}
		h.Balance = uint64(balance)
		out = append(out, h)
	}

	return out, rows.Err()
}

// ──────────────────────────────────────────────────
// Trades
// ──────────────────────────────────────────────────

func (s *Store) ApplyTrade(ctx context.Context, app ledgerstore.TradeApplication) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", keymarket.ErrTransactionFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := s.updateCreatorExec(ctx, tx, app.Creator); err != nil {
		return err
	}

	// Upsert the holding, rejecting any delta that would go negative.
	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM keymarket_holdings WHERE holder = ? AND creator = ?`,
		app.Trade.Trader, app.Trade.Creator).Scan(&balance)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: read holding: %v", keymarket.ErrTransactionFailed, err)
	}

	newBalance := balance + app.HoldingDelta
	if newBalance < 0 {
		return fmt.Errorf("%w: holding balance would go negative", keymarket.ErrInsufficientKeys)
	}

	now := time.Now().UTC().Format(timeLayout)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO keymarket_holdings (holder, creator, balance, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (holder, creator) DO UPDATE SET balance = ?, updated_at = ?`,
		app.Trade.Trader, app.Trade.Creator, newBalance, now, now, newBalance, now)
	if err != nil {
		return fmt.Errorf("%w: write holding: %v", keymarket.ErrTransactionFailed, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO keymarket_trades
		 (id, creator, trader, side, amount, price, platform_fee, creator_fee, executed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.Trade.ID, app.Trade.Creator, app.Trade.Trader, string(app.Trade.Side),
		int64(app.Trade.Amount), app.Trade.Price, app.Trade.PlatformFee, app.Trade.CreatorFee,
		app.Trade.ExecutedAt.UTC().Format(timeLayout), now, now)
	if err != nil {
		return fmt.Errorf("%w: write trade: %v", keymarket.ErrTransactionFailed, err)
	}

	if app.FeePoolAdd.IsPositive() {
		if err := adjustFeePool(ctx, tx, app.FeePoolAdd, false); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", keymarket.ErrTransactionFailed, err)
	}

	return nil
}

func (s *Store) ListTrades(ctx context.Context, creatorID id.AccountID, opts trade.ListOpts) ([]*trade.Trade, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	query := `SELECT id, creator, trader, side, amount, price, platform_fee, creator_fee, executed_at
		 FROM keymarket_trades WHERE creator = ?`
	args := []any{creatorID}
	if opts.Side != "" {
		query += ` AND side = ?`
		args = append(args, string(opts.Side))
	}
	query += ` ORDER BY executed_at, id LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list trades: %w", err)
	}
	defer rows.Close()

	out := make([]*trade.Trade, 0)
	for rows.Next() {
		tr := &trade.Trade{Entity: types.NewEntity()}
		var side, executedAt string
		var amount int64
		if err := rows.Scan(&tr.ID, &tr.Creator, &tr.Trader, &side, &amount,
			&tr.Price, &tr.PlatformFee, &tr.CreatorFee, &executedAt); err != nil {
			return nil, fmt.Errorf("sqlite: list trades: %w", err)
		}
		tr.Side = trade.Side(side)
		tr.Amount = uint64(amount)
		tr.ExecutedAt, err = time.Parse(timeLayout, executedAt)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list trades: parse time: %w", err)
		}
		out = append(out, tr)
	}

	return out, rows.Err()
}

// ──────────────────────────────────────────────────
// Parameters and fee pool
// ──────────────────────────────────────────────────

func (s *Store) GetParams(ctx context.Context) (ledgerstore.Params, error) {
	var p ledgerstore.Params
	var maxKeys int64
	err := s.db.QueryRowContext(ctx,
		`SELECT registration_fee, max_creator_keys FROM keymarket_globals WHERE id = 1`).
		Scan(&p.RegistrationFee, &maxKeys)
	if err != nil {
		return ledgerstore.Params{}, fmt.Errorf("sqlite: get params: %w", err)
	}
	p.MaxCreatorKeys = uint64(maxKeys)

	return p, nil
}

func (s *Store) SetParams(ctx context.Context, p ledgerstore.Params) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE keymarket_globals SET registration_fee = ?, max_creator_keys = ? WHERE id = 1`,
		p.RegistrationFee, int64(p.MaxCreatorKeys))
	if err != nil {
		return fmt.Errorf("sqlite: set params: %w", err)
	}

	return nil
}

func (s *Store) FeePool(ctx context.Context) (types.Amount, error) {
	var pool types.Amount
	err := s.db.QueryRowContext(ctx,
		`SELECT fee_pool FROM keymarket_globals WHERE id = 1`).Scan(&pool)
	if err != nil {
		return types.Zero(), fmt.Errorf("sqlite: fee pool: %w", err)
	}

	return pool, nil
}

func (s *Store) CreditFeePool(ctx context.Context, amount types.Amount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", keymarket.ErrTransactionFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := adjustFeePool(ctx, tx, amount, false); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DebitFeePool(ctx context.Context, amount types.Amount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", keymarket.ErrTransactionFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := adjustFeePool(ctx, tx, amount, true); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) DrainFeePool(ctx context.Context) (types.Amount, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Zero(), fmt.Errorf("%w: begin: %v", keymarket.ErrTransactionFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var pool types.Amount
	if err := tx.QueryRowContext(ctx,
		`SELECT fee_pool FROM keymarket_globals WHERE id = 1`).Scan(&pool); err != nil {
		return types.Zero(), fmt.Errorf("%w: read pool: %v", keymarket.ErrTransactionFailed, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE keymarket_globals SET fee_pool = '0' WHERE id = 1`); err != nil {
		return types.Zero(), fmt.Errorf("%w: zero pool: %v", keymarket.ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return types.Zero(), fmt.Errorf("%w: commit: %v", keymarket.ErrTransactionFailed, err)
	}

	return pool, nil
}

type queryExecer interface {
	execer
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func adjustFeePool(ctx context.Context, qe queryExecer, amount types.Amount, debit bool) error {
	var pool types.Amount
	if err := qe.QueryRowContext(ctx,
		`SELECT fee_pool FROM keymarket_globals WHERE id = 1`).Scan(&pool); err != nil {
		return fmt.Errorf("%w: read pool: %v", keymarket.ErrTransactionFailed, err)
	}

	if debit {
		if pool.Less(amount) {
			return keymarket.ErrInsufficientFunds
		}
		pool = pool.Sub(amount)
	} else {
		pool = pool.Add(amount)
	}

	if _, err := qe.ExecContext(ctx,
		`UPDATE keymarket_globals SET fee_pool = ? WHERE id = 1`, pool); err != nil {
		return fmt.Errorf("%w: write pool: %v", keymarket.ErrTransactionFailed, err)
	}

	return nil
}

// ──────────────────────────────────────────────────
// Tax exemptions
// ──────────────────────────────────────────────────

func (s *Store) SetTaxExempt(ctx context.Context, account id.AccountID, exempt bool) error {
	var err error
	if exempt {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO keymarket_tax_exemptions (account, created_at)
			 VALUES (?, ?) ON CONFLICT (account) DO NOTHING`,
			account, time.Now().UTC().Format(timeLayout))
	} else {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM keymarket_tax_exemptions WHERE account = ?`, account)
	}
	if err != nil {
		return fmt.Errorf("sqlite: set tax exempt: %w", err)
	}

	return nil
}

func (s *Store) IsTaxExempt(ctx context.Context, account id.AccountID) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM keymarket_tax_exemptions WHERE account = ?`, account).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: is tax exempt: %w", err)
	}

	return count > 0, nil
}

// ──────────────────────────────────────────────────
// Scan helpers
// ──────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreator(row rowScanner) (*creator.Creator, error) {
	c := &creator.Creator{}
	var active, keysSupply, soldDirectly int64
	var registeredAt, createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.Name, &c.Bio, &active, &keysSupply, &c.TotalVolume,
		&registeredAt, &soldDirectly, &createdAt, &updatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, keymarket.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("sqlite: scan creator: %w", err)
	}

	c.IsActive = active != 0
	c.KeysSupply = uint64(keysSupply)
	c.KeysSoldDirectly = uint64(soldDirectly)

	for _, pair := range []struct {
		src string
		dst *time.Time
	}{{registeredAt, &c.RegisteredAt}, {createdAt, &c.CreatedAt}, {updatedAt, &c.UpdatedAt}} {
		parsed, err := time.Parse(timeLayout, pair.src)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan creator: parse time %q: %w", pair.src, err)
		}
		*pair.dst = parsed
	}

	return c, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
