package sqlite

// Schema migrations, applied in order by Migrate. Each statement is
// idempotent so re-running Migrate on an existing database is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS keymarket_creators (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    bio                TEXT NOT NULL DEFAULT '',
    is_active          INTEGER NOT NULL DEFAULT 1,
    keys_supply        INTEGER NOT NULL DEFAULT 0,
    total_volume       TEXT NOT NULL DEFAULT '0',
    registered_at      TEXT NOT NULL DEFAULT '',
    keys_sold_directly INTEGER NOT NULL DEFAULT 0,
    created_at         TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
);`,

	`CREATE INDEX IF NOT EXISTS idx_keymarket_creators_active ON keymarket_creators (is_active);`,

	`CREATE TABLE IF NOT EXISTS keymarket_holdings (
    holder     TEXT NOT NULL,
    creator    TEXT NOT NULL,
    balance    INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (holder, creator)
);`,

	`CREATE INDEX IF NOT EXISTS idx_keymarket_holdings_holder ON keymarket_holdings (holder);`,

	`CREATE TABLE IF NOT EXISTS keymarket_trades (
    id           TEXT PRIMARY KEY,
    creator      TEXT NOT NULL,
    trader       TEXT NOT NULL,
    side         TEXT NOT NULL,
    amount       INTEGER NOT NULL,
    price        TEXT NOT NULL DEFAULT '0',
    platform_fee TEXT NOT NULL DEFAULT '0',
    creator_fee  TEXT NOT NULL DEFAULT '0',
    executed_at  TEXT NOT NULL,
    created_at   TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);`,

	`CREATE INDEX IF NOT EXISTS idx_keymarket_trades_creator ON keymarket_trades (creator, executed_at);`,

	`CREATE TABLE IF NOT EXISTS keymarket_globals (
    id               INTEGER PRIMARY KEY CHECK (id = 1),
    registration_fee TEXT NOT NULL,
    max_creator_keys INTEGER NOT NULL,
    fee_pool         TEXT NOT NULL DEFAULT '0'
);`,

	`CREATE TABLE IF NOT EXISTS keymarket_tax_exemptions (
    account    TEXT PRIMARY KEY,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);`,
}
