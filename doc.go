// Package keymarket provides an embeddable creator-keys market for Go
// applications: a taxed fungible token ledger paired with a bonding-curve
// marketplace for per-creator keys.
//
// Keymarket is designed as a library, not a service. Import it directly into
// your Go application and drive it from your own transport. It provides:
//
//   - Integer-exact sum-of-squares bonding-curve pricing
//   - Primary key issuance with a per-creator scarcity cap
//   - Platform and creator fee accounting with a withdrawable fee pool
//   - A 5% transfer tax split between supply burn and the fee pool
//   - Re-entrancy-safe, all-or-nothing state mutation
//   - Pluggable persistence (in-memory, SQLite, MongoDB)
//   - Typed plugin hooks for every market event
//
// # Quick Start
//
// Create a market with your preferred store and a token ledger:
//
//	import (
//	    "github.com/fanbase-labs/keymarket"
//	    "github.com/fanbase-labs/keymarket/store/sqlite"
//	    "github.com/fanbase-labs/keymarket/token"
//	)
//
//	store, err := sqlite.Open("keymarket.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	deployer := keymarket.NewAccountID()
//	m := keymarket.New(store, token.NewMemoryLedger(),
//	    keymarket.WithOwner(deployer),
//	    keymarket.WithGenesisMint(deployer, keymarket.Tokens(21_000_000)),
//	)
//
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Stop()
//
// # Core Concepts
//
// Creators register by burning a registration fee, then anyone can buy their
// keys directly from the bonding curve:
//
//	alice, err := m.RegisterCreator(ctx, aliceID, "Alice", "painter")
//	t, err := m.BuyKeys(ctx, buyerID, aliceID, 10)
//
// Quotes price a trade without executing it, bit-identical to the charge the
// mutating call would make:
//
//	q, err := m.QuoteBuy(ctx, aliceID, 10)
//
// Token transfers route through the tax engine, which burns 3% of the face
// value from the sender and accrues 2% to the platform fee pool:
//
//	breakdown, err := m.TransferWithTax(ctx, fromID, toID, keymarket.Tokens(1000))
//
// The owner withdraws accumulated platform fees to a staking vault:
//
//	amount, err := m.WithdrawPlatformFees(ctx, ownerID)
package keymarket
