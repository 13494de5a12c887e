package token

import (
	"context"
	"sync"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// compile-time interface check
var _ Ledger = (*MemoryLedger)(nil)

// MemoryLedger is the in-process reference implementation of Ledger.
// It is safe for concurrent use.
type MemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]types.Amount
	minted   types.Amount
	burned   types.Amount
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]types.Amount),
	}
}

// BalanceOf returns the balance of an account. Unknown accounts hold zero.
func (l *MemoryLedger) BalanceOf(_ context.Context, account id.AccountID) (types.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[account.String()], nil
}

// Mint creates amount new base units and credits them to account.
func (l *MemoryLedger) Mint(_ context.Context, account id.AccountID, amount types.Amount) error {
	if account.IsNil() {
		return ErrNilAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := account.String()
	l.balances[key] = l.balances[key].Add(amount)
	l.minted = l.minted.Add(amount)

	return nil
}

// Burn destroys amount base units held by account.
func (l *MemoryLedger) Burn(_ context.Context, account id.AccountID, amount types.Amount) error {
	if account.IsNil() {
		return ErrNilAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.burnLocked(account, amount)
}

// Transfer moves amount base units between accounts. A transfer to id.Nil
// burns the amount.
func (l *MemoryLedger) Transfer(_ context.Context, from, to id.AccountID, amount types.Amount) error {
	if from.IsNil() {
		return ErrNilAccount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if to.IsNil() {
		return l.burnLocked(from, amount)
	}

	fromKey := from.String()
	balance := l.balances[fromKey]
	if balance.Less(amount) {
		return ErrInsufficientBalance
	}

	l.balances[fromKey] = balance.Sub(amount)
	toKey := to.String()
	l.balances[toKey] = l.balances[toKey].Add(amount)

	return nil
}

// TotalSupply returns cumulative minted minus cumulative burned.
func (l *MemoryLedger) TotalSupply(_ context.Context) (types.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.minted.Sub(l.burned), nil
}

// TotalMinted returns the cumulative amount ever minted.
func (l *MemoryLedger) TotalMinted(_ context.Context) (types.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.minted, nil
}

// TotalBurned returns the cumulative amount ever burned.
func (l *MemoryLedger) TotalBurned(_ context.Context) (types.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.burned, nil
}

func (l *MemoryLedger) burnLocked(account id.AccountID, amount types.Amount) error {
	key := account.String()
	balance := l.balances[key]
	if balance.Less(amount) {
		return ErrInsufficientBalance
	}

	l.balances[key] = balance.Sub(amount)
	l.burned = l.burned.Add(amount)

	return nil
}
