package keymarket

import "sync/atomic"

// entryGuard is a non-blocking mutual-exclusion latch for state-mutating
// operations. Unlike a mutex, a second acquisition attempt fails immediately
// instead of blocking, so a plugin hook that calls back into the market
// cannot deadlock — it observes ErrReentrantCall.
type entryGuard struct {
	held atomic.Bool
}

func (g *entryGuard) enter() error {
	if !g.held.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}

	return nil
}

func (g *entryGuard) exit() {
	g.held.Store(false)
}
