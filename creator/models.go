// Package creator defines the creator registry records.
package creator

import (
	"time"

	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// Creator is the registry record for one registered creator.
//
// KeysSoldDirectly is a monotonic counter of lifetime primary issuance: it is
// incremented by primary buys and never decremented, so buying back supply
// does not restore direct-sale headroom.
type Creator struct {
	types.Entity
	ID               id.AccountID `json:"id"`
	Name             string       `json:"name"`
	Bio              string       `json:"bio"`
	IsActive         bool         `json:"is_active"`
	KeysSupply       uint64       `json:"keys_supply"`
	TotalVolume      types.Amount `json:"total_volume"`
	RegisteredAt     time.Time    `json:"registered_at"`
	KeysSoldDirectly uint64       `json:"keys_sold_directly"`
}

// RemainingDirectSlots returns how many keys can still be bought directly
// from the curve given the global per-creator limit.
func (c *Creator) RemainingDirectSlots(maxCreatorKeys uint64) uint64 {
	if c.KeysSoldDirectly >= maxCreatorKeys {
		return 0
	}
	return maxCreatorKeys - c.KeysSoldDirectly
}

// ListOpts controls pagination when listing creators.
type ListOpts struct {
	Limit  int
	Offset int
}
