// Package keys defines the per-creator key balance matrix.
package keys

import (
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// Holding is one cell of the (holder, creator) → key count matrix.
// Holdings are created implicitly at zero and must never go negative.
type Holding struct {
	types.Entity
	Holder  id.AccountID `json:"holder"`
	Creator id.AccountID `json:"creator"`
	Balance uint64       `json:"balance"`
}
