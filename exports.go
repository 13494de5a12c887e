package keymarket

import (
	"github.com/fanbase-labs/keymarket/id"
	"github.com/fanbase-labs/keymarket/types"
)

// Re-export common types for convenience so users don't have to import the
// types and id packages.

// Amount is re-exported from the types package.
type Amount = types.Amount

// Entity is re-exported from the types package.
type Entity = types.Entity

// AccountID is re-exported from the id package.
type AccountID = id.AccountID

// Re-export Amount constructors
var (
	Wei         = types.Wei
	Tokens      = types.Tokens
	ParseAmount = types.ParseAmount
	Zero        = types.Zero
	Sum         = types.Sum
)

// Re-export identity constructors
var (
	NewAccountID   = id.NewAccountID
	ParseAccountID = id.ParseAccountID
)

// BurnIdentity is the reserved null identity. Transfers to it destroy
// supply; it can never initiate operations.
var BurnIdentity = id.Nil

// Re-export Entity constructor
var NewEntity = types.NewEntity
