package audithook

// Action constants for audit events.
const (
	// Registry actions
	ActionCreatorRegistered  = "creator.registered"
	ActionCreatorDeactivated = "creator.deactivated"
	ActionProfileUpdated     = "creator.profile_updated"

	// Trading actions
	ActionKeysPurchased = "keys.purchased"
	ActionKeysSold      = "keys.sold"

	// Tax actions
	ActionTaxApplied = "tax.applied"

	// Treasury actions
	ActionFeesWithdrawn = "fees.withdrawn"
	ActionFeesBurned    = "fees.burned"

	// Governance actions
	ActionMaxKeysUpdated         = "params.max_keys_updated"
	ActionRegistrationFeeUpdated = "params.registration_fee_updated"
	ActionVaultUpdated           = "vault.updated"
	ActionOwnershipTransferred   = "ownership.transferred"
	ActionTaxExemptionUpdated    = "tax_exemption.updated"
)

// Resource constants for audit events.
const (
	ResourceCreator  = "creator"
	ResourceTrade    = "trade"
	ResourceTransfer = "transfer"
	ResourceFeePool  = "fee_pool"
	ResourceParams   = "params"
	ResourceAdmin    = "admin"
)

// Category constants for audit events.
const (
	CategoryRegistry   = "registry"
	CategoryTrading    = "trading"
	CategoryTax        = "tax"
	CategoryTreasury   = "treasury"
	CategoryGovernance = "governance"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
