package wallet

// Pagination bounds for transaction history.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// redeemRateScope prefixes limiter keys so redemption throttling does
// not collide with other limiter uses of the shared Redis.
const redeemRateScope = "redeem"
