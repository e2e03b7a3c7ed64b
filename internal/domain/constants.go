package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	GatewayFapshi = "fapshi"
	GatewayLygos  = "lygos"
)

const (
	PlanTypeCoins        = "coins"
	PlanTypeSubscription = "subscription"
)

const (
	SubscriptionNone    = "none"
	SubscriptionDaily   = "daily"
	SubscriptionWeekly  = "weekly"
	SubscriptionMonthly = "monthly"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

const (
	AffiliateTierBronze = "bronze"
	AffiliateTierSilver = "silver"
	AffiliateTierGold   = "gold"
)

// XAFPerUSD is the fixed conversion rate used for the affiliate commission ledger.
const XAFPerUSD = 500

// DefaultMinimumPayoutUSD is the payout threshold applied when the affiliate has none set.
const DefaultMinimumPayoutUSD = 50
