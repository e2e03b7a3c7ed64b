package catalog

import "vuka/internal/domain"

// Plan is one purchasable item. Coin packs also carry a DurationDays: buying
// coins grants a short "daily" access window alongside the coins themselves.
type Plan struct {
	ID             string
	Type           string // domain.PlanTypeCoins or domain.PlanTypeSubscription
	Name           string
	AmountXAF      int64
	OriginalXAF    int64
	Coins          int
	DurationDays   int
	SubscriptionID string // tier granted on crediting: daily / weekly / monthly
}

// Catalog holds the immutable plan, routing and commission tables. Built once
// at startup and injected; never mutated afterwards.
type Catalog struct {
	plans           map[string]Plan
	countryGateways map[string]string
	defaultGateway  string
	tierRates       map[string]float64
	defaultRate     float64
	minExclusive    map[string]int64
}

// Default returns the production catalog.
func Default() *Catalog {
	return &Catalog{
		plans: map[string]Plan{
			"coins_500": {
				ID: "coins_500", Type: domain.PlanTypeCoins, Name: "500 Coins",
				AmountXAF: 500, OriginalXAF: 500, Coins: 500,
				DurationDays: 1, SubscriptionID: domain.SubscriptionDaily,
			},
			"coins_1200": {
				ID: "coins_1200", Type: domain.PlanTypeCoins, Name: "1200 Coins",
				AmountXAF: 1000, OriginalXAF: 1200, Coins: 1200,
				DurationDays: 3, SubscriptionID: domain.SubscriptionDaily,
			},
			"weekly_unlimited": {
				ID: "weekly_unlimited", Type: domain.PlanTypeSubscription, Name: "Weekly Unlimited",
				AmountXAF: 5000, OriginalXAF: 6000,
				DurationDays: 7, SubscriptionID: domain.SubscriptionWeekly,
			},
			"monthly_unlimited": {
				ID: "monthly_unlimited", Type: domain.PlanTypeSubscription, Name: "Monthly Unlimited",
				AmountXAF: 15000, OriginalXAF: 20000,
				DurationDays: 30, SubscriptionID: domain.SubscriptionMonthly,
			},
		},
		countryGateways: map[string]string{
			"CM": domain.GatewayFapshi,
			"NG": domain.GatewayLygos,
			"CI": domain.GatewayLygos,
			"SN": domain.GatewayLygos,
			"GH": domain.GatewayLygos,
		},
		defaultGateway: domain.GatewayFapshi,
		tierRates: map[string]float64{
			domain.AffiliateTierBronze: 10,
			domain.AffiliateTierSilver: 15,
			domain.AffiliateTierGold:   20,
		},
		defaultRate: 10,
		minExclusive: map[string]int64{
			// Lygos rejects amounts <= 100 XAF
			domain.GatewayLygos: 100,
		},
	}
}

func (c *Catalog) ResolvePlan(planID string) (Plan, bool) {
	p, ok := c.plans[planID]
	return p, ok
}

// ResolveGateway maps a buyer country to a gateway, falling back to the
// default gateway for unmapped countries.
func (c *Catalog) ResolveGateway(countryCode string) string {
	if gw, ok := c.countryGateways[countryCode]; ok {
		return gw
	}
	return c.defaultGateway
}

// CommissionRate returns the percent rate for an affiliate tier, or the
// default rate when the tier is unknown.
func (c *Catalog) CommissionRate(tier string) float64 {
	if r, ok := c.tierRates[tier]; ok {
		return r
	}
	return c.defaultRate
}

// MinAmountExclusive returns the strictly-greater-than amount floor for a
// gateway, 0 when the gateway enforces none.
func (c *Catalog) MinAmountExclusive(gatewayName string) int64 {
	return c.minExclusive[gatewayName]
}
