package tier

// ID identifies a subscription tier.
type ID string

const (
	Pulse ID = "pulse"
	Vital ID = "vital"
)

// Money represents a monetary amount in the smallest currency unit.
// For example, $9.00 USD is Amount: 900, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`   // Amount in smallest currency unit (cents for USD)
	Currency string `yaml:"currency"` // ISO 4217 currency code
}

// Tier bundles the resource entitlements and pricing granted by a plan.
// Tiers are static data: changing one means shipping new catalog data,
// never a runtime write.
type Tier struct {
	ID               ID     `yaml:"id"`
	Name             string `yaml:"name"`
	Monitors         int64  `yaml:"monitors"`           // maximum monitored resources
	MinCheckInterval int    `yaml:"min_check_interval"` // check interval floor, seconds
	StatusPages      int64  `yaml:"status_pages"`
	HistoryDays      int    `yaml:"history_days"` // uptime history retention
	Webhooks         bool   `yaml:"webhooks"`
	APIAccess        bool   `yaml:"api_access"`
	MonthlyPrice     Money  `yaml:"monthly_price"`
	YearlyPrice      Money  `yaml:"yearly_price"`
}

// Limits is the subset of a tier's entitlements that quota enforcement
// and the UI need on the hot path.
type Limits struct {
	Monitors         int64
	MinCheckInterval int // seconds
	StatusPages      int64
}

// Limits returns the enforcement view of the tier.
func (t Tier) Limits() Limits {
	return Limits{
		Monitors:         t.Monitors,
		MinCheckInterval: t.MinCheckInterval,
		StatusPages:      t.StatusPages,
	}
}

// RestrictiveLimits returns the most restrictive entitlement set. Callers
// without an active subscription degrade to these values instead of failing,
// so UI code computing selectable intervals never crashes on absent billing.
func RestrictiveLimits() Limits {
	return Limits{
		Monitors:         0,
		MinCheckInterval: 3600,
		StatusPages:      0,
	}
}
