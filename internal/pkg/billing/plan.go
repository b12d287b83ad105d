package billing

import "strings"

// Plan intervals. One-time purchases carry an empty interval.
const (
	IntervalOnce    = ""
	IntervalMonthly = "month"
)

// Plan is one entry of the static plan catalog. Plans are defined in code and
// never persisted; a transaction snapshots the credit grant at purchase time,
// so later catalog changes do not rewrite history.
type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credits    int64  `json:"credits"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval,omitempty"`
}

// IsRecurring reports whether the plan bills on a subscription interval.
func (p Plan) IsRecurring() bool {
	return p.Interval != IntervalOnce
}

// planCatalog is the single source of truth for plan pricing and credit
// grants. Checkout construction and the public plan listing both read from it.
var planCatalog = map[string]Plan{
	"basic": {
		ID:         "basic",
		Name:       "Basic Plan",
		Credits:    5,
		PriceCents: 500,
		Currency:   "brl",
	},
	"standard": {
		ID:         "standard",
		Name:       "Standard Plan",
		Credits:    15,
		PriceCents: 1000,
		Currency:   "brl",
	},
	"premium": {
		ID:         "premium",
		Name:       "Premium Plan",
		Credits:    50,
		PriceCents: 2000,
		Currency:   "brl",
	},
	"pro": {
		ID:         "pro",
		Name:       "Pro Monthly",
		Credits:    200,
		PriceCents: 4990,
		Currency:   "brl",
		Interval:   IntervalMonthly,
	},
}

// planOrder fixes the display ordering of ListPlans.
var planOrder = []string{"basic", "standard", "premium", "pro"}

// LookupPlan resolves a plan id to its catalog entry.
func LookupPlan(id string) (Plan, bool) {
	p, ok := planCatalog[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// ListPlans returns the catalog in display order.
func ListPlans() []Plan {
	out := make([]Plan, 0, len(planOrder))
	for _, id := range planOrder {
		out = append(out, planCatalog[id])
	}
	return out
}
