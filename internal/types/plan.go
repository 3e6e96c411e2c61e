package types

import (
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/samber/lo"
)

// PlanSlug is the stable machine identifier for a subscription plan.
type PlanSlug string

const (
	PlanSlugFree PlanSlug = "free"
	PlanSlugLite PlanSlug = "lite"
	PlanSlugPro  PlanSlug = "pro"
	PlanSlugAPI  PlanSlug = "api"
)

// tierByPlan maps plan slugs to the human-facing tier label.
var tierByPlan = map[PlanSlug]string{
	PlanSlugFree: "Free",
	PlanSlugLite: "Lite",
	PlanSlugPro:  "Pro",
	PlanSlugAPI:  "API",
}

func (p PlanSlug) String() string {
	return string(p)
}

// IsKnown reports whether the slug is one of the plans this build knows
// about. Unknown slugs are still carried through (new plans may appear on
// the provider side before a deploy); callers log them.
func (p PlanSlug) IsKnown() bool {
	_, ok := tierByPlan[p]
	return ok
}

// Tier returns the tier label for the plan. Unknown slugs map to
// themselves so a provider-side plan addition is never silently rewritten.
func (p PlanSlug) Tier() string {
	if tier, ok := tierByPlan[p]; ok {
		return tier
	}
	return string(p)
}

func (p PlanSlug) Validate() error {
	allowed := []PlanSlug{PlanSlugFree, PlanSlugLite, PlanSlugPro, PlanSlugAPI}
	if !lo.Contains(allowed, p) {
		return ierr.NewErrorf("invalid plan slug: %s", p).
			WithHint("Please provide a valid plan slug").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycle is the payment cadence, normalized to monthly or annual.
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

func (b BillingCycle) String() string {
	return string(b)
}

func (b BillingCycle) Validate() error {
	allowed := []BillingCycle{BillingCycleMonthly, BillingCycleAnnual}
	if !lo.Contains(allowed, b) {
		return ierr.NewErrorf("invalid billing cycle: %s", b).
			WithHint("Billing cycle must be monthly or annual").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycleFromInterval derives a billing cycle from a recurring price
// interval. Month maps to monthly, everything else to annual.
func BillingCycleFromInterval(interval string) BillingCycle {
	if interval == "month" {
		return BillingCycleMonthly
	}
	return BillingCycleAnnual
}
