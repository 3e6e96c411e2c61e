package billing

import (
	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/domain/catalog"
	"github.com/signalforge/signalforge/internal/types"
)

// Metadata keys for plan and cycle. Both snake_case and camelCase spellings
// exist in historical data; reads accept either, writes use snake_case.
const (
	metaKeyPlanSlug          = "plan_slug"
	metaKeyPlanSlugCamel     = "planSlug"
	metaKeyBillingCycle      = "billing_cycle"
	metaKeyBillingCycleCamel = "billingCycle"
)

// resolutionScope carries the inputs a resolver strategy may consult:
// the metadata map of the subscription (or schedule phase) and the price
// object of its primary line item.
type resolutionScope struct {
	metadata types.Metadata
	price    *stripe.Price
	catalog  *catalog.Catalog
}

// planResolution is a partially resolved (plan, cycle) pair. A strategy
// fills what it knows and leaves the rest empty.
type planResolution struct {
	plan  types.PlanSlug
	cycle types.BillingCycle
}

func (r planResolution) complete() bool {
	return r.plan != "" && r.cycle != ""
}

// resolverStrategy inspects a scope and returns what it can determine.
type resolverStrategy func(scope resolutionScope) planResolution

// planResolvers is the precedence-ordered strategy chain: explicit
// subscription metadata, then the price catalog, then metadata on the price
// object itself, finally the billing cycle derived from the recurring
// interval. Each field is taken from the first strategy that produces it.
var planResolvers = []resolverStrategy{
	resolveFromMetadata,
	resolveFromCatalog,
	resolveFromPriceMetadata,
	resolveFromRecurringInterval,
}

// resolvePlan runs the strategy chain. Plan and cycle may come from
// different strategies; earlier strategies win per field.
func resolvePlan(scope resolutionScope) planResolution {
	var resolved planResolution
	for _, strategy := range planResolvers {
		candidate := strategy(scope)
		if resolved.plan == "" {
			resolved.plan = candidate.plan
		}
		if resolved.cycle == "" {
			resolved.cycle = candidate.cycle
		}
		if resolved.complete() {
			break
		}
	}
	return resolved
}

func resolveFromMetadata(scope resolutionScope) planResolution {
	return planResolution{
		plan:  types.PlanSlug(scope.metadata.Get(metaKeyPlanSlug, metaKeyPlanSlugCamel)),
		cycle: types.BillingCycle(scope.metadata.Get(metaKeyBillingCycle, metaKeyBillingCycleCamel)),
	}
}

func resolveFromCatalog(scope resolutionScope) planResolution {
	if scope.price == nil || scope.catalog == nil {
		return planResolution{}
	}
	entry, ok := scope.catalog.LookupByPriceID(scope.price.ID)
	if !ok {
		return planResolution{}
	}
	return planResolution{plan: entry.PlanSlug, cycle: entry.BillingCycle}
}

func resolveFromPriceMetadata(scope resolutionScope) planResolution {
	if scope.price == nil {
		return planResolution{}
	}
	meta := types.Metadata(scope.price.Metadata)
	return planResolution{
		plan:  types.PlanSlug(meta.Get(metaKeyPlanSlug, metaKeyPlanSlugCamel)),
		cycle: types.BillingCycle(meta.Get(metaKeyBillingCycle, metaKeyBillingCycleCamel)),
	}
}

func resolveFromRecurringInterval(scope resolutionScope) planResolution {
	if scope.price == nil || scope.price.Recurring == nil {
		return planResolution{}
	}
	return planResolution{
		cycle: types.BillingCycleFromInterval(string(scope.price.Recurring.Interval)),
	}
}
