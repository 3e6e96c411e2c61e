package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/signalforge/signalforge/internal/config"
	ierr "github.com/signalforge/signalforge/internal/errors"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/types"
)

// Entry binds one provider price id to a (plan, cycle) pair.
type Entry struct {
	PriceID      string
	PlanSlug     types.PlanSlug
	BillingCycle types.BillingCycle
	Amount       decimal.Decimal
	Currency     string
}

type planKey struct {
	plan  types.PlanSlug
	cycle types.BillingCycle
}

// Catalog is the immutable price catalog, built once from configuration at
// startup and passed by injection. Both lookup directions are unique.
type Catalog struct {
	byPrice map[string]Entry
	byPlan  map[planKey]Entry
}

// New builds the catalog from configured price bindings. Bindings with an
// empty price id are logged and skipped; partial catalogs are expected in
// non-production environments. A price id bound twice to different plans,
// or a plan bound to two price ids, is a configuration error.
func New(cfg *config.Configuration, log *logger.Logger) (*Catalog, error) {
	c := &Catalog{
		byPrice: make(map[string]Entry),
		byPlan:  make(map[planKey]Entry),
	}

	for _, binding := range cfg.Billing.Prices {
		if err := c.register(binding, log); err != nil {
			return nil, err
		}
	}

	log.Infow("price catalog built", "entries", len(c.byPrice))
	return c, nil
}

func (c *Catalog) register(binding config.PriceBinding, log *logger.Logger) error {
	if binding.PriceID == "" {
		log.Warnw("skipping price binding with no price id",
			"plan_slug", binding.PlanSlug,
			"billing_cycle", binding.BillingCycle)
		return nil
	}

	if err := binding.PlanSlug.Validate(); err != nil {
		return err
	}
	if err := binding.BillingCycle.Validate(); err != nil {
		return err
	}

	entry := Entry{
		PriceID:      binding.PriceID,
		PlanSlug:     binding.PlanSlug,
		BillingCycle: binding.BillingCycle,
		Amount:       binding.Amount,
		Currency:     binding.Currency,
	}
	key := planKey{plan: entry.PlanSlug, cycle: entry.BillingCycle}

	// Re-registering the identical binding is idempotent; a conflicting one
	// is rejected rather than silently overwritten.
	if existing, ok := c.byPrice[entry.PriceID]; ok {
		if existing.PlanSlug == entry.PlanSlug && existing.BillingCycle == entry.BillingCycle {
			return nil
		}
		return ierr.NewErrorf("price %s is already bound to plan %s/%s", entry.PriceID, existing.PlanSlug, existing.BillingCycle).
			WithHint("Each price id must map to exactly one plan and billing cycle").
			WithReportableDetails(map[string]any{
				"price_id": entry.PriceID,
			}).
			Mark(ierr.ErrConfiguration)
	}
	if existing, ok := c.byPlan[key]; ok {
		return ierr.NewErrorf("plan %s/%s is already bound to price %s", entry.PlanSlug, entry.BillingCycle, existing.PriceID).
			WithHint("Each plan and billing cycle must map to exactly one price id").
			WithReportableDetails(map[string]any{
				"plan_slug":     entry.PlanSlug,
				"billing_cycle": entry.BillingCycle,
			}).
			Mark(ierr.ErrConfiguration)
	}

	c.byPrice[entry.PriceID] = entry
	c.byPlan[key] = entry
	return nil
}

// LookupByPriceID returns the entry for a provider price id.
func (c *Catalog) LookupByPriceID(priceID string) (Entry, bool) {
	entry, ok := c.byPrice[priceID]
	return entry, ok
}

// LookupByPlan returns the provider price id for a (plan, cycle) pair.
func (c *Catalog) LookupByPlan(plan types.PlanSlug, cycle types.BillingCycle) (string, bool) {
	entry, ok := c.byPlan[planKey{plan: plan, cycle: cycle}]
	if !ok {
		return "", false
	}
	return entry.PriceID, true
}

// Entries returns a copy of all catalog entries.
func (c *Catalog) Entries() []Entry {
	entries := make([]Entry, 0, len(c.byPrice))
	for _, entry := range c.byPrice {
		entries = append(entries, entry)
	}
	return entries
}
