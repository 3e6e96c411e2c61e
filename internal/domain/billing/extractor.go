package billing

import (
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/signalforge/signalforge/internal/domain/catalog"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/types"
)

// Pending-change metadata keys. A pending change normally comes from an
// attached schedule; explicit metadata is the override path for manually
// managed subscriptions.
const (
	metaKeyPendingPlanSlug      = "pending_plan_slug"
	metaKeyPendingPlanCamel     = "pendingPlanSlug"
	metaKeyPendingCycle         = "pending_billing_cycle"
	metaKeyPendingCycleCamel    = "pendingBillingCycle"
	metaKeyPendingEffective     = "pending_effective_date"
	metaKeyPendingEffectiveCam  = "pendingEffectiveDate"
	metaKeyPendingScheduleID    = "pending_schedule_id"
	metaKeyPendingScheduleIDCam = "pendingScheduleId"
)

// Extractor converts raw provider subscription objects into normalized
// snapshots. It is stateless apart from the injected catalog.
type Extractor struct {
	catalog *catalog.Catalog
	log     *logger.Logger
}

func NewExtractor(cat *catalog.Catalog, log *logger.Logger) *Extractor {
	return &Extractor{catalog: cat, log: log}
}

// Snapshot normalizes a subscription. A nil subscription yields the
// implicit free snapshot.
func (e *Extractor) Snapshot(sub *stripe.Subscription) SubscriptionSnapshot {
	if sub == nil {
		return FreeSnapshot("")
	}

	item := primaryItem(sub)
	var price *stripe.Price
	if item != nil {
		price = item.Price
	}

	resolved := resolvePlan(resolutionScope{
		metadata: sub.Metadata,
		price:    price,
		catalog:  e.catalog,
	})
	if resolved.plan == "" {
		resolved.plan = types.PlanSlugFree
	}
	if resolved.cycle == "" {
		resolved.cycle = types.BillingCycleMonthly
	}
	if !resolved.plan.IsKnown() {
		e.log.Warnw("unknown plan slug on subscription, passing through",
			"plan_slug", resolved.plan,
			"subscription_id", sub.ID)
	}

	snapshot := SubscriptionSnapshot{
		PlanSlug:          resolved.plan,
		BillingCycle:      resolved.cycle,
		Tier:              resolved.plan.Tier(),
		Status:            types.NormalizeSubscriptionStatus(string(sub.Status), latestInvoiceStatus(sub)),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		SubscriptionID:    sub.ID,
	}

	if sub.Customer != nil {
		snapshot.CustomerID = sub.Customer.ID
	}
	if item != nil && item.CurrentPeriodEnd > 0 {
		snapshot.CurrentPeriodEnd = unixTime(item.CurrentPeriodEnd)
	}
	if sub.StartDate > 0 {
		snapshot.PlanStartedAt = unixTime(sub.StartDate)
	}

	snapshot.PendingChange = e.resolvePendingChange(sub, snapshot, resolved)
	return snapshot
}

// resolvePendingChange prefers the attached schedule and falls back to
// explicit pending-change metadata. Absent both, there is no pending
// change.
func (e *Extractor) resolvePendingChange(sub *stripe.Subscription, snapshot SubscriptionSnapshot, current planResolution) *PendingChange {
	if pending := e.pendingFromSchedule(sub.Schedule, snapshot.CurrentPeriodEnd, current); pending != nil {
		return pending
	}
	return pendingFromMetadata(sub.Metadata)
}

func pendingFromMetadata(metadata types.Metadata) *PendingChange {
	plan := metadata.Get(metaKeyPendingPlanSlug, metaKeyPendingPlanCamel)
	if plan == "" {
		return nil
	}

	pending := &PendingChange{
		PlanSlug:     types.PlanSlug(plan),
		BillingCycle: types.BillingCycle(metadata.Get(metaKeyPendingCycle, metaKeyPendingCycleCamel)),
		ScheduleID:   metadata.Get(metaKeyPendingScheduleID, metaKeyPendingScheduleIDCam),
	}
	if raw := metadata.Get(metaKeyPendingEffective, metaKeyPendingEffectiveCam); raw != "" {
		if at, ok := parseTimeValue(raw); ok {
			pending.EffectiveAt = at
		}
	}
	return pending
}

// primaryItem returns the subscription's first line item. Plans on this
// product are single-item subscriptions; anything beyond the first item is
// provider-side noise.
func primaryItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

func latestInvoiceStatus(sub *stripe.Subscription) string {
	if sub.LatestInvoice == nil {
		return ""
	}
	return string(sub.LatestInvoice.Status)
}

func unixTime(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

// parseTimeValue accepts RFC3339 or unix seconds.
func parseTimeValue(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), true
	}
	return time.Time{}, false
}
