package user

import (
	"github.com/signalforge/signalforge/internal/domain/billing"
)

// Reconcile merges a fresh subscription snapshot into an existing identity
// metadata bag. Only the keys this subsystem owns are overwritten;
// everything else in the bag survives verbatim. Applying the same snapshot
// twice yields an identical result.
func Reconcile(snapshot billing.SubscriptionSnapshot, existing map[string]interface{}) map[string]interface{} {
	m := FromBag(existing)
	m.ApplySnapshot(snapshot)
	return m.Bag()
}

// ApplySnapshot overwrites the owned fields from a snapshot. A snapshot
// without a pending change clears the pending fields; a snapshot without a
// customer or subscription id leaves the stored ids alone (an on-demand
// free-plan sync must not erase a known provider customer).
func (m *BillingMetadata) ApplySnapshot(snapshot billing.SubscriptionSnapshot) {
	m.PlanSlug = snapshot.PlanSlug.String()
	m.Tier = snapshot.Tier
	m.Status = snapshot.Status.String()
	m.BillingCycle = snapshot.BillingCycle.String()
	m.CurrentPeriodEnd = snapshot.CurrentPeriodEnd
	m.PlanStartedAt = snapshot.PlanStartedAt
	m.CancelAtPeriodEnd = snapshot.CancelAtPeriodEnd

	if snapshot.CustomerID != "" {
		m.CustomerID = snapshot.CustomerID
	}
	m.SubscriptionID = snapshot.SubscriptionID

	if pending := snapshot.PendingChange; pending != nil {
		m.PendingPlanSlug = pending.PlanSlug.String()
		m.PendingBillingCycle = pending.BillingCycle.String()
		if !pending.EffectiveAt.IsZero() {
			effective := pending.EffectiveAt
			m.PendingEffectiveDate = &effective
		} else {
			m.PendingEffectiveDate = nil
		}
		m.PendingScheduleID = pending.ScheduleID
	} else {
		m.PendingPlanSlug = ""
		m.PendingBillingCycle = ""
		m.PendingEffectiveDate = nil
		m.PendingScheduleID = ""
	}
}
